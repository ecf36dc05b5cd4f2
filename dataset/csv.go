package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	gzip "github.com/klauspost/pgzip"
	"github.com/miku/covpre/atomicfile"
	"github.com/miku/covpre/schema/preprint"
)

// Header of the exported table.
var Header = []string{
	"source",
	"identifier",
	"identifier_type",
	"posted_date",
	"title",
	"abstract",
}

// Write writes records as CSV with header.
func Write(w io.Writer, records []preprint.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Source,
			r.Identifier,
			string(r.IdentifierType),
			r.PostedDate.Format(preprint.DateLayout),
			r.Title,
			r.Abstract,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read reads a table written by Write.
func Read(r io.Reader) ([]preprint.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataset: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	for i, h := range Header {
		if header[i] != h {
			return nil, fmt.Errorf("dataset: unexpected column %d: %q", i+1, header[i])
		}
	}
	var records []preprint.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		t, err := preprint.ParseIdentifierType(row[2])
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		posted, err := time.Parse(preprint.DateLayout, row[3])
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		records = append(records, preprint.Record{
			Source:         row[0],
			Identifier:     row[1],
			IdentifierType: t,
			PostedDate:     posted,
			Title:          row[4],
			Abstract:       row[5],
		})
	}
	return records, nil
}

// WriteFile writes records atomically to a file, gzip compressed, if the
// name ends with ".gz".
func WriteFile(name string, records []preprint.Record) error {
	f, err := atomicfile.New(name)
	if err != nil {
		return err
	}
	var w io.Writer = f
	var zw *gzip.Writer
	if strings.HasSuffix(name, ".gz") {
		zw = gzip.NewWriter(f)
		w = zw
	}
	if err := Write(w, records); err != nil {
		f.Abort()
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			f.Abort()
			return err
		}
	}
	return f.Close()
}

// ReadFile reads a table from a file, plain or gzip compressed.
func ReadFile(name string) ([]preprint.Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return Read(r)
}
