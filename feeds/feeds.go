// Package feeds harvests raw records from scholarly metadata APIs. Each
// harvester writes the records of a date window to a writer, unchanged: JSON
// lines for the REST APIs and <record> elements for OAI-PMH.
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

var bNewline = []byte("\n")

// Doer abstracts https://pkg.go.dev/net/http#Client.Do.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Harvester fetches all records of a source, posted between from and until,
// both inclusive, and writes them to w.
type Harvester interface {
	Name() string
	Harvest(ctx context.Context, w io.Writer, from, until time.Time) error
}

// Counter reports the number of records a harvest would yield.
type Counter interface {
	Count(ctx context.Context, from, until time.Time) (int64, error)
}

// fetch issues a GET request and returns the response body. Status codes of
// 400 and above are errors.
func fetch(ctx context.Context, client Doer, link, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d while fetching %s", resp.StatusCode, link)
	}
	return io.ReadAll(resp.Body)
}

// writeLine writes b and a newline.
func writeLine(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := w.Write(bNewline)
	return err
}

// logSeenRatio logs progress of a harvest.
func logSeenRatio(source string, seen, total int64, fields log.Fields) {
	var pct float64
	if total > 0 {
		pct = 100 * (float64(seen) / float64(total))
	}
	entry := log.WithFields(log.Fields{
		"source": source,
		"seen":   seen,
		"total":  total,
		"pct":    fmt.Sprintf("%0.2f", pct),
	})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Debug("fetched page")
}

// checkSeen fails, if more than the acceptable ratio of the announced records
// is missing at the end of a harvest. A zero ratio disables the check.
func checkSeen(source string, seen, total int64, ratio float64) error {
	if seen >= total {
		return nil
	}
	missing := total - seen
	if ratio > 0 && float64(missing) > ratio*float64(total) {
		return fmt.Errorf("%s: harvest incomplete, seen=%d, total=%d", source, seen, total)
	}
	log.WithFields(log.Fields{
		"source": source,
		"seen":   seen,
		"total":  total,
	}).Warn("assuming ok to skip missing records")
	return nil
}
