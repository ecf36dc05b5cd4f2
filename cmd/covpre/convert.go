package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	"github.com/miku/covpre/convert"
	"github.com/miku/covpre/pproc/record"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a raw feed to normalized JSON lines",
	Long: `Convert reads a raw feed, as cached by harvest, from a file or stdin and
writes one normalized record per line, including the fields used for
classification. Files ending in .zst are decompressed.

    $ covpre convert -s crossref ~/.local/share/covpre/feeds/crossref-2020-01-01-2020-06-30.jsonl.zst`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("source", "s", "", "source format: crossref, datacite, arxiv or repec")
	convertCmd.Flags().IntP("workers", "w", 0, "number of workers")
	rootCmd.AddCommand(convertCmd)
}

func openFeed(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(args[0], ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdFile{Decoder: dec, f: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

func runConvert(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("source")
	n, ok := convert.ForSource(name)
	if !ok {
		return fmt.Errorf("unknown source format: %q", name)
	}
	workers, _ := cmd.Flags().GetInt("workers")
	opts := []record.ProcessorOption{record.WithWorkers(workers)}
	if name == "repec" {
		opts = append(opts, record.WithSplitFunc(record.TagSplitter("record")))
	}
	rc, err := openFeed(args)
	if err != nil {
		return err
	}
	defer rc.Close()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var converted, skipped atomic.Int64
	proc := record.NewProcessor(opts...)
	err = proc.Process(ctx, rc, cmd.OutOrStdout(), func(p []byte) ([]byte, error) {
		h, err := n.Normalize(p)
		if convert.IsSkip(err) {
			skipped.Add(1)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		converted.Add(1)
		b, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	})
	log.WithFields(log.Fields{
		"source":    name,
		"converted": converted.Load(),
		"skipped":   skipped.Load(),
	}).Info("convert done")
	return err
}
