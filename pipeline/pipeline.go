// Package pipeline runs harvest, conversion, filtering and deduplication for
// each source and merges the results into a single table.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/miku/covpre/atomicfile"
	"github.com/miku/covpre/convert"
	"github.com/miku/covpre/dataset"
	"github.com/miku/covpre/dedup"
	"github.com/miku/covpre/pproc/record"
	"github.com/miku/covpre/schema/preprint"
	"github.com/miku/covpre/topic"
	log "github.com/sirupsen/logrus"
)

// Dater assigns corrected posting dates to records, leaving a zero date
// where none could be found.
type Dater interface {
	Redate(ctx context.Context, records []preprint.Record) (int, error)
}

// Stats counts records of a source after each step.
type Stats struct {
	Source     string `json:"source"`
	Raw        int    `json:"raw"`
	Converted  int    `json:"converted"`
	Skipped    int    `json:"skipped"`
	Classified int    `json:"classified"`
	OnTopic    int    `json:"on_topic"`
	Redated    int    `json:"redated"`
	Undated    int    `json:"undated"`
	Kept       int    `json:"kept"`
}

// Summary of a run.
type Summary struct {
	Run     string  `json:"run"`
	Sources []Stats `json:"sources"`
	Total   int     `json:"total"`
}

// Pipeline configures a run.
type Pipeline struct {
	Sources []Source
	Topic   *topic.Filter
	Window  dataset.Window
	// FeedDir keeps compressed raw feeds; empty means in memory only.
	FeedDir string
	// Dater, if set, re-dates records of the repositories in RedateSources.
	Dater         Dater
	RedateSources []string
	Workers       int
	RunID         string
}

func (p *Pipeline) logger() *log.Entry {
	return log.WithField("run", p.RunID)
}

// FeedFile returns the path of the cached raw feed of a source.
func (p *Pipeline) FeedFile(s Source) string {
	name := fmt.Sprintf("%s-%s-%s.%s.zst",
		s.Name,
		p.Window.Start.Format(preprint.DateLayout),
		p.Window.End.Format(preprint.DateLayout),
		s.Ext)
	return filepath.Join(p.FeedDir, name)
}

// harvestFile harvests into a compressed file, if it does not exist yet.
func (p *Pipeline) harvestFile(ctx context.Context, s Source, name string) error {
	if _, err := os.Stat(name); err == nil {
		p.logger().WithFields(log.Fields{"source": s.Name, "file": name}).Info("using cached feed")
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}
	f, err := atomicfile.New(name)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Abort()
		return err
	}
	if err := s.Harvester.Harvest(ctx, enc, p.Window.Start, p.Window.End); err != nil {
		enc.Close()
		f.Abort()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}

// Feed returns the raw feed of a source, harvesting it if necessary.
func (p *Pipeline) Feed(ctx context.Context, s Source) (io.ReadCloser, error) {
	if p.FeedDir == "" {
		var buf bytes.Buffer
		if err := s.Harvester.Harvest(ctx, &buf, p.Window.Start, p.Window.End); err != nil {
			return nil, err
		}
		return io.NopCloser(&buf), nil
	}
	name := p.FeedFile(s)
	if err := p.harvestFile(ctx, s, name); err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
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

// sortFull orders records by all fields, so that later steps see the same
// input regardless of conversion order.
func sortFull(records []preprint.Record) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case !a.PostedDate.Equal(b.PostedDate):
			return a.PostedDate.Before(b.PostedDate)
		case a.Source != b.Source:
			return a.Source < b.Source
		case a.Identifier != b.Identifier:
			return a.Identifier < b.Identifier
		case a.Title != b.Title:
			return a.Title < b.Title
		}
		return a.Abstract < b.Abstract
	})
}

// convert turns a raw feed into classified, on topic records.
func (p *Pipeline) convert(ctx context.Context, s Source, r io.Reader, stats *Stats) ([]preprint.Record, error) {
	var (
		mu    sync.Mutex
		batch []preprint.Record
		proc  = record.NewProcessor(record.WithWorkers(p.Workers), record.WithSplitFunc(s.Split))
	)
	err := proc.Each(ctx, r, func(b []byte) error {
		h, err := s.Normalizer.Normalize(b)
		mu.Lock()
		defer mu.Unlock()
		stats.Raw++
		if err != nil {
			if convert.IsSkip(err) {
				stats.Skipped++
				return nil
			}
			return err
		}
		stats.Converted++
		label, ok := s.Classifier.Classify(h.Origin)
		if !ok {
			return nil
		}
		stats.Classified++
		h.Record.Source = label
		if p.Topic != nil && !p.Topic.Match(h.Record) {
			return nil
		}
		stats.OnTopic++
		batch = append(batch, h.Record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	sortFull(batch)
	return batch, nil
}

func (p *Pipeline) needsRedate(source string) bool {
	for _, s := range p.RedateSources {
		if s == source {
			return true
		}
	}
	return false
}

// redate replaces posting dates of the configured repositories and drops
// records, for which no date was found.
func (p *Pipeline) redate(ctx context.Context, batch []preprint.Record, stats *Stats) ([]preprint.Record, error) {
	if p.Dater == nil || len(p.RedateSources) == 0 {
		return batch, nil
	}
	var (
		idx    []int
		subset []preprint.Record
	)
	for i, r := range batch {
		if p.needsRedate(r.Source) {
			idx = append(idx, i)
			subset = append(subset, r)
		}
	}
	if len(subset) == 0 {
		return batch, nil
	}
	p.logger().WithFields(log.Fields{"source": stats.Source, "records": len(subset)}).Info("looking up landing page dates")
	n, err := p.Dater.Redate(ctx, subset)
	if err != nil {
		return nil, err
	}
	stats.Redated += n
	for k, i := range idx {
		batch[i] = subset[k]
	}
	result := batch[:0]
	for _, r := range batch {
		if !r.HasDate() {
			stats.Undated++
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// Batch harvests and processes a single source.
func (p *Pipeline) Batch(ctx context.Context, s Source) ([]preprint.Record, Stats, error) {
	stats := Stats{Source: s.Name}
	rc, err := p.Feed(ctx, s)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", s.Name, err)
	}
	defer rc.Close()
	batch, err := p.convert(ctx, s, rc, &stats)
	if err != nil {
		return nil, stats, err
	}
	if batch, err = p.redate(ctx, batch, &stats); err != nil {
		return nil, stats, err
	}
	batch = dedup.Batch(batch, s.VersionPattern)
	stats.Kept = len(batch)
	p.logger().WithFields(log.Fields{
		"source":     s.Name,
		"raw":        stats.Raw,
		"converted":  stats.Converted,
		"skipped":    stats.Skipped,
		"classified": stats.Classified,
		"on_topic":   stats.OnTopic,
		"redated":    stats.Redated,
		"undated":    stats.Undated,
		"kept":       stats.Kept,
	}).Info("batch done")
	return batch, stats, nil
}

// Run processes all sources in order and merges the batches.
func (p *Pipeline) Run(ctx context.Context) ([]preprint.Record, *Summary, error) {
	summary := &Summary{Run: p.RunID}
	var batches [][]preprint.Record
	for _, s := range p.Sources {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}
		batch, stats, err := p.Batch(ctx, s)
		summary.Sources = append(summary.Sources, stats)
		if err != nil {
			return nil, summary, err
		}
		batches = append(batches, batch)
	}
	records := dataset.Merge(p.Window, batches...)
	summary.Total = len(records)
	p.logger().WithField("total", summary.Total).Info("merge done")
	return records, summary, nil
}

// Export writes the table and its metadata sidecar to dir and returns the
// path of the table.
func Export(dir string, records []preprint.Record, m dataset.Metadata, compress bool) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	name := dataset.CSVName
	if compress {
		name += ".gz"
	}
	path := filepath.Join(dir, name)
	if err := dataset.WriteFile(path, records); err != nil {
		return "", err
	}
	if err := dataset.WriteMetadata(filepath.Join(dir, dataset.MetadataName), m); err != nil {
		return "", err
	}
	return path, nil
}
