// Package record runs a function over raw records read from a stream, in
// parallel. Records are delimited by a bufio.SplitFunc, lines by default.
package record

import (
	"bufio"
	"context"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxBufferSize = 1 << 16 // 64KB, initial buffer
	defaultMaxTokenSize  = 1 << 26 // 64MB, largest single record
)

// ProcessFunc transforms a single record. A nil result is dropped.
type ProcessFunc func([]byte) ([]byte, error)

// EachFunc is called for every record, concurrently.
type EachFunc func([]byte) error

// ProcessorOption allows configuration of the Processor
type ProcessorOption func(*Processor)

// WithWorkers sets the number of worker goroutines
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.numWorkers = n
		}
	}
}

// WithMaxTokenSize sets the maximum size of a single record.
func WithMaxTokenSize(size int) ProcessorOption {
	return func(p *Processor) {
		if size > 0 {
			p.maxTokenSize = size
		}
	}
}

// WithMaxBufferSize sets the initial buffer size of the scanner.
func WithMaxBufferSize(size int) ProcessorOption {
	return func(p *Processor) {
		if size > 0 {
			p.maxBufferSize = size
		}
	}
}

// WithSplitFunc sets the record delimiter.
func WithSplitFunc(f bufio.SplitFunc) ProcessorOption {
	return func(p *Processor) {
		if f != nil {
			p.splitFunc = f
		}
	}
}

// Processor handles parallel processing of records.
type Processor struct {
	splitFunc     bufio.SplitFunc
	numWorkers    int
	maxBufferSize int
	maxTokenSize  int
}

// NewProcessor creates a new Processor that by default splits on lines.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		splitFunc:     bufio.ScanLines,
		numWorkers:    runtime.NumCPU(),
		maxBufferSize: defaultMaxBufferSize,
		maxTokenSize:  defaultMaxTokenSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxTokenSize < p.maxBufferSize {
		p.maxTokenSize = p.maxBufferSize
	}
	return p
}

// Workers returns the number of workers.
func (p *Processor) Workers() int {
	return p.numWorkers
}

// Each calls fn for each non-empty record of r. Calls happen concurrently and
// in no particular order. The first error stops processing.
func (p *Processor) Each(ctx context.Context, r io.Reader, fn EachFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(p.splitFunc)
	scanner.Buffer(make([]byte, 0, p.maxBufferSize), p.maxTokenSize)
	workChan := make(chan []byte, p.numWorkers*2)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(workChan)
		for scanner.Scan() {
			token := scanner.Bytes()
			if len(token) == 0 {
				continue
			}
			data := make([]byte, len(token))
			copy(data, token)
			select {
			case workChan <- data:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})
	for i := 0; i < p.numWorkers; i++ {
		g.Go(func() error {
			for data := range workChan {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(data); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Process applies f to each record and writes the results to w.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer, f ProcessFunc) error {
	var (
		bw      = bufio.NewWriter(w)
		writeMu sync.Mutex
	)
	err := p.Each(ctx, r, func(data []byte) error {
		result, err := f(data)
		if err != nil || result == nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		_, err = bw.Write(result)
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
