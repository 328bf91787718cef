// Package scan feeds walked entries through every registered detector with a
// bounded amount of parallelism.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/certhound/certhound/internal/log"
	"github.com/certhound/certhound/internal/model"
	"github.com/certhound/certhound/internal/parallel"
	"github.com/certhound/certhound/internal/walk"
)

// Detector inspects a blob and returns its detections, or model.ErrNoMatch
// when the blob is not its business.
type Detector interface {
	Detect(ctx context.Context, b []byte, path string) ([]model.Detection, error)
}

// skipIfBigger caps how much of a file is read and detected. Certificates
// and keystores are tiny; anything beyond the cap is not worth the memory.
const skipIfBigger = 10 * 1024 * 1024

// Scan runs detectors over entries. Read buffers are pooled, one per worker.
type Scan struct {
	limit          int
	skipIfBigger   int64
	detectors      []Detector
	pool           sync.Pool
	poolNewCounter atomic.Int32
	poolPutCounter atomic.Int32
}

// Stats expose buffer pool counters, used to verify buffer reuse in tests.
type Stats struct {
	PoolNewCounter int
	PoolPutCounter int
}

func New(limit int, detectors []Detector) *Scan {
	s := &Scan{
		limit:        limit,
		skipIfBigger: skipIfBigger,
		detectors:    detectors,
	}
	s.pool = sync.Pool{
		New: func() any {
			s.poolNewCounter.Add(1)
			b := make([]byte, skipIfBigger)
			return &b
		},
	}
	return s
}

// Do reads the content of the seq iterator and runs the detectors on every
// entry:
//  1. entries with a walk or stat error are passed through as errors
//  2. entries bigger than the cap yield model.ErrTooBig
//  3. everything else goes to the worker pool
//
// The returned iterator yields detections, or an Open/Read error, or
// model.ErrNoMatch when no detector matched.
func (s *Scan) Do(parentCtx context.Context, seq iter.Seq2[walk.Entry, error]) iter.Seq2[[]model.Detection, error] {
	return parallel.NewMap(parentCtx, s.limit, s.scan).Iter(seq)
}

func (s *Scan) scan(ctx context.Context, entry walk.Entry) ([]model.Detection, error) {
	ctx = log.ContextAttrs(ctx, slog.String("path", entry.Path()))
	slog.DebugContext(ctx, "scanning")
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	info, err := entry.Stat()
	if err != nil {
		return nil, fmt.Errorf("scan Stat: %w", err)
	}
	if info.Size() > s.skipIfBigger {
		slog.DebugContext(ctx, "scanning skipped, too big file", "size", info.Size())
		return nil, fmt.Errorf("entry too big (%d bytes): %w", info.Size(), model.ErrTooBig)
	}

	f, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("scan Open: %w", err)
	}
	defer func() {
		_ = f.Close() // ignoring close error for a read-only scan
	}()

	bp := s.pool.Get().(*[]byte)
	defer func() {
		s.poolPutCounter.Add(1)
		s.pool.Put(bp)
	}()

	buf := *bp
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("scan Read: %w", err)
	}
	// IMPORTANT: data must be passed as buf[:n] otherwise data from a
	// previous file would leak into this one
	buf = buf[:n]

	var detectionErrors []error
	res := make([]model.Detection, 0, len(s.detectors))
	for _, detector := range s.detectors {
		dctx := ctx
		if ld, ok := detector.(interface{ LogAttrs() []slog.Attr }); ok {
			dctx = log.ContextAttrs(dctx, ld.LogAttrs()...)
		}

		d, err := detector.Detect(dctx, buf, entry.Path())
		switch {
		case err == nil:
			res = append(res, d...)
		case errors.Is(err, model.ErrNoMatch):
			// ignore ErrNoMatch
		default:
			detectionErrors = append(detectionErrors, err)
		}
	}

	if len(detectionErrors) > 0 {
		return nil, errors.Join(detectionErrors...)
	}
	if len(res) == 0 {
		return nil, model.ErrNoMatch
	}
	return res, nil
}

func (s *Scan) Stats() Stats {
	return Stats{
		PoolNewCounter: int(s.poolNewCounter.Load()),
		PoolPutCounter: int(s.poolPutCounter.Load()),
	}
}
