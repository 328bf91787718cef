// Package parallel provides a bounded, context-aware parallel map over
// iterator streams.
package parallel

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"
)

type result[D any] struct {
	d D
	e error
}

// Map runs mapFunc over the elements of an input iterator with at most limit
// workers and yields the results in completion order. Errors carried by the
// input stream are forwarded to the output stream untouched; canceling the
// context ends the processing. Typical usage:
//
//	for d, err := range parallel.NewMap(ctx, limit, f).Iter(input) { ... }
type Map[E, D any] struct {
	parentCtx    context.Context
	cancelParent context.CancelFunc
	g            *errgroup.Group
	gctx         context.Context
	mapped       chan result[D]
	mapFunc      func(context.Context, E) (D, error)
}

func NewMap[E, D any](parentCtx context.Context, limit int, mapFunc func(context.Context, E) (D, error)) *Map[E, D] {
	parentCtx, cancelParent := context.WithCancel(parentCtx)
	g, gctx := errgroup.WithContext(parentCtx)
	// one extra slot for the goroutine feeding the group
	g.SetLimit(limit + 1)

	return &Map[E, D]{
		parentCtx:    parentCtx,
		cancelParent: cancelParent,
		g:            g,
		gctx:         gctx,
		mapped:       make(chan result[D], limit),
		mapFunc:      mapFunc,
	}
}

func (m *Map[E, D]) goWorkers(seq iter.Seq2[E, error]) {
	m.g.Go(func() error {
		for entry, inErr := range seq {
			if inErr != nil {
				select {
				case <-m.gctx.Done():
					return m.gctx.Err()
				case m.mapped <- result[D]{e: inErr}:
				}
				continue
			}
			m.g.Go(func() error {
				d, mapErr := m.mapFunc(m.gctx, entry)
				select {
				case <-m.gctx.Done():
					return m.gctx.Err()
				case m.mapped <- result[D]{d: d, e: mapErr}:
				}
				return nil
			})
		}
		return nil
	})
}

// Iter consumes seq and yields one (result, error) pair per input element.
// It returns early when the context is canceled or the consumer stops.
func (m *Map[E, D]) Iter(seq iter.Seq2[E, error]) iter.Seq2[D, error] {
	return func(yield func(D, error) bool) {
		defer m.cancelParent()
		m.goWorkers(seq)

		go func() {
			_ = m.g.Wait()
			close(m.mapped)
		}()

		for r := range m.mapped {
			if m.parentCtx.Err() != nil {
				return
			}
			if !yield(r.d, r.e) {
				return
			}
		}
	}
}
