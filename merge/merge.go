// Package merge performs the k-way merge of sorted runs into one ordered
// stream of lines.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davidvella/xsort/lineio"
	"github.com/davidvella/xsort/order"
	"github.com/davidvella/xsort/run"
	"github.com/davidvella/xsort/sequence"
	"go.uber.org/zap"
)

// cancelCheckInterval is how many lines are written between context checks.
const cancelCheckInterval = 1024

// Stats describes a finished merge.
type Stats struct {
	// Runs is the number of runs merged.
	Runs int
	// Lines is the number of lines written.
	Lines int64
	// MaxFrontier is the largest number of sequences held at once.
	MaxFrontier int
}

// Merger merges runs read from a Store.
type Merger struct {
	store       run.Store
	newFrontier NewFrontierFunc
	logger      *zap.Logger
	observe     func(Stats)
}

// Option configures a Merger.
type Option func(*Merger)

// WithFrontier sets the structure used to pick the next line.
func WithFrontier(f NewFrontierFunc) Option {
	return func(m *Merger) {
		m.newFrontier = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Merger) {
		m.logger = l
	}
}

// WithObserver registers a function called with the stats of every
// successful merge.
func WithObserver(f func(Stats)) Option {
	return func(m *Merger) {
		m.observe = f
	}
}

func NewMerger(store run.Store, opts ...Option) *Merger {
	m := &Merger{
		store:       store,
		newFrontier: NewHeapFrontier,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Merge writes the lines of all runs to out in non-decreasing order under cmp
// and returns how many lines were written. Every run is deleted once read to
// the end. On failure all open runs are closed, the runs not yet consumed are
// deleted on a best-effort basis and out may hold a partial result.
func (m *Merger) Merge(ctx context.Context, runs []run.Handle, cmp order.Func, out io.Writer) (n int64, err error) {
	var (
		open     []*sequence.Sequence
		consumed = make(map[uint64]bool, len(runs))
	)

	defer func() {
		for _, s := range open {
			if closeErr := s.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("merge: failed to close run %d: %w", s.Handle().ID, closeErr)
			}
		}
		if err != nil {
			m.discard(runs, consumed)
		}
	}()

	active := make([]*sequence.Sequence, 0, len(runs))
	for _, h := range runs {
		r, err := m.store.Open(ctx, h)
		if err != nil {
			return 0, fmt.Errorf("merge: failed to open run %d: %w", h.ID, err)
		}
		s, err := sequence.New(h, r)
		if err != nil {
			return 0, fmt.Errorf("merge: failed to start run %d: %w", h.ID, err)
		}
		open = append(open, s)

		if s.Exhausted() {
			if err := m.retire(ctx, s, consumed); err != nil {
				return 0, err
			}
			continue
		}
		active = append(active, s)
	}

	var (
		f     = m.newFrontier(active, cmp)
		w     = lineio.NewWriter(out)
		stats = Stats{Runs: len(runs), MaxFrontier: f.Len()}
	)

	for f.Len() > 0 {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, fmt.Errorf("merge: interrupted: %w", err)
			}
		}
		stats.MaxFrontier = max(stats.MaxFrontier, f.Len())

		s := f.Min()
		line, err := s.Pop()
		if err != nil {
			return n, fmt.Errorf("merge: %w", err)
		}
		if err := w.WriteLine(line); err != nil {
			return n, fmt.Errorf("merge: failed to write output: %w", err)
		}
		n++

		if !s.Exhausted() {
			f.Fix()
			continue
		}
		f.Retire()
		if err := m.retire(ctx, s, consumed); err != nil {
			return n, err
		}
	}

	if err := w.Flush(); err != nil {
		return n, fmt.Errorf("merge: failed to flush output: %w", err)
	}

	stats.Lines = n
	m.logger.Info("runs merged",
		zap.Int("runs", stats.Runs),
		zap.Int64("lines", stats.Lines),
		zap.Int("maxFrontier", stats.MaxFrontier))
	if m.observe != nil {
		m.observe(stats)
	}
	return n, nil
}

// retire closes an exhausted sequence and deletes its run.
func (m *Merger) retire(ctx context.Context, s *sequence.Sequence, consumed map[uint64]bool) error {
	h := s.Handle()
	if err := s.Close(); err != nil {
		return fmt.Errorf("merge: failed to close run %d: %w", h.ID, err)
	}
	if err := m.store.Delete(ctx, h); err != nil {
		return fmt.Errorf("merge: failed to delete run %d: %w", h.ID, err)
	}
	consumed[h.ID] = true
	return nil
}

// discard deletes the runs that were not consumed.
func (m *Merger) discard(runs []run.Handle, consumed map[uint64]bool) {
	var errs []error
	for _, h := range runs {
		if consumed[h.ID] {
			continue
		}
		if err := m.store.Delete(context.Background(), h); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		m.logger.Warn("failed to delete runs", zap.Error(err))
	}
}
