package xsort

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/davidvella/xsort/memory"
	"github.com/davidvella/xsort/merge"
	"github.com/davidvella/xsort/run"
	"github.com/davidvella/xsort/storage/local"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrNoComparator is returned by New when no comparator is configured.
var ErrNoComparator = errors.New("xsort: comparator is required")

// Sorter performs external sorts with a fixed configuration.
type Sorter struct {
	opts      options
	estimator memory.Estimator
}

// New creates a new sorter instance.
func New(opts ...Option) (*Sorter, error) {
	// Apply default options
	o := defaultOptions()

	// Apply user options
	for _, opt := range opts {
		opt(&o)
	}

	if o.cmp == nil {
		return nil, ErrNoComparator
	}
	if o.parallelism < 1 {
		o.parallelism = 1
	}
	if o.frontier == nil {
		o.frontier = merge.NewHeapFrontier
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	return &Sorter{opts: o, estimator: memory.NewEstimator()}, nil
}

// Sort writes the lines of in to out in order and returns the number of
// lines written. size is the input size in bytes and only guides run sizing.
func (s *Sorter) Sort(ctx context.Context, in io.Reader, size int64, out io.Writer) (n int64, err error) {
	start := time.Now()

	store, release, err := s.store()
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, release())
	}()

	available := s.opts.available
	if available <= 0 {
		available = memory.Available()
	}

	gen := run.NewGenerator(store,
		run.WithEstimator(s.estimator),
		run.WithStrategy(s.opts.strategy),
		run.WithParallelism(s.opts.parallelism),
		run.WithLogger(s.opts.logger.Named("run")),
	)
	runs, err := gen.Generate(ctx, in, size, s.opts.cmp, s.opts.maxRuns, available)
	if err != nil {
		return 0, fmt.Errorf("xsort: failed to generate runs: %w", err)
	}

	mergeOpts := []merge.Option{
		merge.WithFrontier(s.opts.frontier),
		merge.WithLogger(s.opts.logger.Named("merge")),
	}
	if s.opts.observe != nil {
		mergeOpts = append(mergeOpts, merge.WithObserver(s.opts.observe))
	}
	n, err = merge.NewMerger(store, mergeOpts...).Merge(ctx, runs, s.opts.cmp, out)
	if err != nil {
		return n, fmt.Errorf("xsort: failed to merge runs: %w", err)
	}

	s.opts.logger.Info("sort finished",
		zap.Int("runs", len(runs)),
		zap.Int64("lines", n),
		zap.Int64("bytes", size),
		zap.Duration("elapsed", time.Since(start)))
	return n, nil
}

// SortFile sorts the file at inputPath into outputPath, replacing any
// existing output. Sorting a file onto itself always goes through a staging
// file.
func (s *Sorter) SortFile(ctx context.Context, inputPath, outputPath string) (n int64, err error) {
	fs := s.opts.fs

	in, err := fs.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("xsort: failed to open input: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("xsort: failed to stat input: %w", err)
	}

	staged := s.opts.atomic || filepath.Clean(inputPath) == filepath.Clean(outputPath)

	var out afero.File
	if staged {
		out, err = afero.TempFile(fs, filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*.tmp")
	} else {
		out, err = fs.Create(outputPath)
	}
	if err != nil {
		return 0, fmt.Errorf("xsort: failed to create output: %w", err)
	}

	n, err = s.Sort(ctx, in, info.Size(), out)
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("xsort: failed to close output: %w", closeErr)
	}

	if !staged {
		return n, err
	}
	if err != nil {
		if rmErr := fs.Remove(out.Name()); rmErr != nil {
			s.opts.logger.Warn("failed to remove staging file", zap.String("path", out.Name()), zap.Error(rmErr))
		}
		return n, err
	}
	if err := fs.Rename(out.Name(), outputPath); err != nil {
		return n, errors.Join(fmt.Errorf("xsort: failed to publish output: %w", err), fs.Remove(out.Name()))
	}
	return n, nil
}

// store returns the configured store, or a temporary local one released by
// the returned function.
func (s *Sorter) store() (run.Store, func() error, error) {
	if s.opts.store != nil {
		return s.opts.store, func() error { return nil }, nil
	}

	st, err := local.NewTempStorage(s.opts.fs)
	if err != nil {
		return nil, nil, fmt.Errorf("xsort: failed to create run storage: %w", err)
	}
	return st, st.Close, nil
}
