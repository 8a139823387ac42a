package xsort

import (
	"github.com/davidvella/xsort/memory"
	"github.com/davidvella/xsort/merge"
	"github.com/davidvella/xsort/order"
	"github.com/davidvella/xsort/run"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// options defines all configuration options for the sorter.
type options struct {
	// Ordering
	cmp order.Func // Comparator defining the output order

	// Run generation options
	maxRuns     int          // Upper bound used to size runs
	available   int64        // Memory budget in bytes, 0 to query the runtime
	strategy    run.Strategy // Extra flush policy
	parallelism int          // Goroutines sorting one buffer

	// Storage options
	store  run.Store // Run storage, a temp dir on fs when nil
	fs     afero.Fs
	atomic bool // Write SortFile output through a staging file

	// Merge options
	frontier merge.NewFrontierFunc
	observe  func(merge.Stats)

	logger *zap.Logger
}

// Option is a function that configures the sorter options.
type Option func(*options)

// WithComparator sets the ordering of the output. It is required.
func WithComparator(cmp order.Func) Option {
	return func(o *options) {
		o.cmp = cmp
	}
}

// WithMaxRuns sets the number of runs the sorter aims not to exceed.
func WithMaxRuns(n int) Option {
	return func(o *options) {
		o.maxRuns = n
	}
}

// WithAvailableMemory fixes the memory budget instead of querying it.
func WithAvailableMemory(bytes int64) Option {
	return func(o *options) {
		o.available = bytes
	}
}

// WithStrategy adds a flush strategy checked alongside the memory estimate.
func WithStrategy(strategy run.Strategy) Option {
	return func(o *options) {
		o.strategy = strategy
	}
}

// WithParallelism sets how many goroutines sort each buffer.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithStore sets where runs are kept. The caller owns the store.
func WithStore(store run.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithFs sets the filesystem used by SortFile and the default run store.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithAtomicOutput makes SortFile write to a staging file that replaces the
// output only once the sort succeeds.
func WithAtomicOutput(atomic bool) Option {
	return func(o *options) {
		o.atomic = atomic
	}
}

// WithFrontier sets the structure that selects the next line during a merge.
func WithFrontier(f merge.NewFrontierFunc) Option {
	return func(o *options) {
		o.frontier = f
	}
}

// WithMergeObserver registers a function receiving the stats of each merge.
func WithMergeObserver(f func(merge.Stats)) Option {
	return func(o *options) {
		o.observe = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		maxRuns:     memory.DefaultMaxRuns,
		parallelism: 1,
		fs:          afero.NewOsFs(),
		frontier:    merge.NewHeapFrontier,
		logger:      zap.NewNop(),
	}
}
