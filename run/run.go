// Package run splits a stream of lines into sorted runs held in a Store.
package run

import (
	"context"
)

// Handle identifies a persisted, immutable and sorted run.
type Handle struct {
	// ID is unique within the Store that created the run.
	ID uint64
	// Name locates the run inside its Store.
	Name string
	// Lines is the number of lines in the run.
	Lines int64
	// Bytes is the stored size of the run.
	Bytes int64
}

// Store persists runs. Each run is written once, read once and deleted.
type Store interface {
	// Create starts a new run.
	Create(ctx context.Context) (Writer, error)
	// Open opens a committed run for reading.
	Open(ctx context.Context, h Handle) (Reader, error)
	// Delete removes a committed run.
	Delete(ctx context.Context, h Handle) error
}

// Writer appends lines to a run that is not yet committed.
type Writer interface {
	WriteLine(line string) error
	// Commit makes the run durable and returns its handle.
	Commit() (Handle, error)
	// Abort releases the writer and discards its data. It is safe to call
	// after a failed Commit and is a no-op after a successful one.
	Abort() error
}

// Reader reads the lines of one run in order.
type Reader interface {
	// ReadLine returns ok == false once the run is exhausted.
	ReadLine() (line string, ok bool, err error)
	Close() error
}

// Information describes the lines buffered for the run being built.
type Information struct {
	Lines          int
	EstimatedBytes int64
}

// Strategy decides whether the buffered lines should be flushed to a new run
// before more input is read.
type Strategy interface {
	ShouldFlush(information Information) bool
}
