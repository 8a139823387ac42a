// Package pebble stores runs as key ranges of a scratch Pebble database.
//
// Every line is one key: the run ID followed by the line's position in the
// run, both big-endian, so a bounded iterator replays a run in write order.
package pebble

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/davidvella/xsort/lineio"
	"github.com/davidvella/xsort/run"
	"go.uber.org/zap"
)

const (
	defaultCacheSize = 8 << 20
	maxBatchSize     = 4 << 20
	keySize          = 16
)

var _ run.Store = &Storage{}

// Storage implements run.Store using Pebble.
type Storage struct {
	db    *pebble.DB
	fs    vfs.FS
	dir   string
	owned bool
	next  atomic.Uint64
}

// StorageOptions configures the storage.
type StorageOptions struct {
	// Dir holds the database. NewTempStorage ignores it.
	Dir string
	// FS defaults to the operating system filesystem.
	FS        vfs.FS
	CacheSize int64
	Logger    *zap.Logger
}

// NewStorage opens a database in opts.Dir.
func NewStorage(opts StorageOptions) (*Storage, error) {
	if opts.Dir == "" {
		return nil, errors.New("pebble: no directory given")
	}
	return open(opts, false)
}

// NewTempStorage opens a database in a new temporary directory that Close
// removes.
func NewTempStorage(opts StorageOptions) (*Storage, error) {
	dir, err := os.MkdirTemp("", "xsort-pebble-")
	if err != nil {
		return nil, fmt.Errorf("pebble: failed to create temp dir: %w", err)
	}
	opts.Dir = dir
	opts.FS = vfs.Default

	s, err := open(opts, true)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return s, nil
}

func open(opts StorageOptions, owned bool) (*Storage, error) {
	if opts.FS == nil {
		opts.FS = vfs.Default
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache := pebble.NewCache(opts.CacheSize)
	defer cache.Unref()

	db, err := pebble.Open(opts.Dir, &pebble.Options{
		FS:         opts.FS,
		Cache:      cache,
		DisableWAL: true,
		Logger:     opts.Logger.Named("pebble").Sugar(),
	})
	if err != nil {
		return nil, fmt.Errorf("pebble: failed to open %s: %w", opts.Dir, err)
	}

	return &Storage{db: db, fs: opts.FS, dir: opts.Dir, owned: owned}, nil
}

func (p *Storage) Create(_ context.Context) (run.Writer, error) {
	return &writer{
		db:    p.db,
		batch: p.db.NewBatch(),
		id:    p.next.Add(1),
	}, nil
}

func (p *Storage) Open(_ context.Context, h run.Handle) (run.Reader, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix(h.ID),
		UpperBound: prefix(h.ID + 1),
	})
	if err != nil {
		return nil, fmt.Errorf("pebble: failed to iterate over run %d: %w", h.ID, err)
	}
	return &reader{iter: iter}, nil
}

func (p *Storage) Delete(_ context.Context, h run.Handle) error {
	if err := p.db.DeleteRange(prefix(h.ID), prefix(h.ID+1), pebble.NoSync); err != nil {
		return fmt.Errorf("pebble: failed to delete run %d: %w", h.ID, err)
	}
	return nil
}

// Close closes the database and removes its directory if the Storage
// created it.
func (p *Storage) Close() error {
	err := p.db.Close()
	if p.owned {
		err = errors.Join(err, p.fs.RemoveAll(p.dir))
	}
	return err
}

func prefix(id uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, keySize), id)
}

func key(id, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(prefix(id), seq)
}

type writer struct {
	db        *pebble.DB
	batch     *pebble.Batch
	id        uint64
	lines     int64
	bytes     int64
	flushed   bool
	committed bool
}

func (w *writer) WriteLine(line string) error {
	if w.batch == nil {
		return lineio.ErrClosed
	}
	if err := w.batch.Set(key(w.id, uint64(w.lines)), []byte(line), nil); err != nil {
		return fmt.Errorf("pebble: failed to write line: %w", err)
	}
	w.lines++
	w.bytes += lineio.Size(line)

	if w.batch.Len() > maxBatchSize {
		if err := w.batch.Commit(pebble.NoSync); err != nil {
			return fmt.Errorf("pebble: failed to commit batch: %w", err)
		}
		w.flushed = true
		_ = w.batch.Close()
		w.batch = w.db.NewBatch()
	}
	return nil
}

func (w *writer) Commit() (run.Handle, error) {
	if w.batch == nil {
		return run.Handle{}, lineio.ErrClosed
	}
	err := w.batch.Commit(pebble.NoSync)
	err = errors.Join(err, w.batch.Close())
	w.batch = nil
	if err != nil {
		return run.Handle{}, fmt.Errorf("pebble: failed to commit run %d: %w", w.id, err)
	}
	w.committed = true
	return run.Handle{ID: w.id, Name: fmt.Sprintf("run-%d", w.id), Lines: w.lines, Bytes: w.bytes}, nil
}

func (w *writer) Abort() error {
	if w.committed {
		return nil
	}
	var err error
	if w.batch != nil {
		err = w.batch.Close()
		w.batch = nil
	}
	// A failed Commit may have applied part of the run.
	if w.flushed || w.lines > 0 {
		err = errors.Join(err, w.db.DeleteRange(prefix(w.id), prefix(w.id+1), pebble.NoSync))
	}
	return err
}

type reader struct {
	iter    *pebble.Iterator
	started bool
}

func (r *reader) ReadLine() (string, bool, error) {
	var valid bool
	if r.started {
		valid = r.iter.Next()
	} else {
		valid = r.iter.First()
		r.started = true
	}
	if !valid {
		if err := r.iter.Error(); err != nil {
			return "", false, fmt.Errorf("pebble: failed to read run: %w", err)
		}
		return "", false, nil
	}
	return string(r.iter.Value()), true, nil
}

func (r *reader) Close() error {
	return r.iter.Close()
}
