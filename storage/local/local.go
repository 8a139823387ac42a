// Package local stores runs as files in a directory of an afero.Fs.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/davidvella/xsort/lineio"
	"github.com/davidvella/xsort/run"
	"github.com/spf13/afero"
)

const (
	// Prefix and Suffix surround the name of every run file.
	Prefix = "run-"
	Suffix = ".xsort"

	dirPattern = "xsort-"
)

var _ run.Store = &Storage{}

// Storage implements run.Store on a filesystem directory.
type Storage struct {
	fs      afero.Fs
	dir     string
	ownsDir bool
	next    atomic.Uint64
}

// NewLocalStorage stores runs in dir, which must exist.
func NewLocalStorage(fs afero.Fs, dir string) *Storage {
	return &Storage{fs: fs, dir: dir}
}

// NewTempStorage stores runs in a new temporary directory that Close removes.
func NewTempStorage(fs afero.Fs) (*Storage, error) {
	dir, err := afero.TempDir(fs, "", dirPattern)
	if err != nil {
		return nil, fmt.Errorf("local: failed to create temp dir: %w", err)
	}
	return &Storage{fs: fs, dir: dir, ownsDir: true}, nil
}

// Dir returns the directory holding the runs.
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) Create(_ context.Context) (run.Writer, error) {
	file, err := afero.TempFile(s.fs, s.dir, Prefix+"*"+Suffix)
	if err != nil {
		return nil, fmt.Errorf("local: failed to create run file: %w", err)
	}
	return &writer{
		fs:   s.fs,
		file: file,
		lw:   lineio.NewWriter(file),
		id:   s.next.Add(1),
	}, nil
}

func (s *Storage) Open(_ context.Context, h run.Handle) (run.Reader, error) {
	file, err := s.fs.Open(s.path(h))
	if err != nil {
		return nil, fmt.Errorf("local: failed to open run %s: %w", h.Name, err)
	}
	return &reader{file: file, lr: lineio.NewReader(file)}, nil
}

func (s *Storage) Delete(_ context.Context, h run.Handle) error {
	if err := s.fs.Remove(s.path(h)); err != nil {
		return fmt.Errorf("local: failed to delete run %s: %w", h.Name, err)
	}
	return nil
}

// List lists the run files currently stored.
func (s *Storage) List(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, Prefix) && strings.HasSuffix(name, Suffix) {
			files = append(files, name)
		}
	}
	return files, nil
}

// Close removes the directory if the Storage created it.
func (s *Storage) Close() error {
	if !s.ownsDir {
		return nil
	}
	if err := s.fs.RemoveAll(s.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local: failed to remove %s: %w", s.dir, err)
	}
	return nil
}

func (s *Storage) path(h run.Handle) string {
	return filepath.Join(s.dir, filepath.Base(h.Name))
}

type writer struct {
	fs        afero.Fs
	file      afero.File
	lw        *lineio.Writer
	id        uint64
	lines     int64
	bytes     int64
	closed    bool
	committed bool
}

func (w *writer) WriteLine(line string) error {
	if err := w.lw.WriteLine(line); err != nil {
		return err
	}
	w.lines++
	w.bytes += lineio.Size(line)
	return nil
}

func (w *writer) Commit() (run.Handle, error) {
	w.closed = true
	if err := w.lw.Close(); err != nil {
		return run.Handle{}, fmt.Errorf("local: failed to close run file: %w", err)
	}
	w.committed = true
	return run.Handle{
		ID:    w.id,
		Name:  filepath.Base(w.file.Name()),
		Lines: w.lines,
		Bytes: w.bytes,
	}, nil
}

func (w *writer) Abort() error {
	if w.committed {
		return nil
	}
	var closeErr error
	if !w.closed {
		w.closed = true
		closeErr = w.file.Close()
	}
	if err := w.fs.Remove(w.file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(closeErr, fmt.Errorf("local: failed to remove run file: %w", err))
	}
	return closeErr
}

type reader struct {
	file afero.File
	lr   *lineio.Reader
}

func (r *reader) ReadLine() (string, bool, error) {
	return r.lr.ReadLine()
}

func (r *reader) Close() error {
	return r.file.Close()
}
