package run_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davidvella/xsort/run"
)

var errStore = errors.New("store failure")

// MockStore implements run.Store in memory for testing.
type MockStore struct {
	mu        sync.Mutex
	next      uint64
	runs      map[uint64][]string
	aborted   int
	createErr error
	writeErr  error
	commitErr error
	deleteErr error
}

func NewMockStore() *MockStore {
	return &MockStore{runs: make(map[uint64][]string)}
}

func (m *MockStore) Create(_ context.Context) (run.Writer, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return &mockWriter{store: m, id: m.next}, nil
}

func (m *MockStore) Open(_ context.Context, h run.Handle) (run.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines, ok := m.runs[h.ID]
	if !ok {
		return nil, fmt.Errorf("run %d not found", h.ID)
	}
	return &mockReader{lines: lines}, nil
}

func (m *MockStore) Delete(_ context.Context, h run.Handle) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, h.ID)
	return nil
}

func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

type mockWriter struct {
	store *MockStore
	id    uint64
	lines []string
}

func (w *mockWriter) WriteLine(line string) error {
	if w.store.writeErr != nil {
		return w.store.writeErr
	}
	w.lines = append(w.lines, line)
	return nil
}

func (w *mockWriter) Commit() (run.Handle, error) {
	if w.store.commitErr != nil {
		return run.Handle{}, w.store.commitErr
	}
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.runs[w.id] = w.lines
	return run.Handle{ID: w.id, Name: fmt.Sprint(w.id), Lines: int64(len(w.lines))}, nil
}

func (w *mockWriter) Abort() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.aborted++
	return nil
}

type mockReader struct {
	lines []string
}

func (r *mockReader) ReadLine() (string, bool, error) {
	if len(r.lines) == 0 {
		return "", false, nil
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, true, nil
}

func (r *mockReader) Close() error {
	return nil
}
