package merge_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davidvella/xsort/run"
)

var errMock = errors.New("mock failure")

// MockStore implements run.Store for testing. Runs are created with Add.
type MockStore struct {
	mu        sync.Mutex
	runs      map[uint64][]string
	readers   []*mockReader
	openErr   map[uint64]error
	readErrAt map[uint64]int
	deleteErr error
	deleted   []uint64
}

func NewMockStore() *MockStore {
	return &MockStore{
		runs:      make(map[uint64][]string),
		openErr:   make(map[uint64]error),
		readErrAt: make(map[uint64]int),
	}
}

// Add stores lines as a new run and returns its handle.
func (m *MockStore) Add(lines ...string) run.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uint64(len(m.runs) + len(m.deleted) + 1)
	m.runs[id] = lines
	return run.Handle{ID: id, Name: fmt.Sprint(id), Lines: int64(len(lines))}
}

func (m *MockStore) Create(_ context.Context) (run.Writer, error) {
	return nil, errors.New("not supported")
}

func (m *MockStore) Open(_ context.Context, h run.Handle) (run.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.openErr[h.ID]; err != nil {
		return nil, err
	}
	lines, ok := m.runs[h.ID]
	if !ok {
		return nil, fmt.Errorf("run %d not found", h.ID)
	}
	r := &mockReader{lines: lines, failAt: m.readErrAt[h.ID]}
	m.readers = append(m.readers, r)
	return r, nil
}

func (m *MockStore) Delete(_ context.Context, h run.Handle) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, h.ID)
	m.deleted = append(m.deleted, h.ID)
	return nil
}

func (m *MockStore) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

// AllClosed reports whether every opened reader was closed exactly once.
func (m *MockStore) AllClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.readers {
		if r.closed != 1 {
			return false
		}
	}
	return true
}

type mockReader struct {
	lines  []string
	failAt int
	reads  int
	closed int
}

func (r *mockReader) ReadLine() (string, bool, error) {
	r.reads++
	if r.failAt > 0 && r.reads == r.failAt {
		return "", false, errMock
	}
	if len(r.lines) == 0 {
		return "", false, nil
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, true, nil
}

func (r *mockReader) Close() error {
	r.closed++
	return nil
}

type failingWriter struct{}

func (failingWriter) Write(_ []byte) (int, error) {
	return 0, errMock
}
