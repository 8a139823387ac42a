// Package sequence provides a forward-only cursor over one sorted run that
// always holds the next line in memory.
package sequence

import (
	"errors"
	"fmt"

	"github.com/davidvella/xsort/run"
)

var ErrExhausted = errors.New("sequence: exhausted")

// Sequence caches the head line of a run. It owns the run.Reader it wraps.
type Sequence struct {
	reader    run.Reader
	handle    run.Handle
	head      string
	exhausted bool
	closed    bool
}

// New wraps reader and eagerly reads the first line, so a run without lines
// starts exhausted. The reader is closed if that first read fails.
func New(h run.Handle, reader run.Reader) (*Sequence, error) {
	s := &Sequence{reader: reader, handle: h}
	if err := s.advance(); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// Handle returns the run the sequence reads.
func (s *Sequence) Handle() run.Handle {
	return s.handle
}

func (s *Sequence) Exhausted() bool {
	return s.exhausted
}

// Peek returns the head line. It must not be called once exhausted.
func (s *Sequence) Peek() string {
	return s.head
}

// Pop returns the head line and reads the next one.
func (s *Sequence) Pop() (string, error) {
	if s.exhausted {
		return "", ErrExhausted
	}
	line := s.head
	if err := s.advance(); err != nil {
		return "", err
	}
	return line, nil
}

func (s *Sequence) advance() error {
	line, ok, err := s.reader.ReadLine()
	if err != nil {
		return fmt.Errorf("sequence: failed to read run %d: %w", s.handle.ID, err)
	}
	if !ok {
		s.head = ""
		s.exhausted = true
		return nil
	}
	s.head = line
	return nil
}

// Close releases the underlying reader. Calling it again is a no-op.
func (s *Sequence) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.reader.Close()
}
