package lineio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

const (
	// Terminator ends every line written by a Writer.
	Terminator = '\n'

	defaultBufSize = 64 * 1024
)

var ErrClosed = errors.New("lineio: writer already closed")

// Reader reads lines from an underlying io.Reader.
type Reader struct {
	r   *bufio.Reader
	eof bool
}

func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, defaultBufSize)
}

func NewReaderSize(r io.Reader, size int) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, size)}
}

// ReadLine returns the next line without its terminator. A trailing carriage
// return is removed as well. ok is false once the input is exhausted; a final
// line lacking a terminator is still returned.
func (lr *Reader) ReadLine() (line string, ok bool, err error) {
	if lr.eof {
		return "", false, nil
	}

	s, err := lr.r.ReadString(Terminator)
	switch {
	case errors.Is(err, io.EOF):
		lr.eof = true
		if s == "" {
			return "", false, nil
		}
	case err != nil:
		return "", false, fmt.Errorf("lineio: failed to read line: %w", err)
	default:
		s = s[:len(s)-1]
	}

	return strings.TrimSuffix(s, "\r"), true, nil
}

// Seq creates an iterator over the lines of r. Iteration stops at the first
// error, which is yielded with an empty line.
func Seq(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		lr := NewReader(r)
		for {
			line, ok, err := lr.ReadLine()
			if err != nil {
				yield("", err)
				return
			}
			if !ok || !yield(line, nil) {
				return
			}
		}
	}
}

// ReadLines reads all lines of r into a slice.
func ReadLines(r io.Reader) ([]string, error) {
	lines := make([]string, 0, 1)
	for line, err := range Seq(r) {
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Writer writes terminated lines through a buffer.
type Writer struct {
	w      io.Writer
	bw     *bufio.Writer
	closed bool
}

func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, defaultBufSize)
}

func NewWriterSize(w io.Writer, size int) *Writer {
	return &Writer{w: w, bw: bufio.NewWriterSize(w, size)}
}

// WriteLine writes line followed by the terminator. The line must not contain
// a terminator itself.
func (lw *Writer) WriteLine(line string) error {
	if lw.closed {
		return ErrClosed
	}
	if _, err := lw.bw.WriteString(line); err != nil {
		return fmt.Errorf("lineio: failed to write line: %w", err)
	}
	if err := lw.bw.WriteByte(Terminator); err != nil {
		return fmt.Errorf("lineio: failed to write terminator: %w", err)
	}
	return nil
}

func (lw *Writer) Flush() error {
	if lw.closed {
		return ErrClosed
	}
	if err := lw.bw.Flush(); err != nil {
		return fmt.Errorf("lineio: failed to flush: %w", err)
	}
	return nil
}

// Close flushes buffered lines and closes the underlying writer when it is an
// io.Closer. The underlying writer is closed even when the flush fails.
func (lw *Writer) Close() error {
	if lw.closed {
		return ErrClosed
	}
	flushErr := lw.Flush()
	lw.closed = true

	var closeErr error
	if c, ok := lw.w.(io.Closer); ok {
		closeErr = c.Close()
	}
	return errors.Join(flushErr, closeErr)
}

// Size is the number of bytes line occupies once written.
func Size(line string) int64 {
	return int64(len(line)) + 1
}
