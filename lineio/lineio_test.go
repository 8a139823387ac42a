package lineio_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/davidvella/xsort/lineio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errWrite = errors.New("its a me errorio")

type mockWriter struct {
	writeErr error
	closeErr error
	closed   bool
	buf      bytes.Buffer
}

func (w *mockWriter) Write(p []byte) (int, error) {
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	return w.buf.Write(p)
}

func (w *mockWriter) Close() error {
	w.closed = true
	return w.closeErr
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReader_ReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
		{
			name:  "terminated lines",
			input: "a\nb\nc\n",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "unterminated last line",
			input: "a\nb",
			want:  []string{"a", "b"},
		},
		{
			name:  "empty lines are kept",
			input: "\n\nx\n",
			want:  []string{"", "", "x"},
		},
		{
			name:  "carriage returns are stripped",
			input: "a\r\nb\r\n",
			want:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := lineio.NewReader(strings.NewReader(tt.input))
			got := []string{}
			for {
				line, ok, err := r.ReadLine()
				require.NoError(t, err)
				if !ok {
					break
				}
				got = append(got, line)
			}
			assert.Equal(t, tt.want, got)

			line, ok, err := r.ReadLine()
			assert.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, line)
		})
	}
}

func TestReader_ReadLineError(t *testing.T) {
	r := lineio.NewReader(&failingReader{data: []byte("first\nsec"), err: errWrite})

	line, ok, err := r.ReadLine()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", line)

	_, ok, err = r.ReadLine()
	assert.ErrorIs(t, err, errWrite)
	assert.False(t, ok)
}

func TestReadLines(t *testing.T) {
	lines, err := lineio.ReadLines(strings.NewReader("x\ny\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, lines)

	lines, err = lineio.ReadLines(&failingReader{data: []byte("x\n"), err: errWrite})
	assert.ErrorIs(t, err, errWrite)
	assert.Equal(t, []string{"x"}, lines)
}

func TestSeq_StopsEarly(t *testing.T) {
	var got []string
	for line, err := range lineio.Seq(strings.NewReader("1\n2\n3\n")) {
		require.NoError(t, err)
		got = append(got, line)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestWriter(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		writeErr error
		closeErr error
		want     string
		wantErr  error
	}{
		{
			name:  "every line is terminated",
			lines: []string{"b", "a", ""},
			want:  "b\na\n\n",
		},
		{
			name: "no lines",
			want: "",
		},
		{
			name:     "flush error",
			lines:    []string{"a"},
			writeErr: errWrite,
			wantErr:  errWrite,
		},
		{
			name:     "close error",
			lines:    []string{"a"},
			closeErr: errWrite,
			want:     "a\n",
			wantErr:  errWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := &mockWriter{writeErr: tt.writeErr, closeErr: tt.closeErr}
			w := lineio.NewWriter(mw)
			for _, l := range tt.lines {
				require.NoError(t, w.WriteLine(l))
			}

			err := w.Close()
			assert.True(t, mw.closed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, mw.buf.String())
		})
	}
}

func TestWriter_Closed(t *testing.T) {
	w := lineio.NewWriter(&mockWriter{})
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.WriteLine("x"), lineio.ErrClosed)
	assert.ErrorIs(t, w.Flush(), lineio.ErrClosed)
	assert.ErrorIs(t, w.Close(), lineio.ErrClosed)
}

func TestSize(t *testing.T) {
	assert.Equal(t, int64(1), lineio.Size(""))
	assert.Equal(t, int64(6), lineio.Size("hello"))
}
