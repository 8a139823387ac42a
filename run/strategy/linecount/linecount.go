package linecount

import (
	"github.com/davidvella/xsort/run"
)

var _ run.Strategy = Strategy{}

// Strategy flushes once a fixed number of lines is buffered.
type Strategy struct {
	MaxLines int
}

func NewStrategy(maxLines int) Strategy {
	return Strategy{MaxLines: maxLines}
}

func (s Strategy) ShouldFlush(information run.Information) bool {
	return information.Lines >= s.MaxLines
}
