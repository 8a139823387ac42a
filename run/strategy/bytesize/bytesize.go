package bytesize

import (
	"github.com/davidvella/xsort/run"
)

var _ run.Strategy = Strategy{}

// Strategy flushes once the estimated buffer size reaches a fixed cap,
// regardless of how much memory is available.
type Strategy struct {
	MaxBytes int64
}

func NewStrategy(maxBytes int64) Strategy {
	return Strategy{MaxBytes: maxBytes}
}

func (s Strategy) ShouldFlush(information run.Information) bool {
	return information.EstimatedBytes >= s.MaxBytes
}
