package composite

import (
	"github.com/davidvella/xsort/run"
)

var _ run.Strategy = &Strategy{}

// Strategy flushes as soon as any of its strategies does.
type Strategy struct {
	strategies []run.Strategy
}

func NewStrategy(strategies ...run.Strategy) *Strategy {
	return &Strategy{strategies: strategies}
}

func (c *Strategy) ShouldFlush(information run.Information) bool {
	for _, s := range c.strategies {
		if s.ShouldFlush(information) {
			return true
		}
	}
	return false
}
