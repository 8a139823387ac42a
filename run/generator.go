package run

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davidvella/xsort/lineio"
	"github.com/davidvella/xsort/memory"
	"github.com/davidvella/xsort/order"
	"go.uber.org/zap"
)

// cancelCheckInterval is how many lines are read between context checks.
const cancelCheckInterval = 1024

// Generator reads input lines and writes them to a Store as sorted runs.
type Generator struct {
	store       Store
	estimator   memory.Estimator
	strategy    Strategy
	parallelism int
	logger      *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithEstimator sets the estimator used to size runs and lines.
func WithEstimator(e memory.Estimator) GeneratorOption {
	return func(g *Generator) {
		g.estimator = e
	}
}

// WithStrategy adds a flush strategy consulted alongside the run size target.
func WithStrategy(s Strategy) GeneratorOption {
	return func(g *Generator) {
		g.strategy = s
	}
}

// WithParallelism sets how many goroutines may sort one buffer.
func WithParallelism(n int) GeneratorOption {
	return func(g *Generator) {
		g.parallelism = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = l
	}
}

func NewGenerator(store Store, opts ...GeneratorOption) *Generator {
	g := &Generator{
		store:       store,
		estimator:   memory.NewEstimator(),
		parallelism: 1,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate splits input into sorted runs. totalBytes is the input size used
// to size runs together with maxRuns and the available memory. Empty input
// yields no runs. On failure every run created by this call is deleted.
func (g *Generator) Generate(ctx context.Context, input io.Reader, totalBytes int64, cmp order.Func, maxRuns int, available int64) ([]Handle, error) {
	target := g.estimator.EstimateRunSize(totalBytes, maxRuns, available)
	g.logger.Debug("generating runs",
		zap.Int64("totalBytes", totalBytes),
		zap.Int64("available", available),
		zap.Int64("targetRunSize", target))

	var (
		r     = lineio.NewReader(input)
		runs  []Handle
		buf   []string
		info  Information
		total int64
	)

	fail := func(err error) ([]Handle, error) {
		g.discard(runs)
		return nil, err
	}

	for {
		if total%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fail(fmt.Errorf("run: generation interrupted: %w", err))
			}
		}

		line, ok, err := r.ReadLine()
		if err != nil {
			return fail(fmt.Errorf("run: failed to read input: %w", err))
		}

		if ok {
			buf = append(buf, line)
			info.Lines++
			info.EstimatedBytes += g.estimator.EstimateLineFootprint(line)
			total++
		}

		if len(buf) > 0 && (!ok || g.shouldFlush(info, target)) {
			h, err := g.flush(ctx, buf, cmp)
			if err != nil {
				return fail(err)
			}
			runs = append(runs, h)
			g.logger.Debug("run flushed",
				zap.Uint64("run", h.ID),
				zap.Int64("lines", h.Lines),
				zap.Int64("estimatedBytes", info.EstimatedBytes))

			clear(buf)
			buf = buf[:0]
			info = Information{}
		}

		if !ok {
			break
		}
	}

	g.logger.Info("runs generated", zap.Int("runs", len(runs)), zap.Int64("lines", total))
	return runs, nil
}

func (g *Generator) shouldFlush(info Information, target int64) bool {
	if info.EstimatedBytes >= target {
		return true
	}
	return g.strategy != nil && g.strategy.ShouldFlush(info)
}

// flush sorts lines and persists them as one run.
func (g *Generator) flush(ctx context.Context, lines []string, cmp order.Func) (Handle, error) {
	if err := sortLines(ctx, lines, cmp, g.parallelism); err != nil {
		return Handle{}, fmt.Errorf("run: failed to sort buffer: %w", err)
	}

	w, err := g.store.Create(ctx)
	if err != nil {
		return Handle{}, fmt.Errorf("run: failed to create run: %w", err)
	}

	for _, line := range lines {
		if err := w.WriteLine(line); err != nil {
			return Handle{}, errors.Join(fmt.Errorf("run: failed to write run: %w", err), w.Abort())
		}
	}

	h, err := w.Commit()
	if err != nil {
		return Handle{}, errors.Join(fmt.Errorf("run: failed to commit run: %w", err), w.Abort())
	}
	return h, nil
}

// discard deletes runs on a best-effort basis.
func (g *Generator) discard(runs []Handle) {
	for _, h := range runs {
		if err := g.store.Delete(context.Background(), h); err != nil {
			g.logger.Warn("failed to delete run", zap.Uint64("run", h.ID), zap.Error(err))
		}
	}
}
