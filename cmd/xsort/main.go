// Command xsort sorts a text file too large to fit in memory.
//
// Usage:
//
//	xsort [flags]
//
// The input and output paths default to input.txt and output.txt and can
// also be given through XSORT_INPUT and XSORT_OUTPUT. Flags take precedence
// over the environment.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/davidvella/xsort"
	"github.com/davidvella/xsort/memory"
	"github.com/davidvella/xsort/merge"
	"github.com/davidvella/xsort/order"
	"github.com/davidvella/xsort/run"
	"github.com/davidvella/xsort/run/strategy/bytesize"
	"github.com/davidvella/xsort/run/strategy/composite"
	"github.com/davidvella/xsort/run/strategy/linecount"
	"github.com/davidvella/xsort/storage/pebble"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	defaultInput  = "input.txt"
	defaultOutput = "output.txt"

	envInput  = "XSORT_INPUT"
	envOutput = "XSORT_OUTPUT"

	storeLocal  = "local"
	storePebble = "pebble"
)

type config struct {
	input    string
	output   string
	order    string
	maxRuns  int
	memory   int64
	parallel int
	runLines int
	runBytes int64
	store    string
	frontier string
	atomic   bool
	verbose  bool
}

func parseConfig(args []string, getenv func(string) string) (config, error) {
	var cfg config

	fs := pflag.NewFlagSet("xsort", pflag.ContinueOnError)
	fs.StringVarP(&cfg.input, "input", "i", defaultInput, "file to sort (env "+envInput+")")
	fs.StringVarP(&cfg.output, "output", "o", defaultOutput, "file receiving the sorted lines (env "+envOutput+")")
	fs.StringVar(&cfg.order, "order", order.NameCaseInsensitive, "ordering: lexical, case-insensitive or whitespace-insensitive")
	fs.IntVar(&cfg.maxRuns, "max-runs", memory.DefaultMaxRuns, "number of runs to aim for")
	fs.Int64Var(&cfg.memory, "memory", 0, "memory budget in bytes, 0 to detect")
	fs.IntVar(&cfg.parallel, "parallel", 1, "goroutines sorting each run")
	fs.IntVar(&cfg.runLines, "run-lines", 0, "cap on lines per run, 0 for none")
	fs.Int64Var(&cfg.runBytes, "run-bytes", 0, "cap on estimated bytes per run, 0 for none")
	fs.StringVar(&cfg.store, "store", storeLocal, "run storage: local or pebble")
	fs.StringVar(&cfg.frontier, "frontier", merge.FrontierHeap, "merge structure: heap, loser or btree")
	fs.BoolVar(&cfg.atomic, "atomic", false, "replace the output only once the sort succeeds")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log debug output")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if v := getenv(envInput); v != "" && !fs.Changed("input") {
		cfg.input = v
	}
	if v := getenv(envOutput); v != "" && !fs.Changed("output") {
		cfg.output = v
	}

	if cfg.store != storeLocal && cfg.store != storePebble {
		return config{}, fmt.Errorf("unknown store %q", cfg.store)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func execute(ctx context.Context, cfg config, logger *zap.Logger, stdout io.Writer) (err error) {
	cmp, err := order.ByName(cfg.order)
	if err != nil {
		return err
	}
	frontier, err := merge.FrontierByName(cfg.frontier)
	if err != nil {
		return err
	}

	opts := []xsort.Option{
		xsort.WithComparator(cmp),
		xsort.WithMaxRuns(cfg.maxRuns),
		xsort.WithAvailableMemory(cfg.memory),
		xsort.WithParallelism(cfg.parallel),
		xsort.WithFrontier(frontier),
		xsort.WithAtomicOutput(cfg.atomic),
		xsort.WithLogger(logger),
	}

	if strategy := runStrategy(cfg); strategy != nil {
		opts = append(opts, xsort.WithStrategy(strategy))
	}

	if cfg.store == storePebble {
		store, openErr := pebble.NewTempStorage(pebble.StorageOptions{Logger: logger})
		if openErr != nil {
			return openErr
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		opts = append(opts, xsort.WithStore(store))
	}

	s, err := xsort.New(opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	n, err := s.SortFile(ctx, cfg.input, cfg.output)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	logger.Info("sorted file",
		zap.String("input", cfg.input),
		zap.String("output", cfg.output),
		zap.Int64("lines", n),
		zap.Duration("elapsed", elapsed))
	fmt.Fprintf(stdout, "Sorted %d lines in %s\n", n, elapsed)
	return nil
}

// runStrategy combines the run caps given on the command line.
func runStrategy(cfg config) run.Strategy {
	var strategies []run.Strategy
	if cfg.runLines > 0 {
		strategies = append(strategies, linecount.NewStrategy(cfg.runLines))
	}
	if cfg.runBytes > 0 {
		strategies = append(strategies, bytesize.NewStrategy(cfg.runBytes))
	}

	switch len(strategies) {
	case 0:
		return nil
	case 1:
		return strategies[0]
	default:
		return composite.NewStrategy(strategies...)
	}
}

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "xsort: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xsort: failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = execute(ctx, cfg, logger, os.Stdout)
	stop()
	_ = logger.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "xsort: %v\n", err)
		os.Exit(1)
	}
}
