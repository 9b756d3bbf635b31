// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/litehost/lib/appctx"
	"github.com/bureau-foundation/litehost/lib/codec"
	"github.com/bureau-foundation/litehost/lib/config"
	"github.com/bureau-foundation/litehost/lib/connection"
	"github.com/bureau-foundation/litehost/lib/connpool"
	"github.com/bureau-foundation/litehost/lib/engine"
	"github.com/bureau-foundation/litehost/lib/metrics"
	"github.com/bureau-foundation/litehost/lib/pool"
	"github.com/bureau-foundation/litehost/lib/process"
	"github.com/bureau-foundation/litehost/lib/sqlfuncs"
)

// snapshot is the result of one probe run. probe --snapshot writes it
// as CBOR; stats reads it back.
type snapshot struct {
	Path       string        `json:"path" cbor:"1,keyasint"`
	Strategy   string        `json:"strategy" cbor:"2,keyasint"`
	Workers    int           `json:"workers" cbor:"3,keyasint"`
	Iterations int           `json:"iterations" cbor:"4,keyasint"`
	Reused     int64         `json:"reused" cbor:"5,keyasint"`
	Duration   time.Duration `json:"duration_ns" cbor:"6,keyasint"`
	Counts     pool.Counts   `json:"counts" cbor:"7,keyasint"`
}

type probeOptions struct {
	configPath  string
	database    string
	strategy    string
	workers     int
	iterations  int
	maxPoolSize int
	format      string
	snapshot    string
	metrics     bool
}

func runProbe(args []string, stdout io.Writer) error {
	var options probeOptions
	flagSet := newFlagSet("probe", "[flags]")
	flagSet.StringVar(&options.configPath, "config", "", "config file (default: $LITEHOST_CONFIG, then built-in defaults)")
	flagSet.StringVar(&options.database, "db", "", "database file (default: database.path from the config)")
	flagSet.StringVar(&options.strategy, "strategy", "", "override pool.strategy: strong, weak, none, or custom")
	flagSet.IntVar(&options.workers, "workers", 4, "concurrent workers")
	flagSet.IntVar(&options.iterations, "iterations", 100, "open/query/close cycles per worker")
	flagSet.IntVar(&options.maxPoolSize, "max-pool-size", 0, "override pool.max_pool_size")
	flagSet.StringVar(&options.format, "format", "text", "report format: text, json, or cbor")
	flagSet.StringVar(&options.snapshot, "snapshot", "", "also write the report to this file as CBOR")
	flagSet.BoolVar(&options.metrics, "metrics", false, "print pool metrics in Prometheus text format")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("probe: unexpected argument %q", flagSet.Arg(0))
	}
	if err := checkFormat(options.format, "text", "json", "cbor"); err != nil {
		return fmt.Errorf("probe: %w", err)
	}

	cfg, err := loadConfig(options.configPath)
	if err != nil {
		return err
	}
	if options.strategy != "" {
		cfg.Pool.Strategy = config.Strategy(options.strategy)
	}
	if flagSet.Changed("max-pool-size") {
		cfg.Pool.MaxPoolSize = options.maxPoolSize
	}
	if options.database != "" {
		cfg.Database.Path = options.database
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, families, err := probe(ctx, cfg, options)
	if err != nil {
		return err
	}

	if options.snapshot != "" {
		data, err := codec.Marshal(report)
		if err != nil {
			return fmt.Errorf("probe: encoding snapshot: %w", err)
		}
		if err := os.WriteFile(options.snapshot, data, 0o644); err != nil {
			return fmt.Errorf("probe: writing snapshot: %w", err)
		}
	}
	if err := writeReport(stdout, report, options.format); err != nil {
		return err
	}
	if options.metrics {
		for _, family := range families {
			if _, err := expfmt.MetricFamilyToText(stdout, family); err != nil {
				return fmt.Errorf("probe: writing metrics: %w", err)
			}
		}
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvironmentVariable) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

// probe runs options.workers goroutines, each cycling through
// options.iterations logical connections to cfg.Database.Path, and
// returns the resulting pool counts and a metrics scrape taken before
// the pool is torn down.
func probe(ctx context.Context, cfg *config.Config, options probeOptions) (*snapshot, []*dto.MetricFamily, error) {
	if cfg.Database.Path == "" {
		return nil, nil, fmt.Errorf("probe: no database: pass --db or set database.path")
	}
	if options.workers < 1 || options.iterations < 1 {
		return nil, nil, fmt.Errorf("probe: --workers and --iterations must be positive")
	}
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := process.NewLogger(os.Stderr, cfg.Logging.Format, level)

	app, err := appctx.New(appctx.Options{Config: cfg, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	defer app.Close()

	var trace *connpool.NullPool
	if cfg.Pool.Strategy == config.StrategyCustom {
		trace = connpool.NewNullPool(true)
		app.Pools.SetConnectionPool(trace)
	}
	if err := sqlfuncs.Register(app.Functions); err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewPoolCollector("litehost", app.Pools))

	var reused atomic.Int64
	started := time.Now()
	group, groupCtx := errgroup.WithContext(ctx)
	for worker := range options.workers {
		group.Go(func() error {
			for iteration := range options.iterations {
				wasReused, err := cycle(groupCtx, app, int64(worker*options.iterations+iteration))
				if err != nil {
					return fmt.Errorf("worker %d iteration %d: %w", worker, iteration, err)
				}
				if wasReused {
					reused.Add(1)
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, fmt.Errorf("probe: %w", err)
	}

	families, err := registry.Gather()
	if err != nil {
		return nil, nil, fmt.Errorf("probe: gathering metrics: %w", err)
	}
	if trace != nil {
		logger.Debug("custom pool calls", "log", trace.String())
	}

	return &snapshot{
		Path:       cfg.Database.Path,
		Strategy:   string(cfg.Pool.Strategy),
		Workers:    options.workers,
		Iterations: options.iterations,
		Reused:     reused.Load(),
		Duration:   time.Since(started),
		Counts:     app.Pools.GetCounts(""),
	}, families, nil
}

// cycle opens a logical connection, checks that the bound functions
// answer, and closes it. It reports whether the native connection came
// from the pool.
func cycle(ctx context.Context, app *appctx.Context, n int64) (bool, error) {
	conn, err := connection.Open(ctx, app, connection.Options{Path: app.Config.Database.Path})
	if err != nil {
		return false, err
	}
	var got any
	queryErr := conn.Execute(ctx, "SELECT double(?)", func(row engine.Row) error {
		got = row[0]
		return nil
	}, n)
	closeErr := conn.Close()
	if queryErr != nil {
		return false, queryErr
	}
	if closeErr != nil {
		return false, closeErr
	}
	if got != 2*n {
		return false, fmt.Errorf("double(%d) = %v, want %d", n, got, 2*n)
	}
	return conn.Reused(), nil
}

func writeReport(w io.Writer, report *snapshot, format string) error {
	switch format {
	case "text":
		fmt.Fprintf(w, "database:   %s\n", report.Path)
		fmt.Fprintf(w, "strategy:   %s\n", report.Strategy)
		fmt.Fprintf(w, "cycles:     %d (%d workers x %d)\n", report.Workers*report.Iterations, report.Workers, report.Iterations)
		fmt.Fprintf(w, "reused:     %d\n", report.Reused)
		fmt.Fprintf(w, "duration:   %s\n", report.Duration.Round(time.Microsecond))
		fmt.Fprintf(w, "checkouts:  %d\n", report.Counts.Opened)
		fmt.Fprintf(w, "returns:    %d\n", report.Counts.Closed)
		fmt.Fprintf(w, "idle:       %d\n", report.Counts.Queued)
		files := make([]string, 0, len(report.Counts.Files))
		for file := range report.Counts.Files {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			fmt.Fprintf(w, "  %s: %d\n", file, report.Counts.Files[file])
		}
		return nil
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "cbor":
		return codec.NewEncoder(w).Encode(report)
	default:
		return checkFormat(format, "text", "json", "cbor")
	}
}

func checkFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
