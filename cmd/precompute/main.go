package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"polycubes/internal/api"
	"polycubes/internal/cache"
	"polycubes/internal/config"
	"polycubes/internal/logging"
	"polycubes/internal/polycube"
	"polycubes/internal/precompute"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitMismatch = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and maps its error to an exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	var mismatch *precompute.MismatchError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &mismatch):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitMismatch
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
}

type options struct {
	configPath  string
	output      string
	render      int
	metricsAddr string
	verbose     bool
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "precompute N [threads]",
		Short: "Enumerate the distinct polycubes of size N",
		Long: `Enumerate every polycube of N cells, counting shapes that differ only by
rotation once. Each level is grown from the one below it and written to the
level cache, so later runs can resume from the largest cached order.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd, args, opts, stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	f.Bool("cache", true, "load previously computed levels from the cache")
	f.String("driver", config.DefaultCacheDriver, "cache driver: file, sqlite, minio or memory")
	f.String("cache-dir", config.DefaultCacheDir, "directory for the file cache driver")
	f.String("sqlite", config.DefaultSQLitePath, "database path for the sqlite cache driver")
	f.Int("threads", config.DefaultThreads, "worker goroutines; the positional argument takes precedence")
	f.String("strategy", config.DefaultStrategy, "parallel insertion strategy: shared or merge")
	f.String("reference", "", `file of "order count" lines checked in addition to the built-in table`)
	f.String("log-level", config.DefaultLogLevel, "log level")
	f.String("log-format", config.DefaultLogFormat, "log format: console or json")
	f.StringVarP(&opts.output, "output", "o", "", `write "order count" for every level to this file`)
	f.IntVar(&opts.render, "render", 0, "draw up to this many of the resulting cubes")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /run on this address while generating")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func generate(cmd *cobra.Command, args []string, opts options, stdout io.Writer) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid N %q: %w", args[0], err)
	}

	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if len(args) == 2 {
		threads, err := strconv.Atoi(args[1])
		if err != nil || threads < 1 {
			return fmt.Errorf("invalid thread count %q", args[1])
		}
		cfg.Generator.Threads = threads
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	ctx := cmd.Context()
	store, err := cache.Open(ctx, cfg.Cache, runID, logger)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer store.Close()

	ref := precompute.KnownCounts()
	if cfg.Generator.Reference != "" {
		extra, err := precompute.LoadReferenceFile(cfg.Generator.Reference)
		if err != nil {
			return err
		}
		ref = ref.Merge(extra)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	programStart := time.Now()
	progress := func(msg string) {
		fmt.Fprintf(stdout, "[%s] %s\n", formatElapsed(time.Since(programStart)), msg)
	}

	gen := precompute.NewGenerator(store, precompute.Options{
		Threads:   cfg.Generator.Threads,
		UseCache:  cfg.Cache.Read,
		Strategy:  cfg.Generator.Strategy,
		Reference: ref,
		Progress:  progress,
		Logger:    logger,
		Metrics:   precompute.NewMetrics(reg),
	})

	if opts.metricsAddr != "" {
		srv := &http.Server{
			Addr:    opts.metricsAddr,
			Handler: api.NewServer(store, api.WithGatherer(reg), api.WithStats(gen.Stats), api.WithLogger(logger)).Handler(),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("Starting",
		zap.Int("order", n),
		zap.Int("threads", cfg.Generator.Threads),
		zap.String("strategy", cfg.Generator.Strategy),
		zap.String("driver", cfg.Cache.Driver),
		zap.Bool("cache_read", cfg.Cache.Read))

	h, err := gen.Generate(ctx, n)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nN = %d || %d unique polycubes\n", n, h.Size())
	fmt.Fprintf(stdout, "  Shapes: %d\n", len(h.Shapes()))
	fmt.Fprintf(stdout, "  Processing time: %s\n", time.Since(programStart).Round(time.Millisecond))

	if opts.output != "" {
		if err := precompute.WriteTextFile(gen.Stats(), opts.output); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "  Output file: %s\n", opts.output)
	}

	if opts.render > 0 {
		return renderCubes(stdout, h, opts.render)
	}
	return nil
}

// renderCubes draws the first limit cubes of h.
func renderCubes(w io.Writer, h *polycube.Hashy, limit int) error {
	i := 0
	for shape, c := range h.All() {
		if i == limit {
			break
		}
		fmt.Fprintf(w, "\n# %d %s\n", i, shape)
		if err := polycube.Render(w, c); err != nil {
			return err
		}
		i++
	}
	return nil
}

// formatElapsed formats a duration into a human-readable elapsed time string
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
