package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bjaus/routesplit"
	"github.com/bjaus/routesplit/internal/config"
	"github.com/bjaus/routesplit/internal/sink"
	"github.com/bjaus/routesplit/metrics"
)

// runOptions holds the flags of the run command. Non-zero values override the
// config file.
type runOptions struct {
	configPath  string
	input       string
	pattern     string
	output      string
	sessions    string
	strategy    string
	maxLines    int
	logLevel    string
	logFormat   string
	metricsFile string
	natsURL     string
}

func newRunCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Partition one set of exports",
		Long: `Reads every export in the input directory, partitions the records across
the configured sessions and writes the result.

Nothing is written unless every stage succeeds. An existing output directory
is replaced as a whole.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.input, "input", "i", "", "directory of raw exports")
	flags.StringVar(&opts.pattern, "pattern", "", "glob selecting export file names")
	flags.StringVarP(&opts.output, "output", "o", "", "output directory, replaced on success")
	flags.StringVarP(&opts.sessions, "sessions", "s", "", "session list CSV with a header row")
	flags.StringVar(&opts.strategy, "strategy", "", "assignment strategy: zigzag or least-loaded")
	flags.IntVar(&opts.maxLines, "max-lines", 0, "record lines per chunked document")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "", "text or json")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	flags.StringVar(&opts.natsURL, "nats-url", "", "also publish partitions to this NATS server")

	return cmd
}

// loadConfig reads the config file, if any, and applies flag overrides. The
// result is not validated.
func (o *runOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}

	if o.input != "" {
		cfg.Input.Dir = o.input
	}
	if o.pattern != "" {
		cfg.Input.Pattern = o.pattern
	}
	if o.output != "" {
		cfg.Output.Dir = o.output
	}
	if o.sessions != "" {
		cfg.Sessions.File = o.sessions
	}
	if o.strategy != "" {
		cfg.Sessions.Strategy = o.strategy
	}
	if o.maxLines != 0 {
		cfg.Chunk.MaxLines = o.maxLines
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.metricsFile != "" {
		cfg.Metrics.File = o.metricsFile
	}
	if o.natsURL != "" {
		cfg.Output.NATS.URL = o.natsURL
	}
	return cfg, nil
}

func run(ctx context.Context, opts *runOptions, stderr io.Writer) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	loader, closeSinks, err := newSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	reg := prometheus.NewRegistry()
	err = routesplit.New(newJob(cfg, loader, logger)).
		WithLogger(logger).
		WithMetrics(metrics.NewPrometheus(reg, cfg.Metrics.Namespace)).
		Run(ctx)

	if cfg.Metrics.File != "" {
		if werr := prometheus.WriteToTextfile(cfg.Metrics.File, reg); werr != nil {
			logger.Error("write metrics", "file", cfg.Metrics.File, "error", werr)
			if err == nil {
				err = werr
			}
		}
	}
	return err
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// newSinks builds the configured output sinks. The returned func closes any
// connection they hold.
func newSinks(ctx context.Context, cfg *config.Config) (sink.Loader, func(), error) {
	meta := map[string]any{"entities": cfg.Entities}
	format := cfg.Chunk.Format()

	var sinks sink.Multi
	if cfg.Output.Dir != "" {
		sinks = append(sinks, sink.NewFileSink(cfg.Output.Dir).WithFormat(format).WithMeta(meta))
	}

	if cfg.Output.NATS.URL == "" {
		return sinks, func() {}, nil
	}

	nc, err := nats.Connect(cfg.Output.NATS.URL, nats.Name("routesplit"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Output.NATS.URL, err)
	}
	bus, err := sink.NewBusSink(ctx, nc, cfg.Output.NATS.Stream, cfg.Output.NATS.SubjectPrefix)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	sinks = append(sinks, bus.WithFormat(format).WithMeta(meta))

	return sinks, nc.Close, nil
}
