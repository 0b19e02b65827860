package main

import (
	"context"
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bjaus/routesplit"
	"github.com/bjaus/routesplit/internal/config"
	"github.com/bjaus/routesplit/internal/sink"
	"github.com/bjaus/routesplit/internal/source"
)

// job is the routesplit.Job the command runs. Every tunable comes from the
// config through the pipeline's optional interfaces.
type job struct {
	cfg      *config.Config
	dir      *source.Dir
	loader   sink.Loader
	prefixes *routesplit.PrefixValidator
	logger   *slog.Logger

	startedAt  time.Time
	duplicates atomic.Int64
}

var (
	_ routesplit.Job                = (*job)(nil)
	_ routesplit.Validator          = (*job)(nil)
	_ routesplit.DuplicateHandler   = (*job)(nil)
	_ routesplit.ProgressReporter   = (*job)(nil)
	_ routesplit.Starter            = (*job)(nil)
	_ routesplit.Stopper            = (*job)(nil)
	_ routesplit.MaxLinesPerChunk   = (*job)(nil)
	_ routesplit.ReformatWorkers    = (*job)(nil)
	_ routesplit.ParseWorkers       = (*job)(nil)
	_ routesplit.Exclusions         = (*job)(nil)
	_ routesplit.Format             = (*job)(nil)
	_ routesplit.GroupFields        = (*job)(nil)
	_ routesplit.DropFields         = (*job)(nil)
	_ routesplit.AssignmentStrategy = (*job)(nil)
)

func newJob(cfg *config.Config, loader sink.Loader, logger *slog.Logger) *job {
	prefixes := routesplit.NewPrefixValidator(cfg.EntityCodes()...)
	prefixes.Field = cfg.Records.PrefixField
	prefixes.Length = cfg.Records.PrefixLength

	return &job{
		cfg:      cfg,
		dir:      source.NewDir(cfg.Input.Dir, cfg.Input.Pattern),
		loader:   loader,
		prefixes: prefixes,
		logger:   logger,
	}
}

func (j *job) Extract(ctx context.Context) iter.Seq2[routesplit.RawExportFile, error] {
	return j.dir.Files(ctx)
}

// Sessions returns the IDs from the session file followed by the inline IDs.
func (j *job) Sessions(_ context.Context) ([]routesplit.SessionID, error) {
	var ids []routesplit.SessionID
	if j.cfg.Sessions.File != "" {
		var err error
		if ids, err = source.ReadSessions(j.cfg.Sessions.File); err != nil {
			return nil, err
		}
	}
	for _, id := range j.cfg.Sessions.IDs {
		ids = append(ids, routesplit.SessionID(id))
	}
	return ids, nil
}

func (j *job) Load(ctx context.Context, res *routesplit.Result) error {
	return j.loader.Load(ctx, res)
}

func (j *job) Validate(ctx context.Context, records []routesplit.Record) error {
	return j.prefixes.Validate(ctx, records)
}

func (j *job) OnDuplicate(ctx context.Context, w routesplit.DuplicateRecordWarning) {
	j.duplicates.Add(1)
	j.logger.DebugContext(ctx, "duplicate record dropped",
		"index", w.Index,
		"first_index", w.FirstIndex,
		j.cfg.Records.PrefixField, w.Record.Value(j.cfg.Records.PrefixField),
	)
}

func (j *job) ReportInterval() int { return routesplit.DefaultReportInterval }

func (j *job) OnProgress(ctx context.Context, stats *routesplit.Stats) {
	j.logger.InfoContext(ctx, "reformatting", "files", stats.Files(), "lines", stats.TokenLines())
}

func (j *job) Start(ctx context.Context) context.Context {
	j.startedAt = time.Now()
	j.logger.InfoContext(ctx, "run starting",
		"input", j.cfg.Input.Dir,
		"strategy", j.cfg.Sessions.Strategy,
		"max_lines", j.cfg.Chunk.MaxLines,
	)
	return ctx
}

func (j *job) Stop(ctx context.Context, stats *routesplit.Stats, err error) {
	if err != nil {
		return
	}
	j.logger.InfoContext(ctx, "partitions written",
		"output", j.cfg.Output.Dir,
		"sessions", stats.Sessions(),
		"duplicates", j.duplicates.Load(),
		"elapsed", time.Since(j.startedAt),
	)
}

func (j *job) MaxLinesPerChunk() int { return j.cfg.Chunk.MaxLines }
func (j *job) ReformatWorkers() int  { return j.cfg.Workers.Reformat }
func (j *job) ParseWorkers() int     { return j.cfg.Workers.Parse }
func (j *job) Exclusions() []string  { return j.cfg.Input.Exclusions }

func (j *job) Format() routesplit.DocumentFormat { return j.cfg.Chunk.Format() }

func (j *job) GroupFields() (origin, route string) {
	return j.cfg.Records.OriginField, j.cfg.Records.RouteField
}

func (j *job) DropFields() []string { return j.cfg.Records.DropFields }

func (j *job) AssignmentStrategy() routesplit.Assigner {
	if j.cfg.Sessions.Strategy == config.StrategyLeastLoaded {
		return routesplit.NewLeastLoaded()
	}
	return routesplit.NewZigzag()
}
