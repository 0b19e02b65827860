package routesplit

import (
	"context"
	"log/slog"
)

// Pipeline orchestrates a run.
type Pipeline struct {
	job Job

	// Configuration overrides (nil means use interface value or default)
	maxLines        *int
	reformatWorkers *int
	parseWorkers    *int
	reportInterval  *int
	exclusions      []string
	format          *DocumentFormat
	groupFields     *[2]string
	dropFields      []string
	assigner        Assigner

	logger  *slog.Logger
	metrics MetricsCollector

	// Optional capabilities (detected from job interfaces)
	starter    Starter
	stopper    Stopper
	validator  Validator
	dupHandler DuplicateHandler
	progress   ProgressReporter
}

// New creates a new Pipeline for the given job. Optional interfaces are
// auto-detected.
func New(job Job) *Pipeline {
	p := &Pipeline{
		job:     job,
		logger:  slog.Default(),
		metrics: nopMetrics{},
	}

	if s, ok := job.(Starter); ok {
		p.starter = s
	}
	if s, ok := job.(Stopper); ok {
		p.stopper = s
	}
	if v, ok := job.(Validator); ok {
		p.validator = v
	}
	if h, ok := job.(DuplicateHandler); ok {
		p.dupHandler = h
	}
	if r, ok := job.(ProgressReporter); ok {
		p.progress = r
	}

	return p
}

// WithMaxLinesPerChunk overrides the number of record lines per document.
// Priority: this method > MaxLinesPerChunk interface > DefaultMaxLinesPerChunk.
// Values less than 1 are kept and rejected by Run with ErrInvalidChunkSize.
func (p *Pipeline) WithMaxLinesPerChunk(n int) *Pipeline {
	p.maxLines = &n
	return p
}

// WithReformatWorkers overrides the number of concurrent reformat workers.
// Values less than 1 are ignored.
func (p *Pipeline) WithReformatWorkers(n int) *Pipeline {
	if n >= 1 {
		p.reformatWorkers = &n
	}
	return p
}

// WithParseWorkers overrides the number of concurrent parse workers.
// Values less than 1 are ignored.
func (p *Pipeline) WithParseWorkers(n int) *Pipeline {
	if n >= 1 {
		p.parseWorkers = &n
	}
	return p
}

// WithReportInterval overrides how often to report progress (in files).
// Values less than 1 are ignored.
func (p *Pipeline) WithReportInterval(n int) *Pipeline {
	if n >= 1 {
		p.reportInterval = &n
	}
	return p
}

// WithExclusions overrides the noise filter patterns.
func (p *Pipeline) WithExclusions(patterns ...string) *Pipeline {
	p.exclusions = patterns
	return p
}

// WithFormat overrides the chunked document wrapper.
func (p *Pipeline) WithFormat(f DocumentFormat) *Pipeline {
	p.format = &f
	return p
}

// WithGroupFields overrides the record fields forming the group key.
func (p *Pipeline) WithGroupFields(origin, route string) *Pipeline {
	p.groupFields = &[2]string{origin, route}
	return p
}

// WithDropFields overrides the fields removed before deduplication.
func (p *Pipeline) WithDropFields(fields ...string) *Pipeline {
	p.dropFields = fields
	return p
}

// WithAssigner overrides the assignment strategy.
func (p *Pipeline) WithAssigner(a Assigner) *Pipeline {
	if a != nil {
		p.assigner = a
	}
	return p
}

// WithLogger sets the logger used for run events. Defaults to slog.Default().
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithMetrics sets the metrics collector. Defaults to a no-op collector.
func (p *Pipeline) WithMetrics(m MetricsCollector) *Pipeline {
	if m != nil {
		p.metrics = m
	}
	return p
}

// Run executes the pipeline. It returns the first stage error, wrapped with
// the stage name; in that case Job.Load has not been called.
func (p *Pipeline) Run(ctx context.Context) error {
	stats := &Stats{}

	if p.starter != nil {
		ctx = p.starter.Start(ctx)
	}

	err := p.execute(ctx, stats)

	p.metrics.RecordRun(stats, err)
	if err != nil {
		p.logger.ErrorContext(ctx, "run failed", "error", err, "stats", stats)
	} else {
		p.logger.InfoContext(ctx, "run complete", "stats", stats)
	}

	if p.stopper != nil {
		p.stopper.Stop(ctx, stats, err)
	}

	return err
}
