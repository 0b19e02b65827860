package routesplit

import "context"

// Validator inspects the loaded, deduplicated record set before any grouping
// or assignment happens. Returning an error aborts the run; Load is never
// called.
//
// Use Validator for fatal preconditions that depend on record content:
//   - Records from a legal entity the run is not configured for
//   - Mixed exports that must not be partitioned together
//   - Required fields missing from every record
//
// [PrefixValidator] covers the common key-prefix check:
//
//	func (j *MyJob) Validate(ctx context.Context, records []routesplit.Record) error {
//	    return j.prefixes.Validate(ctx, records)
//	}
type Validator interface {
	// Validate returns a non-nil error to stop the run.
	Validate(ctx context.Context, records []Record) error
}

// DuplicateHandler is told about every record removed by deduplication.
// Duplicates never fail a run: the first occurrence is kept and the pipeline
// continues. Without a DuplicateHandler duplicates are logged at warn level
// only.
//
// Use DuplicateHandler when:
//   - Overlapping exports should be reported back to their source
//   - You want a count of duplicates per export for auditing
//
// Example:
//
//	func (j *MyJob) OnDuplicate(ctx context.Context, w routesplit.DuplicateRecordWarning) {
//	    j.dupes = append(j.dupes, w.Record)
//	}
type DuplicateHandler interface {
	OnDuplicate(ctx context.Context, warning DuplicateRecordWarning)
}

// Starter is called before extraction begins. Implement this interface when
// you need to perform setup work or enrich the context before the run starts.
//
// Use Starter for:
//   - Adding values to the context (run IDs, logger fields)
//   - Recording the start time for elapsed-time metrics
//   - Preparing a staging area for Load
//
// The context returned by Start is propagated to all stages and to
// Stopper.Stop.
//
// Example:
//
//	func (j *MyJob) Start(ctx context.Context) context.Context {
//	    j.startedAt = time.Now()
//	    slog.InfoContext(ctx, "run starting")
//	    return ctx
//	}
//
// Start is called exactly once, before the first call to Extract.
type Starter interface {
	// Start is called before extraction begins.
	// The returned context is used for the entire run.
	Start(ctx context.Context) context.Context
}

// Stopper is called after the run completes, whether it succeeded or failed.
// Implement this interface for cleanup, final logging, or metrics reporting.
//
// The err parameter is the same error value returned by Run. On failure Load
// was never called, so Stop is the place to discard anything Start prepared.
//
// Example:
//
//	func (j *MyJob) Stop(ctx context.Context, stats *routesplit.Stats, err error) {
//	    if err != nil {
//	        slog.ErrorContext(ctx, "run failed", "error", err, "stats", stats)
//	        return
//	    }
//	    slog.InfoContext(ctx, "run complete", "stats", stats, "elapsed", time.Since(j.startedAt))
//	}
//
// Stop is called exactly once, after the last stage returns.
type Stopper interface {
	Stop(ctx context.Context, stats *Stats, err error)
}
