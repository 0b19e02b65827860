package routesplit

import "context"

// ReportInterval controls how often progress is reported, measured in export
// files reformatted. This interface can be implemented independently of
// ProgressReporter when you want to set the interval via the job struct rather
// than the builder.
//
// The value can be overridden at runtime via WithReportInterval, which takes
// precedence over this interface. If neither is set, DefaultReportInterval
// (100 files) is used.
//
// This interface is embedded in ProgressReporter, so implementing
// ProgressReporter automatically satisfies ReportInterval.
//
// Example:
//
//	func (j *MyJob) ReportInterval() int { return 500 }
type ReportInterval interface {
	// ReportInterval returns how often to call OnProgress (in files reformatted).
	ReportInterval() int
}

// ProgressReporter receives periodic progress updates while export files are
// being reformatted, which is the only stage whose duration grows with the
// number of inputs rather than the number of records.
//
// OnProgress is called each time the cumulative file count crosses a
// ReportInterval boundary. It runs on a reformat worker goroutine, so avoid
// blocking I/O inside it. The Stats passed in is safe to read concurrently.
//
// Example:
//
//	func (j *MyJob) ReportInterval() int { return 100 }
//
//	func (j *MyJob) OnProgress(ctx context.Context, stats *routesplit.Stats) {
//	    slog.InfoContext(ctx, "progress",
//	        "files", stats.Files(),
//	        "record_lines", stats.RecordLines(),
//	    )
//	}
type ProgressReporter interface {
	ReportInterval

	// OnProgress is called periodically during reformatting.
	OnProgress(ctx context.Context, stats *Stats)
}
