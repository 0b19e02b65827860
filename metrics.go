package routesplit

import "time"

// MetricsCollector receives operational measurements from a run.
//
// Implementations must be safe for concurrent use. The metrics package
// provides a Prometheus-backed implementation.
type MetricsCollector interface {
	// ObserveStage records how long a stage took and whether it failed.
	ObserveStage(stage Stage, d time.Duration, err error)

	// RecordSessionLoad records what one session was assigned.
	RecordSessionLoad(load SessionLoad)

	// RecordRun records the final counters of a run.
	RecordRun(stats *Stats, err error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveStage(Stage, time.Duration, error) {}
func (nopMetrics) RecordSessionLoad(SessionLoad)            {}
func (nopMetrics) RecordRun(*Stats, error)                  {}
