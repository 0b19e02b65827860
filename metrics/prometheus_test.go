package metrics

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/routesplit"
)

func TestNewPrometheus_Defaults(t *testing.T) {
	p := NewPrometheus(nil, "")
	require.Equal(t, "routesplit", p.namespace)
	require.Equal(t, prometheus.DefaultRegisterer, p.reg)
}

func TestPrometheusCollector_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewPrometheus(reg, "test")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families)
}

func TestPrometheusCollector_ObserveStage(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.ObserveStage(routesplit.StageParse, 20*time.Millisecond, nil)
	p.ObserveStage(routesplit.StageParse, 5*time.Millisecond, errors.New("boom"))
	p.ObserveStage(routesplit.StageAssign, time.Millisecond, nil)

	require.Equal(t, 2, testutil.CollectAndCount(p.stageDuration))
	require.InDelta(t, 1.0, testutil.ToFloat64(p.stageFailures.WithLabelValues("parse")), 0)
	require.InDelta(t, 0.0, testutil.ToFloat64(p.stageFailures.WithLabelValues("assign")), 0)
}

func TestPrometheusCollector_RecordSessionLoad(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordSessionLoad(routesplit.SessionLoad{Session: "S1", Groups: 2, Records: 60})
	p.RecordSessionLoad(routesplit.SessionLoad{Session: "S2", Groups: 3, Records: 40})

	require.InDelta(t, 60.0, testutil.ToFloat64(p.sessionRecs.WithLabelValues("S1")), 0)
	require.InDelta(t, 3.0, testutil.ToFloat64(p.sessionGroups.WithLabelValues("S2")), 0)
}

func TestPrometheusCollector_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordRun(nil, errors.New("boom"))
	require.InDelta(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("failure")), 0)
	require.InDelta(t, 0.0, testutil.ToFloat64(p.runs.WithLabelValues("success")), 0)
}

// job is a two-record run over two sessions.
type job struct{}

func (job) Extract(context.Context) iter.Seq2[routesplit.RawExportFile, error] {
	return func(yield func(routesplit.RawExportFile, error) bool) {
		yield(routesplit.RawExportFile{
			Name: "a.xml",
			Data: []byte(`<Document><LINE WAREHOUSEID="W1" ROADNETROUTE="R1"/><LINE WAREHOUSEID="W2" ROADNETROUTE="R1"/></Document>`),
		}, nil)
	}
}

func (job) Sessions(context.Context) ([]routesplit.SessionID, error) {
	return []routesplit.SessionID{"S1", "S2"}, nil
}

func (job) Load(context.Context, *routesplit.Result) error { return nil }

func TestPrometheusCollector_Pipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	err := routesplit.New(job{}).WithMetrics(p).Run(context.Background())
	require.NoError(t, err)

	require.InDelta(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("success")), 0)
	require.InDelta(t, 2.0, testutil.ToFloat64(p.runRecords), 0)
	require.InDelta(t, 2.0, testutil.ToFloat64(p.runGroups), 0)
	require.InDelta(t, 1.0, testutil.ToFloat64(p.sessionRecs.WithLabelValues("S1")), 0)
	require.InDelta(t, 1.0, testutil.ToFloat64(p.sessionRecs.WithLabelValues("S2")), 0)

	count, err := testutil.GatherAndCount(reg, "test_stage_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 8, count)
}
