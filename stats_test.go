package routesplit_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bjaus/routesplit"
)

func runStats(t *testing.T) *routesplit.Stats {
	t.Helper()
	job := &memJob{files: threeGroups(), sessions: []routesplit.SessionID{"A", "B"}}
	require.NoError(t, routesplit.New(job).WithMaxLinesPerChunk(3).Run(context.Background()))
	return job.loaded.Stats
}

func TestStats_Snapshot(t *testing.T) {
	snap := runStats(t).Snapshot()
	require.Equal(t, routesplit.StatsSnapshot{
		Files:       2,
		TokenLines:  18,
		Excluded:    10,
		RecordLines: 8,
		Documents:   3,
		Records:     6,
		Duplicates:  0,
		Groups:      3,
		Sessions:    2,
	}, snap)
}

func TestStats_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(runStats(t))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"files": 2,
		"tokenLines": 18,
		"excluded": 10,
		"recordLines": 8,
		"documents": 3,
		"records": 6,
		"duplicates": 0,
		"groups": 3,
		"sessions": 2
	}`, string(data))
}

func TestStats_UnmarshalJSON(t *testing.T) {
	stats := &routesplit.Stats{}
	err := json.Unmarshal([]byte(`{"files":4,"tokenLines":20,"excluded":5,"records":9,"groups":2}`), stats)
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.Files())
	require.Equal(t, int64(15), stats.RecordLines())
	require.Equal(t, int64(9), stats.Records())
	require.Equal(t, int64(2), stats.Groups())
}

func TestStats_UnmarshalJSON_Error(t *testing.T) {
	stats := &routesplit.Stats{}
	err := stats.UnmarshalJSON([]byte(`invalid json`))
	require.Error(t, err)
}

func TestStats_LogValue(t *testing.T) {
	v := runStats(t).LogValue()
	attrs := v.Group()
	require.NotEmpty(t, attrs)
	require.Equal(t, "files", attrs[0].Key)
	require.Equal(t, int64(2), attrs[0].Value.Int64())
}
