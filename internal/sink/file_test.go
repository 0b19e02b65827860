package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/routesplit"
)

func line(origin, route, id string) routesplit.Record {
	return routesplit.Record{Element: "LINE", Fields: []routesplit.Field{
		{Name: "WAREHOUSEID", Value: origin},
		{Name: "ROADNETROUTE", Value: route},
		{Name: "INVENTTRANSID", Value: id},
	}}
}

// testResult builds a two-session result: S1 holds W1/R1 (2 records), S2
// holds W2/R1 (1 record).
func testResult(sessions ...routesplit.SessionID) *routesplit.Result {
	if len(sessions) == 0 {
		sessions = []routesplit.SessionID{"S1", "S2"}
	}
	g1 := routesplit.Group{Key: routesplit.GroupKey{Origin: "W1", Route: "R1"}, Count: 2}
	g2 := routesplit.Group{Key: routesplit.GroupKey{Origin: "W2", Route: "R1"}, Count: 1}

	return &routesplit.Result{
		Partitions: []routesplit.Partition{
			{Session: sessions[0], Records: []routesplit.Record{line("W1", "R1", "ZA1-1"), line("W1", "R1", "ZA1-2")}},
			{Session: sessions[1], Records: []routesplit.Record{line("W2", "R1", "ZA1-3")}},
		},
		Assignment: routesplit.NewAssignment(sessions, []routesplit.AssignedGroup{
			{Group: g1, Session: sessions[0]},
			{Group: g2, Session: sessions[1]},
		}),
		Stats: &routesplit.Stats{},
	}
}

func readRecords(t *testing.T, path string) []routesplit.Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	recs, err := routesplit.NewLoader().Parse(filepath.Base(path), f)
	require.NoError(t, err)
	return recs
}

func TestFileSink_Load(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "inbound")
	s := NewFileSink(dir).WithMeta(map[string]any{"entity": "ZA1"})

	require.NoError(t, s.Load(context.Background(), testResult()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Equal(t, []string{"assignment.yaml", "rdnet_inbound_S1.xml", "rdnet_inbound_S2.xml"}, names)

	s1 := readRecords(t, filepath.Join(dir, "rdnet_inbound_S1.xml"))
	require.Len(t, s1, 2)
	require.True(t, s1[0].Equal(line("W1", "R1", "ZA1-1")))

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	require.Equal(t, []ManifestSession{{ID: "S1", Groups: 1, Records: 2}, {ID: "S2", Groups: 1, Records: 1}}, m.Sessions)
	require.Equal(t, ManifestGroup{Origin: "W2", Route: "R1", Count: 1, Session: "S2"}, m.Groups[1])
	require.Equal(t, "ZA1", m.Meta["entity"])
}

func TestFileSink_ReplacesPreviousRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbound")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rdnet_inbound_OLD.xml"), []byte("stale"), 0o600))

	require.NoError(t, NewFileSink(dir).Load(context.Background(), testResult()))

	_, err := os.Stat(filepath.Join(dir, "rdnet_inbound_OLD.xml"))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, "rdnet_inbound_S1.xml"))
	require.NoError(t, err)

	// No staging or backup directories are left next to the output.
	siblings, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	require.Len(t, siblings, 1)
}

func TestFileSink_FailureLeavesOutputUntouched(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() context.Context
		res  *routesplit.Result
	}{
		{
			name: "invalid session name",
			ctx:  context.Background,
			res:  testResult("S1", "../escape"),
		},
		{
			name: "cancelled",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			res: testResult(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, "inbound")
			require.NoError(t, os.MkdirAll(dir, 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.xml"), []byte("previous"), 0o600))

			err := NewFileSink(dir).Load(tt.ctx(), tt.res)
			require.Error(t, err)

			data, err := os.ReadFile(filepath.Join(dir, "keep.xml"))
			require.NoError(t, err)
			require.Equal(t, "previous", string(data))

			siblings, err := os.ReadDir(root)
			require.NoError(t, err)
			require.Len(t, siblings, 1)
		})
	}
}

func TestFileSink_InvalidSessionName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbound")
	err := NewFileSink(dir).Load(context.Background(), testResult("S1", "a/b"))
	require.ErrorIs(t, err, ErrInvalidSessionName)

	_, err = os.Stat(dir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSink_EmptyPartition(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbound")
	res := testResult()
	res.Partitions[1].Records = []routesplit.Record{}

	require.NoError(t, NewFileSink(dir).WithPrefix("p_").Load(context.Background(), res))
	require.Empty(t, readRecords(t, filepath.Join(dir, "p_S2.xml")))
}

func TestMulti_StopsAtFirstError(t *testing.T) {
	root := t.TempDir()
	first := NewFileSink(filepath.Join(root, "a"))
	second := NewFileSink(filepath.Join(root, "b"))

	err := Multi{first, second}.Load(context.Background(), testResult("S1", "bad name"))
	require.ErrorIs(t, err, ErrInvalidSessionName)

	require.NoError(t, Multi{first, second}.Load(context.Background(), testResult()))
	for _, d := range []string{"a", "b"} {
		_, err := os.Stat(filepath.Join(root, d, ManifestFile))
		require.NoError(t, err)
	}
}

// loaderFunc adapts a function to Loader.
type loaderFunc func(ctx context.Context, res *routesplit.Result) error

func (f loaderFunc) Load(ctx context.Context, res *routesplit.Result) error { return f(ctx, res) }

func TestMulti_FailingLoaderLeavesNoFiles(t *testing.T) {
	errBusDown := errors.New("bus down")

	t.Run("fresh output", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "inbound")
		failing := loaderFunc(func(context.Context, *routesplit.Result) error { return errBusDown })

		err := Multi{NewFileSink(dir), failing}.Load(context.Background(), testResult())
		require.ErrorIs(t, err, errBusDown)

		_, err = os.Stat(dir)
		require.ErrorIs(t, err, os.ErrNotExist)
		siblings, err := os.ReadDir(root)
		require.NoError(t, err)
		require.Empty(t, siblings)
	})

	t.Run("previous output kept", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "inbound")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.xml"), []byte("previous"), 0o600))
		failing := loaderFunc(func(context.Context, *routesplit.Result) error { return errBusDown })

		err := Multi{NewFileSink(dir), failing}.Load(context.Background(), testResult())
		require.ErrorIs(t, err, errBusDown)

		data, err := os.ReadFile(filepath.Join(dir, "keep.xml"))
		require.NoError(t, err)
		require.Equal(t, "previous", string(data))
		_, err = os.Stat(filepath.Join(dir, "rdnet_inbound_S1.xml"))
		require.ErrorIs(t, err, os.ErrNotExist)

		siblings, err := os.ReadDir(root)
		require.NoError(t, err)
		require.Len(t, siblings, 1)
	})
}

func TestMulti_CommitsAfterOtherLoaders(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbound")
	var called bool
	check := loaderFunc(func(context.Context, *routesplit.Result) error {
		called = true
		_, err := os.Stat(dir)
		require.ErrorIs(t, err, os.ErrNotExist)
		return nil
	})

	require.NoError(t, Multi{NewFileSink(dir), check}.Load(context.Background(), testResult()))
	require.True(t, called)

	_, err := os.Stat(filepath.Join(dir, "rdnet_inbound_S1.xml"))
	require.NoError(t, err)
}

func TestFileSink_DuplicateFieldLeavesNothing(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "inbound")
	res := testResult()
	res.Partitions[1].Records = append(res.Partitions[1].Records, routesplit.Record{
		Element: "LINE",
		Fields:  []routesplit.Field{{Name: "A", Value: "1"}, {Name: "A", Value: "2"}},
	})

	err := NewFileSink(dir).Load(context.Background(), res)
	require.ErrorIs(t, err, routesplit.ErrDuplicateField)

	siblings, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, siblings)
}
