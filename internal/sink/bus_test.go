package sink

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/routesplit"
)

// startEmbeddedNATS starts an in-process JetStream server on a random port and
// returns a connected client. Both are closed when the test ends.
func startEmbeddedNATS(t *testing.T) *nats.Conn {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server not ready")
	}

	nc, err := nats.Connect(ns.ClientURL(), nats.Timeout(2*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("connect to embedded NATS: %v", err)
	}

	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return nc
}

func TestBusSink_Load(t *testing.T) {
	nc := startEmbeddedNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := NewBusSink(ctx, nc, "ROUTESPLIT_TEST", "rs")
	require.NoError(t, err)
	require.NoError(t, b.Load(ctx, testResult()))

	js, err := jetstream.New(nc)
	require.NoError(t, err)
	stream, err := js.Stream(ctx, "ROUTESPLIT_TEST")
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), info.State.Msgs)

	msg, err := stream.GetLastMsgForSubject(ctx, "rs.session.S1")
	require.NoError(t, err)
	require.Equal(t, "S1", msg.Header.Get(HeaderSession))
	require.Equal(t, strconv.Itoa(2), msg.Header.Get(HeaderRecords))

	recs, err := routesplit.NewLoader().Parse(msg.Subject, bytes.NewReader(msg.Data))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "ZA1-2", recs[1].Value("INVENTTRANSID"))

	manifest, err := stream.GetLastMsgForSubject(ctx, b.ManifestSubject())
	require.NoError(t, err)
	require.Equal(t, uint64(3), manifest.Sequence)

	var m Manifest
	require.NoError(t, yaml.Unmarshal(manifest.Data, &m))
	require.Len(t, m.Sessions, 2)
	require.Len(t, m.Groups, 2)
}

func TestBusSink_InvalidSessionPublishesNothing(t *testing.T) {
	nc := startEmbeddedNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := NewBusSink(ctx, nc, "ROUTESPLIT_TEST", "rs")
	require.NoError(t, err)

	err = b.Load(ctx, testResult("S1", "S.2"))
	require.ErrorIs(t, err, ErrInvalidSessionName)

	js, err := jetstream.New(nc)
	require.NoError(t, err)
	stream, err := js.Stream(ctx, "ROUTESPLIT_TEST")
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	require.Zero(t, info.State.Msgs)
}

func TestBusSink_Subjects(t *testing.T) {
	b := &BusSink{prefix: "routesplit.partition"}
	require.Equal(t, "routesplit.partition.session.35411", b.SessionSubject("35411"))
	require.Equal(t, "routesplit.partition.manifest", b.ManifestSubject())
}

func TestBusSink_DuplicateFieldPublishesNothing(t *testing.T) {
	nc := startEmbeddedNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := NewBusSink(ctx, nc, "ROUTESPLIT_TEST", "rs")
	require.NoError(t, err)

	res := testResult()
	res.Partitions[1].Records = append(res.Partitions[1].Records, routesplit.Record{
		Element: "LINE",
		Fields:  []routesplit.Field{{Name: "A", Value: "1"}, {Name: "A", Value: "2"}},
	})
	require.ErrorIs(t, b.Load(ctx, res), routesplit.ErrDuplicateField)

	js, err := jetstream.New(nc)
	require.NoError(t, err)
	stream, err := js.Stream(ctx, "ROUTESPLIT_TEST")
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	require.Zero(t, info.State.Msgs)
}
