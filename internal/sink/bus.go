package sink

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/bjaus/routesplit"
)

// Headers set on every partition message.
const (
	HeaderSession = "Routesplit-Session"
	HeaderRecords = "Routesplit-Records"
)

// BusSink publishes partitions to a JetStream stream. Each session's records
// go to <prefix>.session.<id> as one document; the manifest follows on
// <prefix>.manifest, so a consumer that has seen the manifest has seen every
// partition of the run.
type BusSink struct {
	js     jetstream.JetStream
	prefix string
	format routesplit.DocumentFormat
	meta   map[string]any
}

// NewBusSink creates a sink over nc, creating or updating stream so that it
// captures every subject under prefix.
func NewBusSink(ctx context.Context, nc *nats.Conn, stream, prefix string) (*BusSink, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{prefix + ".>"},
	})
	if err != nil {
		return nil, fmt.Errorf("create stream %s: %w", stream, err)
	}

	return &BusSink{js: js, prefix: prefix, format: routesplit.DefaultFormat}, nil
}

// WithFormat overrides the document wrapper. Defaults to routesplit.DefaultFormat.
func (b *BusSink) WithFormat(f routesplit.DocumentFormat) *BusSink {
	b.format = f
	return b
}

// WithMeta sets extra values recorded in the manifest.
func (b *BusSink) WithMeta(meta map[string]any) *BusSink {
	b.meta = meta
	return b
}

// SessionSubject returns the subject a session's partition is published on.
func (b *BusSink) SessionSubject(id routesplit.SessionID) string {
	return b.prefix + ".session." + string(id)
}

// ManifestSubject returns the subject of the run manifest.
func (b *BusSink) ManifestSubject() string {
	return b.prefix + ".manifest"
}

// Load publishes every partition, then the manifest. Nothing is published if
// any session ID is unusable as a subject token or any record cannot be
// written.
func (b *BusSink) Load(ctx context.Context, res *routesplit.Result) error {
	for _, p := range res.Partitions {
		if err := checkSessionName(p.Session); err != nil {
			return err
		}
		if err := routesplit.CheckFields(p.Records); err != nil {
			return fmt.Errorf("session %s: %w", p.Session, err)
		}
	}

	for _, p := range res.Partitions {
		var buf bytes.Buffer
		if err := routesplit.WriteRecords(&buf, b.format, p.Records); err != nil {
			return err
		}

		msg := nats.NewMsg(b.SessionSubject(p.Session))
		msg.Data = buf.Bytes()
		msg.Header.Set(HeaderSession, string(p.Session))
		msg.Header.Set(HeaderRecords, strconv.Itoa(len(p.Records)))
		if _, err := b.js.PublishMsg(ctx, msg); err != nil {
			return fmt.Errorf("publish %s: %w", msg.Subject, err)
		}
	}

	data, err := NewManifest(res, b.meta).Marshal()
	if err != nil {
		return err
	}
	if _, err := b.js.Publish(ctx, b.ManifestSubject(), data); err != nil {
		return fmt.Errorf("publish %s: %w", b.ManifestSubject(), err)
	}
	return nil
}
