package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrUnavailable is returned by a nil Publisher, so callers that ignore
// publish errors keep working when the broker is down.
var ErrUnavailable = errors.New("nats: publisher unavailable")

// Subjects carried by the broker. Import and refresh events flow through
// JetStream so a worker restart cannot lose them; broadcasts are fire-and-
// forget core NATS fanned out to WebSocket clients.
const (
	SubjectAmenitiesImported = "homefinder.amenities.imported"
	SubjectDatasetRefresh    = "homefinder.dataset.refresh"
	SubjectBroadcast         = "homefinder.updates.broadcast"
)

// ImportedEvent is the payload published after an amenity import lands.
type ImportedEvent struct {
	BatchID string `json:"batch_id"`
	Count   int    `json:"count"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "HOMEFINDER_IMPORTS",
			Subjects:  []string{"homefinder.amenities.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "HOMEFINDER_DATASETS",
			Subjects:  []string{"homefinder.dataset.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishAmenitiesImported(ctx context.Context, batchID string, count int) error {
	if p == nil || p.js == nil {
		return ErrUnavailable
	}
	data, err := json.Marshal(ImportedEvent{BatchID: batchID, Count: count})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectAmenitiesImported, data)
	return err
}

func (p *Publisher) PublishDatasetRefresh(ctx context.Context, dataset string) error {
	if p == nil || p.js == nil {
		return ErrUnavailable
	}
	_, err := p.js.Publish(SubjectDatasetRefresh, []byte(dataset))
	return err
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	if p == nil || p.conn == nil {
		return ErrUnavailable
	}
	return p.conn.Publish(SubjectBroadcast, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
