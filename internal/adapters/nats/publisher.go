package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/nats-io/nats.go"
)

// Publisher implements ports.EventPublisher using NATS JetStream. Frames
// are high-rate and disposable, so they ride plain NATS; scene and trip
// events go through JetStream so late consumers (scene loaders, trip
// trackers) can replay what they missed.
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
			Name:      "MAP_SCENES",
			Subjects:  []string{"map.scene.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "MAP_TRIPS",
			Subjects:  []string{"map.trip.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    1 * time.Hour,
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

// PublishFrame broadcasts one tick's frame snapshot. Core NATS, not
// JetStream: a missed frame is superseded by the next one ~33 ms later.
func (p *Publisher) PublishFrame(ctx context.Context, sessionID string, frame []byte) error {
	return p.conn.Publish("map.viewport."+sessionID+".frame", frame)
}

func (p *Publisher) PublishSceneActivated(ctx context.Context, sessionID string, scene *domain.Scene) error {
	data, err := json.Marshal(scene)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("map.scene."+sessionID+".activated", data)
	return err
}

func (p *Publisher) PublishSceneDeactivated(ctx context.Context, sessionID, sceneID string) error {
	_, err := p.js.Publish("map.scene."+sessionID+".deactivated", []byte(sceneID))
	return err
}

func (p *Publisher) PublishTripPosition(ctx context.Context, sessionID string, trip *domain.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("map.trip."+sessionID+".position", data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
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
