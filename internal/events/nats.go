package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig configures a JetStream publisher.
type NATSConfig struct {
	URL    string
	Name   string
	Stream string
	// MaxAge bounds how long events are retained; zero keeps them for a day.
	MaxAge time.Duration
}

// NATSPublisher publishes events to a JetStream stream that captures every
// subject under SubjectPrefix.
type NATSPublisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	stream string
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to NATS and creates the stream if it does not
// exist yet.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("events: NATS URL is required")
	}
	if strings.TrimSpace(cfg.Stream) == "" {
		return nil, errors.New("events: stream name is required")
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(cfg.Stream); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			conn.Close()
			return nil, fmt.Errorf("looking up stream %s: %w", cfg.Stream, err)
		}
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{SubjectPrefix + ".>"},
			Storage:  nats.FileStorage,
			MaxAge:   maxAge,
		}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("creating stream %s: %w", cfg.Stream, err)
		}
	}

	return &NATSPublisher{conn: conn, js: js, stream: cfg.Stream}, nil
}

// Publish writes the event to the subject derived from its type. The event ID
// doubles as the JetStream message ID so retries are deduplicated.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if _, err := p.js.Publish(event.Type, data, nats.Context(ctx), nats.MsgId(event.ID)); err != nil {
		return fmt.Errorf("publishing %s: %w", event.Type, err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
