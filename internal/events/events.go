// Package events publishes a CloudEvents-style notification after every
// successful write so that map views and lists can re-fetch instead of
// trusting their local copies.
package events

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JSONDataContentType is the content type of every event payload.
const JSONDataContentType = "application/json"

// Source identifies this service in emitted events.
const Source = "fibradoc"

// SubjectPrefix is the root of every published subject.
const SubjectPrefix = "fibradoc"

// Action is the kind of write an event reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is the envelope written to the bus.
type Event struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Subject         string          `json:"subject"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data,omitempty"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

var (
	readEventRandom = rand.Read
	marshalPayload  = json.Marshal
)

// New builds an event for a write on the collection named by plural (e.g.
// "caixas") affecting the record id. payload may be nil for deletes.
func New(plural string, action Action, id string, payload any) (Event, error) {
	plural = strings.TrimSpace(plural)
	if plural == "" {
		return Event{}, fmt.Errorf("collection is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, fmt.Errorf("record id is required")
	}

	eventID, err := newEventID()
	if err != nil {
		return Event{}, err
	}

	var data json.RawMessage
	if payload != nil {
		data, err = marshalPayload(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshaling %s event payload: %w", plural, err)
		}
	}

	return Event{
		ID:              eventID,
		Source:          Source,
		Type:            Subject(plural, action),
		Subject:         id,
		Time:            time.Now().UTC(),
		DataContentType: JSONDataContentType,
		Data:            data,
	}, nil
}

// Subject returns the bus subject for a write, e.g. "fibradoc.caixas.created".
func Subject(plural string, action Action) string {
	return SubjectPrefix + "." + plural + "." + string(action)
}

func newEventID() (string, error) {
	var id [16]byte
	if _, err := readEventRandom(id[:]); err != nil {
		return "", fmt.Errorf("generating event id: %w", err)
	}
	return "evt-" + hex.EncodeToString(id[:]), nil
}

// Noop discards every event. It is used when no bus is configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }
