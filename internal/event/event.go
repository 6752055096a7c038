// Package event provides the in-process publish/subscribe bus the editor
// core uses to announce document, view, and configuration changes to the
// render and integration layers.
package event

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dshills/keystorm/internal/event/topic"
)

// Event is a published occurrence. Events are immutable once created.
type Event struct {
	// Type is the hierarchical event type (e.g. "editor.document.changed").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload any

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the module that published the event.
	Source string
}

// NewEvent creates an event with the given type, payload, and source.
func NewEvent(eventType topic.Topic, payload any, source string) Event {
	return Event{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        generateID(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("t-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
