package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Event is something that happened in the application.
// Concrete events embed [Meta] to satisfy this interface, and add their own payload fields.
type Event interface {
	// EventID is a globally unique identifier assigned when the event was constructed.
	EventID() string
	// OccurredAt is the UTC wall-clock time the event was constructed.
	OccurredAt() time.Time
}

// Meta carries the identity of an [Event].
// Its fields are unexported so an event's identity can't change once it's constructed.
//
// Always create a Meta with [NewMeta], the zero value has no ID or timestamp.
type Meta struct {
	id uuid.UUID
	at time.Time
}

// NewMeta assigns a new random ID and the current time.
func NewMeta() Meta {
	return Meta{
		id: uuid.New(),
		at: time.Now().UTC(),
	}
}

func (m Meta) EventID() string {
	return m.id.String()
}

func (m Meta) OccurredAt() time.Time {
	return m.at
}
