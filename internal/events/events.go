package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	PostCreated = "post.created"
	PostUpdated = "post.updated"
	PostTrashed = "post.trashed"
	PostDeleted = "post.deleted"
	TermCreated = "term.created"
	TermUpdated = "term.updated"
	TermDeleted = "term.deleted"
	SiteUpdated = "site.updated"
)

// ContentEvent describes a change to a stored object.
type ContentEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants, e.g. post.created
	Type string `json:"type"`

	// Subtype is the post type or taxonomy of the changed object
	Subtype string `json:"subtype,omitempty"`

	// ObjectID is the changed object's ID (0 for site settings)
	ObjectID int64 `json:"object_id"`

	// Payload holds event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *ContentEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewContentEvent creates an event; payload may be nil.
func NewContentEvent(eventType, subtype string, objectID int64, payload any) (*ContentEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &ContentEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Subtype:   subtype,
		ObjectID:  objectID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes content events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *ContentEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *ContentEvent) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ContentEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes events to the registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *ContentEvent) error
}

// Emit builds and publishes an event. A nil emitter is a no-op.
func Emit(ctx context.Context, e EventEmitter, eventType, subtype string, objectID int64, payload any) error {
	if e == nil {
		return nil
	}
	event, err := NewContentEvent(eventType, subtype, objectID, payload)
	if err != nil {
		return err
	}
	return e.EmitEvent(ctx, event)
}
