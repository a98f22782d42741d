package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist in its collection.
var ErrNotFound = errors.New("not found")

// Participant represents a registered chat participant.
type Participant struct {
	ID   string
	Name string
	// LastHeartbeat is the last liveness signal, in milliseconds since epoch.
	LastHeartbeat int64
}

// MessageType classifies messages by visibility semantics.
type MessageType string

const (
	// MessageTypeStatus marks system-generated notices (join/leave), visible to all.
	MessageTypeStatus MessageType = "status"
	// MessageTypePublic marks ordinary messages, visible to all.
	MessageTypePublic MessageType = "message"
	// MessageTypePrivate marks messages visible only to sender and recipient.
	MessageTypePrivate MessageType = "private_message"
)

// Message represents a persisted chat message.
type Message struct {
	ID   string
	From string
	To   string
	Text string
	Type MessageType
	// Time is the server-assigned wall clock stamp, formatted HH:MM:SS.
	Time string
}

// ParticipantStore handles participant persistence.
type ParticipantStore interface {
	// InsertParticipant creates a participant and assigns its ID.
	InsertParticipant(ctx context.Context, name string, lastHeartbeat int64) (*Participant, error)

	// GetParticipantByName retrieves a participant by name.
	// Returns ErrNotFound when no such participant exists.
	GetParticipantByName(ctx context.Context, name string) (*Participant, error)

	// ListParticipants retrieves all registered participants.
	ListParticipants(ctx context.Context) ([]*Participant, error)

	// ListStaleParticipants retrieves participants whose last heartbeat is
	// strictly older than the given millisecond timestamp.
	ListStaleParticipants(ctx context.Context, olderThan int64) ([]*Participant, error)

	// UpdateHeartbeat refreshes a participant's last heartbeat.
	// Returns ErrNotFound when no such participant exists.
	UpdateHeartbeat(ctx context.Context, name string, lastHeartbeat int64) error

	// DeleteParticipant removes a participant by ID.
	// Returns ErrNotFound when no such participant exists.
	DeleteParticipant(ctx context.Context, id string) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// InsertMessage persists a message and assigns its ID.
	InsertMessage(ctx context.Context, msg *Message) (*Message, error)

	// GetMessageByID retrieves a message by ID.
	// Returns ErrNotFound when no such message exists.
	GetMessageByID(ctx context.Context, id string) (*Message, error)

	// ListMessages retrieves all messages in insertion order.
	ListMessages(ctx context.Context) ([]*Message, error)

	// UpdateMessage overwrites the mutable fields of an existing message.
	// Returns ErrNotFound when no such message exists.
	UpdateMessage(ctx context.Context, msg *Message) error

	// DeleteMessage removes a message by ID.
	// Returns ErrNotFound when no such message exists.
	DeleteMessage(ctx context.Context, id string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	ParticipantStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
