package presence

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout renders message timestamps as UTC ISO-8601 with millisecond
// precision, e.g. 2026-10-17T09:30:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// SessionID identifies one live connection. It carries no payload.
type SessionID string

// NewSessionID allocates a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func (id SessionID) String() string {
	return string(id)
}

// User is a joined session and the display name it announced.
type User struct {
	SessionID   SessionID
	DisplayName string
}

// Scope tells whether a message went to the room or to a private pair.
type Scope string

const (
	ScopePublic  Scope = "public"
	ScopePrivate Scope = "private"
)

// Message is an immutable chat message. IDs come from a Sequence and never
// from the wall clock.
type Message struct {
	ID              uint64
	SenderName      string
	SenderSessionID SessionID
	Body            string
	SentAt          time.Time
	Scope           Scope
}

// Timestamp formats SentAt with TimestampLayout.
func (m Message) Timestamp() string {
	return m.SentAt.UTC().Format(TimestampLayout)
}

// Clock returns the current time. Tests replace it to freeze time.
type Clock func() time.Time

// Sequence hands out strictly increasing message ids starting at 1.
type Sequence struct {
	last uint64
}

// Next returns the next id.
func (s *Sequence) Next() uint64 {
	s.last++
	return s.last
}
