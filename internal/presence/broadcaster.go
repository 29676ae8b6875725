package presence

import (
	"fmt"
	"strings"
)

// Broadcaster turns public sends into messages and keeps the bounded history.
type Broadcaster struct {
	registry *Registry
	history  *History
	seq      *Sequence
	now      Clock
}

// NewBroadcaster wires a broadcaster to the registry it resolves senders from.
// The sequence is shared with the Router so public and private ids never clash.
func NewBroadcaster(registry *Registry, history *History, seq *Sequence, now Clock) *Broadcaster {
	return &Broadcaster{registry: registry, history: history, seq: seq, now: now}
}

// Publish records a public message from session. The returned message is
// meant for every connected session, the sender included.
func (b *Broadcaster) Publish(session SessionID, body string) (Message, error) {
	sender, err := b.registry.Resolve(session)
	if err != nil {
		return Message{}, fmt.Errorf("publish from %s: %w", session, ErrNotJoined)
	}
	if strings.TrimSpace(body) == "" {
		return Message{}, fmt.Errorf("publish from %s: %w", session, ErrEmptyBody)
	}

	msg := newMessage(b.seq, b.now, sender, body, ScopePublic)
	b.history.Append(msg)
	return msg, nil
}

// History returns the retained public messages, oldest first.
func (b *Broadcaster) History() []Message {
	return b.history.Snapshot()
}

func newMessage(seq *Sequence, now Clock, sender User, body string, scope Scope) Message {
	return Message{
		ID:              seq.Next(),
		SenderName:      sender.DisplayName,
		SenderSessionID: sender.SessionID,
		Body:            body,
		SentAt:          now().UTC(),
		Scope:           scope,
	}
}
