package presence

import (
	"fmt"
	"strings"
)

// Router delivers private messages between two sessions.
type Router struct {
	registry *Registry
	seq      *Sequence
	now      Clock
}

// NewRouter returns a router resolving both ends through registry.
func NewRouter(registry *Registry, seq *Sequence, now Clock) *Router {
	return &Router{registry: registry, seq: seq, now: now}
}

// Route builds a private message and the sessions it must reach. The sender
// always gets an echo; the target is added only when it is a joined session.
// A vanished target is not an error.
func (r *Router) Route(from, to SessionID, body string) (Message, []SessionID, error) {
	sender, err := r.registry.Resolve(from)
	if err != nil {
		return Message{}, nil, fmt.Errorf("private message from %s: %w", from, ErrNotJoined)
	}
	if strings.TrimSpace(body) == "" {
		return Message{}, nil, fmt.Errorf("private message from %s: %w", from, ErrEmptyBody)
	}

	msg := newMessage(r.seq, r.now, sender, body, ScopePrivate)

	recipients := []SessionID{from}
	if to != from {
		if _, err := r.registry.Resolve(to); err == nil {
			recipients = []SessionID{to, from}
		}
	}
	return msg, recipients, nil
}
