package presence

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Typing aggregates the sessions currently flagged as typing.
type Typing struct {
	registry *Registry
	names    map[SessionID]string
}

// NewTyping returns an empty typing set backed by registry for names.
func NewTyping(registry *Registry) *Typing {
	return &Typing{registry: registry, names: make(map[SessionID]string)}
}

// SetTyping records the typing state of session and returns the new snapshot.
func (t *Typing) SetTyping(session SessionID, isTyping bool) ([]string, error) {
	user, err := t.registry.Resolve(session)
	if err != nil {
		return nil, fmt.Errorf("typing from %s: %w", session, ErrNotJoined)
	}

	if isTyping {
		t.names[session] = user.DisplayName
	} else {
		delete(t.names, session)
	}
	return t.Snapshot(), nil
}

// Clear drops session from the set whether or not it was typing.
func (t *Typing) Clear(session SessionID) []string {
	delete(t.names, session)
	return t.Snapshot()
}

// Snapshot lists the display names currently typing. Callers must not rely
// on the order.
func (t *Typing) Snapshot() []string {
	names := lo.Values(t.names)
	sort.Strings(names)
	return names
}

func (t *Typing) reset() {
	clear(t.names)
}
