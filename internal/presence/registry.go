package presence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

type registration struct {
	user User
	seq  uint64
}

// Registry is the single source of truth for which sessions have joined and
// under which display name.
type Registry struct {
	users map[SessionID]registration
	seq   uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[SessionID]registration)}
}

// Join binds a trimmed display name to the session. Joining again overwrites
// the name but keeps the session's place in the roster.
func (r *Registry) Join(session SessionID, displayName string) (User, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return User{}, fmt.Errorf("join %s: %w", session, ErrInvalidName)
	}

	user := User{SessionID: session, DisplayName: name}
	existing, ok := r.users[session]
	if ok {
		existing.user = user
		r.users[session] = existing
		return user, nil
	}

	r.seq++
	r.users[session] = registration{user: user, seq: r.seq}
	return user, nil
}

// Leave forgets the session. Unknown sessions are ignored.
func (r *Registry) Leave(session SessionID) {
	delete(r.users, session)
}

// Resolve returns the user bound to the session.
func (r *Registry) Resolve(session SessionID) (User, error) {
	reg, ok := r.users[session]
	if !ok {
		return User{}, fmt.Errorf("resolve %s: %w", session, ErrNotFound)
	}
	return reg.user, nil
}

// List returns every joined user in the order the sessions first joined.
func (r *Registry) List() []User {
	regs := lo.Values(r.users)
	sort.Slice(regs, func(i, j int) bool { return regs[i].seq < regs[j].seq })
	return lo.Map(regs, func(reg registration, _ int) User { return reg.user })
}

// Len reports the number of joined sessions.
func (r *Registry) Len() int {
	return len(r.users)
}

func (r *Registry) reset() {
	clear(r.users)
}
