package presence

// Notice is an outbound payload produced by the Dispatcher. Like Event, the
// set of variants is closed.
type Notice interface {
	notice()
}

// RosterUpdate carries the full list of joined users.
type RosterUpdate struct{ Users []User }

// UserJoined announces a successful join.
type UserJoined struct{ User User }

// UserLeft announces that a joined user disconnected.
type UserLeft struct{ User User }

// PublicMessage carries a room message.
type PublicMessage struct{ Message Message }

// PrivateMessage carries a point-to-point message.
type PrivateMessage struct{ Message Message }

// TypingSnapshot carries the names currently typing.
type TypingSnapshot struct{ Names []string }

func (RosterUpdate) notice()   {}
func (UserJoined) notice()     {}
func (UserLeft) notice()       {}
func (PublicMessage) notice()  {}
func (PrivateMessage) notice() {}
func (TypingSnapshot) notice() {}

// Audience selects the recipients of an Outbound. The zero value reaches
// nobody.
type Audience struct {
	Everyone bool
	Sessions []SessionID
}

// Everyone addresses every connected session.
func Everyone() Audience {
	return Audience{Everyone: true}
}

// Only addresses the listed sessions.
func Only(sessions ...SessionID) Audience {
	return Audience{Sessions: sessions}
}

// Outbound is one notice and who should receive it.
type Outbound struct {
	To     Audience
	Notice Notice
}
