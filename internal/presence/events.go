package presence

// Event is an inbound event from one session. The set of variants is closed:
// only the types in this file implement it.
type Event interface {
	// Kind names the event for logs and metrics.
	Kind() string
	origin() SessionID
}

// Join announces a display name.
type Join struct {
	Session     SessionID
	DisplayName string
}

// SendPublic posts a message to the whole room.
type SendPublic struct {
	Session SessionID
	Body    string
}

// SendPrivate posts a message to a single target session.
type SendPrivate struct {
	Session SessionID
	To      SessionID
	Body    string
}

// SetTyping toggles the session's typing indicator.
type SetTyping struct {
	Session  SessionID
	IsTyping bool
}

// Disconnect is raised by the transport when the connection is gone.
type Disconnect struct {
	Session SessionID
}

func (Join) Kind() string        { return "join" }
func (SendPublic) Kind() string  { return "send_public" }
func (SendPrivate) Kind() string { return "send_private" }
func (SetTyping) Kind() string   { return "set_typing" }
func (Disconnect) Kind() string  { return "disconnect" }

func (e Join) origin() SessionID        { return e.Session }
func (e SendPublic) origin() SessionID  { return e.Session }
func (e SendPrivate) origin() SessionID { return e.Session }
func (e SetTyping) origin() SessionID   { return e.Session }
func (e Disconnect) origin() SessionID  { return e.Session }

// Origin returns the session that raised ev.
func Origin(ev Event) SessionID {
	return ev.origin()
}
