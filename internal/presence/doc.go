// Package presence implements the session, presence and broadcast core of the
// chat hub: who is connected, who is typing, the bounded public history and the
// routing of public and private messages.
//
// Nothing in this package locks. Every type is owned by a single Dispatcher and
// is expected to be driven from one goroutine at a time (the hub event loop).
package presence
