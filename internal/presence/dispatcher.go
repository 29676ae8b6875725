package presence

import (
	"errors"
	"fmt"
	"time"
)

// Dispatcher owns the registry, history and typing set and routes every inbound
// event to exactly one of them. It is not safe for concurrent use.
type Dispatcher struct {
	registry    *Registry
	history     *History
	typing      *Typing
	broadcaster *Broadcaster
	router      *Router
}

// Option customises a Dispatcher.
type Option func(*dispatcherOptions)

type dispatcherOptions struct {
	clock           Clock
	historyCapacity int
}

// WithClock replaces time.Now for message timestamps.
func WithClock(clock Clock) Option {
	return func(o *dispatcherOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithHistoryCapacity overrides HistoryCapacity.
func WithHistoryCapacity(capacity int) Option {
	return func(o *dispatcherOptions) {
		o.historyCapacity = capacity
	}
}

// NewDispatcher builds the core with empty state.
func NewDispatcher(opts ...Option) *Dispatcher {
	o := dispatcherOptions{clock: time.Now, historyCapacity: HistoryCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	var seq Sequence
	registry := NewRegistry()
	history := NewHistory(o.historyCapacity)
	return &Dispatcher{
		registry:    registry,
		history:     history,
		typing:      NewTyping(registry),
		broadcaster: NewBroadcaster(registry, history, &seq, o.clock),
		router:      NewRouter(registry, &seq, o.clock),
	}
}

// Dispatch applies ev and returns what must be delivered. A rejected event
// returns its error and no deliveries; callers log it and move on.
func (d *Dispatcher) Dispatch(ev Event) ([]Outbound, error) {
	switch e := ev.(type) {
	case Join:
		return d.join(e)
	case SendPublic:
		return d.sendPublic(e)
	case SendPrivate:
		return d.sendPrivate(e)
	case SetTyping:
		return d.setTyping(e)
	case Disconnect:
		return d.disconnect(e), nil
	case nil:
		return nil, errors.New("dispatch: nil event")
	default:
		return nil, fmt.Errorf("dispatch: unsupported event %T", ev)
	}
}

func (d *Dispatcher) join(e Join) ([]Outbound, error) {
	user, err := d.registry.Join(e.Session, e.DisplayName)
	if err != nil {
		return nil, err
	}
	return []Outbound{
		{To: Everyone(), Notice: RosterUpdate{Users: d.registry.List()}},
		{To: Everyone(), Notice: UserJoined{User: user}},
	}, nil
}

func (d *Dispatcher) sendPublic(e SendPublic) ([]Outbound, error) {
	msg, err := d.broadcaster.Publish(e.Session, e.Body)
	if err != nil {
		return nil, err
	}
	return []Outbound{{To: Everyone(), Notice: PublicMessage{Message: msg}}}, nil
}

func (d *Dispatcher) sendPrivate(e SendPrivate) ([]Outbound, error) {
	msg, recipients, err := d.router.Route(e.Session, e.To, e.Body)
	if err != nil {
		return nil, err
	}
	return []Outbound{{To: Only(recipients...), Notice: PrivateMessage{Message: msg}}}, nil
}

func (d *Dispatcher) setTyping(e SetTyping) ([]Outbound, error) {
	names, err := d.typing.SetTyping(e.Session, e.IsTyping)
	if err != nil {
		return nil, err
	}
	return []Outbound{{To: Everyone(), Notice: TypingSnapshot{Names: names}}}, nil
}

// disconnect runs for joined and never-joined sessions alike; only the
// former produce a UserLeft.
func (d *Dispatcher) disconnect(e Disconnect) []Outbound {
	var out []Outbound
	if user, err := d.registry.Resolve(e.Session); err == nil {
		out = append(out, Outbound{To: Everyone(), Notice: UserLeft{User: user}})
	}

	names := d.typing.Clear(e.Session)
	d.registry.Leave(e.Session)

	return append(out,
		Outbound{To: Everyone(), Notice: RosterUpdate{Users: d.registry.List()}},
		Outbound{To: Everyone(), Notice: TypingSnapshot{Names: names}},
	)
}

// Roster returns the joined users.
func (d *Dispatcher) Roster() []User {
	return d.registry.List()
}

// History returns the retained public messages, oldest first.
func (d *Dispatcher) History() []Message {
	return d.broadcaster.History()
}

// Typing returns the names currently typing.
func (d *Dispatcher) Typing() []string {
	return d.typing.Snapshot()
}

// Close drops all state. The dispatcher is empty but still usable afterwards.
func (d *Dispatcher) Close() {
	d.typing.reset()
	d.registry.reset()
	d.history.reset()
}
