// Package server coordinates client registration, event dispatch, snapshot
// queries and delivery for the chat hub via the Hub type.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Tyrowin/presencehub/internal/presence"
)

const slogKeyError = "error"

// ErrHubStopped is returned by calls made after the hub shut down.
var ErrHubStopped = errors.New("hub stopped")

type inbound struct {
	client *Client
	event  presence.Event
}

// Hub owns the presence core and every connected client. All state is touched
// only from the Run goroutine, one event at a time; other goroutines talk to it
// through channels.
type Hub struct {
	cfg         Config
	dispatcher  *presence.Dispatcher
	clients     map[presence.SessionID]*Client
	register    chan *Client
	inbound     chan inbound
	queries     chan func(*presence.Dispatcher)
	log         *slog.Logger
	instruments Instruments
	tracer      trace.Tracer
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// HubOption customises a Hub.
type HubOption func(*hubOptions)

type hubOptions struct {
	log         *slog.Logger
	instruments Instruments
	tracer      trace.Tracer
	presence    []presence.Option
}

// WithLogger sets the hub logger.
func WithLogger(log *slog.Logger) HubOption {
	return func(o *hubOptions) { o.log = log }
}

// WithInstruments sets where hub metrics go.
func WithInstruments(ins Instruments) HubOption {
	return func(o *hubOptions) { o.instruments = ins }
}

// WithTracer sets the tracer used for per-event spans.
func WithTracer(tracer trace.Tracer) HubOption {
	return func(o *hubOptions) { o.tracer = tracer }
}

// WithPresenceOptions forwards options to the presence dispatcher.
func WithPresenceOptions(opts ...presence.Option) HubOption {
	return func(o *hubOptions) { o.presence = append(o.presence, opts...) }
}

// NewHub creates a Hub with empty presence state. Call Run to start it.
func NewHub(cfg Config, opts ...HubOption) *Hub {
	o := hubOptions{
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		instruments: noopInstruments{},
		tracer:      tracenoop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:         cfg.withDefaults(),
		dispatcher:  presence.NewDispatcher(o.presence...),
		clients:     make(map[presence.SessionID]*Client),
		register:    make(chan *Client),
		inbound:     make(chan inbound),
		queries:     make(chan func(*presence.Dispatcher)),
		log:         o.log,
		instruments: o.instruments,
		tracer:      o.tracer,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Register hands a new connection to the hub, which starts its pumps and
// greets it with its session id.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// submit queues an event from client. It returns false once the hub stopped.
func (h *Hub) submit(client *Client, ev presence.Event) bool {
	select {
	case h.inbound <- inbound{client: client, event: ev}:
		return true
	case <-h.done:
		return false
	}
}

// Roster returns the joined users.
func (h *Hub) Roster(ctx context.Context) ([]presence.User, error) {
	var users []presence.User
	err := h.query(ctx, func(d *presence.Dispatcher) { users = d.Roster() })
	return users, err
}

// History returns the retained public messages, oldest first.
func (h *Hub) History(ctx context.Context) ([]presence.Message, error) {
	var messages []presence.Message
	err := h.query(ctx, func(d *presence.Dispatcher) { messages = d.History() })
	return messages, err
}

// Typing returns the names currently typing.
func (h *Hub) Typing(ctx context.Context) ([]string, error) {
	var names []string
	err := h.query(ctx, func(d *presence.Dispatcher) { names = d.Typing() })
	return names, err
}

// query runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) query(ctx context.Context, fn func(*presence.Dispatcher)) error {
	finished := make(chan struct{})
	run := func(d *presence.Dispatcher) {
		defer close(finished)
		fn(d)
	}

	select {
	case h.queries <- run:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the hub's main event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)
	h.log.Info("hub started")

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			h.dispatcher.Close()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case in := <-h.inbound:
			h.handleInbound(in)

		case query := <-h.queries:
			query(h.dispatcher)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	if client == nil {
		h.log.Warn("received nil client registration; skipping")
		return
	}

	h.clients[client.id] = client
	h.instruments.SessionOpened(h.ctx)
	h.log.Info("client registered", "session", client.id, "addr", client.addr, "clients", len(h.clients))

	if client.conn != nil {
		h.wg.Add(2)
		go func() {
			defer h.wg.Done()
			client.writePump()
		}()
		go func() {
			defer h.wg.Done()
			client.readPump()
		}()
	}

	hello := OutboundEnvelope{Type: TypeSession, Data: SessionPayload{ID: client.id.String()}}
	if payload, err := encodeEnvelope(hello); err == nil {
		h.send(h.ctx, client, hello.Type, payload)
	}
}

func (h *Hub) handleInbound(in inbound) {
	if _, ok := in.event.(presence.Disconnect); ok {
		h.removeClient(in.client)
		h.dispatch(in.event)
		return
	}

	if _, ok := h.clients[in.client.id]; !ok {
		h.log.Debug("ignoring event from unregistered client", "session", in.client.id, "event", in.event.Kind())
		return
	}
	h.dispatch(in.event)
}

// removeClient forgets client and closes its send buffer. The caller still
// dispatches the Disconnect so the presence state is cleaned up.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client.id]; !ok {
		return
	}
	delete(h.clients, client.id)
	close(client.send)
	h.instruments.SessionClosed(h.ctx)
	h.log.Info("client unregistered", "session", client.id, "addr", client.addr, "clients", len(h.clients))
}

func (h *Hub) dispatch(ev presence.Event) {
	ctx, span := h.tracer.Start(h.ctx, "hub.dispatch", trace.WithAttributes(
		attribute.String("event", ev.Kind()),
		attribute.String("session", presence.Origin(ev).String()),
	))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("recovered from panic in dispatch", "event", ev.Kind(), "panic", r)
			span.SetStatus(codes.Error, "panic")
		}
	}()

	start := time.Now()
	out, err := h.dispatcher.Dispatch(ev)
	if err != nil {
		// Rejected events are absorbed: the client sees no broadcast.
		h.log.Debug("event rejected", "event", ev.Kind(), "session", presence.Origin(ev), slogKeyError, err)
		span.RecordError(err)
		h.instruments.EventRejected(ctx, ev.Kind())
		return
	}

	for _, o := range out {
		h.deliver(ctx, o)
	}
	h.instruments.EventDispatched(ctx, ev.Kind(), time.Since(start))
}

// deliver renders the notice once and queues it for every recipient still
// connected.
func (h *Hub) deliver(ctx context.Context, o presence.Outbound) {
	env, err := noticeEnvelope(o.Notice)
	if err != nil {
		h.log.Error("cannot render notice", slogKeyError, err)
		return
	}
	payload, err := encodeEnvelope(env)
	if err != nil {
		h.log.Error("cannot encode notice", slogKeyError, err)
		return
	}

	recipients := h.recipients(o.To)
	h.log.Debug("delivering", "type", env.Type, "recipients", len(recipients))
	for _, client := range recipients {
		h.send(ctx, client, env.Type, payload)
	}
}

func (h *Hub) recipients(a presence.Audience) []*Client {
	if a.Everyone {
		return lo.Values(h.clients)
	}
	return lo.FilterMap(a.Sessions, func(id presence.SessionID, _ int) (*Client, bool) {
		client, ok := h.clients[id]
		return client, ok
	})
}

// send never blocks: a full buffer drops the frame for that client only.
func (h *Hub) send(ctx context.Context, client *Client, kind string, payload []byte) {
	select {
	case client.send <- payload:
		h.instruments.DeliverySent(ctx, kind)
	default:
		h.log.Warn("dropping frame for slow client", "session", client.id, "type", kind)
		h.instruments.DeliveryDropped(ctx, kind)
	}
}

// shutdownClients closes every connection and send buffer.
func (h *Hub) shutdownClients() {
	h.log.Info("shutting down all client connections", "clients", len(h.clients))

	for id, client := range h.clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.log.Warn("error closing client connection", "session", id, slogKeyError, err)
			}
		}
		close(client.send)
		delete(h.clients, id)
		h.instruments.SessionClosed(h.ctx)
	}
}

// Shutdown stops the event loop and waits for client goroutines, up to
// timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("initiating hub shutdown")
	h.cancel()

	deadline := time.After(timeout)
	select {
	case <-h.done:
	case <-deadline:
		h.log.Warn("hub shutdown timeout reached before the event loop stopped")
		return context.DeadlineExceeded
	}

	pumpsDone := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(pumpsDone)
	}()

	select {
	case <-pumpsDone:
		h.log.Info("hub shutdown completed")
		return nil
	case <-deadline:
		h.log.Warn("hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
