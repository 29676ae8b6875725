package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrEvent  = "event"
	attrNotice = "notice"
)

// Instruments records hub activity as OpenTelemetry metrics.
type Instruments struct {
	dispatched metric.Int64Counter
	rejected   metric.Int64Counter
	sent       metric.Int64Counter
	dropped    metric.Int64Counter
	connected  metric.Int64UpDownCounter
	duration   metric.Float64Histogram
}

// NewInstruments registers the hub instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		ins Instruments
		err error
	)

	if ins.dispatched, err = meter.Int64Counter("chathub.events.dispatched",
		metric.WithDescription("Inbound events routed by the dispatcher")); err != nil {
		return nil, fmt.Errorf("failed to create dispatched counter: %w", err)
	}
	if ins.rejected, err = meter.Int64Counter("chathub.events.rejected",
		metric.WithDescription("Inbound events the dispatcher refused")); err != nil {
		return nil, fmt.Errorf("failed to create rejected counter: %w", err)
	}
	if ins.sent, err = meter.Int64Counter("chathub.deliveries.sent",
		metric.WithDescription("Frames queued to a client")); err != nil {
		return nil, fmt.Errorf("failed to create sent counter: %w", err)
	}
	if ins.dropped, err = meter.Int64Counter("chathub.deliveries.dropped",
		metric.WithDescription("Frames dropped because a client buffer was full")); err != nil {
		return nil, fmt.Errorf("failed to create dropped counter: %w", err)
	}
	if ins.connected, err = meter.Int64UpDownCounter("chathub.sessions.connected",
		metric.WithDescription("Open WebSocket sessions")); err != nil {
		return nil, fmt.Errorf("failed to create sessions counter: %w", err)
	}
	if ins.duration, err = meter.Float64Histogram("chathub.dispatch.duration",
		metric.WithDescription("Time spent dispatching one inbound event"),
		metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("failed to create dispatch histogram: %w", err)
	}

	return &ins, nil
}

// EventDispatched counts one handled event and its processing time.
func (i *Instruments) EventDispatched(ctx context.Context, event string, took time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrEvent, event))
	i.dispatched.Add(ctx, 1, attrs)
	i.duration.Record(ctx, float64(took.Microseconds())/1000, attrs)
}

func (i *Instruments) EventRejected(ctx context.Context, event string) {
	i.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String(attrEvent, event)))
}

func (i *Instruments) DeliverySent(ctx context.Context, notice string) {
	i.sent.Add(ctx, 1, metric.WithAttributes(attribute.String(attrNotice, notice)))
}

func (i *Instruments) DeliveryDropped(ctx context.Context, notice string) {
	i.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String(attrNotice, notice)))
}

func (i *Instruments) SessionOpened(ctx context.Context) {
	i.connected.Add(ctx, 1)
}

func (i *Instruments) SessionClosed(ctx context.Context) {
	i.connected.Add(ctx, -1)
}
