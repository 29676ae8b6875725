package server

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_instruments.go -package=mocks . Instruments

// Instruments receives hub activity for metrics. telemetry.Instruments is the
// production implementation.
type Instruments interface {
	EventDispatched(ctx context.Context, event string, took time.Duration)
	EventRejected(ctx context.Context, event string)
	DeliverySent(ctx context.Context, notice string)
	DeliveryDropped(ctx context.Context, notice string)
	SessionOpened(ctx context.Context)
	SessionClosed(ctx context.Context)
}

type noopInstruments struct{}

func (noopInstruments) EventDispatched(context.Context, string, time.Duration) {}
func (noopInstruments) EventRejected(context.Context, string)                  {}
func (noopInstruments) DeliverySent(context.Context, string)                   {}
func (noopInstruments) DeliveryDropped(context.Context, string)                {}
func (noopInstruments) SessionOpened(context.Context)                          {}
func (noopInstruments) SessionClosed(context.Context)                          {}
