package telemetry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger_Writes_Rotated_File(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "logs", "hub.log")

	logger, closer, err := NewLogger(LogConfig{Level: "debug", File: path, MaxSizeMB: 1})
	req.NoError(err)

	logger.Info("hub started", "port", ":5000")
	req.NoError(closer.Close())

	data, err := os.ReadFile(path)
	req.NoError(err)
	req.Contains(string(data), `"msg":"hub started"`)
	req.Contains(string(data), `"port":":5000"`)
}

func TestSetup_Without_Dir_Is_Noop(t *testing.T) {
	req := require.New(t)

	providers, err := Setup(context.Background(), Config{})
	req.NoError(err)

	ins, err := NewInstruments(providers.Meter())
	req.NoError(err)
	ins.EventDispatched(context.Background(), "join", time.Millisecond)
	req.NoError(providers.Shutdown(context.Background()))
}

func TestInstruments_Record(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	ins, err := NewInstruments(provider.Meter("test"))
	req.NoError(err)

	ins.EventDispatched(ctx, "join", 2*time.Millisecond)
	ins.EventDispatched(ctx, "join", time.Millisecond)
	ins.EventRejected(ctx, "send_public")
	ins.DeliverySent(ctx, "user_list")
	ins.DeliveryDropped(ctx, "user_list")
	ins.SessionOpened(ctx)
	ins.SessionOpened(ctx)
	ins.SessionClosed(ctx)

	var rm metricdata.ResourceMetrics
	req.NoError(reader.Collect(ctx, &rm))
	req.Len(rm.ScopeMetrics, 1)

	sums := map[string]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	req.Equal(int64(2), sums["chathub.events.dispatched"])
	req.Equal(int64(1), sums["chathub.events.rejected"])
	req.Equal(int64(1), sums["chathub.deliveries.sent"])
	req.Equal(int64(1), sums["chathub.deliveries.dropped"])
	req.Equal(int64(1), sums["chathub.sessions.connected"])
}
