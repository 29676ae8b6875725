package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin  = "http://localhost:5173"
	waitTimeout = 2 * time.Second
)

// testConfig returns a config accepting the test origin with roomy limits.
func testConfig() Config {
	cfg := *NewConfig()
	cfg.AllowedOrigins = []string{testOrigin}
	cfg.RateLimit = RateLimitConfig{Burst: 1000, RefillInterval: time.Second}
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

// startHub runs a hub for the duration of the test.
func startHub(t *testing.T, cfg Config, opts ...HubOption) *Hub {
	t.Helper()
	hub := NewHub(cfg, opts...)
	go hub.Run()
	t.Cleanup(func() { _ = hub.Shutdown(2 * time.Second) })
	return hub
}

// frame is an outbound envelope as a test client decodes it.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func decodeFrames(t *testing.T, raw []byte) []frame {
	t.Helper()
	var frames []frame
	for _, line := range bytes.Split(raw, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var f frame
		require.NoError(t, json.Unmarshal(line, &f))
		frames = append(frames, f)
	}
	return frames
}

// channelPeer reads frames straight from a client's send buffer.
type channelPeer struct {
	t      *testing.T
	client *Client
}

func (p *channelPeer) next() (frame, bool) {
	p.t.Helper()
	select {
	case raw, ok := <-p.client.GetSendChan():
		if !ok {
			return frame{}, false
		}
		frames := decodeFrames(p.t, raw)
		require.Len(p.t, frames, 1)
		return frames[0], true
	case <-time.After(waitTimeout):
		p.t.Fatalf("timed out waiting for a frame for %s", p.client.ID())
		return frame{}, false
	}
}

// expect skips frames until one of type typ arrives and decodes its data into v.
func (p *channelPeer) expect(typ string, v any) {
	p.t.Helper()
	for {
		f, ok := p.next()
		require.True(p.t, ok, "send channel closed while waiting for %s", typ)
		if f.Type == typ {
			if v != nil {
				require.NoError(p.t, json.Unmarshal(f.Data, v))
			}
			return
		}
	}
}

// drain empties whatever is queued without waiting.
func (p *channelPeer) drain() {
	for {
		select {
		case _, ok := <-p.client.GetSendChan():
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// wsPeer is a real WebSocket client; batched frames are split on newlines.
// A read that times out leaves the connection unusable, so expectNone must be
// the last read on a peer.
type wsPeer struct {
	t       *testing.T
	conn    *websocket.Conn
	pending []frame
	seen    []string
}

func dialPeer(t *testing.T, serverURL string) *wsPeer {
	t.Helper()
	conn, err := connectWebSocket(wsURL(serverURL), testOrigin)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsPeer{t: t, conn: conn}
}

func wsURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// connectWebSocket dials url presenting origin.
func connectWebSocket(url, origin string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}
	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

func (p *wsPeer) emit(typ string, data any) {
	p.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteJSON(Envelope{Type: typ, Data: raw}))
}

func (p *wsPeer) next(timeout time.Duration) (frame, error) {
	if len(p.pending) > 0 {
		f := p.pending[0]
		p.pending = p.pending[1:]
		p.seen = append(p.seen, f.Type)
		return f, nil
	}
	if err := p.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return frame{}, err
	}
	_, raw, err := p.conn.ReadMessage()
	if err != nil {
		return frame{}, err
	}
	p.pending = decodeFrames(p.t, raw)
	return p.next(timeout)
}

// expect skips frames until one of type typ arrives and decodes it into v.
func (p *wsPeer) expect(typ string, v any) {
	p.t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		f, err := p.next(time.Until(deadline))
		require.NoError(p.t, err, "waiting for %s", typ)
		if f.Type == typ {
			if v != nil {
				require.NoError(p.t, json.Unmarshal(f.Data, v))
			}
			return
		}
	}
	p.t.Fatalf("timed out waiting for %s", typ)
}

// expectNone asserts no frame of type typ arrives within d.
func (p *wsPeer) expectNone(typ string, d time.Duration) {
	p.t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		f, err := p.next(time.Until(deadline))
		if err != nil {
			return
		}
		require.NotEqual(p.t, typ, f.Type, "unexpected %s frame: %s", typ, string(f.Data))
	}
}

// newTestServer serves a ready hub over httptest.
func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *Server) {
	t.Helper()
	srv := New(cfg)
	go srv.Hub().Run()
	srv.Health().SetReady()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Hub().Shutdown(2 * time.Second)
	})
	return ts, srv
}
