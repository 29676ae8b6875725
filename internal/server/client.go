// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/presencehub/internal/presence"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one WebSocket connection, identified by the session id the hub
// assigned to it.
type Client struct {
	id             presence.SessionID
	conn           *websocket.Conn
	send           chan []byte
	hub            *Hub
	addr           string
	maxMessageSize int64
	rateLimiter    *rateLimiter
	rateLimit      RateLimitConfig
	log            *slog.Logger
}

// NewClient creates a Client with a fresh session id. conn may be nil in tests;
// the hub then skips the pumps and the caller drains GetSendChan itself.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	cfg := hub.cfg
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}
	id := presence.NewSessionID()

	return &Client{
		id:             id,
		conn:           conn,
		send:           make(chan []byte, cfg.SendBufferSize),
		hub:            hub,
		addr:           addr,
		maxMessageSize: cfg.MaxMessageSize,
		rateLimiter:    newRateLimiter(cfg.RateLimit),
		rateLimit:      cfg.RateLimit,
		log:            hub.log.With("session", id.String(), "addr", addr),
	}
}

// ID returns the session id of the connection.
func (c *Client) ID() presence.SessionID {
	return c.id
}

// GetSendChan returns the client's outgoing frames.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("error setting initial read deadline", slogKeyError, err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.Warn("error setting read deadline in pong handler", slogKeyError, err)
		}
		return nil
	})
}

// logReadError classifies why the read loop is ending.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("message exceeded maximum size", "limit", c.maxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Info("client disconnected", "reason", err.Error())
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.log.Info("client connection closed", "reason", err.Error())
	case websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseMessageTooBig):
		c.log.Warn("unexpected WebSocket close", slogKeyError, err)
	default:
		c.log.Warn("WebSocket read error", slogKeyError, err)
	}
}

func (c *Client) checkRateLimit() bool {
	if c.rateLimiter != nil && !c.rateLimiter.allow() {
		c.log.Warn("rate limit exceeded; discarding message",
			"burst", c.rateLimit.Burst, "interval", c.rateLimit.RefillInterval)
		return false
	}
	return true
}

// processMessage decodes one frame and queues the event on the hub. It
// returns false when the hub no longer accepts events.
func (c *Client) processMessage(raw []byte) bool {
	ev, err := decodeEvent(c.id, raw)
	if err != nil {
		c.log.Debug("ignoring invalid message", slogKeyError, err)
		return true
	}
	return c.hub.submit(c, ev)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.submit(c, presence.Disconnect{Session: c.id})
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("error closing connection in readPump", slogKeyError, err)
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if !c.checkRateLimit() {
			continue
		}
		if !c.processMessage(raw) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("error closing connection in writePump", slogKeyError, err)
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeFrames(frame, ok) {
				return
			}
		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeFrames writes frame plus whatever is already queued behind it in one
// text message, newline separated. A closed send channel sends a close frame.
func (c *Client) writeFrames(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("error setting write deadline", slogKeyError, err)
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
			c.log.Debug("error writing close message", slogKeyError, err)
		}
		return false
	}

	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		c.log.Warn("error creating writer", slogKeyError, err)
		return false
	}
	if _, err := w.Write(frame); err != nil {
		c.log.Warn("error writing message", slogKeyError, err)
		return false
	}

	for queued := len(c.send); queued > 0; queued-- {
		next, open := <-c.send
		if !open {
			break
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			c.log.Warn("error writing separator", slogKeyError, err)
			return false
		}
		if _, err := w.Write(next); err != nil {
			c.log.Warn("error writing queued message", slogKeyError, err)
			return false
		}
	}

	if err := w.Close(); err != nil {
		c.log.Warn("error closing writer", slogKeyError, err)
		return false
	}
	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("error setting write deadline for ping", slogKeyError, err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.log.Debug("error writing ping", slogKeyError, err)
		return false
	}
	return true
}
