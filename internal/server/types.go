// Package server defines the JSON envelopes exchanged over the WebSocket and
// the conversions between them and the presence core.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Tyrowin/presencehub/internal/presence"
)

// Inbound envelope types.
const (
	TypeUserJoin       = "user_join"
	TypeSendMessage    = "send_message"
	TypePrivateMessage = "private_message"
	TypeTyping         = "typing"
)

// Outbound envelope types. private_message is shared with the inbound set.
const (
	TypeSession        = "session"
	TypeUserList       = "user_list"
	TypeUserJoined     = "user_joined"
	TypeUserLeft       = "user_left"
	TypeReceiveMessage = "receive_message"
	TypeTypingUsers    = "typing_users"
)

// Envelope is the frame a client sends.
type Envelope struct {
	Type string          `json:"type" validate:"required,oneof=user_join send_message private_message typing"`
	Data json.RawMessage `json:"data"`
}

// OutboundEnvelope is the frame the hub sends.
type OutboundEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// PrivateMessageRequest is the data of an inbound private_message.
type PrivateMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// UserPayload is a roster entry as clients see it.
type UserPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// MessagePayload is a chat message as clients see it.
type MessagePayload struct {
	ID        uint64 `json:"id"`
	Sender    string `json:"sender"`
	SenderID  string `json:"senderId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	IsPrivate bool   `json:"isPrivate"`
}

// SessionPayload tells a freshly connected client its own id.
type SessionPayload struct {
	ID string `json:"id"`
}

var errMalformedEnvelope = errors.New("malformed envelope")

// decodeEvent turns one raw client frame into a presence event for session.
func decodeEvent(session presence.SessionID, raw []byte) (presence.Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedEnvelope, err)
	}
	if err := validate.Struct(env); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedEnvelope, err)
	}

	switch env.Type {
	case TypeUserJoin:
		var name string
		if err := decodeData(env, &name); err != nil {
			return nil, err
		}
		return presence.Join{Session: session, DisplayName: name}, nil

	case TypeSendMessage:
		var body string
		if err := decodeData(env, &body); err != nil {
			return nil, err
		}
		return presence.SendPublic{Session: session, Body: body}, nil

	case TypePrivateMessage:
		var req PrivateMessageRequest
		if err := decodeData(env, &req); err != nil {
			return nil, err
		}
		return presence.SendPrivate{
			Session: session,
			To:      presence.SessionID(strings.TrimSpace(req.To)),
			Body:    req.Message,
		}, nil

	case TypeTyping:
		var typing bool
		if err := decodeData(env, &typing); err != nil {
			return nil, err
		}
		return presence.SetTyping{Session: session, IsTyping: typing}, nil
	}

	return nil, fmt.Errorf("%w: unknown type %q", errMalformedEnvelope, env.Type)
}

func decodeData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s without data", errMalformedEnvelope, env.Type)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s data: %w", errMalformedEnvelope, env.Type, err)
	}
	return nil
}

// noticeEnvelope maps a presence notice onto its wire frame.
func noticeEnvelope(n presence.Notice) (OutboundEnvelope, error) {
	switch n := n.(type) {
	case presence.RosterUpdate:
		return OutboundEnvelope{Type: TypeUserList, Data: toUserPayloads(n.Users)}, nil
	case presence.UserJoined:
		return OutboundEnvelope{Type: TypeUserJoined, Data: toUserPayload(n.User)}, nil
	case presence.UserLeft:
		return OutboundEnvelope{Type: TypeUserLeft, Data: toUserPayload(n.User)}, nil
	case presence.PublicMessage:
		return OutboundEnvelope{Type: TypeReceiveMessage, Data: toMessagePayload(n.Message)}, nil
	case presence.PrivateMessage:
		return OutboundEnvelope{Type: TypePrivateMessage, Data: toMessagePayload(n.Message)}, nil
	case presence.TypingSnapshot:
		names := n.Names
		if names == nil {
			names = []string{}
		}
		return OutboundEnvelope{Type: TypeTypingUsers, Data: names}, nil
	}
	return OutboundEnvelope{}, fmt.Errorf("unhandled notice %T", n)
}

func encodeEnvelope(env OutboundEnvelope) ([]byte, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", env.Type, err)
	}
	return payload, nil
}

func toUserPayload(u presence.User) UserPayload {
	return UserPayload{ID: u.SessionID.String(), Username: u.DisplayName}
}

func toUserPayloads(users []presence.User) []UserPayload {
	return lo.Map(users, func(u presence.User, _ int) UserPayload { return toUserPayload(u) })
}

func toMessagePayload(m presence.Message) MessagePayload {
	return MessagePayload{
		ID:        m.ID,
		Sender:    m.SenderName,
		SenderID:  m.SenderSessionID.String(),
		Message:   m.Body,
		Timestamp: m.Timestamp(),
		IsPrivate: m.Scope == presence.ScopePrivate,
	}
}

func toMessagePayloads(messages []presence.Message) []MessagePayload {
	return lo.Map(messages, func(m presence.Message, _ int) MessagePayload { return toMessagePayload(m) })
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
