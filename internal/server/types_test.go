package server

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/presencehub/internal/presence"
)

func TestDecodeEvent(t *testing.T) {
	const session = presence.SessionID("s-1")

	tests := []struct {
		name string
		raw  string
		want presence.Event
	}{
		{
			name: "user_join",
			raw:  `{"type":"user_join","data":"Alice"}`,
			want: presence.Join{Session: session, DisplayName: "Alice"},
		},
		{
			name: "send_message keeps whitespace",
			raw:  `{"type":"send_message","data":"  hi  "}`,
			want: presence.SendPublic{Session: session, Body: "  hi  "},
		},
		{
			name: "private_message",
			raw:  `{"type":"private_message","data":{"to":" s-2 ","message":"psst"}}`,
			want: presence.SendPrivate{Session: session, To: "s-2", Body: "psst"},
		},
		{
			name: "typing",
			raw:  `{"type":"typing","data":true}`,
			want: presence.SetTyping{Session: session, IsTyping: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeEvent(session, []byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEventRejectsMalformedFrames(t *testing.T) {
	tests := map[string]string{
		"not json":          `hello`,
		"missing type":      `{"data":"x"}`,
		"unknown type":      `{"type":"shout","data":"x"}`,
		"missing data":      `{"type":"user_join"}`,
		"wrong data type":   `{"type":"typing","data":"yes"}`,
		"private as string": `{"type":"private_message","data":"psst"}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeEvent("s-1", []byte(raw))
			assert.ErrorIs(t, err, errMalformedEnvelope)
		})
	}
}

func TestNoticeEnvelope(t *testing.T) {
	alice := presence.User{SessionID: "s-1", DisplayName: "Alice"}
	msg := presence.Message{
		ID:              7,
		SenderName:      "Alice",
		SenderSessionID: "s-1",
		Body:            "hi",
		SentAt:          time.Date(2024, 3, 1, 12, 30, 0, 123_000_000, time.UTC),
		Scope:           presence.ScopePrivate,
	}

	tests := []struct {
		name   string
		notice presence.Notice
		want   string
	}{
		{
			name:   "roster",
			notice: presence.RosterUpdate{Users: []presence.User{alice}},
			want:   `{"type":"user_list","data":[{"id":"s-1","username":"Alice"}]}`,
		},
		{
			name:   "empty roster",
			notice: presence.RosterUpdate{Users: []presence.User{}},
			want:   `{"type":"user_list","data":[]}`,
		},
		{
			name:   "joined",
			notice: presence.UserJoined{User: alice},
			want:   `{"type":"user_joined","data":{"id":"s-1","username":"Alice"}}`,
		},
		{
			name:   "left",
			notice: presence.UserLeft{User: alice},
			want:   `{"type":"user_left","data":{"id":"s-1","username":"Alice"}}`,
		},
		{
			name:   "private message",
			notice: presence.PrivateMessage{Message: msg},
			want: `{"type":"private_message","data":{"id":7,"sender":"Alice","senderId":"s-1",` +
				`"message":"hi","timestamp":"2024-03-01T12:30:00.123Z","isPrivate":true}}`,
		},
		{
			name:   "typing nobody",
			notice: presence.TypingSnapshot{},
			want:   `{"type":"typing_users","data":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := noticeEnvelope(tt.notice)
			require.NoError(t, err)
			payload, err := encodeEnvelope(env)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(payload))
		})
	}
}

func TestNoticeEnvelopePublicMessage(t *testing.T) {
	env, err := noticeEnvelope(presence.PublicMessage{Message: presence.Message{ID: 1, Body: "x", Scope: presence.ScopePublic}})
	require.NoError(t, err)
	assert.Equal(t, TypeReceiveMessage, env.Type)

	var payload MessagePayload
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.False(t, payload.IsPrivate)
}

func TestIsExpectedCloseError(t *testing.T) {
	assert.True(t, isExpectedCloseError(nil))
	assert.True(t, isExpectedCloseError(errors.New("write tcp: use of closed network connection")))
	assert.True(t, isExpectedCloseError(errors.New("websocket: close sent")))
	assert.False(t, isExpectedCloseError(assert.AnError))
}
