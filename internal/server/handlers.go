// Package server exposes HTTP handlers: the WebSocket upgrade, the read-only
// roster and history API, the banner and the built-in test page.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/presencehub/internal/health"
)

const snapshotTimeout = 5 * time.Second

// Handlers serves every HTTP route of the hub.
type Handlers struct {
	hub      *Hub
	health   *health.Checker
	origins  *originPolicy
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHandlers builds the handlers for hub. The origin allow-list comes from
// the hub configuration.
func NewHandlers(hub *Hub, checker *health.Checker) *Handlers {
	origins := newOriginPolicy(hub.cfg.AllowedOrigins, hub.log)
	return &Handlers{
		hub:     hub,
		health:  checker,
		origins: origins,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
		log: hub.log,
	}
}

// WebSocket upgrades GET requests and hands the connection to the hub.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}
	if !h.health.IsReady() {
		http.Error(w, "Server is not accepting connections.", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", slogKeyError, err)
		return
	}

	client := NewClient(conn, h.hub, r.RemoteAddr)
	if err := h.hub.Register(client); err != nil {
		h.log.Warn("hub refused connection", slogKeyError, err)
		_ = conn.Close()
	}
}

// Banner answers the root path with a plain-text banner.
func (h *Handlers) Banner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "Presence hub is running!")
}

// Messages returns the public history, oldest first.
func (h *Handlers) Messages(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	messages, err := h.hub.History(ctx)
	if err != nil {
		h.snapshotFailed(w, "history", err)
		return
	}
	h.writeJSON(w, toMessagePayloads(messages))
}

// Users returns the roster of joined users.
func (h *Handlers) Users(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	users, err := h.hub.Roster(ctx)
	if err != nil {
		h.snapshotFailed(w, "roster", err)
		return
	}
	h.writeJSON(w, toUserPayloads(users))
}

func (h *Handlers) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
	return false
}

func (h *Handlers) snapshotFailed(w http.ResponseWriter, what string, err error) {
	h.log.Warn("snapshot query failed", "snapshot", what, slogKeyError, err)
	http.Error(w, "Snapshot unavailable.", http.StatusServiceUnavailable)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("error writing JSON response", slogKeyError, err)
	}
}

// TestPage serves a small HTML client exercising join, public and private
// messages, the typing indicator and the roster.
func (h *Handlers) TestPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPageHTML); err != nil {
		h.log.Warn("error writing HTML response", slogKeyError, err)
	}
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Presence Hub Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { width: 300px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:hover { background-color: #005a87; }
        #users li { cursor: pointer; }
        #typing { color: gray; font-style: italic; min-height: 1em; }
    </style>
</head>
<body>
    <h1>Presence Hub Test</h1>

    <div>
        <input type="text" id="nameInput" placeholder="Your name...">
        <button onclick="join()">Join</button>
    </div>

    <h3>Online users (click to whisper)</h3>
    <ul id="users"></ul>

    <div id="messages"></div>
    <div id="typing"></div>

    <div>
        <input type="text" id="messageInput" placeholder="Type a message...">
        <button onclick="sendMessage()">Send</button>
        <span id="target"></span>
    </div>

    <script>
        const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(proto + location.host + '/ws');
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        let privateTarget = null;

        function emit(type, data) {
            ws.send(JSON.stringify({type: type, data: data}));
        }

        function addLine(text, color) {
            const el = document.createElement('div');
            el.style.color = color || 'black';
            el.textContent = text;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function join() {
            emit('user_join', document.getElementById('nameInput').value);
        }

        function sendMessage() {
            const text = messageInput.value.trim();
            if (!text) { return; }
            if (privateTarget) {
                emit('private_message', {to: privateTarget.id, message: text});
            } else {
                emit('send_message', text);
            }
            emit('typing', false);
            messageInput.value = '';
        }

        messageInput.addEventListener('input', function() {
            emit('typing', messageInput.value.length > 0);
        });
        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') { sendMessage(); }
        });

        function handle(env) {
            const d = env.data;
            switch (env.type) {
            case 'session':
                addLine('Connected as session ' + d.id, 'gray');
                break;
            case 'user_list': {
                const list = document.getElementById('users');
                list.innerHTML = '';
                d.forEach(function(u) {
                    const li = document.createElement('li');
                    li.textContent = u.username;
                    li.onclick = function() {
                        privateTarget = (privateTarget && privateTarget.id === u.id) ? null : u;
                        document.getElementById('target').textContent = privateTarget ? 'to ' + u.username : '';
                    };
                    list.appendChild(li);
                });
                break;
            }
            case 'user_joined':
                addLine(d.username + ' joined the chat', 'gray');
                break;
            case 'user_left':
                addLine(d.username + ' left the chat', 'gray');
                break;
            case 'receive_message':
                addLine(d.sender + ': ' + d.message, 'green');
                break;
            case 'private_message':
                addLine('(private) ' + d.sender + ': ' + d.message, 'purple');
                break;
            case 'typing_users':
                document.getElementById('typing').textContent =
                    d.length ? d.join(', ') + (d.length === 1 ? ' is' : ' are') + ' typing...' : '';
                break;
            }
        }

        ws.onmessage = function(event) {
            event.data.split('\n').forEach(function(line) {
                if (line) { handle(JSON.parse(line)); }
            });
        };
        ws.onclose = function() { addLine('Connection closed', 'red'); };
    </script>
</body>
</html>`
