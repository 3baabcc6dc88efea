// Package broadcast fans out data-change and UI-instruction events to every
// connected front-end over websockets.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
	"github.com/coder/websocket"
)

// ErrNoClients is returned when a broadcast had nobody to deliver to.
var ErrNoClients = errors.New("broadcast: no connected clients")

const writeTimeout = 5 * time.Second

// envelope is the wire frame for the event channel. Event names mirror the
// two channels the front-end subscribes to.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks connected UI clients and broadcasts events to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. The read loop only drains control frames; clients never send
// data on this channel.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept event client", "error", err)
		return
	}

	h.register(ws)
	defer h.unregister(ws)
	defer func() {
		_ = ws.Close(websocket.StatusNormalClosure, "server closing")
	}()

	slog.Info("Event client connected", "ip", r.RemoteAddr)

	ctx := r.Context()
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			slog.Debug("Event client disconnected", "error", err)
			return
		}
	}
}

func (h *Hub) register(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ws] = struct{}{}
}

func (h *Hub) unregister(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ws)
}

// DataUpdate broadcasts a store change to all clients.
func (h *Hub) DataUpdate(event domain.DataEvent) error {
	return h.send(envelope{Event: "data_update", Data: event})
}

// UIInstruction broadcasts a UI command to all clients.
func (h *Hub) UIInstruction(inst domain.Instruction) error {
	return h.send(envelope{Event: "ui_instruction", Data: inst})
}

// send writes the frame to every client. A failed write drops that client;
// the broadcast itself only fails when there was nobody to deliver to.
func (h *Hub) send(env envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for ws := range h.clients {
		conns = append(conns, ws)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return ErrNoClients
	}

	for _, ws := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := ws.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			slog.Debug("Dropping dead event client", "error", err)
			h.unregister(ws)
			_ = ws.Close(websocket.StatusNormalClosure, "write failed")
		}
	}
	return nil
}
