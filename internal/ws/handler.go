package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tank_simulator/internal/simulator"
	"tank_simulator/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// backfillWindow bounds how much history a new client receives on connect.
const backfillWindow = 2 * time.Hour

// Handler manages WebSocket connections. The feed is one-directional:
// clients receive a snapshot, a history backfill, then live ticks.
type Handler struct {
	hub     *Hub
	engine  *simulator.Engine
	history *store.Store
}

func NewHandler(hub *Hub, engine *simulator.Engine, history *store.Store) *Handler {
	return &Handler{hub: hub, engine: engine, history: history}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := newClient(h.hub, conn)
	h.hub.Register(client)
	go client.writePump()

	h.sendSnapshot(client)
	h.sendHistory(client)

	h.readPump(client)
}

func (h *Handler) sendSnapshot(c *Client) {
	msg, err := NewEnvelope(TypeSnapshot, SnapshotFromModel(h.engine.Snapshot()))
	if err != nil {
		log.Printf("Error marshaling snapshot: %v", err)
		return
	}
	c.send <- msg
}

func (h *Handler) sendHistory(c *Client) {
	latest, ok := h.history.Latest()
	if !ok {
		return
	}

	readings := h.history.Since(latest.Timestamp.Add(-backfillWindow))
	ticks := make([]TickPayload, len(readings))
	for i, r := range readings {
		ticks[i] = TickFromReading(r)
	}

	msg, err := NewEnvelope(TypeHistory, HistoryPayload{Ticks: ticks})
	if err != nil {
		log.Printf("Error marshaling history: %v", err)
		return
	}
	c.send <- msg
}

// readPump drains the connection until the client goes away. Inbound
// messages are ignored; the simulation is not client-steerable.
func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}
