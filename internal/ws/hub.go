package ws

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// clientSendBuffer holds roughly half a day of tick frames at the default
// cadence before a stalled consumer starts losing frames.
const clientSendBuffer = 256

// Client is one attached tank-feed consumer. Frames are queued on send and
// written by writePump; a consumer that stops draining loses frames rather
// than stalling the tick fan-out.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, clientSendBuffer)}
}

// Hub tracks the connected tank-feed clients and fans tick frames out to
// them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	dropped atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues a frame for every connected client. A full client buffer
// drops the frame for that client only; the tick loop never blocks here.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			n := h.dropped.Add(1)
			log.Printf("tank feed: client not draining, dropping frame (%d dropped total)", n)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of frames discarded on full client buffers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
