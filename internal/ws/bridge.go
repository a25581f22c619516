package ws

import (
	"log"

	"tank_simulator/internal/model"
)

// Bridge implements simulator.Callback and broadcasts ticks to the hub.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnTick(r model.TickReading) {
	msg, err := NewEnvelope(TypeTick, TickFromReading(r))
	if err != nil {
		log.Printf("Error marshaling tick: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}
