package ws

import (
	"encoding/json"
	"time"

	"tank_simulator/internal/model"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants (server -> client only; the feed is read-only).
const (
	TypeTick     = "tank:tick"
	TypeSnapshot = "tank:snapshot"
	TypeHistory  = "tank:history"
)

// TickPayload is one published tick.
type TickPayload struct {
	LeftLevel   float64 `json:"left_level"`
	LeftVolume  float64 `json:"left_volume"`
	RightLevel  float64 `json:"right_level"`
	RightVolume float64 `json:"right_volume"`
	Period      string  `json:"period"`
	Refilling   bool    `json:"refilling"`
	Timestamp   string  `json:"timestamp"`
}

// SnapshotPayload is the current engine state, sent on connect.
type SnapshotPayload struct {
	LeftLevel     float64 `json:"left_level"`
	RightLevel    float64 `json:"right_level"`
	Refilling     bool    `json:"refilling"`
	CurrentPeriod string  `json:"current_period"`
	LastUpdate    string  `json:"last_update"`
}

// HistoryPayload backfills recent ticks on connect.
type HistoryPayload struct {
	Ticks []TickPayload `json:"ticks"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func TickFromReading(r model.TickReading) TickPayload {
	return TickPayload{
		LeftLevel:   r.LeftLevel,
		LeftVolume:  r.LeftVolume,
		RightLevel:  r.RightLevel,
		RightVolume: r.RightVolume,
		Period:      string(r.Period),
		Refilling:   r.Refilling,
		Timestamp:   r.Timestamp.Format(time.RFC3339),
	}
}

func SnapshotFromModel(s model.Snapshot) SnapshotPayload {
	return SnapshotPayload{
		LeftLevel:     s.LeftLevel,
		RightLevel:    s.RightLevel,
		Refilling:     s.Refilling,
		CurrentPeriod: string(s.CurrentPeriod),
		LastUpdate:    s.LastUpdate.Format(time.RFC3339),
	}
}
