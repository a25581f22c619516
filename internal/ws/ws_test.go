package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tank_simulator/internal/model"
)

func testClient(buf int) *Client {
	return &Client{send: make(chan []byte, buf)}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := testClient(1)

	hub.Register(c)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	// Unregistering twice must not panic on the closed channel.
	hub.Unregister(c)
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	a := testClient(1)
	b := testClient(1)
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast([]byte("ping"))

	assert.Equal(t, []byte("ping"), <-a.send)
	assert.Equal(t, []byte("ping"), <-b.send)
}

func TestHub_BroadcastSkipsFullClient(t *testing.T) {
	hub := NewHub()
	c := testClient(1)
	hub.Register(c)

	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two")) // buffer full, dropped

	assert.Equal(t, uint64(1), hub.Dropped())
	assert.Equal(t, []byte("one"), <-c.send)
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}

func TestNewEnvelope(t *testing.T) {
	raw, err := NewEnvelope(TypeSnapshot, SnapshotPayload{LeftLevel: 80.5, CurrentPeriod: "regular"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, TypeSnapshot, env.Type)

	var payload SnapshotPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, 80.5, payload.LeftLevel)
	assert.Equal(t, "regular", payload.CurrentPeriod)
}

func TestTickFromReading(t *testing.T) {
	ts := time.Date(2025, 3, 4, 9, 3, 0, 0, time.UTC)
	p := TickFromReading(model.TickReading{
		Timestamp:   ts,
		LeftLevel:   79.5,
		LeftVolume:  7284.48,
		RightLevel:  74.2,
		RightVolume: 6798.84,
		Period:      model.PeriodRegular,
		Refilling:   true,
	})

	assert.Equal(t, 79.5, p.LeftLevel)
	assert.Equal(t, 7284.48, p.LeftVolume)
	assert.Equal(t, "regular", p.Period)
	assert.True(t, p.Refilling)
	assert.Equal(t, "2025-03-04T09:03:00Z", p.Timestamp)
}

func TestBridge_BroadcastsTickEnvelope(t *testing.T) {
	hub := NewHub()
	c := testClient(1)
	hub.Register(c)

	bridge := NewBridge(hub)
	bridge.OnTick(model.TickReading{
		Timestamp: time.Date(2025, 3, 4, 9, 3, 0, 0, time.UTC),
		LeftLevel: 79.5,
	})

	var env Envelope
	require.NoError(t, json.Unmarshal(<-c.send, &env))
	assert.Equal(t, TypeTick, env.Type)

	var payload TickPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, 79.5, payload.LeftLevel)
}
