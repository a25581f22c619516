package store

import (
	"sort"
	"sync"
	"time"

	"tank_simulator/internal/model"
)

// Store keeps a bounded in-memory history of tick readings, sorted by
// timestamp. It backs the /history endpoint and the websocket backfill.
type Store struct {
	mu       sync.RWMutex
	readings []model.TickReading
	maxSize  int
}

// New creates a store retaining at most maxSize readings. Zero or negative
// means unbounded.
func New(maxSize int) *Store {
	return &Store{maxSize: maxSize}
}

// Add appends a reading, dropping the oldest entries past the size bound.
// Readings arrive in tick order, so the slice stays sorted.
func (s *Store) Add(r model.TickReading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = append(s.readings, r)
	if s.maxSize > 0 && len(s.readings) > s.maxSize {
		overflow := len(s.readings) - s.maxSize
		s.readings = append(s.readings[:0:0], s.readings[overflow:]...)
	}
}

// Len returns the number of retained readings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

// Latest returns the most recent reading.
func (s *Store) Latest() (model.TickReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.readings) == 0 {
		return model.TickReading{}, false
	}
	return s.readings[len(s.readings)-1], true
}

// TimeRange returns the span covered by the retained readings.
func (s *Store) TimeRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.readings) == 0 {
		return model.TimeRange{}, false
	}
	return model.TimeRange{
		Start: s.readings[0].Timestamp,
		End:   s.readings[len(s.readings)-1].Timestamp,
	}, true
}

// Since returns a copy of all readings at or after the given time.
func (s *Store) Since(t time.Time) []model.TickReading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := sort.Search(len(s.readings), func(i int) bool {
		return !s.readings[i].Timestamp.Before(t)
	})
	if idx == len(s.readings) {
		return nil
	}

	out := make([]model.TickReading, len(s.readings)-idx)
	copy(out, s.readings[idx:])
	return out
}

// InRange returns readings between start (inclusive) and end (exclusive).
func (s *Store) InRange(start, end time.Time) []model.TickReading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startIdx := sort.Search(len(s.readings), func(i int) bool {
		return !s.readings[i].Timestamp.Before(start)
	})
	endIdx := sort.Search(len(s.readings), func(i int) bool {
		return !s.readings[i].Timestamp.Before(end)
	})
	if startIdx >= endIdx {
		return nil
	}

	out := make([]model.TickReading, endIdx-startIdx)
	copy(out, s.readings[startIdx:endIdx])
	return out
}

// OnTick implements simulator.Callback.
func (s *Store) OnTick(r model.TickReading) {
	s.Add(r)
}
