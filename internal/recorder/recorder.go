package recorder

import "tank_simulator/internal/model"

// Recorder persists tick readings for later analysis.
type Recorder interface {
	RecordTick(r model.TickReading) error
	Close() error
}
