package recorder

import "tank_simulator/internal/model"

// Noop discards all records. Used when no database path is configured.
type Noop struct{}

func (Noop) RecordTick(model.TickReading) error { return nil }
func (Noop) Close() error                       { return nil }
