package simulator

import (
	"fmt"

	"tank_simulator/internal/model"
)

// TankConfig holds the shared physical constants for both tanks.
type TankConfig struct {
	AreaCm2    float64
	MaxLevelCm float64
	MinLevelCm float64
}

// Tank is the level store for one tank side. Levels stay clamped to
// [MinLevelCm, MaxLevelCm] after every mutation.
type Tank struct {
	Side    model.Side
	LevelCm float64
	cfg     TankConfig
}

// NewTank creates a tank at the given initial level, clamped to bounds.
func NewTank(side model.Side, initialCm float64, cfg TankConfig) *Tank {
	t := &Tank{Side: side, cfg: cfg}
	t.LevelCm = t.clamp(initialCm)
	return t
}

func (t *Tank) clamp(level float64) float64 {
	if level > t.cfg.MaxLevelCm {
		return t.cfg.MaxLevelCm
	}
	if level < t.cfg.MinLevelCm {
		return t.cfg.MinLevelCm
	}
	return level
}

// Consume subtracts a level delta (cm). Negative deltas model sensor-noise
// upticks. The result is clamped to the physical bounds.
func (t *Tank) Consume(deltaCm float64) {
	t.LevelCm = t.clamp(t.LevelCm - deltaCm)
}

// SetLevel replaces the level directly, clamped. Used by the refill step.
func (t *Tank) SetLevel(levelCm float64) {
	t.LevelCm = t.clamp(levelCm)
}

// VolumeLiters converts a water level in cm to liters using the tank's
// cross-sectional area. Rejects negative levels.
func VolumeLiters(cfg TankConfig, levelCm float64) (float64, error) {
	if levelCm < 0 {
		return 0, fmt.Errorf("level must be non-negative, got %.2f", levelCm)
	}
	return cfg.AreaCm2 * levelCm / 1000, nil
}
