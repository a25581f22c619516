package simulator

import (
	"log"
	"time"
)

// RefillConfig holds the daily refill window and pump characteristics.
// WindowStartMin is the minute of day the window opens.
type RefillConfig struct {
	DurationMinutes float64
	WindowStartMin  int
	WindowMinutes   int
	StartChance     float64
}

// DefaultRefillConfig opens the window 09:00-09:20 with a 55-minute refill.
func DefaultRefillConfig() RefillConfig {
	return RefillConfig{
		DurationMinutes: 55,
		WindowStartMin:  9 * 60,
		WindowMinutes:   20,
		StartChance:     0.3,
	}
}

// Refiller is the shared idle/refilling state machine. Both tanks refill
// synchronously within a single event, sharing one rate factor per tick so
// their trajectories stay correlated.
type Refiller struct {
	cfg RefillConfig

	active          bool
	startTime       time.Time
	leftStartLevel  float64
	rightStartLevel float64
	lastRefillDay   time.Time // truncated to the calendar date
}

func NewRefiller(cfg RefillConfig) *Refiller {
	return &Refiller{cfg: cfg}
}

// refillTarget computes the next level during a refill step. Levels never
// move backwards even when the shared factor dips below the previous tick's.
func refillTarget(current, start, max, progress, shared float64) float64 {
	target := start + (max-start)*progress*shared
	if target < current {
		return current
	}
	return target
}

// Active reports whether a refill event is in progress.
func (r *Refiller) Active() bool {
	return r.active
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r *Refiller) inWindow(now time.Time) bool {
	min := now.Hour()*60 + now.Minute()
	return min >= r.cfg.WindowStartMin && min < r.cfg.WindowStartMin+r.cfg.WindowMinutes && IsWeekday(now)
}

// Step advances the state machine one tick. It returns true when the refill
// path owns this tick's level mutation; false hands the tick to the
// consumption model. Elapsed time is wall-clock delta from the recorded
// start stamp, so a stalled host only stretches one step, never skips water.
func (r *Refiller) Step(src Source, now time.Time, left, right *Tank) bool {
	if !r.active {
		if !r.inWindow(now) || dateOf(now).Equal(r.lastRefillDay) {
			return false
		}
		if !chance(src, r.cfg.StartChance) {
			return false
		}

		r.leftStartLevel = left.LevelCm
		r.rightStartLevel = right.LevelCm
		r.active = true
		r.startTime = now
		r.lastRefillDay = dateOf(now)

		log.Printf("[INFO] refill started at %s (left %.2f cm, right %.2f cm)",
			now.Format("15:04:05"), left.LevelCm, right.LevelCm)
		return true
	}

	elapsed := now.Sub(r.startTime).Minutes()
	if elapsed >= r.cfg.DurationMinutes {
		// Top both tanks off before clearing so a completed event always
		// ends at the physical maximum.
		left.SetLevel(left.cfg.MaxLevelCm)
		right.SetLevel(right.cfg.MaxLevelCm)
		log.Printf("[INFO] refill completed at %s", now.Format("15:04:05"))
		r.active = false
		r.startTime = time.Time{}
		r.leftStartLevel = 0
		r.rightStartLevel = 0
		return true
	}

	// One shared factor per tick keeps both trajectories correlated without
	// being identical.
	shared := uniform(src, 0.97, 1.03)
	progress := elapsed / r.cfg.DurationMinutes

	left.SetLevel(refillTarget(left.LevelCm, r.leftStartLevel, left.cfg.MaxLevelCm, progress, shared))
	right.SetLevel(refillTarget(right.LevelCm, r.rightStartLevel, right.cfg.MaxLevelCm, progress, shared))

	if em := int(elapsed); em > 0 && em%10 == 0 {
		log.Printf("[INFO] refilling %d/%.0f minutes (left %.2f cm, right %.2f cm)",
			em, r.cfg.DurationMinutes, left.LevelCm, right.LevelCm)
	}
	return true
}
