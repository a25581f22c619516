package simulator

import (
	"tank_simulator/internal/model"
)

// UsageRange bounds the randomized usage percentage for one (period, side)
// pair. Immutable for the process lifetime.
type UsageRange struct {
	Min    float64
	Max    float64
	Center float64
}

// DefaultUsageRanges holds the usage-percentage table for every period and
// tank side.
func DefaultUsageRanges() map[model.Period]map[model.Side]UsageRange {
	return map[model.Period]map[model.Side]UsageRange{
		model.PeriodMorningBreak: {
			model.SideLeft:  {Min: 40.0, Max: 50.0, Center: 45.0},
			model.SideRight: {Min: 40.0, Max: 55.0, Center: 50.0},
		},
		model.PeriodLunchBreak: {
			model.SideLeft:  {Min: 65.0, Max: 75.0, Center: 67.0},
			model.SideRight: {Min: 70.0, Max: 77.0, Center: 70.0},
		},
		model.PeriodEveningBreak: {
			model.SideLeft:  {Min: 55.0, Max: 65.0, Center: 50.0},
			model.SideRight: {Min: 50.0, Max: 65.0, Center: 57.0},
		},
		model.PeriodEveningClasses: {
			model.SideLeft:  {Min: 0.8, Max: 1.2, Center: 1.0},
			model.SideRight: {Min: 0.8, Max: 1.2, Center: 1.0},
		},
		model.PeriodRegular: {
			model.SideLeft:  {Min: 0.1, Max: 8.0, Center: 2.5},
			model.SideRight: {Min: 0.1, Max: 7.5, Center: 2.9},
		},
		model.PeriodNightTime: {
			model.SideLeft:  {Min: 0.90, Max: 2.2, Center: 1.5},
			model.SideRight: {Min: 0.95, Max: 2.1, Center: 1.6},
		},
		model.PeriodEarlyMorning: {
			model.SideLeft:  {Min: 0.60, Max: 0.80, Center: 0.70},
			model.SideRight: {Min: 0.65, Max: 0.85, Center: 0.75},
		},
	}
}

// lowUsagePeriods draw with the narrow-variance strategy.
var lowUsagePeriods = map[model.Period]bool{
	model.PeriodNightTime:      true,
	model.PeriodEarlyMorning:   true,
	model.PeriodEveningClasses: true,
}

// breakPeriods draw with a triangular distribution peaked at the center.
var breakPeriods = map[model.Period]bool{
	model.PeriodMorningBreak: true,
	model.PeriodLunchBreak:   true,
	model.PeriodEveningBreak: true,
}

// UsageVariations holds the current randomized usage percentage for every
// (period, side) pair. All entries are regenerated every tick, regardless of
// which period is active, so that a variation is always fresh when the
// active period flips between ticks.
type UsageVariations struct {
	ranges map[model.Period]map[model.Side]UsageRange
	values map[model.Period]map[model.Side]float64
}

// NewUsageVariations creates an empty variation table over the given ranges.
// Values are zero until the first Regenerate.
func NewUsageVariations(ranges map[model.Period]map[model.Side]UsageRange) *UsageVariations {
	values := make(map[model.Period]map[model.Side]float64, len(ranges))
	for period := range ranges {
		values[period] = map[model.Side]float64{model.SideLeft: 0, model.SideRight: 0}
	}
	return &UsageVariations{ranges: ranges, values: values}
}

// Regenerate overwrites every stored variation with a fresh draw. Previous
// values are not blended in.
func (u *UsageVariations) Regenerate(src Source) {
	for period, sides := range u.ranges {
		for side, r := range sides {
			u.values[period][side] = drawUsage(src, period, r)
		}
	}
}

func drawUsage(src Source, period model.Period, r UsageRange) float64 {
	var v float64
	switch {
	case lowUsagePeriods[period]:
		// Mostly stay close to the center; occasionally use the full range.
		if chance(src, 0.7) {
			variance := (r.Max - r.Min) * 0.3
			lo := r.Center - variance
			if lo < r.Min {
				lo = r.Min
			}
			hi := r.Center + variance
			if hi > r.Max {
				hi = r.Max
			}
			v = uniform(src, lo, hi)
		} else {
			v = triangular(src, r.Min, r.Max, r.Center)
		}

	case breakPeriods[period]:
		v = triangular(src, r.Min, r.Max, r.Center)

	default:
		// Regular hours: skew low most of the time, sometimes flat.
		if chance(src, 0.6) {
			mode := r.Min + (r.Max-r.Min)*0.3
			v = triangular(src, r.Min, r.Max, mode)
		} else {
			v = uniform(src, r.Min, r.Max)
		}
	}

	// The table ships one entry (evening break, girls) whose Center sits
	// below Min; a triangular draw around such a mode can land under the low
	// bound. The entry is kept as configured and the draw is clamped so a
	// variation never leaves its range.
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Get returns the current variation for a (period, side) pair. The second
// return is false when the period has no table entry.
func (u *UsageVariations) Get(period model.Period, side model.Side) (float64, bool) {
	sides, ok := u.values[period]
	if !ok {
		return 0, false
	}
	v, ok := sides[side]
	return v, ok
}

// Range returns the configured bounds for a (period, side) pair.
func (u *UsageVariations) Range(period model.Period, side model.Side) (UsageRange, bool) {
	sides, ok := u.ranges[period]
	if !ok {
		return UsageRange{}, false
	}
	r, ok := sides[side]
	return r, ok
}

// All returns a copy of the current variation table, for display and the
// status surface.
func (u *UsageVariations) All() map[model.Period]map[model.Side]float64 {
	out := make(map[model.Period]map[model.Side]float64, len(u.values))
	for period, sides := range u.values {
		cp := make(map[model.Side]float64, len(sides))
		for side, v := range sides {
			cp[side] = v
		}
		out[period] = cp
	}
	return out
}
