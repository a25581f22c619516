package simulator

import (
	"time"

	"tank_simulator/internal/model"
)

// ConsumptionConfig holds the population and per-use constants feeding the
// consumption model.
type ConsumptionConfig struct {
	StudentsPerFloor map[model.Floor]int
	WaterPerUseL     map[model.Side]float64
}

// DefaultConsumptionConfig mirrors the deployed building: two full floors
// plus a lighter third floor, girls' restrooms drawing slightly more water
// per use.
func DefaultConsumptionConfig() ConsumptionConfig {
	return ConsumptionConfig{
		StudentsPerFloor: map[model.Floor]int{
			model.FloorGround: 180,
			model.FloorFirst:  180,
			model.FloorThird:  72,
		},
		WaterPerUseL: map[model.Side]float64{
			model.SideLeft:  3.5,
			model.SideRight: 3.0,
		},
	}
}

// ConsumptionModel computes per-tick level deltas from the current period,
// usage percentage, and timestamp.
type ConsumptionModel struct {
	tank TankConfig
	cfg  ConsumptionConfig
}

func NewConsumptionModel(tank TankConfig, cfg ConsumptionConfig) *ConsumptionModel {
	return &ConsumptionModel{tank: tank, cfg: cfg}
}

func (m *ConsumptionModel) totalStudents() int {
	total := 0
	for _, n := range m.cfg.StudentsPerFloor {
		total += n
	}
	return total
}

// litersToCm converts a water volume in liters to a level change in cm.
func (m *ConsumptionModel) litersToCm(liters float64) float64 {
	return liters * 1000 / m.tank.AreaCm2
}

// tickFraction scales a full-period consumption down to one 3-minute tick.
// Regular-hour deltas are already per-tick.
func tickFraction(period model.Period) float64 {
	switch period {
	case model.PeriodMorningBreak:
		return 3.0 / 30.0
	case model.PeriodLunchBreak:
		return 3.0 / 60.0
	case model.PeriodEveningBreak:
		return 3.0 / 20.0
	case model.PeriodEveningClasses:
		return 3.0 / 180.0
	default:
		return 1.0
	}
}

// Delta returns the level change in cm to subtract from the given tank side
// this tick. Negative values are sensor-noise upticks.
func (m *ConsumptionModel) Delta(src Source, side model.Side, period model.Period, usagePercent float64, now time.Time) float64 {
	nightOrEarly := period == model.PeriodNightTime || period == model.PeriodEarlyMorning

	// Weekends see no class traffic outside the night regimes: just jitter
	// with a rare trickle of minimal activity.
	if !IsWeekday(now) && !nightOrEarly {
		if chance(src, 0.05) {
			return 0.02 * triangular(src, 0.5, 1.5, 1.0)
		}
		return triangular(src, -0.008, 0.008, 0.0)
	}

	if nightOrEarly {
		if chance(src, 0.85) {
			return triangular(src, -0.006, 0.006, 0.0)
		}
		users := float64(m.totalStudents()) * (usagePercent / 100) * 0.05
		water := users * m.cfg.WaterPerUseL[side] * uniform(src, 0.8, 1.2)
		return m.litersToCm(water) * triangular(src, 0.7, 1.3, 1.0)
	}

	// Unreachable via Classify (weekday evenings collapse to night time) but
	// the evening-classes bucket keeps its own low-traffic model.
	if period == model.PeriodEveningClasses && usagePercent < 5 {
		if chance(src, 0.4) {
			users := float64(m.totalStudents()) * (usagePercent / 100) * uniform(src, 0.8, 1.2)
			water := users * m.cfg.WaterPerUseL[side] * uniform(src, 0.9, 1.1)
			return m.litersToCm(water) * tickFraction(period)
		}
		return triangular(src, -0.007, 0.007, 0.0)
	}

	// Breaks and regular hours: accumulate usage per floor.
	totalWater := 0.0
	for _, floor := range model.Floors {
		students := m.cfg.StudentsPerFloor[floor]

		floorFactor := 1.0
		if floor == model.FloorThird {
			floorFactor = 0.8
		}

		var dayFactor float64
		switch now.Weekday() {
		case time.Monday:
			dayFactor = uniform(src, 0.95, 1.05)
		case time.Friday:
			dayFactor = uniform(src, 0.92, 1.02)
		default:
			dayFactor = uniform(src, 0.98, 1.07)
		}

		timeFactor := 1.0
		if period == model.PeriodRegular {
			switch now.Hour() {
			case 9, 14:
				timeFactor = uniform(src, 1.1, 1.25)
			case 10, 17:
				timeFactor = uniform(src, 0.8, 0.95)
			default:
				timeFactor = uniform(src, 0.95, 1.05)
			}
		}

		users := float64(students) * (usagePercent / 100) * floorFactor * dayFactor * timeFactor
		users *= uniform(src, 0.85, 1.15)

		totalWater += users * m.cfg.WaterPerUseL[side] * uniform(src, 0.9, 1.1)
	}

	delta := m.litersToCm(totalWater) * triangular(src, 0.85, 1.15, 1.0)
	return delta * tickFraction(period)
}
