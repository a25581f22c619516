package simulator

import (
	"time"

	"tank_simulator/internal/model"
)

// Minute-of-day boundaries for the classification windows.
const (
	nightStartMin     = 22 * 60
	nightEndMin       = 6 * 60
	earlyMorningEnd   = 9 * 60
	morningBreakStart = 10*60 + 30
	morningBreakEnd   = 11 * 60
	lunchBreakStart   = 12*60 + 30
	lunchBreakEnd     = 13*60 + 30
	eveningBreakStart = 15*60 + 50
	eveningBreakEnd   = 16*60 + 10
	eveningClassStart = 17 * 60
	eveningClassEnd   = 22 * 60
)

// IsWeekday reports whether t falls on Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// Classify maps a timestamp to exactly one usage period. Windows are checked
// in priority order. The weekday 17:00-22:00 evening-classes window collapses
// to night time rather than its own period, which leaves the evening-classes
// usage bucket unreachable through classification; that matches the behavior
// of the deployed sensor fleet and is pinned by tests.
func Classify(t time.Time) model.Period {
	min := t.Hour()*60 + t.Minute()

	switch {
	case min >= nightStartMin || min < nightEndMin:
		return model.PeriodNightTime
	case min < earlyMorningEnd:
		return model.PeriodEarlyMorning
	case min >= morningBreakStart && min < morningBreakEnd:
		return model.PeriodMorningBreak
	case min >= lunchBreakStart && min < lunchBreakEnd:
		return model.PeriodLunchBreak
	case min >= eveningBreakStart && min < eveningBreakEnd:
		return model.PeriodEveningBreak
	case min >= eveningClassStart && min < eveningClassEnd && IsWeekday(t):
		return model.PeriodNightTime
	default:
		return model.PeriodRegular
	}
}
