package model

import "time"

// Side identifies one of the two supply tanks. The left tank feeds the
// girls' restrooms, the right tank the boys'.
type Side string

const (
	SideLeft  Side = "girls"
	SideRight Side = "boys"
)

// Sides lists both tank sides in output order.
var Sides = []Side{SideLeft, SideRight}

// Period classifies the time of day into one of the usage regimes.
type Period string

const (
	PeriodMorningBreak   Period = "morning_break"
	PeriodLunchBreak     Period = "lunch_break"
	PeriodEveningBreak   Period = "evening_break"
	PeriodEveningClasses Period = "evening_classes"
	PeriodRegular        Period = "regular"
	PeriodNightTime      Period = "night_time"
	PeriodEarlyMorning   Period = "early_morning"
)

// Periods lists every period with a usage-table entry. The evening-classes
// entry is defined but never produced by classification; see simulator.Classify.
var Periods = []Period{
	PeriodMorningBreak,
	PeriodLunchBreak,
	PeriodEveningBreak,
	PeriodEveningClasses,
	PeriodRegular,
	PeriodNightTime,
	PeriodEarlyMorning,
}

// Floor identifies a building floor served by the tanks.
type Floor string

const (
	FloorGround Floor = "ground"
	FloorFirst  Floor = "first"
	FloorThird  Floor = "third"
)

// Floors lists the floors in a stable iteration order.
var Floors = []Floor{FloorGround, FloorFirst, FloorThird}

// TickReading is the per-tick output consumed by the publish collaborators.
// Levels and volumes are rounded to 2 decimals.
type TickReading struct {
	Timestamp   time.Time `json:"-"`
	LeftLevel   float64   `json:"left_level"`
	LeftVolume  float64   `json:"left_volume"`
	RightLevel  float64   `json:"right_level"`
	RightVolume float64   `json:"right_volume"`
	Period      Period    `json:"period"`
	Refilling   bool      `json:"refilling"`
}

// Snapshot is the read-only view served to status collaborators.
type Snapshot struct {
	LeftLevel     float64   `json:"left_level"`
	RightLevel    float64   `json:"right_level"`
	Refilling     bool      `json:"refilling"`
	CurrentPeriod Period    `json:"current_period"`
	LastUpdate    time.Time `json:"last_update"`
}

// TimeRange is a half-open [Start, End) interval.
type TimeRange struct {
	Start time.Time
	End   time.Time
}
