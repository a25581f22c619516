package simulator

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"tank_simulator/internal/model"
)

// Config holds everything the engine needs to run.
type Config struct {
	Tank        TankConfig
	Refill      RefillConfig
	Consumption ConsumptionConfig
	UsageRanges map[model.Period]map[model.Side]UsageRange

	InitialLeftCm  float64
	InitialRightCm float64

	TickInterval time.Duration
	Location     *time.Location

	// StartTime, when non-zero, pins the simulation clock: each tick then
	// advances the clock by TickInterval instead of reading the wall clock.
	StartTime time.Time
}

// Callback receives every completed tick. Implementations must not block
// the tick loop for long; publish retries run on their own budget.
type Callback interface {
	OnTick(r model.TickReading)
}

// MultiCallback fans a tick out to several callbacks in order.
type MultiCallback []Callback

func (m MultiCallback) OnTick(r model.TickReading) {
	for _, cb := range m {
		cb.OnTick(r)
	}
}

// Engine drives the consumption/refill simulation. All tick state (usage
// variations, tank levels, refill event) is mutated under one mutex per
// tick; readers only ever see a completed tick through Snapshot.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	src      Source
	callback Callback

	left  *Tank
	right *Tank

	usage       *UsageVariations
	consumption *ConsumptionModel
	refiller    *Refiller

	period     model.Period
	lastUpdate time.Time
	refilling  bool

	prevLeftVol  float64
	prevRightVol float64
	havePrev     bool

	simTime    time.Time // advances by TickInterval when StartTime is pinned
	fixedClock bool

	running bool
	stopCh  chan struct{}
}

// New creates an engine from the config. The random source is injectable
// for deterministic tests.
func New(cfg Config, src Source, cb Callback) *Engine {
	if cfg.UsageRanges == nil {
		cfg.UsageRanges = DefaultUsageRanges()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	e := &Engine{
		cfg:         cfg,
		src:         src,
		callback:    cb,
		left:        NewTank(model.SideLeft, cfg.InitialLeftCm, cfg.Tank),
		right:       NewTank(model.SideRight, cfg.InitialRightCm, cfg.Tank),
		usage:       NewUsageVariations(cfg.UsageRanges),
		consumption: NewConsumptionModel(cfg.Tank, cfg.Consumption),
		refiller:    NewRefiller(cfg.Refill),
	}
	if !cfg.StartTime.IsZero() {
		e.fixedClock = true
		e.simTime = cfg.StartTime.In(cfg.Location)
	}
	return e
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Tick executes one full simulation step at the given timestamp and emits
// the resulting reading. Exported for deterministic tests; the loop calls
// it with the current clock.
func (e *Engine) Tick(now time.Time) model.TickReading {
	e.mu.Lock()

	now = now.In(e.cfg.Location)
	period := Classify(now)
	e.period = period

	e.usage.Regenerate(e.src)

	refilling := e.refiller.Step(e.src, now, e.left, e.right)
	if !refilling {
		e.consume(period, now)
	}
	e.refilling = e.refiller.Active()

	leftVol, _ := VolumeLiters(e.cfg.Tank, e.left.LevelCm)
	rightVol, _ := VolumeLiters(e.cfg.Tank, e.right.LevelCm)

	reading := model.TickReading{
		Timestamp:   now,
		LeftLevel:   round2(e.left.LevelCm),
		LeftVolume:  round2(leftVol),
		RightLevel:  round2(e.right.LevelCm),
		RightVolume: round2(rightVol),
		Period:      period,
		Refilling:   refilling,
	}
	e.lastUpdate = now

	change := ""
	if e.havePrev {
		change = fmt.Sprintf(" change=%.0f/%.0fml",
			(leftVol-e.prevLeftVol)*1000, (rightVol-e.prevRightVol)*1000)
	}
	e.prevLeftVol = leftVol
	e.prevRightVol = rightVol
	e.havePrev = true
	e.mu.Unlock()

	log.Printf("[INFO] tick %s period=%s left=%.2fcm/%.2fL right=%.2fcm/%.2fL refilling=%v%s",
		now.Format("2006-01-02 15:04:05"), period,
		reading.LeftLevel, reading.LeftVolume,
		reading.RightLevel, reading.RightVolume, refilling, change)

	if e.callback != nil {
		e.callback.OnTick(reading)
	}
	return reading
}

// consume applies the consumption path to both tanks. A missing variation
// entry leaves both levels untouched for this tick. Must be called with mu
// held.
func (e *Engine) consume(period model.Period, now time.Time) {
	leftPct, okL := e.usage.Get(period, model.SideLeft)
	rightPct, okR := e.usage.Get(period, model.SideRight)
	if !okL || !okR {
		log.Printf("[ERROR] no usage variation for period %q, retaining levels", period)
		return
	}

	leftDelta := e.consumption.Delta(e.src, model.SideLeft, period, leftPct, now)
	rightDelta := e.consumption.Delta(e.src, model.SideRight, period, rightPct, now)

	e.left.Consume(leftDelta)
	e.right.Consume(rightDelta)
}

// Snapshot returns a consistent copy of the current state.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.Snapshot{
		LeftLevel:     round2(e.left.LevelCm),
		RightLevel:    round2(e.right.LevelCm),
		Refilling:     e.refilling,
		CurrentPeriod: e.period,
		LastUpdate:    e.lastUpdate,
	}
}

// UsageVariations returns a copy of the current variation table.
func (e *Engine) UsageVariations() map[model.Period]map[model.Side]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usage.All()
}

// Start begins the tick loop. The first tick fires immediately.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.mu.Unlock()

	go e.loop()
}

// Stop halts the tick loop. The only suspension point is the inter-tick
// wait, so a tick in flight always completes.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	e.mu.Unlock()
}

func (e *Engine) loop() {
	e.Tick(e.clockNow())

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.Tick(e.clockNow())
		}
	}
}

// clockNow returns the timestamp for the next tick: the wall clock, or the
// pinned simulation clock advanced by one interval.
func (e *Engine) clockNow() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.fixedClock {
		return time.Now().In(e.cfg.Location)
	}
	now := e.simTime
	e.simTime = e.simTime.Add(e.cfg.TickInterval)
	return now
}
