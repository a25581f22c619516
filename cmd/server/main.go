package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tank_simulator/internal/config"
	"tank_simulator/internal/model"
	"tank_simulator/internal/publisher"
	"tank_simulator/internal/recorder"
	"tank_simulator/internal/simulator"
	"tank_simulator/internal/store"
	"tank_simulator/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	startTime := flag.String("start-time", "", `starting simulation time in UTC ("2006-01-02 15:04:05"); empty uses the wall clock`)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	simCfg, err := buildSimConfig(cfg, *startTime)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Tick persistence: SQLite when a path is configured, otherwise noop.
	var rec recorder.Recorder = recorder.Noop{}
	if cfg.Database.SQLitePath != "" {
		rec, err = recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open recorder: %v", err)
		}
	}

	pub, err := publisher.NewMQTT(publisher.Config{
		Broker:   cfg.MQTT.Broker,
		Port:     cfg.MQTT.Port,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
		ClientID: cfg.MQTT.ClientID,
		Topics: publisher.Topics{
			LeftLevel:   cfg.MQTT.Topics.LeftLevel,
			LeftVolume:  cfg.MQTT.Topics.LeftVolume,
			RightLevel:  cfg.MQTT.Topics.RightLevel,
			RightVolume: cfg.MQTT.Topics.RightVolume,
			Timestamp:   cfg.MQTT.Topics.Timestamp,
			Status:      cfg.MQTT.Topics.Status,
		},
	})
	if err != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", err)
	}

	history := store.New(cfg.Server.HistoryEntries)
	hub := ws.NewHub()
	bridge := ws.NewBridge(hub)

	engine := simulator.New(simCfg, simulator.NewSource(), simulator.MultiCallback{
		pub,
		bridge,
		history,
		recorderCallback{rec},
	})

	handler := ws.NewHandler(hub, engine, history)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(engine.Snapshot()); err != nil {
			log.Printf("[ERROR] encode status: %v", err)
		}
	})
	mux.HandleFunc("GET /history", historyHandler(history))
	mux.Handle("/ws", handler)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	go func() {
		log.Printf("[INFO] HTTP server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server: %v", err)
		}
	}()

	engine.Start()
	log.Printf("[INFO] tank simulation started (tick interval %s)", simCfg.TickInterval)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	log.Println("[INFO] shutting down")
	engine.Stop()
	pub.Close()
	if err := rec.Close(); err != nil {
		log.Printf("[ERROR] close recorder: %v", err)
	}
	srv.Close()
}

// buildSimConfig assembles the engine config from the loaded file.
func buildSimConfig(cfg *config.Config, startTime string) (simulator.Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return simulator.Config{}, err
	}
	interval, err := cfg.TickInterval()
	if err != nil {
		return simulator.Config{}, err
	}
	windowStart, err := cfg.WindowStartMinute()
	if err != nil {
		return simulator.Config{}, err
	}

	ranges := simulator.DefaultUsageRanges()
	applyOverride(ranges, model.SideLeft, cfg.Sim.RegularUsage.Girls)
	applyOverride(ranges, model.SideRight, cfg.Sim.RegularUsage.Boys)

	simCfg := simulator.Config{
		Tank: simulator.TankConfig{
			AreaCm2:    cfg.Tank.AreaCm2,
			MaxLevelCm: cfg.Tank.MaxLevelCm,
			MinLevelCm: cfg.Tank.MinLevelCm,
		},
		Refill: simulator.RefillConfig{
			DurationMinutes: cfg.Refill.DurationMinutes,
			WindowStartMin:  windowStart,
			WindowMinutes:   cfg.Refill.WindowMinutes,
			StartChance:     cfg.Refill.StartChance,
		},
		Consumption: simulator.ConsumptionConfig{
			StudentsPerFloor: map[model.Floor]int{
				model.FloorGround: cfg.Sim.Students.Ground,
				model.FloorFirst:  cfg.Sim.Students.First,
				model.FloorThird:  cfg.Sim.Students.Third,
			},
			WaterPerUseL: map[model.Side]float64{
				model.SideLeft:  cfg.Sim.WaterPerUse.Girls,
				model.SideRight: cfg.Sim.WaterPerUse.Boys,
			},
		},
		UsageRanges:    ranges,
		InitialLeftCm:  cfg.Tank.InitialLeftCm,
		InitialRightCm: cfg.Tank.InitialRightCm,
		TickInterval:   interval,
		Location:       loc,
	}

	if startTime != "" {
		t, err := time.Parse("2006-01-02 15:04:05", startTime)
		if err != nil {
			return simulator.Config{}, fmt.Errorf("parse -start-time: %w", err)
		}
		simCfg.StartTime = t.UTC()
		log.Printf("[INFO] simulation clock pinned to %s", simCfg.StartTime.In(loc).Format(time.RFC3339))
	}

	return simCfg, nil
}

func applyOverride(ranges map[model.Period]map[model.Side]simulator.UsageRange, side model.Side, o config.UsageRangeOverride) {
	if o.Min == nil || o.Max == nil || o.Center == nil {
		return
	}
	ranges[model.PeriodRegular][side] = simulator.UsageRange{
		Min:    *o.Min,
		Max:    *o.Max,
		Center: *o.Center,
	}
}

// historyHandler serves recent ticks. The window is measured back from the
// newest retained reading, so a pinned simulation clock behaves the same as
// the wall clock.
func historyHandler(history *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minutes := 60
		if v := r.URL.Query().Get("minutes"); v != "" {
			m, err := strconv.Atoi(v)
			if err != nil || m <= 0 {
				http.Error(w, "minutes must be a positive integer", http.StatusBadRequest)
				return
			}
			minutes = m
		}

		var readings []model.TickReading
		if latest, ok := history.Latest(); ok {
			readings = history.Since(latest.Timestamp.Add(-time.Duration(minutes) * time.Minute))
		}

		out := make([]ws.TickPayload, len(readings))
		for i, t := range readings {
			out[i] = ws.TickFromReading(t)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			log.Printf("[ERROR] encode history: %v", err)
		}
	}
}

// recorderCallback adapts a Recorder to the engine callback.
type recorderCallback struct {
	rec recorder.Recorder
}

func (c recorderCallback) OnTick(r model.TickReading) {
	if err := c.rec.RecordTick(r); err != nil {
		log.Printf("[ERROR] record tick: %v", err)
	}
}
