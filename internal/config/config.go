package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// UsageRangeOverride optionally replaces one side's regular-hours usage
// range. All three fields must be set together.
type UsageRangeOverride struct {
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
	Center *float64 `yaml:"center"`
}

// Config holds all application configuration.
type Config struct {
	MQTT struct {
		Broker   string `yaml:"broker"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		ClientID string `yaml:"client_id"`
		Topics   struct {
			LeftLevel   string `yaml:"left_level"`
			LeftVolume  string `yaml:"left_volume"`
			RightLevel  string `yaml:"right_level"`
			RightVolume string `yaml:"right_volume"`
			Timestamp   string `yaml:"timestamp"`
			Status      string `yaml:"status"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Tank struct {
		AreaCm2        float64 `yaml:"area_cm2"`
		MaxLevelCm     float64 `yaml:"max_level_cm"`
		MinLevelCm     float64 `yaml:"min_level_cm"`
		InitialLeftCm  float64 `yaml:"initial_left_cm"`
		InitialRightCm float64 `yaml:"initial_right_cm"`
	} `yaml:"tank"`
	Refill struct {
		DurationMinutes float64 `yaml:"duration_minutes"`
		WindowStart     string  `yaml:"window_start"`
		WindowMinutes   int     `yaml:"window_minutes"`
		StartChance     float64 `yaml:"start_chance"`
	} `yaml:"refill"`
	Sim struct {
		TickInterval string `yaml:"tick_interval"`
		Timezone     string `yaml:"timezone"`
		WaterPerUse  struct {
			Girls float64 `yaml:"girls"`
			Boys  float64 `yaml:"boys"`
		} `yaml:"water_per_use"`
		Students struct {
			Ground int `yaml:"ground"`
			First  int `yaml:"first"`
			Third  int `yaml:"third"`
		} `yaml:"students"`
		RegularUsage struct {
			Girls UsageRangeOverride `yaml:"girls"`
			Boys  UsageRangeOverride `yaml:"boys"`
		} `yaml:"regular_usage"`
	} `yaml:"sim"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr           string `yaml:"addr"`
		HistoryEntries int    `yaml:"history_entries"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Port = port
		}
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TANK_TIMEZONE"); v != "" {
		cfg.Sim.Timezone = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "localhost"
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = 8883
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "ESP32_TankMonitor"
	}
	t := &c.MQTT.Topics
	if t.LeftLevel == "" {
		t.LeftLevel = "tank/topic1"
	}
	if t.LeftVolume == "" {
		t.LeftVolume = "tank/topic2"
	}
	if t.RightLevel == "" {
		t.RightLevel = "tank/topic3"
	}
	if t.RightVolume == "" {
		t.RightVolume = "tank/topic4"
	}
	if t.Timestamp == "" {
		t.Timestamp = "tank/topic5"
	}
	if t.Status == "" {
		t.Status = "tank/status"
	}

	if c.Tank.AreaCm2 == 0 {
		c.Tank.AreaCm2 = 91628.57
	}
	if c.Tank.MaxLevelCm == 0 {
		c.Tank.MaxLevelCm = 140
	}
	if c.Tank.MinLevelCm == 0 {
		c.Tank.MinLevelCm = 2
	}
	if c.Tank.InitialLeftCm == 0 {
		c.Tank.InitialLeftCm = 80
	}
	if c.Tank.InitialRightCm == 0 {
		c.Tank.InitialRightCm = 75
	}

	if c.Refill.DurationMinutes == 0 {
		c.Refill.DurationMinutes = 55
	}
	if c.Refill.WindowStart == "" {
		c.Refill.WindowStart = "09:00"
	}
	if c.Refill.WindowMinutes == 0 {
		c.Refill.WindowMinutes = 20
	}
	if c.Refill.StartChance == 0 {
		c.Refill.StartChance = 0.3
	}

	if c.Sim.TickInterval == "" {
		c.Sim.TickInterval = "3m"
	}
	if c.Sim.Timezone == "" {
		c.Sim.Timezone = "Asia/Kolkata"
	}
	if c.Sim.WaterPerUse.Girls == 0 {
		c.Sim.WaterPerUse.Girls = 3.5
	}
	if c.Sim.WaterPerUse.Boys == 0 {
		c.Sim.WaterPerUse.Boys = 3.0
	}
	if c.Sim.Students.Ground == 0 {
		c.Sim.Students.Ground = 180
	}
	if c.Sim.Students.First == 0 {
		c.Sim.Students.First = 180
	}
	if c.Sim.Students.Third == 0 {
		c.Sim.Students.Third = 72
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.HistoryEntries == 0 {
		c.Server.HistoryEntries = 2880 // six days of 3-minute ticks
	}
}

// TickInterval parses sim.tick_interval as a duration.
func (c *Config) TickInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Sim.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("parse sim.tick_interval: %w", err)
	}
	return d, nil
}

// WindowStartMinute parses refill.window_start ("HH:MM") into a minute of
// day.
func (c *Config) WindowStartMinute() (int, error) {
	t, err := time.Parse("15:04", c.Refill.WindowStart)
	if err != nil {
		return 0, fmt.Errorf("parse refill.window_start: %w", err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Sim.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Sim.Timezone, err)
	}
	return loc, nil
}

// Validate checks the physical constants. Failures are fatal at startup.
func (c *Config) Validate() error {
	if c.Tank.AreaCm2 <= 0 {
		return fmt.Errorf("tank.area_cm2 must be positive")
	}
	if c.Tank.MinLevelCm >= c.Tank.MaxLevelCm {
		return fmt.Errorf("tank.min_level_cm (%.2f) must be below tank.max_level_cm (%.2f)",
			c.Tank.MinLevelCm, c.Tank.MaxLevelCm)
	}
	if c.Tank.InitialLeftCm < c.Tank.MinLevelCm || c.Tank.InitialLeftCm > c.Tank.MaxLevelCm {
		return fmt.Errorf("tank.initial_left_cm out of bounds")
	}
	if c.Tank.InitialRightCm < c.Tank.MinLevelCm || c.Tank.InitialRightCm > c.Tank.MaxLevelCm {
		return fmt.Errorf("tank.initial_right_cm out of bounds")
	}
	if c.Refill.DurationMinutes <= 0 {
		return fmt.Errorf("refill.duration_minutes must be positive")
	}
	if c.Refill.WindowMinutes <= 0 {
		return fmt.Errorf("refill.window_minutes must be positive")
	}
	if c.Refill.StartChance <= 0 || c.Refill.StartChance > 1 {
		return fmt.Errorf("refill.start_chance must be in (0, 1]")
	}
	if _, err := c.WindowStartMinute(); err != nil {
		return err
	}
	if d, err := c.TickInterval(); err != nil {
		return err
	} else if d <= 0 {
		return fmt.Errorf("sim.tick_interval must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if (c.Sim.RegularUsage.Girls.Min == nil) != (c.Sim.RegularUsage.Girls.Max == nil) ||
		(c.Sim.RegularUsage.Girls.Min == nil) != (c.Sim.RegularUsage.Girls.Center == nil) {
		return fmt.Errorf("sim.regular_usage.girls must set min, max and center together")
	}
	if (c.Sim.RegularUsage.Boys.Min == nil) != (c.Sim.RegularUsage.Boys.Max == nil) ||
		(c.Sim.RegularUsage.Boys.Min == nil) != (c.Sim.RegularUsage.Boys.Center == nil) {
		return fmt.Errorf("sim.regular_usage.boys must set min, max and center together")
	}
	return nil
}
