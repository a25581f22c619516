package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromYAML(t *testing.T, content string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	return cfg
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.MQTT.Broker)
	assert.Equal(t, 8883, cfg.MQTT.Port)
	assert.Equal(t, "ESP32_TankMonitor", cfg.MQTT.ClientID)
	assert.Equal(t, "tank/topic1", cfg.MQTT.Topics.LeftLevel)
	assert.Equal(t, "tank/topic5", cfg.MQTT.Topics.Timestamp)
	assert.Equal(t, "tank/status", cfg.MQTT.Topics.Status)

	assert.Equal(t, 91628.57, cfg.Tank.AreaCm2)
	assert.Equal(t, 140.0, cfg.Tank.MaxLevelCm)
	assert.Equal(t, 2.0, cfg.Tank.MinLevelCm)
	assert.Equal(t, 80.0, cfg.Tank.InitialLeftCm)
	assert.Equal(t, 75.0, cfg.Tank.InitialRightCm)

	assert.Equal(t, 55.0, cfg.Refill.DurationMinutes)
	assert.Equal(t, "09:00", cfg.Refill.WindowStart)
	assert.Equal(t, 20, cfg.Refill.WindowMinutes)
	assert.Equal(t, 0.3, cfg.Refill.StartChance)

	assert.Equal(t, "Asia/Kolkata", cfg.Sim.Timezone)
	assert.Equal(t, 3.5, cfg.Sim.WaterPerUse.Girls)
	assert.Equal(t, 3.0, cfg.Sim.WaterPerUse.Boys)
	assert.Equal(t, 180, cfg.Sim.Students.Ground)
	assert.Equal(t, 72, cfg.Sim.Students.Third)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2880, cfg.Server.HistoryEntries)

	d, err := cfg.TickInterval()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, d)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg := loadFromYAML(t, `
mqtt:
  broker: broker.example.com
  port: 1883
  topics:
    left_level: school/tank/left_cm
tank:
  max_level_cm: 120
  initial_left_cm: 60
refill:
  window_start: "08:30"
  window_minutes: 40
sim:
  tick_interval: 1m
  timezone: UTC
server:
  addr: ":9090"
`)

	assert.Equal(t, "broker.example.com", cfg.MQTT.Broker)
	assert.Equal(t, 1883, cfg.MQTT.Port)
	assert.Equal(t, "school/tank/left_cm", cfg.MQTT.Topics.LeftLevel)
	assert.Equal(t, "tank/topic2", cfg.MQTT.Topics.LeftVolume) // default kept
	assert.Equal(t, 120.0, cfg.Tank.MaxLevelCm)
	assert.Equal(t, 60.0, cfg.Tank.InitialLeftCm)
	assert.Equal(t, 40, cfg.Refill.WindowMinutes)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	min, err := cfg.WindowStartMinute()
	require.NoError(t, err)
	assert.Equal(t, 8*60+30, min)

	d, err := cfg.TickInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("MQTT_BROKER", "env-broker")
	t.Setenv("MQTT_PORT", "8884")
	t.Setenv("MQTT_USERNAME", "alice")
	t.Setenv("MQTT_PASSWORD", "s3cret")
	t.Setenv("SQLITE_PATH", "/tmp/ticks.db")
	t.Setenv("TANK_TIMEZONE", "UTC")

	cfg := loadFromYAML(t, `
mqtt:
  broker: file-broker
  port: 1883
`)

	assert.Equal(t, "env-broker", cfg.MQTT.Broker)
	assert.Equal(t, 8884, cfg.MQTT.Port)
	assert.Equal(t, "alice", cfg.MQTT.Username)
	assert.Equal(t, "s3cret", cfg.MQTT.Password)
	assert.Equal(t, "/tmp/ticks.db", cfg.Database.SQLitePath)
	assert.Equal(t, "UTC", cfg.Sim.Timezone)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mqtt: [not a map"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name  string
		yaml  string
		wants string
	}{
		{"inverted levels", "tank:\n  min_level_cm: 150\n", "min_level_cm"},
		{"initial out of bounds", "tank:\n  initial_left_cm: 300\n", "initial_left_cm"},
		{"negative duration", "refill:\n  duration_minutes: -5\n", "duration_minutes"},
		{"chance above one", "refill:\n  start_chance: 1.5\n", "start_chance"},
		{"bad window start", "refill:\n  window_start: \"25:00\"\n", "window_start"},
		{"bad tick interval", "sim:\n  tick_interval: soon\n", "tick_interval"},
		{"bad timezone", "sim:\n  timezone: Mars/Olympus\n", "timezone"},
		{"partial usage override", "sim:\n  regular_usage:\n    girls:\n      min: 0.5\n", "min, max and center"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := loadFromYAML(t, tc.yaml)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wants)
		})
	}
}

func TestValidate_CompleteUsageOverride(t *testing.T) {
	cfg := loadFromYAML(t, `
sim:
  regular_usage:
    boys:
      min: 0.2
      max: 6.0
      center: 2.0
`)
	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.Sim.RegularUsage.Boys.Min)
	assert.Equal(t, 0.2, *cfg.Sim.RegularUsage.Boys.Min)
	assert.Nil(t, cfg.Sim.RegularUsage.Girls.Min)
}
