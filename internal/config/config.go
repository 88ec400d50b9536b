// Package config loads the daemon configuration. This is the startup-time
// configuration (hardware layout, paths, logging); the operator-editable
// schedule document is separate and re-read every cycle.
package config

import (
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Fixtures   []FixtureConfig  `yaml:"fixtures"`
	StatusLED  string           `yaml:"status_led"` // GPIO pin name, "none" disables
	Jitter     JitterConfig     `yaml:"jitter"`
	Geo        GeoConfig        `yaml:"geo"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
	Ledger     LedgerConfig     `yaml:"ledger"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	UseJSON bool   `yaml:"json"`
	Colors  bool   `yaml:"colors"`
}

// GetLevel returns the configured log level with default
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig locates the live schedule document
type ScheduleConfig struct {
	Path string `yaml:"path"`
}

// SensorConfig contains lux sensor settings
type SensorConfig struct {
	Bus     string `yaml:"bus"`  // I2C bus name, empty = first available
	Address uint16 `yaml:"addr"` // device address, default 0x39
}

// FixtureConfig describes one output channel
type FixtureConfig struct {
	Name string `yaml:"name"`
	Pin  string `yaml:"pin"`  // GPIO pin name, e.g. "GPIO13"
	Mode string `yaml:"mode"` // "schedule" or "brightness"
}

// JitterConfig contains the daily offset bounds in seconds
type JitterConfig struct {
	OnMin  int `yaml:"on_min"`
	OnMax  int `yaml:"on_max"`
	OffMin int `yaml:"off_min"`
	OffMax int `yaml:"off_max"`
}

// GeoConfig contains coordinates for @sunrise/@sunset schedule times.
// Both zero disables astronomical times.
type GeoConfig struct {
	Lat      float64 `yaml:"lat,omitempty"`
	Lon      float64 `yaml:"lon,omitempty"`
	Timezone string  `yaml:"timezone"`
}

// ReconcilerConfig contains reconciler settings
type ReconcilerConfig struct {
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
}

// LedgerConfig contains event ledger settings
type LedgerConfig struct {
	CleanupInterval Duration `yaml:"cleanup_interval"`
	RetentionDays   int      `yaml:"retention_days"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./lightmgr.sqlite"
	}
	if c.Schedule.Path == "" {
		c.Schedule.Path = "./light_schedule.json"
	}

	// Sensor defaults: TSL2561 default I2C address
	if c.Sensor.Address == 0 {
		c.Sensor.Address = 0x39
	}

	// The deployment this grew out of: one brightness-driven main light and
	// two schedule-driven accent lights on a Raspberry Pi.
	if len(c.Fixtures) == 0 {
		c.Fixtures = []FixtureConfig{
			{Name: "main", Pin: "GPIO13", Mode: "brightness"},
			{Name: "aux", Pin: "GPIO19", Mode: "schedule"},
			{Name: "gallery", Pin: "GPIO26", Mode: "schedule"},
		}
	}
	for i := range c.Fixtures {
		if c.Fixtures[i].Mode == "" {
			c.Fixtures[i].Mode = "schedule"
		}
	}
	if c.StatusLED == "" {
		c.StatusLED = "GPIO5"
	}

	// Jitter defaults
	if c.Jitter.OnMin == 0 && c.Jitter.OnMax == 0 {
		c.Jitter.OnMin = 60
		c.Jitter.OnMax = 180
	}
	if c.Jitter.OffMin == 0 && c.Jitter.OffMax == 0 {
		c.Jitter.OffMin = 180
		c.Jitter.OffMax = 300
	}

	// Geo defaults
	if c.Geo.Timezone == "" {
		c.Geo.Timezone = "Local"
	}

	// Reconciler defaults
	if c.Reconciler.RateLimitRPS == 0 {
		c.Reconciler.RateLimitRPS = 10.0
	}

	// Ledger defaults
	if c.Ledger.CleanupInterval == 0 {
		c.Ledger.CleanupInterval = Duration(24 * time.Hour)
	}
	if c.Ledger.RetentionDays == 0 {
		c.Ledger.RetentionDays = 30
	}
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
