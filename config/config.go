/*
Package config loads the service configuration.

PURPOSE:
  YAML file + environment overrides for the server process: listen address,
  database path, the IANA time zone used when parsing fallback punch strings,
  and the default time-calculation settings applied until an admin saves
  their own.

PRECEDENCE (lowest to highest):
  1. Built-in defaults
  2. YAML file (optional; a missing file is not an error)
  3. Environment: ATTENDANCE_ADDR, ATTENDANCE_DB
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warp/attendance-engine/engine"
)

// TimeSettings mirrors engine.TimeConfig in the external settings naming.
type TimeSettings struct {
	Rounding     bool `yaml:"calc_rounding"`
	RoundingMins int  `yaml:"calc_roundingMins"`
	Lunch        bool `yaml:"calc_lunch"`
	LunchMins    int  `yaml:"calc_lunchMins"`
}

// Config is the full service configuration.
type Config struct {
	Addr         string       `yaml:"addr"`
	DatabasePath string       `yaml:"database_path"`
	Timezone     string       `yaml:"timezone"`
	Defaults     TimeSettings `yaml:"time_settings"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:         ":8080",
		DatabasePath: "attendance.db",
		Timezone:     "Local",
		Defaults: TimeSettings{
			Rounding:     false,
			RoundingMins: 15,
			Lunch:        false,
			LunchMins:    60,
		},
	}
}

// Load reads the configuration from path, layering it over the defaults and
// under the environment overrides. An empty path or a missing file yields
// defaults + environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; run on defaults.
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if addr := os.Getenv("ATTENDANCE_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if db := os.Getenv("ATTENDANCE_DB"); db != "" {
		cfg.DatabasePath = db
	}

	if err := cfg.TimeConfig().Validate(); err != nil {
		return nil, fmt.Errorf("invalid time_settings in config: %w", err)
	}
	return cfg, nil
}

// TimeConfig converts the default settings into the engine's config type.
func (c *Config) TimeConfig() engine.TimeConfig {
	return engine.TimeConfig{
		RoundingEnabled: c.Defaults.Rounding,
		RoundingMinutes: c.Defaults.RoundingMins,
		LunchEnabled:    c.Defaults.Lunch,
		LunchMinutes:    c.Defaults.LunchMins,
	}
}

// Location resolves the configured time zone. "Local" or empty means the
// process-local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
