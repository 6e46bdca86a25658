/*
Package config defines the server configuration and how it is loaded.

PURPOSE:
  One Config value carries everything cmd/server needs: listen address,
  SQLite path, report time zone, scheduler interval and the default
  calculation settings used until settings are persisted through the API.

LOADING ORDER (low -> high):
  1. Defaults (New)
  2. YAML file, when OTE_CONFIG is set (or a path is passed to Load)
  3. Environment, prefix OTE_
       OTE_ADDR=:9090
       OTE_DB_PATH=./data/overtime.db
       OTE_TIME_ZONE=Europe/Berlin
       OTE_SCHEDULER_INTERVAL=15m
       OTE_SETTINGS__PARAMS__DAILY_THRESHOLD=7.5   ("__" separates levels)
  4. Command-line flags, applied by the caller

EXAMPLE YAML:
  addr: ":8080"
  db_path: "./data/overtime.db"
  time_zone: "UTC"
  scheduler_interval: "1h"
  settings:
    config:
      enable_tiered_ot: true
      amount_display: "cost"
    params:
      daily_threshold: 8
      tier2_threshold_hours: 10

SEE ALSO:
  - cmd/server/main.go: Uses Load and applies flags
  - engine/types.go: Config and Params carry the koanf tags
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/warp/overtime-engine/engine"
)

const EnvPrefix = "OTE_"

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database path; ":memory:" for an in-memory database.
	DBPath string `koanf:"db_path"`

	// TimeZone decides which calendar day an entry belongs to.
	TimeZone string `koanf:"time_zone"`

	// SchedulerInterval is how often the current week is recomputed. Zero
	// disables the scheduler.
	SchedulerInterval time.Duration `koanf:"scheduler_interval"`

	// Settings are the calculation defaults.
	Settings engine.Settings `koanf:"settings"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		Addr:              ":8080",
		DBPath:            "overtime.db",
		TimeZone:          "UTC",
		SchedulerInterval: time.Hour,
		Settings:          engine.DefaultSettings(),
	}
}

// Load builds a Config by layering defaults, an optional YAML file and
// environment variables. path wins over OTE_CONFIG when non-empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// OTE_DB_PATH -> db_path, OTE_SETTINGS__CONFIG__APPLY_HOLIDAYS -> settings.config.apply_holidays
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.SchedulerInterval < 0 {
		return fmt.Errorf("%w: scheduler_interval must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Settings.Config.AmountDisplay {
	case engine.ViewEarned, engine.ViewCost, engine.ViewProfit:
	default:
		return fmt.Errorf("%w: settings.config.amount_display %q", ErrInvalidConfig, c.Settings.Config.AmountDisplay)
	}
	return nil
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: time_zone %q: %v", ErrInvalidConfig, c.TimeZone, err)
	}
	return loc, nil
}
