// Package config holds the tunables shared by the browser bridge and the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultDebounce       = 450 * time.Millisecond
	DefaultHydrateTimeout = 4 * time.Second
	DefaultLogLevel       = "info"
	DefaultDBPath         = "apollo-docs.db"

	maxDebounce = 5 * time.Second
)

// Config is the runtime configuration.
type Config struct {
	// DebounceInterval is the autosave coalescing window.
	DebounceInterval time.Duration
	// HydrateTimeout bounds how long an editor session may stay in
	// Hydrating or a hydration Error before being forced Ready.
	HydrateTimeout time.Duration
	LogLevel       string
	// DBPath is the SQLite file used by the native CLI.
	DBPath string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DebounceInterval: DefaultDebounce,
		HydrateTimeout:   DefaultHydrateTimeout,
		LogLevel:         DefaultLogLevel,
		DBPath:           DefaultDBPath,
	}
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	var errs []error

	if v, ok := lookup("APOLLO_DEBOUNCE_MS"); ok {
		d, err := parseMillis("APOLLO_DEBOUNCE_MS", v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.DebounceInterval = d
		}
	}
	if v, ok := lookup("APOLLO_HYDRATE_TIMEOUT_MS"); ok {
		d, err := parseMillis("APOLLO_HYDRATE_TIMEOUT_MS", v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.HydrateTimeout = d
		}
	}
	if v, ok := lookup("APOLLO_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("APOLLO_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// browserConfig is the init payload passed from the JS host.
type browserConfig struct {
	DebounceMS       *int64 `json:"debounceMs"`
	HydrateTimeoutMS *int64 `json:"hydrateTimeoutMs"`
	LogLevel         string `json:"logLevel"`
}

// FromJSON overlays the browser init payload on the defaults.
// An empty payload yields Default().
func FromJSON(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	var in browserConfig
	if err := json.Unmarshal(data, &in); err != nil {
		return cfg, fmt.Errorf("config json: %w", err)
	}
	if in.DebounceMS != nil {
		cfg.DebounceInterval = time.Duration(*in.DebounceMS) * time.Millisecond
	}
	if in.HydrateTimeoutMS != nil {
		cfg.HydrateTimeout = time.Duration(*in.HydrateTimeoutMS) * time.Millisecond
	}
	if in.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(in.LogLevel)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.DebounceInterval <= 0 || c.DebounceInterval > maxDebounce {
		errs = append(errs, fmt.Errorf("debounce interval %s out of range (0, %s]", c.DebounceInterval, maxDebounce))
	}
	if c.HydrateTimeout <= 0 {
		errs = append(errs, fmt.Errorf("hydrate timeout must be positive, got %s", c.HydrateTimeout))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func parseMillis(key, v string) (time.Duration, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return time.Duration(n) * time.Millisecond, nil
}
