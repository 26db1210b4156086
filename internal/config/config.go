// Package config loads ecoadmin settings: built-in defaults, then an optional
// YAML file, then ECOADMIN_* environment variables. Command-line flags are
// applied last by each binary.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Default hosts of the EcoTrails dev function apps.
const (
	DefaultUsersHost       = "https://ecotrails-dev-users-func20250717225342.azurewebsites.net/api/api"
	DefaultBookingsHost    = "https://ecotrails-dev-bookings-func.azurewebsites.net/api/api"
	DefaultItinerariesHost = "https://ecotrails-dev-itineraries-func.azurewebsites.net/api/api"
	DefaultPartnersHost    = "https://ecotrails-dev-partners-func.azurewebsites.net/api/api"
)

// DefaultPath is read when no -config flag is given. A missing file is fine.
const DefaultPath = "ecoadmin.yaml"

// Hosts are the API roots of the four backend apps, each ending in /api/api.
type Hosts struct {
	Users       string `yaml:"users"`
	Bookings    string `yaml:"bookings"`
	Itineraries string `yaml:"itineraries"`
	Partners    string `yaml:"partners"`
}

// Server configures the local dev API server.
type Server struct {
	Addr          string `yaml:"addr"`
	SeedFile      string `yaml:"seed_file"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Config is the full process configuration.
type Config struct {
	Hosts          Hosts         `yaml:"hosts"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogFile        string        `yaml:"log_file"`
	LogLevel       string        `yaml:"log_level"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	Server         Server        `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Hosts: Hosts{
			Users:       DefaultUsersHost,
			Bookings:    DefaultBookingsHost,
			Itineraries: DefaultItinerariesHost,
			Partners:    DefaultPartnersHost,
		},
		RequestTimeout: 30 * time.Second,
		LogFile:        "ecoadmin.log",
		LogLevel:       "info",
		Server: Server{
			Addr:          ":8080",
			AdminEmail:    "admin@ecotrails.dev",
			AdminPassword: "admin",
		},
	}
}

// LoadFile overlays the YAML file at path on the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from environment variables read through getenv.
// ECOADMIN_SERVER points every host at one server; the per-host variables
// win over it.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if v := getenv("ECOADMIN_SERVER"); v != "" {
		cfg.Hosts = cfg.Hosts.All(v)
	}
	for env, dst := range map[string]*string{
		"ECOADMIN_USERS_HOST":       &cfg.Hosts.Users,
		"ECOADMIN_BOOKINGS_HOST":    &cfg.Hosts.Bookings,
		"ECOADMIN_ITINERARIES_HOST": &cfg.Hosts.Itineraries,
		"ECOADMIN_PARTNERS_HOST":    &cfg.Hosts.Partners,
		"ECOADMIN_LOG_FILE":         &cfg.LogFile,
		"ECOADMIN_LOG_LEVEL":        &cfg.LogLevel,
		"ECOADMIN_METRICS_ADDR":     &cfg.MetricsAddr,
		"ECOADMIN_SERVER_ADDR":      &cfg.Server.Addr,
		"ECOADMIN_SEED_FILE":        &cfg.Server.SeedFile,
	} {
		if v := getenv(env); v != "" {
			*dst = v
		}
	}
	if v := getenv("ECOADMIN_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("ECOADMIN_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	return cfg, nil
}

// All returns Hosts with every app served from server.
func (h Hosts) All(server string) Hosts {
	server = strings.TrimRight(server, "/")
	return Hosts{Users: server, Bookings: server, Itineraries: server, Partners: server}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	for name, h := range map[string]string{
		"users": c.Hosts.Users, "bookings": c.Hosts.Bookings,
		"itineraries": c.Hosts.Itineraries, "partners": c.Hosts.Partners,
	} {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("hosts.%s must not be empty", name)
		}
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug/info/warn/error to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var (
	loaded     Config
	loadErr    error
	configOnce sync.Once
)

// Load reads path (or DefaultPath when empty, tolerating its absence) and the
// environment once per process. Later calls return the first result.
func Load(path string) (Config, error) {
	configOnce.Do(func() {
		loaded, loadErr = load(path, os.Getenv)
	})
	return loaded, loadErr
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return cfg, err
		}
	}
	cfg, err := ApplyEnv(cfg, getenv)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
