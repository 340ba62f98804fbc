// Package config loads the feeling-care configuration.
//
// Precedence, lowest to highest: built-in defaults, the optional TOML
// config file, environment variables. A .env file in the working directory
// is loaded into the environment first, so it behaves like real env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Remote mode values.
const (
	RemoteFirestore = "firestore"
	RemoteSQLite    = "sqlite"
	RemoteNone      = "none"
)

// Config holds the application configuration.
type Config struct {
	// StateDir is where the offline JSON state lives.
	StateDir string `toml:"state_dir"`

	// RemoteMode selects the sync backend: firestore, sqlite, or none.
	// "none" disables remote writes entirely (local-only operation).
	RemoteMode string `toml:"remote"`

	// Firestore settings
	FirestoreProject     string `toml:"firestore_project"`
	FirestoreCredentials string `toml:"firestore_credentials"`
	UserID               string `toml:"user_id"`

	// SQLitePath is the standalone remote database location.
	SQLitePath string `toml:"sqlite_path"`

	// Connectivity probe settings
	ProbeAddr     string   `toml:"probe_addr"`
	ProbeInterval duration `toml:"probe_interval"`

	// DashboardPort is the daemon's WebSocket dashboard port.
	// Zero disables the dashboard.
	DashboardPort int `toml:"dashboard_port"`

	// LogFile, when set, sends daemon logs to a rotated file instead of
	// stderr.
	LogFile string `toml:"log_file"`
}

// duration lets TOML values like "30s" decode into a time.Duration.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// ProbeIntervalDuration returns the probe interval as a time.Duration.
func (c *Config) ProbeIntervalDuration() time.Duration {
	return time.Duration(c.ProbeInterval)
}

// Load builds the configuration from defaults, the optional config file,
// and the environment.
//
// The config file path is taken from FC_CONFIG; otherwise
// feeling-care.toml in the working directory is used if present. A missing
// file is not an error.
func Load() (*Config, error) {
	// Load .env if present; ignore absence.
	_ = godotenv.Load()

	cfg := defaults()

	path := os.Getenv("FC_CONFIG")
	if path == "" {
		path = "feeling-care.toml"
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if os.Getenv("FC_CONFIG") != "" {
		return nil, fmt.Errorf("config file %s not found", path)
	}

	applyEnv(cfg)

	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.StateDir, "remote.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaults returns the built-in configuration.
func defaults() *Config {
	stateDir := ".feeling-care"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".feeling-care")
	}

	return &Config{
		StateDir:      stateDir,
		RemoteMode:    RemoteSQLite,
		UserID:        "local",
		ProbeAddr:     "firestore.googleapis.com:443",
		ProbeInterval: duration(15 * time.Second),
		DashboardPort: 8484,
	}
}

// applyEnv overrides configuration from environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.StateDir, "FC_STATE_DIR")
	setString(&cfg.RemoteMode, "FC_REMOTE")
	setString(&cfg.FirestoreProject, "FC_FIRESTORE_PROJECT")
	setString(&cfg.FirestoreCredentials, "FC_FIRESTORE_CREDENTIALS")
	setString(&cfg.UserID, "FC_USER_ID")
	setString(&cfg.SQLitePath, "FC_SQLITE_PATH")
	setString(&cfg.ProbeAddr, "FC_PROBE_ADDR")
	setString(&cfg.LogFile, "FC_LOG_FILE")

	if v := os.Getenv("FC_PROBE_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.ProbeInterval = duration(parsed)
		}
	}
	if v := os.Getenv("FC_DASHBOARD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.DashboardPort = port
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.RemoteMode {
	case RemoteFirestore:
		if c.FirestoreProject == "" {
			return fmt.Errorf("firestore remote requires FC_FIRESTORE_PROJECT")
		}
	case RemoteSQLite, RemoteNone:
	default:
		return fmt.Errorf("unknown remote mode %q (want firestore, sqlite, or none)", c.RemoteMode)
	}

	if c.StateDir == "" {
		return fmt.Errorf("state directory cannot be empty")
	}
	return nil
}
