// Package config loads casework settings from an optional YAML file and
// CASEWORK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type InvoiceConfig struct {
	Prefix string `yaml:"prefix"`
	Scope  string `yaml:"scope"`
}

type UploadConfig struct {
	MaxFileBytes      int64 `yaml:"max_file_bytes"`
	MaxAggregateBytes int64 `yaml:"max_aggregate_bytes"`
	DefaultVisible    bool  `yaml:"default_visible"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Calls bool   `yaml:"calls"`
}

// Config holds every casework setting.
type Config struct {
	DBPath         string        `yaml:"db_path"`
	RemoteURL      string        `yaml:"remote_url"`
	ListenAddr     string        `yaml:"listen_addr"`
	RendererURL    string        `yaml:"renderer_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Actor          string        `yaml:"actor"`
	Invoice        InvoiceConfig `yaml:"invoice"`
	Uploads        UploadConfig  `yaml:"uploads"`
	Log            LogConfig     `yaml:"log"`
}

// Default returns the built-in settings. The database lives under the
// user's home directory, falling back to the working directory.
func Default() Config {
	dbPath := "casework.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".casework", "casework.db")
	}
	return Config{
		DBPath:         dbPath,
		ListenAddr:     ":8080",
		RequestTimeout: 10 * time.Second,
		Actor:          defaultActor(),
		Invoice: InvoiceConfig{
			Prefix: "ECSI",
			Scope:  "default",
		},
		Uploads: UploadConfig{
			MaxFileBytes:      5 << 20,
			MaxAggregateBytes: 10 << 20,
			DefaultVisible:    true,
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultActor() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "casework"
}

// Load starts from Default, overlays the YAML file at path when it exists and
// then applies environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides cfg from CASEWORK_* variables. Values that fail to
// parse are ignored.
func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("CASEWORK_DB_PATH", &cfg.DBPath)
	str("CASEWORK_REMOTE_URL", &cfg.RemoteURL)
	str("CASEWORK_LISTEN_ADDR", &cfg.ListenAddr)
	str("CASEWORK_RENDERER_URL", &cfg.RendererURL)
	str("CASEWORK_ACTOR", &cfg.Actor)
	str("CASEWORK_INVOICE_PREFIX", &cfg.Invoice.Prefix)
	str("CASEWORK_INVOICE_SCOPE", &cfg.Invoice.Scope)
	str("CASEWORK_LOG_LEVEL", &cfg.Log.Level)

	if v := os.Getenv("CASEWORK_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("CASEWORK_MAX_FILE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Uploads.MaxFileBytes = n
		}
	}
	if v := os.Getenv("CASEWORK_MAX_AGGREGATE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Uploads.MaxAggregateBytes = n
		}
	}
	if v := os.Getenv("CASEWORK_DEFAULT_VISIBLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Uploads.DefaultVisible = b
		}
	}
	if v := os.Getenv("CASEWORK_LOG_CALLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Calls = b
		}
	}
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Uploads.MaxFileBytes <= 0 {
		errs = append(errs, errors.New("uploads.max_file_bytes must be positive"))
	}
	if c.Uploads.MaxAggregateBytes <= 0 {
		errs = append(errs, errors.New("uploads.max_aggregate_bytes must be positive"))
	} else if c.Uploads.MaxAggregateBytes < c.Uploads.MaxFileBytes {
		errs = append(errs, errors.New("uploads.max_aggregate_bytes must not be below uploads.max_file_bytes"))
	}
	if strings.TrimSpace(c.Invoice.Prefix) == "" {
		errs = append(errs, errors.New("invoice.prefix is required"))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("request_timeout must not be negative"))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogLevel parses Log.Level; an empty level means info.
func (c Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

// Remote reports whether the engine talks to a remote API instead of the
// local SQLite store.
func (c Config) Remote() bool {
	return c.RemoteURL != ""
}
