// Package config loads the parley configuration file and environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/parley/pkg/compiler"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. PARLEY_LOG_LEVEL=debug.
const EnvPrefix = "PARLEY_"

// Session store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the root of parley.yaml.
type Config struct {
	Log      LogConfig       `mapstructure:"log"`
	Locale   LocaleConfig    `mapstructure:"locale"`
	Layout   compiler.Layout `mapstructure:"layout"`
	Feedback FeedbackConfig  `mapstructure:"feedback"`
	Server   ServerConfig    `mapstructure:"server"`
	Sessions SessionsConfig  `mapstructure:"sessions"`
	Scripts  ScriptsConfig   `mapstructure:"scripts"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// LocaleConfig selects the language texts are resolved in.
type LocaleConfig struct {
	Language string `mapstructure:"language"`
	Fallback string `mapstructure:"fallback"`
}

// FeedbackConfig holds how long the terminal keeps choice feedback on screen.
type FeedbackConfig struct {
	Evaluated time.Duration `mapstructure:"evaluated"`
	Neutral   time.Duration `mapstructure:"neutral"`
}

// ServerConfig configures `parley serve` and `parley mcp --sse`.
type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	MCPAddr string `mapstructure:"mcp_addr"`
	Metrics bool   `mapstructure:"metrics"`
}

// SessionsConfig selects where session snapshots live.
type SessionsConfig struct {
	Backend       string        `mapstructure:"backend"`
	Dir           string        `mapstructure:"dir"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
}

// ScriptsConfig points at the directory of dialogue files served to sessions.
type ScriptsConfig struct {
	Dir string `mapstructure:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Locale:   LocaleConfig{Language: domain.LangEN, Fallback: domain.LangEN},
		Layout:   compiler.DefaultLayout(),
		Feedback: FeedbackConfig{Evaluated: 1500 * time.Millisecond, Neutral: 500 * time.Millisecond},
		Server:   ServerConfig{Addr: ":8080", MCPAddr: ":8081", Metrics: true},
		Sessions: SessionsConfig{
			Backend:     BackendMemory,
			Dir:         ".parley/sessions",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "parley:session:",
			LockTTL:     30 * time.Second,
		},
		Scripts: ScriptsConfig{Dir: "scripts"},
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// A missing file yields the defaults. Environment overrides are not applied.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv merges PARLEY_<SECTION>_<KEY> variables from environ (os.Environ format).
// PARLEY_SESSIONS_REDIS_ADDR sets sessions.redis_addr.
func (c *Config) ApplyEnv(environ []string) error {
	raw := make(map[string]any)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		section, field, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_")
		if !ok || field == "" {
			continue
		}
		m, _ := raw[section].(map[string]any)
		if m == nil {
			m = make(map[string]any)
			raw[section] = m
		}
		m[field] = value
	}
	if len(raw) == 0 {
		return nil
	}
	if err := decode(raw, c); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return c.Validate()
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	switch c.Sessions.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Sessions.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Layout.Spacing <= 0 {
		return fmt.Errorf("layout spacing must be positive, got %v", c.Layout.Spacing)
	}
	if c.Feedback.Evaluated < 0 || c.Feedback.Neutral < 0 {
		return fmt.Errorf("feedback delays cannot be negative")
	}
	return nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
