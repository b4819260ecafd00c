// Package config loads server configuration from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the server configuration
type Config struct {
	Port        int
	StorageType string
	RedisURL    string
	LogLevel    slog.Level

	// Reference credentials accepted by the mock authenticator
	AuthUsername string
	AuthPassword string
	AuthDelay    time.Duration

	SubmitTimeout time.Duration
	FormTTL       time.Duration

	// FormClass is the presentational class hint for the login form
	FormClass string
	StaticDir string
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port:          8080,
		StorageType:   StorageMemory,
		LogLevel:      slog.LevelInfo,
		AuthUsername:  "testuser",
		AuthPassword:  "password123",
		AuthDelay:     1500 * time.Millisecond,
		SubmitTimeout: 10 * time.Second,
		FormTTL:       time.Hour,
	}
}

// Load reads configuration from the process environment. Values missing
// there are taken from the given .env files; missing files are skipped and
// later files win over earlier ones.
func Load(files ...string) (Config, error) {
	fileEnv := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		maps.Copy(fileEnv, values)
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

// FromLookup builds a Config from a key lookup such as os.LookupEnv
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	duration := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT: %w", err))
		} else {
			cfg.Port = port
		}
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}
	str("STORAGE_TYPE", &cfg.StorageType)
	str("REDIS_URL", &cfg.RedisURL)
	str("AUTH_USERNAME", &cfg.AuthUsername)
	str("AUTH_PASSWORD", &cfg.AuthPassword)
	str("LOGIN_FORM_CLASS", &cfg.FormClass)
	str("STATIC_DIR", &cfg.StaticDir)
	duration("AUTH_DELAY", &cfg.AuthDelay)
	duration("SUBMIT_TIMEOUT", &cfg.SubmitTimeout)
	duration("FORM_TTL", &cfg.FormTTL)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE: must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageType))
	}
	if c.AuthDelay < 0 {
		errs = append(errs, errors.New("AUTH_DELAY: must not be negative"))
	}
	if c.SubmitTimeout < 0 {
		errs = append(errs, errors.New("SUBMIT_TIMEOUT: must not be negative"))
	}
	// The Redis in-flight flag expires, so an unbounded submission could outlive it
	if c.SubmitTimeout == 0 && c.StorageType == StorageRedis {
		errs = append(errs, errors.New("SUBMIT_TIMEOUT: must be positive when STORAGE_TYPE=redis"))
	}
	if c.FormTTL <= 0 {
		errs = append(errs, errors.New("FORM_TTL: must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the configured port
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
