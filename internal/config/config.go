// Package config loads application configuration from an optional TOML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environments recognized by Config.Env.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const minSecretLen = 16

// Config holds the application configuration.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	JWTSecret     string
	TokenTTL      time.Duration
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	UpstreamRPS   float64
	UpstreamBurst int
	StreamTimeout time.Duration
	AllowedOrigin string
	Env           string
	BcryptCost    int
	LogLevel      string
	LogFormat     string
}

// fileConfig mirrors Config for TOML decoding. Durations are strings such as "2m".
type fileConfig struct {
	ListenAddr    string  `toml:"listen_addr"`
	DatabaseURL   string  `toml:"database_url"`
	JWTSecret     string  `toml:"jwt_secret"`
	TokenTTL      string  `toml:"token_ttl"`
	GeminiAPIKey  string  `toml:"gemini_api_key"`
	GeminiModel   string  `toml:"gemini_model"`
	GeminiBaseURL string  `toml:"gemini_base_url"`
	UpstreamRPS   float64 `toml:"upstream_rps"`
	UpstreamBurst int     `toml:"upstream_burst"`
	StreamTimeout string  `toml:"stream_timeout"`
	AllowedOrigin string  `toml:"allowed_origin"`
	Env           string  `toml:"env"`
	BcryptCost    int     `toml:"bcrypt_cost"`
	LogLevel      string  `toml:"log_level"`
	LogFormat     string  `toml:"log_format"`
}

// HasGeminiCredentials reports whether a provider API key is configured. The
// composition root starts without a completion client when it is false.
func (c *Config) HasGeminiCredentials() bool {
	return c.GeminiAPIKey != ""
}

// IsProduction reports whether the server runs in production mode, which
// enables Secure cookies.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// UsesPostgres reports whether DatabaseURL names a PostgreSQL server rather
// than a SQLite file.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func defaults() *Config {
	return &Config{
		ListenAddr:    "127.0.0.1:5000",
		DatabaseURL:   "codeconvert.db",
		TokenTTL:      7 * 24 * time.Hour,
		GeminiModel:   "gemini-2.0-flash",
		UpstreamBurst: 5,
		StreamTimeout: 2 * time.Minute,
		AllowedOrigin: "http://localhost:5173",
		Env:           EnvDevelopment,
		BcryptCost:    10,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load builds a validated Config from defaults, then the TOML file at path
// (skipped when path is empty), then CODECONVERT_* environment variables.
// CODECONVERT_JWT_SECRET (or JWT_SECRET) is required and must be at least
// 16 bytes. The provider key falls back to GEMINI_API_KEY.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var f fileConfig
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.ListenAddr, f.ListenAddr)
	setString(&c.DatabaseURL, f.DatabaseURL)
	setString(&c.JWTSecret, f.JWTSecret)
	setString(&c.GeminiAPIKey, f.GeminiAPIKey)
	setString(&c.GeminiModel, f.GeminiModel)
	setString(&c.GeminiBaseURL, f.GeminiBaseURL)
	setString(&c.AllowedOrigin, f.AllowedOrigin)
	setString(&c.Env, f.Env)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.LogFormat, f.LogFormat)

	if f.UpstreamRPS != 0 {
		c.UpstreamRPS = f.UpstreamRPS
	}
	if f.UpstreamBurst != 0 {
		c.UpstreamBurst = f.UpstreamBurst
	}
	if f.BcryptCost != 0 {
		c.BcryptCost = f.BcryptCost
	}

	if f.TokenTTL != "" {
		d, err := time.ParseDuration(f.TokenTTL)
		if err != nil {
			return fmt.Errorf("token_ttl has invalid duration %q: %w", f.TokenTTL, err)
		}
		c.TokenTTL = d
	}
	if f.StreamTimeout != "" {
		d, err := time.ParseDuration(f.StreamTimeout)
		if err != nil {
			return fmt.Errorf("stream_timeout has invalid duration %q: %w", f.StreamTimeout, err)
		}
		c.StreamTimeout = d
	}

	return nil
}

func (c *Config) applyEnv() error {
	lookupString("CODECONVERT_LISTEN_ADDR", &c.ListenAddr)
	lookupString("CODECONVERT_DATABASE_URL", &c.DatabaseURL)
	lookupString("CODECONVERT_GEMINI_MODEL", &c.GeminiModel)
	lookupString("CODECONVERT_GEMINI_BASE_URL", &c.GeminiBaseURL)
	lookupString("CODECONVERT_ALLOWED_ORIGIN", &c.AllowedOrigin)
	lookupString("CODECONVERT_ENV", &c.Env)
	lookupString("CODECONVERT_LOG_LEVEL", &c.LogLevel)
	lookupString("CODECONVERT_LOG_FORMAT", &c.LogFormat)

	// Unprefixed names are honored for compatibility with existing .env files.
	lookupString("JWT_SECRET", &c.JWTSecret)
	lookupString("CODECONVERT_JWT_SECRET", &c.JWTSecret)
	lookupString("GEMINI_API_KEY", &c.GeminiAPIKey)
	lookupString("CODECONVERT_GEMINI_API_KEY", &c.GeminiAPIKey)

	if err := lookupDuration("CODECONVERT_TOKEN_TTL", &c.TokenTTL); err != nil {
		return err
	}
	if err := lookupDuration("CODECONVERT_STREAM_TIMEOUT", &c.StreamTimeout); err != nil {
		return err
	}
	if err := lookupInt("CODECONVERT_UPSTREAM_BURST", &c.UpstreamBurst); err != nil {
		return err
	}
	if err := lookupInt("CODECONVERT_BCRYPT_COST", &c.BcryptCost); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("CODECONVERT_UPSTREAM_RPS"); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CODECONVERT_UPSTREAM_RPS has invalid number %q: %w", v, err)
		}
		c.UpstreamRPS = parsed
	}

	return nil
}

func (c *Config) validate() error {
	var errs []error

	if len(c.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("CODECONVERT_JWT_SECRET must be set to at least %d bytes", minSecretLen))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token TTL must be positive"))
	}
	if c.StreamTimeout <= 0 {
		errs = append(errs, errors.New("stream timeout must be positive"))
	}
	if c.UpstreamRPS < 0 {
		errs = append(errs, errors.New("upstream RPS must not be negative"))
	}
	if c.UpstreamBurst < 1 {
		errs = append(errs, errors.New("upstream burst must be at least 1"))
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log format must be \"text\" or \"json\", got %q", c.LogFormat))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database URL must not be empty"))
	}

	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}
