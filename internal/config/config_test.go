package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

// allConfigKeys lists every environment variable that Load() reads.
var allConfigKeys = []string{
	"CODECONVERT_LISTEN_ADDR",
	"CODECONVERT_DATABASE_URL",
	"CODECONVERT_JWT_SECRET",
	"CODECONVERT_TOKEN_TTL",
	"CODECONVERT_GEMINI_API_KEY",
	"CODECONVERT_GEMINI_MODEL",
	"CODECONVERT_GEMINI_BASE_URL",
	"CODECONVERT_UPSTREAM_RPS",
	"CODECONVERT_UPSTREAM_BURST",
	"CODECONVERT_STREAM_TIMEOUT",
	"CODECONVERT_ALLOWED_ORIGIN",
	"CODECONVERT_ENV",
	"CODECONVERT_BCRYPT_COST",
	"CODECONVERT_LOG_LEVEL",
	"CODECONVERT_LOG_FORMAT",
	"JWT_SECRET",
	"GEMINI_API_KEY",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CODECONVERT_JWT_SECRET", testSecret)
	t.Setenv("CODECONVERT_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("CODECONVERT_DATABASE_URL", "postgres://app@db/codeconvert")
	t.Setenv("CODECONVERT_TOKEN_TTL", "24h")
	t.Setenv("CODECONVERT_GEMINI_API_KEY", "gm-key")
	t.Setenv("CODECONVERT_UPSTREAM_RPS", "2.5")
	t.Setenv("CODECONVERT_STREAM_TIMEOUT", "30s")
	t.Setenv("CODECONVERT_ENV", "production")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.HasGeminiCredentials())
	assert.InDelta(t, 2.5, cfg.UpstreamRPS, 0.0001)
	assert.Equal(t, 30*time.Second, cfg.StreamTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CODECONVERT_JWT_SECRET", testSecret)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.ListenAddr)
	assert.Equal(t, "codeconvert.db", cfg.DatabaseURL)
	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 2*time.Minute, cfg.StreamTimeout)
	assert.Equal(t, "http://localhost:5173", cfg.AllowedOrigin)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.HasGeminiCredentials())
}

// TestLoad_UnprefixedFallbacks verifies existing .env files with the plain
// JWT_SECRET and GEMINI_API_KEY names keep working.
func TestLoad_UnprefixedFallbacks(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("GEMINI_API_KEY", "plain-key")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.JWTSecret)
	assert.Equal(t, "plain-key", cfg.GeminiAPIKey)
}

func TestLoad_MissingSecret(t *testing.T) {
	isolateConfigEnv(t)

	_, err := Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CODECONVERT_JWT_SECRET")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "CODECONVERT_TOKEN_TTL", value: "forever"},
		{key: "CODECONVERT_STREAM_TIMEOUT", value: "-1s"},
		{key: "CODECONVERT_UPSTREAM_RPS", value: "fast"},
		{key: "CODECONVERT_UPSTREAM_BURST", value: "0"},
		{key: "CODECONVERT_BCRYPT_COST", value: "ten"},
		{key: "CODECONVERT_ENV", value: "staging"},
		{key: "CODECONVERT_LOG_FORMAT", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("CODECONVERT_JWT_SECRET", testSecret)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolateConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
listen_addr = "0.0.0.0:7000"
jwt_secret = "`+testSecret+`"
stream_timeout = "45s"
gemini_model = "gemini-file-model"
upstream_rps = 1.5
`), 0o600)
	require.NoError(t, err)

	t.Setenv("CODECONVERT_GEMINI_MODEL", "gemini-env-model")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.ListenAddr)
	assert.Equal(t, testSecret, cfg.JWTSecret)
	assert.Equal(t, 45*time.Second, cfg.StreamTimeout)
	assert.Equal(t, "gemini-env-model", cfg.GeminiModel, "environment overrides the file")
	assert.InDelta(t, 1.5, cfg.UpstreamRPS, 0.0001)
}

func TestLoad_BadFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CODECONVERT_JWT_SECRET", testSecret)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr = "), 0o600))

	_, err := Load(path)
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
