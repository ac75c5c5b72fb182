package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HOST", "PORT", "ALLOW_ORIGINS", "LOG_LEVEL", "LOG_FILE", "MAX_BODY_MB",
	"CATALOG_FILE", "CATALOG_DELIMITER", "CATALOG_HEADER_ROW",
	"MATCH_MIN_SCORE", "MATCH_MIN_TOKEN_LEN",
	"ECOUNT_BASE_URL", "ECOUNT_SESSION_ID", "ECOUNT_TIMEOUT", "ECOUNT_RPS",
	"LINE_CHANNEL_SECRET", "LINE_CHANNEL_ACCESS_TOKEN",
	"CHAT_RATE_PER_SEC", "CHAT_RATE_BURST",
}

// cleanEnv clears every key for the duration of the test and runs it from an
// empty directory so no .env or config.yaml is picked up.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "logs/ecount-chatbot.log", cfg.LogFile)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes())
	assert.Equal(t, "data/items_master.csv", cfg.CatalogFile)
	assert.Equal(t, ',', cfg.Delimiter())
	assert.Equal(t, 1, cfg.CatalogHeaderRow)
	assert.Equal(t, 70.0, cfg.MatchMinScore)
	assert.Equal(t, 4, cfg.MatchMinTokenLen)
	assert.Equal(t, DefaultEcountBaseURL, cfg.EcountBaseURL)
	assert.Equal(t, 10*time.Second, cfg.EcountTimeout)
	assert.Zero(t, cfg.EcountRPS)
	assert.Equal(t, 2.0, cfg.ChatRatePerSec)
	assert.Equal(t, 5, cfg.ChatRateBurst)
	assert.Len(t, cfg.Warnings(), 2)
}

func TestLoad_Environment(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CATALOG_DELIMITER", `\t`)
	t.Setenv("MATCH_MIN_SCORE", "82.5")
	t.Setenv("ECOUNT_SESSION_ID", "sess")
	t.Setenv("ECOUNT_TIMEOUT", "3s")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, '\t', cfg.Delimiter())
	assert.Equal(t, 82.5, cfg.MatchMinScore)
	assert.Equal(t, 3*time.Second, cfg.EcountTimeout)
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_ZeroMinScoreKept(t *testing.T) {
	cleanEnv(t)
	t.Setenv("MATCH_MIN_SCORE", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.MatchMinScore)
}

func TestLoad_DotEnvAndYAML(t *testing.T) {
	cleanEnv(t)
	dir, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ECOUNT_SESSION_ID=from-dotenv\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: 7000\ncatalog_file: items.xlsx\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ECOUNT_SESSION_ID") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "items.xlsx", cfg.CatalogFile)
	assert.Equal(t, "from-dotenv", cfg.EcountSessionID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "0"},
		{"MAX_BODY_MB", "0"},
		{"CATALOG_HEADER_ROW", "0"},
		{"CATALOG_DELIMITER", ";;"},
		{"MATCH_MIN_SCORE", "101"},
		{"MATCH_MIN_TOKEN_LEN", "0"},
		{"ECOUNT_TIMEOUT", "0s"},
		{"CHAT_RATE_BURST", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	cleanEnv(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: [\n"), 0o600))

	_, err = Load()
	assert.Error(t, err)
}
