package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesConsoleAndFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	path := filepath.Join(t.TempDir(), "nested", "bot.log")
	var console bytes.Buffer
	logger := newLogger(Config{LogLevel: "debug", LogFile: path}, &console)

	logger.Debug().Str("item_code", "IC-001").Msg("lookup")

	assert.Contains(t, console.String(), "lookup")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"item_code":"IC-001"`)
	assert.Contains(t, string(data), `"service":"ecount-chatbot"`)
}

func TestNewLogger_Level(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"warn", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		var console bytes.Buffer
		newLogger(Config{LogLevel: tt.level}, &console)
		assert.Equal(t, tt.want, zerolog.GlobalLevel(), tt.level)
	}
}
