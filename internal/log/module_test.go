package log

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		level zerolog.Level
	}{
		{"default", nil, zerolog.InfoLevel},
		{"debug flag", map[string]string{"DEBUG": "true"}, zerolog.DebugLevel},
		{"debug flag wins", map[string]string{"DEBUG": "true", "LOG_LEVEL": "error"}, zerolog.DebugLevel},
		{"log level", map[string]string{"LOG_LEVEL": "warn"}, zerolog.WarnLevel},
		{"unknown level", map[string]string{"LOG_LEVEL": "loud"}, zerolog.InfoLevel},
		{"debug flag not true", map[string]string{"DEBUG": "1"}, zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(key string) string { return tt.env[key] }
			assert.Equal(t, tt.level, levelFromEnv(getenv))
		})
	}
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, zerolog.WarnLevel)

	log.Info().Msg("reply store ready")
	assert.Empty(t, buf.String())

	log.Warn().Msg("reply table is empty")
	assert.Contains(t, buf.String(), "reply table is empty")
}
