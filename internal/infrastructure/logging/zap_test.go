package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ersonp/lore-timeline/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		verbose   bool
		wantLevel zapcore.Level
	}{
		{name: "defaults", cfg: config.LogConfig{}, wantLevel: zapcore.InfoLevel},
		{name: "console warn", cfg: config.LogConfig{Level: "warn", Format: "console"}, wantLevel: zapcore.WarnLevel},
		{name: "json error", cfg: config.LogConfig{Level: "ERROR", Format: "json"}, wantLevel: zapcore.ErrorLevel},
		{name: "verbose wins", cfg: config.LogConfig{Level: "error"}, verbose: true, wantLevel: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.verbose)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"}, false)
	assert.ErrorContains(t, err, "parsing log level")

	_, err = New(config.LogConfig{Format: "xml"}, false)
	assert.ErrorContains(t, err, "unknown log format")
}
