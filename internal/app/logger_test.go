package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		env, level string
		want       zapcore.Level
	}{
		{env: "production", want: zapcore.InfoLevel},
		{env: "development", want: zapcore.DebugLevel},
		{env: "production", level: "warn", want: zapcore.WarnLevel},
		{env: "development", level: "bogus", want: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			logger := NewLogger(tt.env, tt.level)
			assert.True(t, logger.Core().Enabled(tt.want))
			assert.False(t, logger.Core().Enabled(tt.want-1))
		})
	}
}
