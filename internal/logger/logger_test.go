package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	assert.False(t, l.Log.Core().Enabled(zapcore.ErrorLevel))
}

func TestInit(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		off     zapcore.Level
	}{
				{"Info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"ERROR", zapcore.ErrorLevel, zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New()
			require.NoError(t, l.Init(tt.level))
			assert.True(t, l.Log.Core().Enabled(tt.enabled))
			assert.False(t, l.Log.Core().Enabled(tt.off))
		})
	}
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	assert.Error(t, l.Init("loud"))
	assert.False(t, l.Log.Core().Enabled(zapcore.ErrorLevel))
}
