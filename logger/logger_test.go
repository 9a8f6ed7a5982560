package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerIsNop(t *testing.T) {
	require.NotNil(t, Logger)
	assert.NotPanics(t, func() { Logger.Infow("discarded", "key", "value") })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestInitialize(t *testing.T) {
	saved := Logger
	t.Cleanup(func() { Logger = saved })

	require.NoError(t, Initialize(true, "warn"))
	assert.False(t, Logger.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, Initialize(false, "debug"))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))

	current := Logger
	assert.Error(t, Initialize(false, "nope"))
	assert.Same(t, current, Logger, "failed Initialize leaves the logger alone")
}
