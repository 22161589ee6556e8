package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		log, sync, err := New("debug", format)
		require.NoError(t, err, format)
		require.NotNil(t, sync)
		assert.True(t, log.V(1).Enabled(), "debug level should enable V(1) for %q", format)
	}
}

func TestNew_InfoHidesDebug(t *testing.T) {
	log, _, err := New("info", "json")
	require.NoError(t, err)
	assert.True(t, log.Enabled())
	assert.False(t, log.V(1).Enabled())
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := New("loud", "json")
	assert.Error(t, err)

	_, _, err = New("info", "xml")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := parseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
