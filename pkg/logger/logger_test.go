package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	log, err := New("", "mandi")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("debug", "mandi")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	_, err = New("loud", "mandi")
	assert.ErrorContains(t, err, "parse log level")
}

func TestNamedToleratesNil(t *testing.T) {
	assert.NotNil(t, Named(nil, "store"))
	assert.Panics(t, func() { Must(New("loud", "")) })
}
