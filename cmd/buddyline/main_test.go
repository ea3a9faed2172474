package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/buddyline/pkg/config"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerHonorsConfiguredLevel(t *testing.T) {
	logger, err := newLogger(config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	defer logger.Sync()

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = newLogger(config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLoggerDevelopmentMode(t *testing.T) {
	logger, err := newLogger(config.LoggingConfig{Level: "info", Development: true})
	require.NoError(t, err)
	defer logger.Sync()

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
