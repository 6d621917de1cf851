package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/balancea/internal/logger"
)

func TestNew_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Options{Level: "warn", Out: buf})

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := logger.New(logger.Options{Level: "loud", Out: &bytes.Buffer{}})
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.WithComponent(logger.NewWithWriter(buf), logger.ComponentLedger)

	log.Info().Msg("loaded")

	assert.Contains(t, buf.String(), `"component":"ledger"`)
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))

	l := logger.FromContext(ctx)
	l.Info().Msg("test")

	assert.NotZero(t, buf.Len())
}

func TestFromContext_Missing(t *testing.T) {
	log := logger.FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
