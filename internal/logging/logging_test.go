package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"boletera-api/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("production uses json", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Server.Env = "production"
		cfg.Log.Level = "warn"

		logger := New(cfg)
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
		assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Log.Level = "verbose"

		logger := New(cfg)
		assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	})
}
