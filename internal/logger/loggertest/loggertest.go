// Package loggertest provides a Logger for use in tests, kept out of
// the logger package so production binaries never link test machinery.
package loggertest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/maeulsoft/programhub/internal/logger"
)

// New creates a Logger whose output goes through t.Log.
func New(t testing.TB) logger.Logger {
	return logger.FromZap(zaptest.NewLogger(t))
}
