package main

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerParsesLevel(t *testing.T) {
	logger := newLogger("debug")
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	for _, raw := range []string{"", "loud", "verbose"} {
		logger := newLogger(raw)
		if logger.GetLevel() != zerolog.InfoLevel {
			t.Fatalf("expected info fallback for %q, got %s", raw, logger.GetLevel())
		}
	}
}
