package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDefaultsToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	log := New()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
}

func TestNewParsesLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	log := New()
	if log.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
}

func TestNewIgnoresGarbageLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouty")

	log := New()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("garbage level must fall back to info, got %s", log.GetLevel())
	}
}
