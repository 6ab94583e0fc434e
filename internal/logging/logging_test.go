package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewQuietDiscards(t *testing.T) {
	log := New(false)
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("quiet logger level = %v, want disabled", log.GetLevel())
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	log := New(true)
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("verbose logger level = %v, want debug", log.GetLevel())
	}
}
