// Package logging configures the debug log. Operator-facing notices go to
// stdout via the runner; this logger only traces external command execution
// and other internals when --verbose is set.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the tool's logger. Without verbose it discards everything.
func New(verbose bool) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}
