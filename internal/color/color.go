// Package color styles the provisioning notices: the cyan [INFO] and
// yellow [WARN] prefixes, dimmed dry-run previews, and the completion
// banner. Every helper returns its input unchanged when Enabled is false,
// so notice formatting never branches on terminal capability; call Init
// once at program start.
package color

import "os"

// Enabled is set by Init when stdout can render ANSI colour.
var Enabled bool

// Init probes os.Stdout and turns colour on only for a real terminal.
// Colour stays off when:
//   - NO_COLOR env var is set (https://no-color.org)
//   - TERM=dumb
//   - stdout is piped or redirected
func Init() {
	if os.Getenv("NO_COLOR") != "" {
		return
	}
	if os.Getenv("TERM") == "dumb" {
		return
	}
	stat, err := os.Stdout.Stat()
	if err != nil {
		return
	}
	Enabled = stat.Mode()&os.ModeCharDevice != 0
}

func seq(code, s string) string {
	if !Enabled || s == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func Bold(s string) string      { return seq("1", s) }
func Dim(s string) string       { return seq("2", s) }
func Green(s string) string     { return seq("32", s) }
func Yellow(s string) string    { return seq("33", s) }
func Cyan(s string) string      { return seq("36", s) }
func BoldRed(s string) string   { return seq("1;31", s) }
func BoldGreen(s string) string { return seq("1;32", s) }
