// Package audit provides an append-only structured log of every
// provisioning action outcome.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/atomikpanda/hostup/internal/platform"
)

// Entry records a single action outcome.
type Entry struct {
	Time     time.Time `json:"time"`
	Phase    string    `json:"phase"`
	Resource string    `json:"resource"`
	Outcome  string    `json:"outcome"` // "applied" | "satisfied" | "previewed" | "skipped" | "warned"
	Error    string    `json:"error,omitempty"`
}

// Log appends e to the audit log. Errors are silently ignored so that
// logging never halts provisioning.
func Log(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	path := LogPath()
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	line, _ := json.Marshal(e)
	f.Write(append(line, '\n'))
}

// LogPath returns the audit log location under the real (pre-sudo) user's
// state directory, so the file is not scattered into root's home.
func LogPath() string {
	home := platform.RealHome()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".local", "state", "hostup", "audit.log")
}
