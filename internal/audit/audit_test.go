package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
)

func TestLogAppends(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	t.Setenv("HOME", t.TempDir())

	Log(Entry{Phase: "security hardening", Resource: "firewall", Outcome: "applied"})
	Log(Entry{Phase: "mesh VPN", Resource: "tailscale", Outcome: "satisfied"})

	f, err := os.Open(LogPath())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Resource != "firewall" || entries[0].Outcome != "applied" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Time.IsZero() {
		t.Error("Log should stamp entries with the current time")
	}
}

func TestLogPathUsesRealHome(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	t.Setenv("HOME", "/home/alice")
	want := "/home/alice/.local/state/hostup/audit.log"
	if got := LogPath(); got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}
}
