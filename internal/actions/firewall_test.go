package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/atomikpanda/hostup/internal/shell/shelltest"
)

func TestParseToggle(t *testing.T) {
	tests := []struct {
		name   string
		output string
		on     string
		off    string
		want   ToggleState
	}{
		{"firewall on", "Firewall is enabled. (State = 1)", "enabled", "disabled", ToggleOn},
		{"firewall off", "Firewall is disabled. (State = 0)", "enabled", "disabled", ToggleOff},
		{"remote login on", "Remote Login: On", ": On", ": Off", ToggleOn},
		{"remote login off", "Remote Login: Off", ": On", ": Off", ToggleOff},
		{"filevault on", "FileVault is On.", "FileVault is On", "FileVault is Off", ToggleOn},
		{"garbage", "something unexpected", "enabled", "disabled", ToggleUnknown},
		{"empty", "", "enabled", "disabled", ToggleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseToggle(tt.output, tt.on, tt.off); got != tt.want {
				t.Errorf("ParseToggle(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestFirewallProbe(t *testing.T) {
	sh := shelltest.New()
	sh.Respond(socketfilterfw+" --getglobalstate", shelltest.Response{Stdout: "Firewall is disabled. (State = 0)"})
	a := &FirewallAction{Sh: sh}
	st, err := a.Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.State != Missing {
		t.Errorf("state = %v, want missing", st.State)
	}
}

func TestFirewallProbeUnrecognizedOutput(t *testing.T) {
	sh := shelltest.New()
	sh.Respond(socketfilterfw+" --getglobalstate", shelltest.Response{Stdout: "???"})
	a := &FirewallAction{Sh: sh}
	_, err := a.Probe(context.Background())
	if !errors.Is(err, ErrUnrecognizedOutput) {
		t.Errorf("err = %v, want ErrUnrecognizedOutput", err)
	}
	if IsFatal(err) {
		t.Error("unrecognized output must not abort the run")
	}
}

func TestExceptionsSkipMissingApps(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "tailscaled")
	if err := os.WriteFile(present, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	absent := filepath.Join(dir, "no-such-app")

	sh := shelltest.New()
	sh.Respond(socketfilterfw+" --listapps", shelltest.Response{Stdout: ""})
	sh.Respond(socketfilterfw+" --add", shelltest.Response{})
	sh.Respond(socketfilterfw+" --unblockapp", shelltest.Response{})

	var warnings []string
	a := &ExceptionsAction{
		Sh:   sh,
		Apps: []string{present, absent},
		Warn: func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		},
	}

	st, err := a.Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.State != Missing {
		t.Fatalf("state = %v, want missing", st.State)
	}
	if err := a.Apply(context.Background(), st); err != nil {
		t.Fatal(err)
	}

	adds := sh.CallsWithPrefix(socketfilterfw + " --add")
	if len(adds) != 1 || adds[0] != socketfilterfw+" --add "+present {
		t.Errorf("adds = %v, want only the present app", adds)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one for the absent app", warnings)
	}
}

func TestExceptionsProbeSatisfied(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "tailscaled")
	if err := os.WriteFile(present, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	sh := shelltest.New()
	sh.Respond(socketfilterfw+" --listapps", shelltest.Response{Stdout: present + " (Allow incoming connections)\n"})
	a := &ExceptionsAction{Sh: sh, Apps: []string{present}}
	st, err := a.Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.State != Satisfied {
		t.Errorf("state = %v, want satisfied", st.State)
	}
}
