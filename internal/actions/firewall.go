package actions

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atomikpanda/hostup/internal/shell"
)

const socketfilterfw = "/usr/libexec/ApplicationFirewall/socketfilterfw"

// ErrUnrecognizedOutput is returned by toggle probes when the status text
// matches none of the known phrases. The sequencer logs it and assumes the
// resource needs no change rather than aborting.
var ErrUnrecognizedOutput = fmt.Errorf("unrecognized status output")

// FirewallAction enables the application firewall.
type FirewallAction struct {
	Sh shell.Runner
}

func (a *FirewallAction) Resource() string   { return "firewall" }
func (a *FirewallAction) RequiresRoot() bool { return true }

func (a *FirewallAction) Probe(ctx context.Context) (Status, error) {
	out, err := a.Sh.Run(ctx, shell.Command{Program: socketfilterfw, Args: []string{"--getglobalstate"}})
	if err != nil {
		return Status{}, fmt.Errorf("query firewall state: %w", err)
	}
	switch ParseToggle(out.Stdout, "enabled", "disabled") {
	case ToggleOn:
		return Status{State: Satisfied, Detail: "firewall already enabled"}, nil
	case ToggleOff:
		return Status{State: Missing}, nil
	default:
		return Status{}, fmt.Errorf("firewall: %w: %q", ErrUnrecognizedOutput, strings.TrimSpace(out.Stdout))
	}
}

func (a *FirewallAction) Plan(Status) string { return "enable application firewall" }

func (a *FirewallAction) Apply(ctx context.Context, _ Status) error {
	if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: socketfilterfw,
		Args:    []string{"--setglobalstate", "on"},
	}); err != nil {
		return fmt.Errorf("enable firewall: %w", err)
	}
	return nil
}

// ExceptionsAction allows the manifest's applications through the firewall.
// Applications not present on this host are skipped without failing the
// phase.
type ExceptionsAction struct {
	Sh   shell.Runner
	Apps []string
	// Warn receives non-fatal per-app notices. Defaults to discard.
	Warn func(format string, args ...any)
}

func (a *ExceptionsAction) Resource() string   { return "firewall exceptions" }
func (a *ExceptionsAction) RequiresRoot() bool { return true }

func (a *ExceptionsAction) warnf(format string, args ...any) {
	if a.Warn != nil {
		a.Warn(format, args...)
	}
}

func (a *ExceptionsAction) Probe(ctx context.Context) (Status, error) {
	out, err := a.Sh.Run(ctx, shell.Command{Program: socketfilterfw, Args: []string{"--listapps"}})
	if err != nil {
		return Status{}, fmt.Errorf("list firewall apps: %w", err)
	}
	var pending []string
	for _, app := range a.Apps {
		if _, err := os.Stat(app); err != nil {
			continue // not installed on this host
		}
		if !strings.Contains(out.Stdout, app) {
			pending = append(pending, app)
		}
	}
	if len(pending) == 0 {
		return Status{State: Satisfied, Detail: "firewall exceptions already configured"}, nil
	}
	return Status{State: Missing, Detail: strings.Join(pending, ", ")}, nil
}

func (a *ExceptionsAction) Plan(st Status) string {
	return "allow through firewall: " + st.Detail
}

func (a *ExceptionsAction) Apply(ctx context.Context, _ Status) error {
	for _, app := range a.Apps {
		if _, err := os.Stat(app); err != nil {
			a.warnf("firewall exception %s: application not present, skipping", app)
			continue
		}
		if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
			Program: socketfilterfw,
			Args:    []string{"--add", app},
		}); err != nil {
			a.warnf("firewall exception %s: %v", app, err)
			continue
		}
		if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
			Program: socketfilterfw,
			Args:    []string{"--unblockapp", app},
		}); err != nil {
			a.warnf("firewall unblock %s: %v", app, err)
		}
	}
	return nil
}

// ToggleState is the parsed on/off reading of a security toggle.
type ToggleState uint8

const (
	ToggleUnknown ToggleState = iota
	ToggleOn
	ToggleOff
)

// ParseToggle matches free-form status text against the phrase indicating
// "on" and the phrase indicating "off". The off phrase is checked first so
// a pair like ": On" / ": Off" cannot both match. Unknown text maps to
// ToggleUnknown; callers treat that as "needs no change" and log it.
func ParseToggle(output, onPhrase, offPhrase string) ToggleState {
	switch {
	case strings.Contains(output, offPhrase):
		return ToggleOff
	case strings.Contains(output, onPhrase):
		return ToggleOn
	default:
		return ToggleUnknown
	}
}
