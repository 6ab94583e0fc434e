package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/atomikpanda/hostup/internal/shell"
)

// NetworkTimeAction keeps the clock synchronized via the system NTP client.
type NetworkTimeAction struct {
	Sh shell.Runner
}

func (a *NetworkTimeAction) Resource() string   { return "network time" }
func (a *NetworkTimeAction) RequiresRoot() bool { return true }

func (a *NetworkTimeAction) Probe(ctx context.Context) (Status, error) {
	out, err := a.Sh.Run(ctx, shell.Command{Program: "systemsetup", Args: []string{"-getusingnetworktime"}})
	if err != nil {
		return Status{}, fmt.Errorf("query network time: %w", err)
	}
	switch ParseToggle(out.Stdout, ": On", ": Off") {
	case ToggleOn:
		return Status{State: Satisfied, Detail: "network time already enabled"}, nil
	case ToggleOff:
		return Status{State: Missing}, nil
	default:
		return Status{}, fmt.Errorf("network time: %w: %q", ErrUnrecognizedOutput, strings.TrimSpace(out.Stdout))
	}
}

func (a *NetworkTimeAction) Plan(Status) string { return "enable network time sync" }

func (a *NetworkTimeAction) Apply(ctx context.Context, _ Status) error {
	if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: "systemsetup",
		Args:    []string{"-setusingnetworktime", "on"},
	}); err != nil {
		return fmt.Errorf("enable network time: %w", err)
	}
	return nil
}
