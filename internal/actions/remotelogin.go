package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/atomikpanda/hostup/internal/shell"
)

// RemoteLoginAction enables SSH access via systemsetup.
type RemoteLoginAction struct {
	Sh shell.Runner
}

func (a *RemoteLoginAction) Resource() string   { return "remote login" }
func (a *RemoteLoginAction) RequiresRoot() bool { return true }

func (a *RemoteLoginAction) Probe(ctx context.Context) (Status, error) {
	out, err := a.Sh.Run(ctx, shell.Command{Program: "systemsetup", Args: []string{"-getremotelogin"}})
	if err != nil {
		return Status{}, fmt.Errorf("query remote login: %w", err)
	}
	switch ParseToggle(out.Stdout, ": On", ": Off") {
	case ToggleOn:
		return Status{State: Satisfied, Detail: "remote login already enabled"}, nil
	case ToggleOff:
		return Status{State: Missing}, nil
	default:
		return Status{}, fmt.Errorf("remote login: %w: %q", ErrUnrecognizedOutput, strings.TrimSpace(out.Stdout))
	}
}

func (a *RemoteLoginAction) Plan(Status) string { return "enable remote login (SSH)" }

func (a *RemoteLoginAction) Apply(ctx context.Context, _ Status) error {
	if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: "systemsetup",
		Args:    []string{"-setremotelogin", "on"},
	}); err != nil {
		return fmt.Errorf("enable remote login: %w", err)
	}
	return nil
}
