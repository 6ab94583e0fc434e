package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/atomikpanda/hostup/internal/shell"
)

// FileVaultAction turns on full-disk encryption.
type FileVaultAction struct {
	Sh shell.Runner
}

func (a *FileVaultAction) Resource() string   { return "filevault" }
func (a *FileVaultAction) RequiresRoot() bool { return true }

func (a *FileVaultAction) Probe(ctx context.Context) (Status, error) {
	out, err := a.Sh.Run(ctx, shell.Command{Program: "fdesetup", Args: []string{"status"}})
	if err != nil {
		return Status{}, fmt.Errorf("query filevault: %w", err)
	}
	switch ParseToggle(out.Stdout, "FileVault is On", "FileVault is Off") {
	case ToggleOn:
		return Status{State: Satisfied, Detail: "FileVault already enabled"}, nil
	case ToggleOff:
		return Status{State: Missing}, nil
	default:
		return Status{}, fmt.Errorf("filevault: %w: %q", ErrUnrecognizedOutput, strings.TrimSpace(out.Stdout))
	}
}

func (a *FileVaultAction) Plan(Status) string { return "enable FileVault disk encryption" }

func (a *FileVaultAction) Apply(ctx context.Context, _ Status) error {
	// Deferred enablement: encryption starts at the next login instead of
	// prompting for credentials mid-run. The recovery key lands in a
	// root-only file.
	if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: "fdesetup",
		Args:    []string{"enable", "-defer", "/private/var/root/fde-recovery.plist"},
	}); err != nil {
		return fmt.Errorf("enable filevault: %w", err)
	}
	return nil
}
