package actions

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atomikpanda/hostup/internal/shell"
)

const (
	tailscaledLabel = "com.tailscale.tailscaled"
	tailscaledPlist = "/Library/LaunchDaemons/com.tailscale.tailscaled.plist"
)

// DaemonAction registers tailscaled as a system launch daemon.
type DaemonAction struct {
	Sh shell.Runner
	// PlistPath defaults to the well-known system location; overridable
	// for tests.
	PlistPath string
}

func (a *DaemonAction) Resource() string   { return "tailscaled daemon" }
func (a *DaemonAction) RequiresRoot() bool { return true }

func (a *DaemonAction) Probe(ctx context.Context) (Status, error) {
	plist := a.PlistPath
	if plist == "" {
		plist = tailscaledPlist
	}
	// Either signal is enough: the registration file on disk, or the label
	// in the service manager's listing.
	if _, err := os.Stat(plist); err == nil {
		return Status{State: Satisfied, Detail: "tailscaled daemon already registered"}, nil
	}
	out, err := a.Sh.Run(ctx, shell.Command{Program: "launchctl", Args: []string{"list"}})
	if err != nil {
		return Status{}, fmt.Errorf("list services: %w", err)
	}
	if ServiceListed(out.Stdout, tailscaledLabel) {
		return Status{State: Satisfied, Detail: "tailscaled daemon already registered"}, nil
	}
	return Status{State: Missing}, nil
}

func (a *DaemonAction) Plan(Status) string { return "register tailscaled system daemon" }

func (a *DaemonAction) Apply(ctx context.Context, _ Status) error {
	tailscaled, ok := a.Sh.LookPath("tailscaled", brewPath())
	if !ok {
		return fmt.Errorf("tailscaled binary not found; was the mesh VPN phase's install step skipped?")
	}
	if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: tailscaled,
		Args:    []string{"install-system-daemon"},
	}); err != nil {
		return fmt.Errorf("register tailscaled daemon: %w", err)
	}
	return nil
}

// ServiceListed reports whether a launchctl listing contains the label.
func ServiceListed(listOutput, label string) bool {
	for _, line := range strings.Split(listOutput, "\n") {
		if strings.Contains(line, label) {
			return true
		}
	}
	return false
}
