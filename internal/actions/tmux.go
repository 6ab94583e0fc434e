package actions

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/atomikpanda/hostup/internal/platform"
	"github.com/atomikpanda/hostup/internal/shell"
)

// tmuxPlistTemplate is the LaunchAgent unit. The single placeholder is the
// discovered tmux binary path.
const tmuxPlistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%[1]s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%[2]s</string>
		<string>new-session</string>
		<string>-d</string>
		<string>-s</string>
		<string>main</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`

// TmuxAction registers a user LaunchAgent that starts a detached tmux
// session at login. A user-level service needs no root, so this runs under
// user-only mode; the agent file is owned by the real (pre-sudo) user.
type TmuxAction struct {
	Sh    shell.Runner
	Label string
	// Home overrides the real user's home directory in tests.
	Home string
}

func (a *TmuxAction) Resource() string   { return "tmux service" }
func (a *TmuxAction) RequiresRoot() bool { return false }

func (a *TmuxAction) plistPath() string {
	home := a.Home
	if home == "" {
		home = platform.RealHome()
	}
	return filepath.Join(home, "Library", "LaunchAgents", a.Label+".plist")
}

func (a *TmuxAction) Probe(ctx context.Context) (Status, error) {
	if _, err := os.Stat(a.plistPath()); err == nil {
		return Status{State: Satisfied, Detail: "tmux service already registered"}, nil
	}
	out, err := a.Sh.Run(ctx, shell.Command{Program: "launchctl", Args: []string{"list"}})
	if err != nil {
		return Status{}, fmt.Errorf("list services: %w", err)
	}
	if ServiceListed(out.Stdout, a.Label) {
		return Status{State: Satisfied, Detail: "tmux service already registered"}, nil
	}
	return Status{State: Missing}, nil
}

func (a *TmuxAction) Plan(Status) string { return "register tmux session service" }

func (a *TmuxAction) Apply(ctx context.Context, _ Status) error {
	tmux, ok := a.Sh.LookPath("tmux", brewPath())
	if !ok {
		// Without the binary there is no sensible degraded behavior for a
		// service registration; abort the run.
		return Fatal("tmux binary not found; install it before registering its service")
	}

	path := a.plistPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create LaunchAgents dir: %w", err)
	}
	unit := fmt.Sprintf(tmuxPlistTemplate, a.Label, tmux)
	if err := os.WriteFile(path, []byte(unit), 0o644); err != nil {
		return fmt.Errorf("write agent plist: %w", err)
	}
	if err := chownToRealUser(path); err != nil {
		return fmt.Errorf("chown agent plist: %w", err)
	}

	if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: "launchctl",
		Args:    []string{"load", "-w", path},
	}); err != nil {
		return fmt.Errorf("load agent: %w", err)
	}
	return nil
}

// chownToRealUser hands a provisioning artifact to the invoking (pre-sudo)
// user. A no-op when not running as root.
func chownToRealUser(path string) error {
	if !platform.IsRoot() {
		return nil
	}
	name := platform.RealUser()
	if name == "" || name == "root" {
		return nil
	}
	u, err := user.Lookup(name)
	if err != nil {
		return err
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return err
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return err
	}
	return os.Chown(path, uid, gid)
}
