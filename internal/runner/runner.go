// Package runner sequences the provisioning phases. Phases run in a fixed
// order because later resources depend on earlier ones (packages need
// Homebrew, the daemon needs the tailscale binary, the runtime needs
// colima). Within the sequence every step is guarded: probe first, mutate
// only when the probe reports work to do.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/atomikpanda/hostup/internal/actions"
	"github.com/atomikpanda/hostup/internal/audit"
	"github.com/atomikpanda/hostup/internal/checks"
	"github.com/atomikpanda/hostup/internal/color"
	"github.com/atomikpanda/hostup/internal/config"
	"github.com/atomikpanda/hostup/internal/platform"
	"github.com/atomikpanda/hostup/internal/shell"
)

// Phase is a named group of actions applied together. RequiresRoot marks
// phases whose every action needs root; under user-only mode the whole
// phase is skipped with a single notice instead of one notice per action.
type Phase struct {
	Name         string
	RequiresRoot bool
	Actions      []actions.Action
}

// Runner drives one provisioning run.
type Runner struct {
	Cfg      config.Config
	DryRun   bool
	UserOnly bool
	OS       string // runtime.GOOS value
	Out      io.Writer
	Sh       shell.Runner
	Log      zerolog.Logger

	// Audit records one entry per action outcome. Defaults to the
	// append-only state log; injectable for tests.
	Audit func(audit.Entry)
	// Checks overrides the verification list in tests.
	Checks []checks.Check
	// Sequence overrides the built-in phase list in tests.
	Sequence []Phase
}

// New builds a Runner for the current platform with real collaborators.
func New(cfg config.Config, dryRun, userOnly bool, log zerolog.Logger) *Runner {
	return &Runner{
		Cfg:      cfg,
		DryRun:   dryRun,
		UserOnly: userOnly,
		OS:       platform.Current(),
		Out:      os.Stdout,
		Sh:       &shell.Exec{Log: log},
		Log:      log,
	}
}

func (r *Runner) record(e audit.Entry) {
	if r.Audit != nil {
		r.Audit(e)
		return
	}
	audit.Log(e)
}

func (r *Runner) infof(format string, args ...any) {
	fmt.Fprintf(r.Out, "%s %s\n", color.Cyan("[INFO]"), fmt.Sprintf(format, args...))
}

func (r *Runner) warnf(format string, args ...any) {
	fmt.Fprintf(r.Out, "%s %s\n", color.Yellow("[WARN]"), fmt.Sprintf(format, args...))
}

// Phases returns the provisioning sequence for this run's config.
func (r *Runner) Phases() []Phase {
	if r.Sequence != nil {
		return r.Sequence
	}
	cfg := r.Cfg
	settle := time.Duration(cfg.Runtime.SettleSeconds) * time.Second
	return []Phase{
		{
			Name: "dependencies",
			Actions: []actions.Action{
				&actions.HomebrewAction{Sh: r.Sh},
				&actions.PackagesAction{Sh: r.Sh, Packages: cfg.Packages, Casks: cfg.Casks},
			},
		},
		{
			Name: "mesh VPN",
			Actions: []actions.Action{
				&actions.TailscaleAction{Sh: r.Sh},
				&actions.DaemonAction{Sh: r.Sh},
				&actions.DNSAction{
					Sh:        r.Sh,
					Sentinel:  cfg.DNS.Sentinel,
					Services:  cfg.DNS.Services,
					Fallbacks: cfg.DNS.Fallbacks,
				},
			},
		},
		{
			Name: "services",
			Actions: []actions.Action{
				&actions.TmuxAction{Sh: r.Sh, Label: cfg.Tmux.Label},
				&actions.RuntimeAction{Sh: r.Sh, Settle: settle},
			},
		},
		{
			Name:         "security hardening",
			RequiresRoot: true,
			Actions: []actions.Action{
				&actions.FirewallAction{Sh: r.Sh},
				&actions.ExceptionsAction{Sh: r.Sh, Apps: cfg.Firewall.Exceptions, Warn: r.warnf},
				&actions.RemoteLoginAction{Sh: r.Sh},
				&actions.FileVaultAction{Sh: r.Sh},
			},
		},
		{
			Name:         "system configuration",
			RequiresRoot: true,
			Actions: []actions.Action{
				&actions.PowerAction{Sh: r.Sh, Settings: cfg.Power},
				&actions.NetworkTimeAction{Sh: r.Sh},
			},
		},
	}
}

// Run executes every phase in order, then the read-only verification.
func (r *Runner) Run(ctx context.Context) error {
	if r.OS != "darwin" {
		return fmt.Errorf("unsupported platform %q: this tool provisions macOS hosts", r.OS)
	}

	for _, phase := range r.Phases() {
		if r.UserOnly && phase.RequiresRoot {
			fmt.Fprintf(r.Out, "\n==> %s\n", color.Bold(phase.Name))
			r.infof("skipping %s (requires root)", phase.Name)
			for _, a := range phase.Actions {
				r.record(audit.Entry{Phase: phase.Name, Resource: a.Resource(), Outcome: "skipped"})
			}
			continue
		}
		if err := r.runPhase(ctx, phase); err != nil {
			return err
		}
	}

	r.verify(ctx)
	fmt.Fprintf(r.Out, "\n%s\n", color.BoldGreen("✅ Provisioning complete!"))
	return nil
}

func (r *Runner) runPhase(ctx context.Context, phase Phase) error {
	fmt.Fprintf(r.Out, "\n==> %s\n", color.Bold(phase.Name))
	r.Log.Debug().Str("phase", phase.Name).Msg("phase start")

	for _, a := range phase.Actions {
		if r.UserOnly && a.RequiresRoot() {
			r.infof("skipping %s (requires root)", a.Resource())
			r.record(audit.Entry{Phase: phase.Name, Resource: a.Resource(), Outcome: "skipped"})
			continue
		}

		st, err := a.Probe(ctx)
		if err != nil {
			// A failed probe must not block the rest of the run; assume
			// the resource is fine and leave a trace for the operator.
			r.warnf("could not probe %s: %v; continuing", a.Resource(), err)
			r.record(audit.Entry{Phase: phase.Name, Resource: a.Resource(), Outcome: "warned", Error: err.Error()})
			continue
		}
		if st.State == actions.Satisfied {
			detail := st.Detail
			if detail == "" {
				detail = a.Resource() + " already configured"
			}
			r.infof("%s", detail)
			r.record(audit.Entry{Phase: phase.Name, Resource: a.Resource(), Outcome: "satisfied"})
			continue
		}

		plan := a.Plan(st)
		if r.DryRun {
			fmt.Fprintf(r.Out, "  -> %s %s\n", color.Dim("[dry-run] would"), plan)
			r.record(audit.Entry{Phase: phase.Name, Resource: a.Resource(), Outcome: "previewed"})
			continue
		}

		fmt.Fprintf(r.Out, "  -> %s\n", plan)
		if err := a.Apply(ctx, st); err != nil {
			r.record(audit.Entry{Phase: phase.Name, Resource: a.Resource(), Outcome: "warned", Error: err.Error()})
			if actions.IsFatal(err) {
				return fmt.Errorf("%s: %w", a.Resource(), err)
			}
			r.warnf("%s: %v; continuing", a.Resource(), err)
			continue
		}
		r.record(audit.Entry{Phase: phase.Name, Resource: a.Resource(), Outcome: "applied"})
	}
	return nil
}

// verify runs the read-only end-of-run checks. Findings are guidance for
// the operator, never failures: the remaining steps (VPN authentication,
// shell profile edits) are interactive by nature.
func (r *Runner) verify(ctx context.Context) {
	fmt.Fprintf(r.Out, "\n==> %s\n", color.Bold("verification"))
	list := r.Checks
	if list == nil {
		list = []checks.Check{
			&checks.TailscaleCheck{Sh: r.Sh},
			&checks.RuntimeCheck{},
			&checks.ClockCheck{},
			&checks.PathCheck{},
		}
	}
	for _, c := range list {
		f := c.Run(ctx)
		if f.OK {
			r.infof("%s", f.Message)
		} else {
			r.warnf("%s", f.Message)
		}
	}
}
