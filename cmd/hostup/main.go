package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/atomikpanda/hostup/internal/color"
	"github.com/atomikpanda/hostup/internal/config"
	"github.com/atomikpanda/hostup/internal/logging"
	"github.com/atomikpanda/hostup/internal/platform"
	"github.com/atomikpanda/hostup/internal/runner"
)

var (
	configFile string
	dryRun     bool
	userOnly   bool
	verbose    bool
	assumeYes  bool
)

func main() {
	color.Init()
	root := buildRoot()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "hostup",
		Short: "Converge a macOS host to its provisioned baseline",
		Long: `hostup provisions a macOS host: Homebrew and packages, the Tailscale
mesh VPN, user services, security hardening, and system settings. Every
step probes current state before mutating, so repeated runs are safe and
an already-provisioned host is left untouched.`,
		Example: `  sudo hostup
  sudo hostup --dry-run
  hostup --user-only
  sudo hostup -c hostup.yaml --yes`,
		SilenceUsage: true,
		RunE:         run,
	}

	root.Flags().StringVarP(&configFile, "config", "c", "", "path to manifest file (built-in defaults when omitted)")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "print planned changes without executing them")
	root.Flags().BoolVar(&userOnly, "user-only", false, "run only steps that need no root privileges")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace external commands on stderr")
	root.Flags().BoolVar(&assumeYes, "yes", false, "skip the confirmation prompt")

	return root
}

func run(cmd *cobra.Command, _ []string) error {
	if current := platform.Current(); current != "darwin" {
		return fmt.Errorf("unsupported platform %q: this tool provisions macOS hosts", current)
	}
	if !userOnly && !platform.IsRoot() {
		return fmt.Errorf("system operations require root; run with sudo or use --user-only")
	}

	cfg := config.Defaults()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load manifest %q: %w", configFile, err)
		}
		cfg = loaded
	}

	// Dry runs change nothing, so they never need confirmation.
	if !dryRun && !assumeYes && stdinIsTerminal() {
		ok, err := confirm()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("aborted")
		}
	}

	log := logging.New(verbose)
	r := runner.New(cfg, dryRun, userOnly, log)
	return r.Run(cmd.Context())
}

func confirm() (bool, error) {
	var proceed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Provision this host?").
			Description("hostup will install packages and change system settings.").
			Affirmative("Proceed").
			Negative("Cancel").
			Value(&proceed),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return proceed, nil
}

// stdinIsTerminal reports whether a confirmation prompt can be shown at
// all. Piped or redirected input proceeds without prompting, matching how
// this tool runs from bootstrap scripts.
func stdinIsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
