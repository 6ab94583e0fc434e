package actions

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atomikpanda/hostup/internal/platform"
	"github.com/atomikpanda/hostup/internal/shell"
)

const homebrewInstaller = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

// brewPath derives a PATH value with the Homebrew bin directories
// prepended, so commands resolve freshly installed tools. The process
// environment is never mutated; the value is passed per invocation.
func brewPath() string {
	return platform.PathWithBrew(os.Getenv("PATH"))
}

func brewEnv() []string {
	return []string{"PATH=" + brewPath()}
}

// HomebrewAction bootstraps the Homebrew package manager itself.
type HomebrewAction struct {
	Sh shell.Runner
}

func (a *HomebrewAction) Resource() string   { return "homebrew" }
func (a *HomebrewAction) RequiresRoot() bool { return true }

func (a *HomebrewAction) Probe(context.Context) (Status, error) {
	if platform.BrewBin() != "" {
		return Status{State: Satisfied, Detail: "Homebrew already installed"}, nil
	}
	if _, ok := a.Sh.LookPath("brew", ""); ok {
		return Status{State: Satisfied, Detail: "Homebrew already installed"}, nil
	}
	return Status{State: Missing}, nil
}

func (a *HomebrewAction) Plan(Status) string { return "install Homebrew" }

func (a *HomebrewAction) Apply(ctx context.Context, _ Status) error {
	_, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: "/bin/bash",
		Args:    []string{"-c", fmt.Sprintf(`curl -fsSL %s | /bin/bash`, homebrewInstaller)},
		Env:     []string{"NONINTERACTIVE=1"},
	})
	if err != nil {
		return fmt.Errorf("install Homebrew: %w", err)
	}
	return nil
}

// PackagesAction installs the manifest's formulae and casks. Installing
// packages with brew is safe without root, so this action runs under
// user-only mode.
type PackagesAction struct {
	Sh       shell.Runner
	Packages []string
	Casks    []string
}

func (a *PackagesAction) Resource() string   { return "packages" }
func (a *PackagesAction) RequiresRoot() bool { return false }

func (a *PackagesAction) Probe(ctx context.Context) (Status, error) {
	missingFormulae, err := a.missing(ctx, "--formula", a.Packages)
	if err != nil {
		return Status{}, err
	}
	missingCasks, err := a.missing(ctx, "--cask", a.Casks)
	if err != nil {
		return Status{}, err
	}
	missing := append(missingFormulae, missingCasks...)
	if len(missing) == 0 {
		return Status{State: Satisfied, Detail: "all packages already installed"}, nil
	}
	return Status{State: Missing, Detail: strings.Join(missing, ", ")}, nil
}

func (a *PackagesAction) missing(ctx context.Context, kind string, want []string) ([]string, error) {
	if len(want) == 0 {
		return nil, nil
	}
	out, err := a.Sh.Run(ctx, shell.Command{
		Program: "brew",
		Args:    []string{"list", kind, "-1"},
		Env:     brewEnv(),
	})
	if err != nil {
		return nil, fmt.Errorf("list installed packages: %w", err)
	}
	return MissingPackages(out.Stdout, want), nil
}

func (a *PackagesAction) Plan(st Status) string {
	return "install packages: " + st.Detail
}

func (a *PackagesAction) Apply(ctx context.Context, st Status) error {
	missingFormulae, err := a.missing(ctx, "--formula", a.Packages)
	if err != nil {
		return err
	}
	missingCasks, err := a.missing(ctx, "--cask", a.Casks)
	if err != nil {
		return err
	}
	for _, pkg := range missingFormulae {
		if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
			Program: "brew",
			Args:    []string{"install", pkg},
			Env:     brewEnv(),
		}); err != nil {
			return fmt.Errorf("install %s: %w", pkg, err)
		}
	}
	for _, cask := range missingCasks {
		if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
			Program: "brew",
			Args:    []string{"install", "--cask", cask},
			Env:     brewEnv(),
		}); err != nil {
			return fmt.Errorf("install cask %s: %w", cask, err)
		}
	}
	return nil
}

// MissingPackages compares a `brew list -1` listing against the wanted
// packages and returns the ones not yet installed, sorted.
func MissingPackages(listOutput string, want []string) []string {
	installed := map[string]bool{}
	for _, line := range strings.Split(listOutput, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			installed[name] = true
		}
	}
	var missing []string
	for _, pkg := range want {
		if !installed[pkg] {
			missing = append(missing, pkg)
		}
	}
	sort.Strings(missing)
	return missing
}
