package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/atomikpanda/hostup/internal/shell"
)

const latestReleaseURL = "https://api.github.com/repos/tailscale/tailscale/releases/latest"

// TailscaleAction installs or updates the Tailscale client binaries via
// brew. Installing user-space binaries is safe without root; daemon
// registration is a separate action.
type TailscaleAction struct {
	Sh shell.Runner
	// Latest fetches the latest published version. Defaults to the GitHub
	// releases API; injectable for tests.
	Latest func(ctx context.Context) (string, error)
}

func (a *TailscaleAction) Resource() string   { return "tailscale" }
func (a *TailscaleAction) RequiresRoot() bool { return false }

func (a *TailscaleAction) Probe(ctx context.Context) (Status, error) {
	installed := a.installedVersion(ctx)
	if installed == "" {
		return Status{State: Missing}, nil
	}

	latest := ""
	fetch := a.Latest
	if fetch == nil {
		fetch = fetchLatestVersion
	}
	if v, err := fetch(ctx); err == nil {
		latest = v
	}
	// A failed or unparseable latest lookup treats the local install as
	// current: transient network or API trouble must not block
	// provisioning.
	if IsUpToDate(installed, latest) {
		return Status{State: Satisfied, Detail: fmt.Sprintf("tailscale %s is up to date", installed)}, nil
	}
	return Status{State: Outdated, Detail: fmt.Sprintf("%s -> %s", installed, latest)}, nil
}

func (a *TailscaleAction) installedVersion(ctx context.Context) string {
	if _, ok := a.Sh.LookPath("tailscaled", brewPath()); !ok {
		return ""
	}
	out, err := a.Sh.Run(ctx, shell.Command{
		Program: "tailscaled",
		Args:    []string{"--version"},
		Env:     brewEnv(),
	})
	if err != nil || !out.Ok() {
		return ""
	}
	return ParseInstalledVersion(out.Stdout)
}

func (a *TailscaleAction) Plan(st Status) string {
	if st.State == Outdated {
		return "update tailscale " + st.Detail
	}
	return "install tailscale"
}

func (a *TailscaleAction) Apply(ctx context.Context, st Status) error {
	verb := "install"
	if st.State == Outdated {
		verb = "upgrade"
	}
	if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: "brew",
		Args:    []string{verb, "tailscale"},
		Env:     brewEnv(),
	}); err != nil {
		return fmt.Errorf("%s tailscale: %w", verb, err)
	}
	return nil
}

// installedVersionRe matches the version token that follows a path-like
// prefix ending in "/v", e.g. "tailscale.com/cmd/tailscaled/v1.58.2-t1a…".
var installedVersionRe = regexp.MustCompile(`/v(\d+(?:\.\d+)+)`)

// ParseInstalledVersion extracts the semantic version from the daemon's
// free-form version banner. An empty result means the version (and so the
// installation) could not be determined.
func ParseInstalledVersion(banner string) string {
	m := installedVersionRe.FindStringSubmatch(banner)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseLatestVersion normalizes a release tag like "v1.60.0" to "1.60.0".
func ParseLatestVersion(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "v")
}

// IsUpToDate reports whether the installed version matches the latest. An
// empty latest (lookup failed) counts as up to date.
func IsUpToDate(installed, latest string) bool {
	if latest == "" {
		return true
	}
	return installed == latest
}

func fetchLatestVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latestReleaseURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	v := ParseLatestVersion(release.TagName)
	if v == "" {
		return "", fmt.Errorf("release has no tag")
	}
	return v, nil
}
