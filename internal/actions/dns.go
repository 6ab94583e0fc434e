package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/atomikpanda/hostup/internal/shell"
)

// DNSAction prepends the mesh-VPN sentinel resolver to each network
// service's DNS list. Existing resolvers are always preserved.
type DNSAction struct {
	Sh        shell.Runner
	Sentinel  string
	Services  []string
	Fallbacks []string
}

func (a *DNSAction) Resource() string   { return "dns" }
func (a *DNSAction) RequiresRoot() bool { return true }

func (a *DNSAction) Probe(ctx context.Context) (Status, error) {
	var unconfigured, partial []string
	for _, svc := range a.Services {
		current, ok := a.currentServers(ctx, svc)
		if !ok {
			continue // service not present on this host
		}
		if _, changed := DesiredDNS(current, a.Sentinel, a.Fallbacks); !changed {
			continue
		}
		if len(current) == 0 {
			unconfigured = append(unconfigured, svc)
		} else {
			partial = append(partial, svc)
		}
	}
	switch {
	case len(unconfigured) == 0 && len(partial) == 0:
		return Status{State: Satisfied, Detail: "mesh DNS already configured"}, nil
	case len(partial) == 0:
		return Status{State: Missing, Detail: strings.Join(unconfigured, ", ")}, nil
	default:
		return Status{State: Outdated, Detail: strings.Join(append(unconfigured, partial...), ", ")}, nil
	}
}

func (a *DNSAction) Plan(st Status) string {
	if st.State == Outdated {
		return fmt.Sprintf("prepend %s to resolvers on %s", a.Sentinel, st.Detail)
	}
	return fmt.Sprintf("configure resolvers on %s", st.Detail)
}

func (a *DNSAction) Apply(ctx context.Context, _ Status) error {
	for _, svc := range a.Services {
		current, ok := a.currentServers(ctx, svc)
		if !ok {
			continue
		}
		desired, changed := DesiredDNS(current, a.Sentinel, a.Fallbacks)
		if !changed {
			continue
		}
		args := append([]string{"-setdnsservers", svc}, desired...)
		if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{Program: "networksetup", Args: args}); err != nil {
			return fmt.Errorf("set resolvers on %s: %w", svc, err)
		}
	}
	return nil
}

// currentServers queries one network service's resolver list. The second
// return is false when the service does not exist on this host.
func (a *DNSAction) currentServers(ctx context.Context, service string) ([]string, bool) {
	out, err := a.Sh.Run(ctx, shell.Command{
		Program: "networksetup",
		Args:    []string{"-getdnsservers", service},
	})
	if err != nil || !out.Ok() {
		return nil, false
	}
	// networksetup reports an unknown service as prose on stdout with a
	// zero exit.
	if strings.Contains(out.Stdout, "Error") {
		return nil, false
	}
	return ParseDNSServers(out.Stdout), true
}

// ParseDNSServers parses `networksetup -getdnsservers` output: one resolver
// per line, or a sentence when none are set.
func ParseDNSServers(output string) []string {
	var servers []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// "There aren't any DNS Servers set on Wi-Fi." and similar prose
		// mean an empty list.
		if strings.Contains(line, " ") {
			return nil
		}
		servers = append(servers, line)
	}
	return servers
}

// DesiredDNS computes the resolver list that puts sentinel first. When the
// sentinel is already present anywhere, no change is needed. An empty
// current list gets the fallbacks appended so the host does not depend on
// the sentinel alone.
func DesiredDNS(current []string, sentinel string, fallbacks []string) ([]string, bool) {
	for _, s := range current {
		if s == sentinel {
			return nil, false
		}
	}
	if len(current) == 0 {
		return append([]string{sentinel}, fallbacks...), true
	}
	return append([]string{sentinel}, current...), true
}
