package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atomikpanda/hostup/internal/config"
	"github.com/atomikpanda/hostup/internal/shell"
)

// PowerAction applies pmset values for unattended operation: never sleep,
// restart after power failure.
type PowerAction struct {
	Sh       shell.Runner
	Settings config.PowerConfig
}

func (a *PowerAction) Resource() string   { return "power management" }
func (a *PowerAction) RequiresRoot() bool { return true }

// desired returns pmset keys and values in a fixed apply order.
func (a *PowerAction) desired() [][2]string {
	autorestart := "0"
	if a.Settings.AutoRestart {
		autorestart = "1"
	}
	return [][2]string{
		{"sleep", strconv.Itoa(a.Settings.Sleep)},
		{"displaysleep", strconv.Itoa(a.Settings.DisplaySleep)},
		{"disksleep", strconv.Itoa(a.Settings.DiskSleep)},
		{"autorestart", autorestart},
	}
}

func (a *PowerAction) Probe(ctx context.Context) (Status, error) {
	out, err := a.Sh.Run(ctx, shell.Command{Program: "pmset", Args: []string{"-g", "custom"}})
	if err != nil {
		return Status{}, fmt.Errorf("query power settings: %w", err)
	}
	current := ParsePowerSettings(out.Stdout)
	var pending []string
	for _, kv := range a.desired() {
		if current[kv[0]] != kv[1] {
			pending = append(pending, kv[0]+"="+kv[1])
		}
	}
	if len(pending) == 0 {
		return Status{State: Satisfied, Detail: "power settings already configured"}, nil
	}
	return Status{State: Missing, Detail: strings.Join(pending, " ")}, nil
}

func (a *PowerAction) Plan(st Status) string {
	return "set power management: " + st.Detail
}

func (a *PowerAction) Apply(ctx context.Context, _ Status) error {
	for _, kv := range a.desired() {
		if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
			Program: "pmset",
			Args:    []string{"-a", kv[0], kv[1]},
		}); err != nil {
			return fmt.Errorf("pmset %s: %w", kv[0], err)
		}
	}
	return nil
}

// ParsePowerSettings extracts "key value" pairs from `pmset -g custom`
// output, ignoring section headers and prose.
func ParsePowerSettings(output string) map[string]string {
	settings := map[string]string{}
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		if _, err := strconv.Atoi(fields[1]); err != nil {
			continue
		}
		settings[fields[0]] = fields[1]
	}
	return settings
}
