package checks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atomikpanda/hostup/internal/shell"
)

// TailscaleCheck reports whether the mesh VPN session is active.
type TailscaleCheck struct {
	Sh shell.Runner
}

func (c *TailscaleCheck) Name() string { return "mesh VPN" }

func (c *TailscaleCheck) Run(ctx context.Context) Finding {
	out, err := c.Sh.Run(ctx, shell.Command{
		Program: "tailscale",
		Args:    []string{"status", "--json"},
	})
	if err != nil || !out.Ok() {
		return Finding{Message: "mesh VPN status unavailable; run `tailscale up` and follow the authentication link"}
	}
	state, err := ParseBackendState(out.Stdout)
	if err != nil {
		return Finding{Message: fmt.Sprintf("could not read mesh VPN status (%v); run `tailscale status` manually", err)}
	}
	if state == "Running" {
		return Finding{OK: true, Message: "mesh VPN session active"}
	}
	return Finding{Message: fmt.Sprintf("mesh VPN session inactive (%s); run `tailscale up` and follow the authentication link", state)}
}

// ParseBackendState extracts BackendState from `tailscale status --json`.
func ParseBackendState(statusJSON string) (string, error) {
	var status struct {
		BackendState string `json:"BackendState"`
	}
	if err := json.Unmarshal([]byte(statusJSON), &status); err != nil {
		return "", err
	}
	if status.BackendState == "" {
		return "", fmt.Errorf("no BackendState in status")
	}
	return status.BackendState, nil
}
