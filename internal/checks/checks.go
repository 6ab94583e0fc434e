// Package checks holds the read-only end-of-run verification. A check
// never mutates the host and never fails the run: it reports either the
// verified end state or the operator's next step.
package checks

import "context"

// Finding is one verification result.
type Finding struct {
	// OK means the resource is in its final desired state. When false the
	// Message carries actionable guidance, not an error: the remaining
	// step is interactive and outside this tool's control.
	OK      bool
	Message string
}

// Check verifies one aspect of the provisioned host.
type Check interface {
	Name() string
	Run(ctx context.Context) Finding
}
