// Package actions contains the guarded provisioning steps. Each action
// manages one host resource: it probes the current state with read-only
// commands and mutates only when the probe reports the desired state is not
// yet in place.
package actions

import (
	"context"
	"errors"
	"fmt"
)

// State classifies a probed resource against its desired state.
type State uint8

const (
	// Satisfied means the resource already matches the desired state and
	// the action must not mutate.
	Satisfied State = iota
	// Missing means the resource is absent or unconfigured.
	Missing
	// Outdated means the resource exists but needs a different mutation
	// than a fresh install (update rather than install, prepend rather
	// than full write).
	Outdated
)

func (s State) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Missing:
		return "missing"
	case Outdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// Status is a probe result: the classification plus human-readable context
// (installed version, current resolver list, …) used in notices.
type Status struct {
	State  State
	Detail string
}

// Action is a single guarded provisioning step.
//
// Contracts every implementation must honor:
//   - Probe is read-only. It never mutates host state.
//   - Apply is called only when Probe reported Missing or Outdated, and
//     never under dry-run. Applying and then probing again must report
//     Satisfied (idempotence).
type Action interface {
	// Resource returns a short identifier for notices and the audit log.
	Resource() string
	// RequiresRoot reports whether Apply needs root privileges. Under
	// user-only mode such actions are skipped without probing.
	RequiresRoot() bool
	// Probe inspects the host and classifies the resource.
	Probe(ctx context.Context) (Status, error)
	// Plan describes the pending change for the probed status, e.g.
	// "install tailscale" or "update tailscale 1.58.2 -> 1.60.0".
	Plan(st Status) string
	// Apply performs the mutation for the probed status.
	Apply(ctx context.Context, st Status) error
}

// FatalError marks an action failure that must abort the whole run instead
// of being downgraded to a warning.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err so the sequencer aborts on it.
func Fatal(format string, args ...any) error {
	return &FatalError{Err: fmt.Errorf(format, args...)}
}

// IsFatal reports whether err (or anything it wraps) aborts the run.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
