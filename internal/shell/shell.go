// Package shell is the single boundary through which hostup runs external
// commands. Everything that inspects or mutates the host goes through a
// Runner, so tests can substitute a fake and the rest of the code never
// touches os/exec directly.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Command describes one external program invocation.
type Command struct {
	Program string
	Args    []string
	// Env holds extra KEY=VALUE entries appended to the inherited
	// environment. Later entries win, so a PATH entry here overrides the
	// process PATH for this invocation only.
	Env []string
}

// String renders the command roughly as it would be typed in a shell.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// Output is the captured result of a finished command.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Ok reports whether the command exited 0.
func (o Output) Ok() bool { return o.ExitCode == 0 }

// Runner executes external commands and resolves program paths.
type Runner interface {
	// Run executes cmd to completion. A non-zero exit is not an error;
	// it is reported through Output.ExitCode. The error is non-nil only
	// when the command could not be executed at all (binary not found,
	// context cancelled, …).
	Run(ctx context.Context, cmd Command) (Output, error)
	// LookPath reports the absolute path of name if it is resolvable,
	// searching the given PATH value ("" means the process PATH).
	LookPath(name, path string) (string, bool)
}

// RunChecked runs cmd and converts a non-zero exit into an error carrying
// the command and its stderr. Mutating callers use this; probes inspect
// Output themselves.
func RunChecked(ctx context.Context, r Runner, cmd Command) (Output, error) {
	out, err := r.Run(ctx, cmd)
	if err != nil {
		return out, fmt.Errorf("%s: %w", cmd, err)
	}
	if !out.Ok() {
		msg := strings.TrimSpace(out.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(out.Stdout)
		}
		return out, fmt.Errorf("%s: exit %d: %s", cmd, out.ExitCode, msg)
	}
	return out, nil
}

// Exec is the real Runner backed by os/exec.
type Exec struct {
	Log zerolog.Logger
}

func (e *Exec) Run(ctx context.Context, c Command) (Output, error) {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		err = nil // the command ran; the exit code carries the result
	}

	e.Log.Debug().
		Str("command", c.String()).
		Int("exit", out.ExitCode).
		Err(err).
		Msg("exec")

	return out, err
}

func (e *Exec) LookPath(name, path string) (string, bool) {
	if path == "" {
		p, err := exec.LookPath(name)
		return p, err == nil
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode()&0o111 != 0 {
			return candidate, true
		}
	}
	return "", false
}
