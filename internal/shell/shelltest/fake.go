// Package shelltest provides a scripted shell.Runner for tests.
package shelltest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atomikpanda/hostup/internal/shell"
)

// Response is what the fake returns for a matched command.
type Response struct {
	Stdout   string
	ExitCode int
	Err      error
}

// Fake is a shell.Runner whose responses are scripted per command prefix.
// Every executed command is recorded so tests can assert on mutations
// (dry-run purity, idempotence).
type Fake struct {
	mu        sync.Mutex
	responses map[string]Response
	binaries  map[string]string // name -> resolved path
	calls     []string
}

func New() *Fake {
	return &Fake{
		responses: map[string]Response{},
		binaries:  map[string]string{},
	}
}

// Respond scripts the response for any command whose rendered form starts
// with prefix.
func (f *Fake) Respond(prefix string, r Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = r
}

// Install makes LookPath resolve name to path.
func (f *Fake) Install(name, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.binaries[name] = path
}

// Calls returns the rendered form of every command run so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallsWithPrefix returns recorded commands starting with prefix.
func (f *Fake) CallsWithPrefix(prefix string) []string {
	var matched []string
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			matched = append(matched, c)
		}
	}
	return matched
}

func (f *Fake) Run(_ context.Context, cmd shell.Command) (shell.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rendered := cmd.String()
	f.calls = append(f.calls, rendered)

	// Longest matching prefix wins so tests can script both a generic and
	// a more specific response.
	var best string
	for prefix := range f.responses {
		if strings.HasPrefix(rendered, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return shell.Output{}, fmt.Errorf("shelltest: unscripted command %q", rendered)
	}
	r := f.responses[best]
	return shell.Output{Stdout: r.Stdout, ExitCode: r.ExitCode}, r.Err
}

func (f *Fake) LookPath(name, _ string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path, ok := f.binaries[name]
	return path, ok
}
