package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/client"

	"github.com/atomikpanda/hostup/internal/shell"
)

// RuntimeAction brings up the container runtime: a colima VM hosting the
// Docker daemon, started as a user-level service.
type RuntimeAction struct {
	Sh shell.Runner
	// Ping checks daemon reachability. Defaults to the Docker API;
	// injectable for tests.
	Ping func(ctx context.Context) error
	// Settle is the fixed delay after starting the service, giving the
	// daemon's asynchronous startup time to reach a stable state.
	Settle time.Duration
	// Sleep is swapped out in tests.
	Sleep func(d time.Duration)
}

func (a *RuntimeAction) Resource() string   { return "container runtime" }
func (a *RuntimeAction) RequiresRoot() bool { return false }

func (a *RuntimeAction) ping(ctx context.Context) error {
	if a.Ping != nil {
		return a.Ping(ctx)
	}
	return PingDocker(ctx)
}

func (a *RuntimeAction) Probe(ctx context.Context) (Status, error) {
	if err := a.ping(ctx); err == nil {
		return Status{State: Satisfied, Detail: "container runtime already running"}, nil
	}
	return Status{State: Missing}, nil
}

func (a *RuntimeAction) Plan(Status) string { return "start container runtime (colima)" }

func (a *RuntimeAction) Apply(ctx context.Context, _ Status) error {
	colima, ok := a.Sh.LookPath("colima", brewPath())
	if !ok {
		return fmt.Errorf("colima binary not found; skipping container runtime start")
	}
	if _, err := shell.RunChecked(ctx, a.Sh, shell.Command{
		Program: colima,
		Args:    []string{"start"},
	}); err != nil {
		return fmt.Errorf("start colima: %w", err)
	}

	sleep := a.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(a.Settle)

	if err := a.ping(ctx); err != nil {
		return fmt.Errorf("container runtime still unreachable after start: %w", err)
	}
	return nil
}

// PingDocker checks that the Docker daemon answers on the default socket.
func PingDocker(ctx context.Context) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return err
	}
	defer cli.Close()
	_, err = cli.Ping(ctx)
	return err
}
