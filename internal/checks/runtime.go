package checks

import (
	"context"

	"github.com/atomikpanda/hostup/internal/actions"
)

// RuntimeCheck reports whether the container runtime answers on its socket.
type RuntimeCheck struct {
	// Ping defaults to the Docker API; injectable for tests.
	Ping func(ctx context.Context) error
}

func (c *RuntimeCheck) Name() string { return "container runtime" }

func (c *RuntimeCheck) Run(ctx context.Context) Finding {
	ping := c.Ping
	if ping == nil {
		ping = actions.PingDocker
	}
	if err := ping(ctx); err != nil {
		return Finding{Message: "container runtime not reachable; run `colima start` to bring it up"}
	}
	return Finding{OK: true, Message: "container runtime reachable"}
}
