package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

const (
	defaultNTPHost = "time.apple.com"
	// Advisory threshold only: a larger offset is reported, never treated
	// as a failure.
	offsetThreshold = 500 * time.Millisecond
)

// ClockCheck compares the system clock against an NTP server.
type ClockCheck struct {
	Host string
	// Query is injectable for tests; defaults to an NTP query of Host.
	Query func(host string) (time.Duration, error)
}

func (c *ClockCheck) Name() string { return "clock sync" }

func (c *ClockCheck) Run(context.Context) Finding {
	host := c.Host
	if host == "" {
		host = defaultNTPHost
	}
	query := c.Query
	if query == nil {
		query = queryOffset
	}
	offset, err := query(host)
	if err != nil {
		return Finding{Message: fmt.Sprintf("could not verify clock sync against %s (%v)", host, err)}
	}
	if offset < 0 {
		offset = -offset
	}
	if offset > offsetThreshold {
		return Finding{Message: fmt.Sprintf("clock is %v off %s; check network time settings", offset.Round(time.Millisecond), host)}
	}
	return Finding{OK: true, Message: fmt.Sprintf("clock within %v of %s", offset.Round(time.Millisecond), host)}
}

func queryOffset(host string) (time.Duration, error) {
	resp, err := ntp.Query(host)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}
