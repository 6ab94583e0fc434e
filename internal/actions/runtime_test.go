package actions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/atomikpanda/hostup/internal/shell/shelltest"
)

func TestRuntimeProbe(t *testing.T) {
	a := &RuntimeAction{
		Sh:   shelltest.New(),
		Ping: func(context.Context) error { return nil },
	}
	st, err := a.Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.State != Satisfied {
		t.Errorf("state = %v, want satisfied when the daemon answers", st.State)
	}

	a.Ping = func(context.Context) error { return fmt.Errorf("connection refused") }
	st, err = a.Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.State != Missing {
		t.Errorf("state = %v, want missing when the daemon is down", st.State)
	}
}

func TestRuntimeApplyStartsAndSettles(t *testing.T) {
	sh := shelltest.New()
	sh.Install("colima", "/opt/homebrew/bin/colima")
	sh.Respond("/opt/homebrew/bin/colima start", shelltest.Response{})

	pings := 0
	var slept time.Duration
	a := &RuntimeAction{
		Sh: sh,
		Ping: func(context.Context) error {
			pings++
			if pings == 1 {
				return fmt.Errorf("not yet")
			}
			return nil
		},
		Settle: 5 * time.Second,
		Sleep:  func(d time.Duration) { slept = d },
	}

	// The probe ping fails (daemon down), the post-start ping succeeds.
	st, err := a.Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.State != Missing {
		t.Fatalf("state = %v, want missing before start", st.State)
	}
	if err := a.Apply(context.Background(), st); err != nil {
		t.Fatal(err)
	}
	if pings != 2 {
		t.Errorf("pings = %d, want a probe ping and a post-start ping", pings)
	}
	if slept != 5*time.Second {
		t.Errorf("settle delay = %v, want 5s", slept)
	}
	if starts := sh.CallsWithPrefix("/opt/homebrew/bin/colima start"); len(starts) != 1 {
		t.Errorf("starts = %v, want one", starts)
	}
}

func TestRuntimeApplyMissingColimaIsRecoverable(t *testing.T) {
	a := &RuntimeAction{Sh: shelltest.New()}
	err := a.Apply(context.Background(), Status{State: Missing})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsFatal(err) {
		t.Error("a missing colima binary should not abort the run")
	}
}
