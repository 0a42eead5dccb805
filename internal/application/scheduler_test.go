package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingTrigger struct {
	calls atomic.Int32
	err   error
}

func (c *countingTrigger) TriggerUpdate(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestSchedulerTriggersOnInterval(t *testing.T) {
	trigger := &countingTrigger{}
	s := NewScheduler(trigger, 10*time.Millisecond)

	go s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return trigger.calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerStops(t *testing.T) {
	trigger := &countingTrigger{}
	s := NewScheduler(trigger, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerSkipsWhileBusy(t *testing.T) {
	trigger := &countingTrigger{err: ErrUpdateInProgress}
	s := NewScheduler(trigger, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)
	defer s.Stop()

	// The in-progress error is tolerated; ticks keep coming.
	require.Eventually(t, func() bool {
		return trigger.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}
