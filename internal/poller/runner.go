package poller

import (
	"context"
	"errors"
	"time"

	"github.com/joe/fairwatch/internal/tracker"
)

// FetchFunc retrieves one snapshot of the run.
type FetchFunc func(ctx context.Context) (tracker.Snapshot, error)

// RunOptions configures Run.
type RunOptions struct {
	Interval time.Duration
	// ExitOnComplete makes Run return once every class is complete.
	ExitOnComplete bool
	// Clock defaults to RealTimeProvider.
	Clock TimeProvider
}

// Sink receives every outcome in delivery order.
type Sink func(Outcome)

// Run polls until the context is cancelled, the ticker stops, or (with ExitOnComplete) the
// run completes. Fetches are issued one at a time from the calling goroutine.
func Run(ctx context.Context, c *Controller, fetch FetchFunc, opts RunOptions, sink Sink) error {
	clock := opts.Clock
	if clock == nil {
		clock = &RealTimeProvider{}
	}

	if sink == nil {
		sink = func(Outcome) {}
	}

	ticket, err := c.Begin()
	if err != nil {
		return err
	}

	if done := poll(ctx, c, fetch, ticket, clock, opts, sink); done {
		return nil
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = tracker.ModePriority.DefaultPollInterval()
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticker.C():
			if !ok {
				return nil
			}

			ticket, ok := c.Tick(c.Generation())
			if !ok {
				continue
			}

			if done := poll(ctx, c, fetch, ticket, clock, opts, sink); done {
				return nil
			}
		}
	}
}

func poll(
	ctx context.Context,
	c *Controller,
	fetch FetchFunc,
	ticket Ticket,
	clock TimeProvider,
	opts RunOptions,
	sink Sink,
) bool {
	snapshot, err := fetch(ctx)
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return false
	}

	outcome := c.Deliver(Result{Ticket: ticket, Snapshot: snapshot, Err: err}, clock.Now())
	sink(outcome)

	return outcome.Completed && opts.ExitOnComplete
}
