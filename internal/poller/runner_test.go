//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package poller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joe/fairwatch/internal/poller"
	"github.com/joe/fairwatch/internal/tracker"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

type scriptedFetcher struct {
	mu        sync.Mutex
	snapshots []tracker.Snapshot
	errs      []error
	calls     int
}

func (f *scriptedFetcher) fetch(context.Context) (tracker.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := min(f.calls, len(f.snapshots)-1)
	f.calls++

	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}

	return f.snapshots[i], err
}

func (f *scriptedFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func TestRunExitsOnComplete(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	clock := poller.NewMockTimeProvider(t0)
	fetcher := &scriptedFetcher{snapshots: []tracker.Snapshot{
		snapshot(0, 10), snapshot(5, 10), snapshot(10, 10),
	}}

	var outcomes []poller.Outcome

	done := make(chan error, 1)

	go func() {
		done <- poller.Run(context.Background(), newController(), fetcher.fetch, poller.RunOptions{
			Interval:       time.Second,
			ExitOnComplete: true,
			Clock:          clock,
		}, func(o poller.Outcome) { outcomes = append(outcomes, o) })
	}()

	for range 2 {
		clock.Advance(time.Second)
		clock.Ticker.TickChan <- clock.Now()
	}

	g.Eventually(done).Should(Receive(BeNil()))
	g.Expect(fetcher.count()).To(Equal(3))
	g.Expect(outcomes).To(HaveLen(3))
	g.Expect(outcomes[2].Completed).To(BeTrue())
	g.Expect(outcomes[2].Summary.AllComplete).To(BeTrue())
}

func TestRunKeepsTickingThroughErrors(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	clock := poller.NewMockTimeProvider(t0)
	fetcher := &scriptedFetcher{
		snapshots: []tracker.Snapshot{{}, snapshot(10, 10)},
		errs:      []error{errors.New("connection refused")},
	}

	var (
		mu       sync.Mutex
		messages []string
	)

	done := make(chan error, 1)

	go func() {
		done <- poller.Run(context.Background(), newController(), fetcher.fetch, poller.RunOptions{
			ExitOnComplete: true,
			Clock:          clock,
		}, func(o poller.Outcome) {
			mu.Lock()
			defer mu.Unlock()

			messages = append(messages, o.Message)
		})
	}()

	clock.Ticker.TickChan <- clock.Advance(time.Second)

	g.Eventually(done).Should(Receive(BeNil()))

	mu.Lock()
	defer mu.Unlock()

	g.Expect(messages).To(Equal([]string{"connection refused", ""}))
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	clock := poller.NewMockTimeProvider(t0)
	fetcher := &scriptedFetcher{snapshots: []tracker.Snapshot{snapshot(1, 10)}}

	done := make(chan error, 1)

	go func() {
		done <- poller.Run(ctx, newController(), fetcher.fetch, poller.RunOptions{Clock: clock}, nil)
	}()

	clock.Ticker.TickChan <- clock.Advance(time.Second)
	cancel()

	g.Eventually(done).Should(Receive(MatchError(context.Canceled)))
	g.Expect(fetcher.count()).To(Equal(2))
}

func TestRunReturnsWhenTickerStops(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	clock := poller.NewMockTimeProvider(t0)
	fetcher := &scriptedFetcher{snapshots: []tracker.Snapshot{snapshot(1, 10)}}

	done := make(chan error, 1)

	go func() {
		done <- poller.Run(context.Background(), newController(), fetcher.fetch, poller.RunOptions{Clock: clock}, nil)
	}()

	clock.Ticker.TickChan <- clock.Advance(time.Second)
	clock.Ticker.Stop()

	g.Eventually(done).Should(Receive(BeNil()))
}
