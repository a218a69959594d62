package poller

import (
	"sync"
	"time"
)

// MockTicker is a mock implementation of Ticker for testing.
type MockTicker struct {
	TickChan chan time.Time

	stopOnce sync.Once
}

// C returns the ticker's channel.
func (m *MockTicker) C() <-chan time.Time {
	return m.TickChan
}

// Stop stops the ticker.
func (m *MockTicker) Stop() {
	m.stopOnce.Do(func() {
		if m.TickChan != nil {
			close(m.TickChan)
		}
	})
}

// MockTimeProvider hands out a fixed ticker and a clock that only moves when told to.
type MockTimeProvider struct {
	Ticker *MockTicker

	mu  sync.Mutex
	now time.Time
}

// NewMockTimeProvider creates a provider whose clock starts at start.
func NewMockTimeProvider(start time.Time) *MockTimeProvider {
	return &MockTimeProvider{
		Ticker: &MockTicker{TickChan: make(chan time.Time)},
		now:    start,
	}
}

// Advance moves the clock forward.
func (m *MockTimeProvider) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)

	return m.now
}

// NewTicker returns the provider's ticker; the interval is ignored.
func (m *MockTimeProvider) NewTicker(time.Duration) Ticker {
	return m.Ticker
}

// Now returns the mock clock's time.
func (m *MockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// RealTicker wraps time.Ticker to implement the Ticker interface.
type RealTicker struct {
	ticker *time.Ticker
}

// C returns the ticker's channel.
func (r *RealTicker) C() <-chan time.Time {
	return r.ticker.C
}

// Stop stops the ticker.
func (r *RealTicker) Stop() {
	r.ticker.Stop()
}

// RealTimeProvider implements TimeProvider using real time functions.
type RealTimeProvider struct{}

// NewTicker creates a new ticker.
func (r *RealTimeProvider) NewTicker(d time.Duration) Ticker {
	return &RealTicker{ticker: time.NewTicker(d)}
}

// Now returns the current time.
func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Ticker is an interface for time.Ticker to allow mocking.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TimeProvider provides time-related functionality for dependency injection.
type TimeProvider interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}
