// Package poller schedules status fetches for one run and feeds their results into a
// tracker.Tracker.
//
// The Controller is a synchronous state machine: it decides when a fetch should be issued
// (returning a Ticket) and what to do with each result (Deliver), but never performs I/O
// itself. The TUI drives it from Bubble Tea messages; Run drives it from a ticker.
package poller

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joe/fairwatch/internal/tracker"
)

// Exported constants.
const (
	// FallbackErrorMessage is shown when a failed fetch carries no usable text.
	FallbackErrorMessage = "Failed to fetch results"
)

// State values.
const (
	StateIdle State = iota
	StatePolling
	StateCompleted
	StateDisposed
)

// Exported variables.
var (
	ErrAlreadyStarted = errors.New("polling already started")
	ErrDisposed       = errors.New("poller disposed")
)

// Controller owns the refresh timer state and the run's tracker.
type Controller struct {
	tracker *tracker.Tracker
	logger  *slog.Logger

	state      State
	armed      bool
	generation uint64
	nextSeq    uint64
	appliedSeq uint64

	lastErr     error
	lastMessage string
}

// New creates an idle controller feeding the given tracker.
func New(t *tracker.Tracker, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Controller{tracker: t, logger: logger}
}

// Armed reports whether the auto-refresh timer is running.
func (c *Controller) Armed() bool {
	return c.armed
}

// Begin starts polling. The returned ticket is for the immediate first fetch.
func (c *Controller) Begin() (Ticket, error) {
	switch c.state {
	case StateDisposed:
		return Ticket{}, ErrDisposed
	case StatePolling, StateCompleted:
		return Ticket{}, ErrAlreadyStarted
	case StateIdle:
	}

	c.state = StatePolling
	c.armed = true
	c.generation++

	return c.issue(false), nil
}

// ClearError dismisses the recorded fetch error.
func (c *Controller) ClearError() {
	c.lastErr = nil
	c.lastMessage = ""
}

// Deliver applies a fetch result observed at now.
//
// Results older than the newest one already delivered are discarded. A failure is recorded
// for display and leaves the tracker and the timer untouched; a success clears it. The first
// snapshot in which every class is complete disarms the timer.
func (c *Controller) Deliver(result Result, now time.Time) Outcome {
	if c.state == StateDisposed {
		return Outcome{Ticket: result.Ticket, Discarded: true}
	}

	if result.Seq < c.appliedSeq {
		c.logger.Debug("discarding out-of-order response",
			"seq", result.Seq,
			"applied", c.appliedSeq)

		return Outcome{Ticket: result.Ticket, Discarded: true, Summary: c.tracker.Last()}
	}

	c.appliedSeq = result.Seq

	if result.Err != nil {
		c.lastErr = result.Err
		c.lastMessage = ErrorMessage(result.Err)

		c.logger.Warn("status fetch failed",
			"seq", result.Seq,
			"manual", result.Manual,
			"error", result.Err)

		return Outcome{
			Ticket:  result.Ticket,
			Summary: c.tracker.Last(),
			Err:     result.Err,
			Message: c.lastMessage,
		}
	}

	c.ClearError()

	summary := c.tracker.Observe(result.Snapshot, now)
	outcome := Outcome{Ticket: result.Ticket, Applied: true, Summary: summary}

	if result.Snapshot.AllComplete() && c.state == StatePolling {
		c.state = StateCompleted
		c.disarm()

		outcome.Completed = true

		c.logger.Info("all classes complete, auto-refresh stopped",
			"elapsed_seconds", summary.ElapsedSeconds)
	}

	return outcome
}

// Dispose stops the timer and discards the tracker's state. Later calls are no-ops.
func (c *Controller) Dispose() {
	if c.state == StateDisposed {
		return
	}

	c.state = StateDisposed
	c.disarm()
	c.tracker.Dispose()
	c.ClearError()
}

// Err returns the last fetch error, if it has not been cleared.
func (c *Controller) Err() error {
	return c.lastErr
}

// ErrorMessage returns the display text of the last fetch error, or "".
func (c *Controller) ErrorMessage() string {
	return c.lastMessage
}

// Generation identifies the current tick chain. Ticks scheduled under an older generation
// are ignored by Tick.
func (c *Controller) Generation() uint64 {
	return c.generation
}

// Refresh issues one manual fetch without touching the timer.
func (c *Controller) Refresh() (Ticket, bool) {
	if c.state == StateDisposed {
		return Ticket{}, false
	}

	return c.issue(true), true
}

// State returns the controller's lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Tick handles a timer tick from the chain identified by generation. ok is false when the
// tick is stale or the timer is disarmed, in which case the caller must not schedule
// another tick.
func (c *Controller) Tick(generation uint64) (Ticket, bool) {
	if !c.armed || generation != c.generation || c.state == StateDisposed {
		return Ticket{}, false
	}

	return c.issue(false), true
}

// ToggleAutoRefresh arms or disarms the timer and returns the new armed state. Arming does
// not fetch; the caller schedules a tick under the new Generation and the first fetch
// happens when it fires. Arming after completion resumes polling.
func (c *Controller) ToggleAutoRefresh() bool {
	if c.state == StateDisposed || c.state == StateIdle {
		return false
	}

	if c.armed {
		c.disarm()

		return false
	}

	c.armed = true
	c.generation++
	c.state = StatePolling

	return true
}

// Tracker returns the run's tracker.
func (c *Controller) Tracker() *tracker.Tracker {
	return c.tracker
}

func (c *Controller) disarm() {
	c.armed = false
	c.generation++
}

func (c *Controller) issue(manual bool) Ticket {
	c.nextSeq++

	return Ticket{Seq: c.nextSeq, Manual: manual}
}

// Outcome describes what Deliver did with a result.
type Outcome struct {
	Ticket

	// Applied is true when the snapshot was folded into the tracker.
	Applied bool
	// Discarded is true for stale results and results arriving after Dispose.
	Discarded bool
	// Completed is true on the delivery that stopped auto-refresh.
	Completed bool
	// Summary is the tracker's latest summary.
	Summary tracker.Summary
	Err     error
	Message string
}

// Result is the outcome of the fetch issued for a ticket.
type Result struct {
	Ticket

	Snapshot tracker.Snapshot
	Err      error
}

// State is the controller's lifecycle state.
type State int

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Ticket identifies one issued fetch.
type Ticket struct {
	Seq    uint64
	Manual bool
}

// ErrorMessage extracts display text from a fetch error: the server-provided message when
// the error carries one, else the error text, else FallbackErrorMessage.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var withMessage userMessager
	if errors.As(err, &withMessage) {
		if msg := strings.TrimSpace(withMessage.UserMessage()); msg != "" {
			return msg
		}
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}

	return FallbackErrorMessage
}

type userMessager interface {
	UserMessage() string
}
