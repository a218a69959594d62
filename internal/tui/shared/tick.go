package shared

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/fairwatch/internal/poller"
	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
)

// API is the part of the workflow API client the screens use.
type API interface {
	Endpoint(path string) string
	Fetch(ctx context.Context, mode tracker.Mode, prefix string) (tracker.Snapshot, error)
	Submit(ctx context.Context, cfg statusapi.TestConfig) error
}

// FetchCmd fetches the run's status for ticket and reports it as a FetchResultMsg.
func FetchCmd(ctx context.Context, api API, mode tracker.Mode, prefix string, ticket poller.Ticket) tea.Cmd {
	return func() tea.Msg {
		snapshot, err := api.Fetch(ctx, mode, prefix)

		return FetchResultMsg{Result: poller.Result{Ticket: ticket, Snapshot: snapshot, Err: err}}
	}
}

// PollTickCmd fires a PollTickMsg for tick chain gen after interval.
func PollTickCmd(interval time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return PollTickMsg{Gen: gen}
	})
}

// StatusEndpoint is the absolute URL polled for a run in mode.
func StatusEndpoint(api API, mode tracker.Mode) string {
	if mode == tracker.ModeFairness {
		return api.Endpoint(statusapi.FairnessStatusPath)
	}

	return api.Endpoint(statusapi.PriorityStatusPath)
}

// SubmitCmd submits cfg and reports the outcome as a SubmitResultMsg.
func SubmitCmd(ctx context.Context, api API, cfg statusapi.TestConfig) tea.Cmd {
	return func() tea.Msg {
		err := api.Submit(ctx, cfg)

		return SubmitResultMsg{Config: cfg, Endpoint: api.Endpoint(statusapi.StartPath), Err: err}
	}
}
