package shared

import (
	"github.com/joe/fairwatch/internal/poller"
	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
)

// ============================================================================
// Transition Messages
// These messages move the app between phases and are handled by AppModel
// ============================================================================

// SubmitRequestedMsg is sent by the form once its fields validate
type SubmitRequestedMsg struct {
	Config statusapi.TestConfig
}

// SubmitResultMsg carries the outcome of POST /start-workflows
type SubmitResultMsg struct {
	Config   statusapi.TestConfig
	Endpoint string
	Err      error
}

// RunCompletedMsg is sent by the results screen when every class has finished
type RunCompletedMsg struct {
	Summary tracker.Summary
}

// LeaveRunMsg is sent by the results screen after it disposed its tracker
type LeaveRunMsg struct{}

// ============================================================================
// Internal Messages
// These messages are used within screens for internal state management
// ============================================================================

// PollTickMsg fires the auto-refresh timer of tick chain Gen
type PollTickMsg struct {
	Gen uint64
}

// FetchResultMsg carries the outcome of one status fetch
type FetchResultMsg struct {
	Result poller.Result
}
