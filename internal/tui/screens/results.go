package screens

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/fairwatch/internal/poller"
	"github.com/joe/fairwatch/internal/tracker"
	"github.com/joe/fairwatch/internal/tui/shared"
	"github.com/joe/fairwatch/internal/tui/widgets"
	"github.com/joe/fairwatch/pkg/formatters"
)

// ResultsOptions configures a ResultsScreen.
type ResultsOptions struct {
	API    shared.API
	Mode   tracker.Mode
	Prefix string
	// DeclaredOrder fixes palette slots for the bands the run was submitted with.
	DeclaredOrder []tracker.ClassID
	// PollInterval defaults to the mode's interval.
	PollInterval    time.Duration
	HistoryCapacity int
	Logger          *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// ResultsScreen polls one run and renders its per-class progress, stages and history.
type ResultsScreen struct {
	api      shared.API
	ctrl     *poller.Controller
	ctx      context.Context //nolint:containedctx // Cancelled when the screen is left
	cancel   context.CancelFunc
	mode     tracker.Mode
	prefix   string
	endpoint string
	interval time.Duration
	now      func() time.Time

	summary tracker.Summary
	hasData bool
	width   int
}

// NewResultsScreen creates a results screen. Polling starts in Init.
func NewResultsScreen(opts ResultsOptions) ResultsScreen {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = opts.Mode.DefaultPollInterval()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	runTracker := tracker.New(tracker.Options{
		PollInterval:    interval,
		HistoryCapacity: opts.HistoryCapacity,
		DeclaredOrder:   opts.DeclaredOrder,
		Logger:          logger.With("run_prefix", opts.Prefix),
	})

	ctx, cancel := context.WithCancel(context.Background())

	return ResultsScreen{
		api:      opts.API,
		ctrl:     poller.New(runTracker, logger.With("run_prefix", opts.Prefix)),
		ctx:      ctx,
		cancel:   cancel,
		mode:     opts.Mode,
		prefix:   opts.Prefix,
		endpoint: shared.StatusEndpoint(opts.API, opts.Mode),
		interval: interval,
		now:      now,
		width:    shared.DefaultWidth,
	}
}

// Controller returns the poll controller (for testing)
func (s ResultsScreen) Controller() *poller.Controller {
	return s.ctrl
}

// Dispose stops polling and discards the run's tracker state.
func (s ResultsScreen) Dispose() {
	s.ctrl.Dispose()
	s.cancel()
}

// Init implements tea.Model. It issues the first fetch and starts the auto-refresh timer.
func (s ResultsScreen) Init() tea.Cmd {
	ticket, err := s.ctrl.Begin()
	if err != nil {
		return nil
	}

	return tea.Batch(s.fetch(ticket), s.scheduleTick())
}

// Summary returns the latest rendered summary (for testing)
func (s ResultsScreen) Summary() tracker.Summary {
	return s.summary
}

// Update implements tea.Model
func (s ResultsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		return s, nil
	case tea.KeyMsg:
		return s.handleKeyMsg(msg)
	case shared.PollTickMsg:
		return s.handleTick(msg)
	case shared.FetchResultMsg:
		return s.handleFetchResult(msg)
	}

	return s, nil
}

// View implements tea.Model
func (s ResultsScreen) View() string {
	var builder strings.Builder

	builder.WriteString(s.renderTitle())
	builder.WriteString("\n\n")

	if banner := shared.RenderErrorBanner(s.ctrl.Err(), s.ctrl.ErrorMessage(), s.endpoint, s.width); banner != "" {
		builder.WriteString(banner)
		builder.WriteString("\n")
	}

	getSummary := func() tracker.Summary { return s.summary }

	if !s.hasData {
		builder.WriteString(shared.RenderDim("Fetching " + s.endpoint + "…"))
		builder.WriteString("\n\n")
		builder.WriteString(s.renderStatusLine())

		return builder.String()
	}

	builder.WriteString(shared.RenderWidgetBox("Classes",
		widgets.NewClassListWidget(getSummary, shared.ProgressBarWidth)(), s.width))
	builder.WriteString("\n")
	builder.WriteString(shared.RenderWidgetBox("Activities",
		widgets.NewStageWidget(getSummary, shared.StageBarWidth)(), s.width))
	builder.WriteString("\n")
	builder.WriteString(shared.RenderWidgetBox("Progress over time",
		widgets.NewChartWidget(getSummary, s.width-chartOverhead, shared.ChartHeight)(), s.width))
	builder.WriteString("\n")
	builder.WriteString(s.renderStatusLine())

	return builder.String()
}

func (s ResultsScreen) fetch(ticket poller.Ticket) tea.Cmd {
	return shared.FetchCmd(s.ctx, s.api, s.mode, s.prefix, ticket)
}

func (s ResultsScreen) handleFetchResult(msg shared.FetchResultMsg) (tea.Model, tea.Cmd) {
	outcome := s.ctrl.Deliver(msg.Result, s.now())
	if outcome.Discarded || !outcome.Applied {
		return s, nil
	}

	s.summary = outcome.Summary
	s.hasData = true

	if outcome.Completed {
		summary := outcome.Summary

		return s, func() tea.Msg { return shared.RunCompletedMsg{Summary: summary} }
	}

	return s, nil
}

func (s ResultsScreen) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case shared.KeyCtrlC:
		s.Dispose()
		return s, tea.Quit
	case shared.KeyEsc, shared.KeyQuit:
		s.Dispose()
		return s, func() tea.Msg { return shared.LeaveRunMsg{} }
	case shared.KeyRefresh:
		ticket, ok := s.ctrl.Refresh()
		if !ok {
			return s, nil
		}

		return s, s.fetch(ticket)
	case shared.KeyAutoRefresh:
		if s.ctrl.ToggleAutoRefresh() {
			return s, s.scheduleTick()
		}

		return s, nil
	case shared.KeyDismiss:
		s.ctrl.ClearError()
		return s, nil
	}

	return s, nil
}

func (s ResultsScreen) handleTick(msg shared.PollTickMsg) (tea.Model, tea.Cmd) {
	ticket, ok := s.ctrl.Tick(msg.Gen)
	if !ok {
		return s, nil
	}

	return s, tea.Batch(s.fetch(ticket), s.scheduleTick())
}

func (s ResultsScreen) renderStatusLine() string {
	var status string

	switch {
	case s.ctrl.State() == poller.StateCompleted:
		status = shared.RenderSuccess(shared.SuccessSymbol() + " all classes complete")
	case s.ctrl.Armed():
		status = shared.RenderLabel(shared.ActiveSymbol() + " auto-refreshing every " + formatters.FormatDuration(s.interval))
	default:
		status = shared.RenderWarning(shared.PendingSymbol() + " manual refresh")
	}

	if s.hasData {
		status += shared.RenderDim(fmt.Sprintf("  elapsed %s · overall %s",
			formatters.FormatSeconds(s.summary.ElapsedSeconds),
			formatters.FormatPercent(s.summary.OverallPercent())))
	}

	return status + "\n" + shared.RenderDim("r refresh · a toggle auto-refresh · x dismiss error · q/esc leave run · ctrl+c quit")
}

func (s ResultsScreen) renderTitle() string {
	title := shared.RenderTitle(s.prefix) + " " + shared.ChipStyle().Render(string(s.mode))

	if s.hasData {
		title += " " + shared.RenderDim(formatters.FormatCount(s.summary.TotalWorkflows)+" workflows in test")
	}

	return title
}

func (s ResultsScreen) scheduleTick() tea.Cmd {
	return shared.PollTickCmd(s.interval, s.ctrl.Generation())
}

// chartOverhead is the widget box's border and padding.
const chartOverhead = 4
