package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/fairwatch/internal/config"
	"github.com/joe/fairwatch/internal/poller"
	"github.com/joe/fairwatch/internal/prefs"
	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tui/screens"
	"github.com/joe/fairwatch/internal/tui/shared"
)

// Phase represents the current workflow phase
type Phase int

const (
	PhaseConfigure Phase = iota
	PhaseSubmit
	PhaseTrack
	PhaseDone
)

// String returns the phase name for timeline rendering
func (p Phase) String() string {
	switch p {
	case PhaseConfigure:
		return "configure"
	case PhaseSubmit:
		return "submit"
	case PhaseTrack:
		return "track"
	case PhaseDone:
		return "done"
	default:
		return "configure"
	}
}

// Options wires the app to its collaborators.
type Options struct {
	API    shared.API
	Prefs  *prefs.Store
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// AppModel is the top-level model. It walks a run through configure, submit and track,
// keeping the form around so leaving a run returns to it.
type AppModel struct {
	config *config.Config
	opts   Options
	phase  Phase

	form       screens.FormScreen
	hasForm    bool
	results    screens.ResultsScreen
	hasResults bool
	spinner    spinner.Model

	pending        statusapi.TestConfig
	submitErr      error
	submitEndpoint string

	width  int
	height int
}

// NewAppModel creates the app. Interactive configs open the form; otherwise the run is
// submitted (with --submit) or tracked right away.
func NewAppModel(cfg *config.Config, opts Options) *AppModel {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	app := &AppModel{
		config:  cfg,
		opts:    opts,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:   shared.DefaultWidth,
	}

	switch {
	case cfg.InteractiveMode:
		defaults := cfg.TestConfig()
		if defaults.WorkflowIDPrefix == "" {
			defaults.WorkflowIDPrefix = config.DefaultRunPrefix(opts.Now())
		}

		app.phase = PhaseConfigure
		app.form = screens.NewFormScreen(screens.FormOptions{
			Defaults: defaults,
			Prefs:    opts.Prefs,
			Logger:   opts.Logger,
		})
		app.hasForm = true
	case cfg.Submit:
		app.phase = PhaseSubmit
		app.pending = cfg.TestConfig()
	default:
		app.phase = PhaseTrack
		app.results = app.newResults(cfg.TestConfig())
		app.hasResults = true
	}

	return app
}

// CurrentScreen returns the screen receiving input (for testing)
func (a AppModel) CurrentScreen() tea.Model {
	switch {
	case a.hasResults:
		return a.results
	case a.hasForm && a.phase == PhaseConfigure:
		return a.form
	default:
		return nil
	}
}

// Init implements tea.Model
func (a AppModel) Init() tea.Cmd {
	switch a.phase {
	case PhaseConfigure:
		return a.form.Init()
	case PhaseSubmit:
		return a.submit(a.pending)
	case PhaseTrack, PhaseDone:
		return a.results.Init()
	}

	return nil
}

// Phase returns the current phase (for testing)
func (a AppModel) Phase() Phase {
	return a.phase
}

// Update implements tea.Model
func (a AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		return a.propagateWindowSize(msg)
	case shared.SubmitRequestedMsg:
		a.phase = PhaseSubmit
		a.pending = msg.Config
		a.submitErr = nil

		return a, a.submit(msg.Config)
	case shared.SubmitResultMsg:
		return a.handleSubmitResult(msg)
	case shared.RunCompletedMsg:
		a.phase = PhaseDone
		return a, nil
	case shared.LeaveRunMsg:
		a.hasResults = false

		if !a.hasForm {
			return a, tea.Quit
		}

		a.phase = PhaseConfigure

		return a, a.form.Init()
	case spinner.TickMsg:
		if a.phase != PhaseSubmit {
			return a, nil
		}

		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)

		return a, cmd
	}

	return a.delegateToActiveScreen(msg)
}

// View implements tea.Model
func (a AppModel) View() string {
	timeline := a.phase.String()
	if a.submitErr != nil {
		timeline = PhaseSubmit.String() + "_error"
	}

	sections := []string{
		shared.RenderTitle("fairwatch") + "  " + shared.RenderTimeline(timeline),
	}

	if banner := shared.RenderErrorBanner(a.submitErr, poller.ErrorMessage(a.submitErr), a.submitEndpoint, a.width); banner != "" {
		sections = append(sections, banner)
	}

	switch {
	case a.hasResults:
		sections = append(sections, a.results.View())
	case a.phase == PhaseSubmit && a.submitErr == nil:
		sections = append(sections, a.spinner.View()+" Submitting "+shared.RenderLabel(a.pending.WorkflowIDPrefix)+"…")
	case a.phase == PhaseSubmit:
		sections = append(sections, shared.RenderDim("q/esc quit"))
	case a.hasForm:
		sections = append(sections, a.form.View())
	}

	return strings.Join(sections, "\n\n")
}

func (a AppModel) delegateToActiveScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		model tea.Model
		cmd   tea.Cmd
	)

	switch {
	case a.hasResults:
		model, cmd = a.results.Update(msg)
		a.results = model.(screens.ResultsScreen)
	case a.phase == PhaseConfigure && a.hasForm:
		model, cmd = a.form.Update(msg)
		a.form = model.(screens.FormScreen)
	case a.phase == PhaseSubmit:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case shared.KeyCtrlC:
				return a, tea.Quit
			case shared.KeyEsc, shared.KeyQuit:
				if a.submitErr != nil {
					return a, tea.Quit
				}
			}
		}
	}

	return a, cmd
}

func (a AppModel) handleSubmitResult(msg shared.SubmitResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.opts.Logger.Warn("run submission failed",
			"prefix", msg.Config.WorkflowIDPrefix,
			"endpoint", msg.Endpoint,
			"error", msg.Err)

		a.submitErr = msg.Err
		a.submitEndpoint = msg.Endpoint

		if a.hasForm {
			a.phase = PhaseConfigure
		}

		return a, nil
	}

	a.opts.Logger.Info("run submitted",
		"prefix", msg.Config.WorkflowIDPrefix,
		"mode", msg.Config.Mode,
		"workflows", msg.Config.NumberOfWorkflows)

	a.submitErr = nil
	a.phase = PhaseTrack
	a.results = a.newResults(msg.Config)
	a.hasResults = true

	model, _ := a.results.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	a.results = model.(screens.ResultsScreen)

	return a, a.results.Init()
}

func (a AppModel) newResults(run statusapi.TestConfig) screens.ResultsScreen {
	return screens.NewResultsScreen(screens.ResultsOptions{
		API:           a.opts.API,
		Mode:          run.Mode,
		Prefix:        run.WorkflowIDPrefix,
		DeclaredOrder: run.DeclaredOrder(),
		PollInterval:  a.config.PollInterval,
		Logger:        a.opts.Logger,
		Now:           a.opts.Now,
	})
}

func (a AppModel) propagateWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	var model tea.Model

	if a.hasForm {
		model, _ = a.form.Update(msg)
		a.form = model.(screens.FormScreen)
	}

	if a.hasResults {
		model, _ = a.results.Update(msg)
		a.results = model.(screens.ResultsScreen)
	}

	return a, nil
}

func (a AppModel) submit(run statusapi.TestConfig) tea.Cmd {
	return tea.Batch(a.spinner.Tick, shared.SubmitCmd(context.Background(), a.opts.API, run))
}
