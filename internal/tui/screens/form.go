package screens

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/fairwatch/internal/config"
	"github.com/joe/fairwatch/internal/prefs"
	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
	"github.com/joe/fairwatch/internal/tui/shared"
)

// FormOptions configures a FormScreen.
type FormOptions struct {
	// Defaults seeds the fields. Saved preferences override its mode and bands.
	Defaults statusapi.TestConfig
	Prefs    *prefs.Store
	Logger   *slog.Logger
}

// FormScreen collects a run submission: prefix, workflow count, mode, fairness bands.
type FormScreen struct {
	prefs  *prefs.Store
	logger *slog.Logger

	prefixInput     textinput.Model
	workflowsInput  textinput.Model
	mode            tracker.Mode
	disableFairness bool
	bands           []bandRow

	focus int
	errs  config.ValidationErrors
	width int
}

// NewFormScreen creates a form seeded from opts.
func NewFormScreen(opts FormOptions) FormScreen {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	defaults := opts.Defaults

	if opts.Prefs != nil {
		saved, err := opts.Prefs.Load()
		if err != nil {
			logger.Warn("ignoring unreadable preferences", "path", opts.Prefs.Path(), "error", err)
		}

		if saved.Mode != "" {
			defaults.Mode = saved.Mode
		}

		if len(saved.Bands) > 0 {
			defaults.Bands = saved.Bands
		}
	}

	if defaults.Mode == "" {
		defaults.Mode = tracker.ModePriority
	}

	if len(defaults.Bands) == 0 {
		defaults.Bands = config.DefaultBands()
	}

	prefixInput := newInput("Test-DDMMYY-HHMM", prefixInputWidth)
	prefixInput.SetValue(defaults.WorkflowIDPrefix)

	workflowsInput := newInput(strconv.Itoa(config.DefaultWorkflows), numberInputWidth)
	if defaults.NumberOfWorkflows > 0 {
		workflowsInput.SetValue(strconv.Itoa(defaults.NumberOfWorkflows))
	}

	s := FormScreen{
		prefs:           opts.Prefs,
		logger:          logger,
		prefixInput:     prefixInput,
		workflowsInput:  workflowsInput,
		mode:            defaults.Mode,
		disableFairness: defaults.DisableFairness,
	}

	for _, band := range defaults.Bands {
		s.bands = append(s.bands, newBandRow(band))
	}

	return s.applyFocus()
}

// Init implements tea.Model
func (s FormScreen) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (s FormScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		return s, nil
	case tea.KeyMsg:
		return s.handleKeyMsg(msg)
	}

	return s.updateFocusedInput(msg)
}

// View implements tea.Model
func (s FormScreen) View() string {
	var builder strings.Builder

	targets := s.targets()
	focused := targets[s.focus]

	s.writeField(&builder, focused.kind == fieldPrefix, "Run prefix", s.prefixInput.View(), config.FieldPrefix)
	s.writeField(&builder, focused.kind == fieldWorkflows, "Workflows", s.workflowsInput.View(), config.FieldWorkflows)
	s.writeField(&builder, focused.kind == fieldMode, "Mode", s.renderModeSwitch(), "")

	if s.mode == tracker.ModeFairness {
		s.writeField(&builder, focused.kind == fieldDisableFairness, "Disable fairness", renderCheckbox(s.disableFairness), "")

		builder.WriteString("\n")
		builder.WriteString(shared.RenderLabel("Bands"))
		builder.WriteString("\n")

		if msg := s.errs.For(config.FieldBands); msg != "" {
			builder.WriteString("  " + shared.RenderError(msg) + "\n")
		}

		for i, band := range s.bands {
			marker := "  "
			if focused.band == i && focused.kind >= fieldBandKey {
				marker = shared.PromptArrow()
			}

			fmt.Fprintf(&builder, "%s%s %s  %s %s  %s %s\n",
				marker,
				shared.RenderDim("key"), band.key.View(),
				shared.RenderDim("weight"), band.weight.View(),
				shared.RenderDim("count"), band.count.View())

			for _, field := range []string{"key", "weight", "count"} {
				if msg := s.errs.For(config.BandField(i, field)); msg != "" {
					builder.WriteString("    " + shared.RenderError(field+": "+msg) + "\n")
				}
			}
		}
	}

	builder.WriteString("\n")
	builder.WriteString(shared.RenderDim(formHelp(s.mode)))

	return builder.String()
}

// Mode returns the selected run mode (for testing)
func (s FormScreen) Mode() tracker.Mode {
	return s.mode
}

func (s FormScreen) addBand() FormScreen {
	s.bands = append(s.bands, newBandRow(statusapi.Band{Weight: 1}))

	for i, target := range s.targets() {
		if target.kind == fieldBandKey && target.band == len(s.bands)-1 {
			s.focus = i
		}
	}

	s.remember()

	return s.applyFocus()
}

func (s FormScreen) applyFocus() FormScreen {
	targets := s.targets()
	s.focus = min(max(0, s.focus), len(targets)-1)
	focused := targets[s.focus]

	s.prefixInput = setFocus(s.prefixInput, focused.kind == fieldPrefix)
	s.workflowsInput = setFocus(s.workflowsInput, focused.kind == fieldWorkflows)

	for i := range s.bands {
		row := &s.bands[i]
		row.key = setFocus(row.key, focused.band == i && focused.kind == fieldBandKey)
		row.weight = setFocus(row.weight, focused.band == i && focused.kind == fieldBandWeight)
		row.count = setFocus(row.count, focused.band == i && focused.kind == fieldBandCount)
	}

	return s
}

// bandsFromInputs parses the band rows. Unparseable numbers are reported and read as 0.
func (s FormScreen) bandsFromInputs() ([]statusapi.Band, config.ValidationErrors) {
	var errs config.ValidationErrors

	bands := make([]statusapi.Band, 0, len(s.bands))

	for i, row := range s.bands {
		band := statusapi.Band{Key: strings.TrimSpace(row.key.Value())}

		weight, err := strconv.ParseFloat(strings.TrimSpace(row.weight.Value()), 64)
		if err != nil {
			errs = append(errs, config.FieldError{Field: config.BandField(i, "weight"), Err: config.ErrBandWeight})
		} else {
			band.Weight = weight
		}

		if raw := strings.TrimSpace(row.count.Value()); raw != "" {
			count, err := strconv.Atoi(raw)
			if err != nil {
				errs = append(errs, config.FieldError{Field: config.BandField(i, "count"), Err: config.ErrBandCount})
			} else {
				band.Count = count
			}
		}

		bands = append(bands, band)
	}

	return bands, errs
}

func (s FormScreen) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	focused := s.targets()[s.focus]

	switch msg.Type {
	case tea.KeyCtrlC:
		return s, tea.Quit
	case tea.KeyEnter:
		return s.submit()
	case tea.KeyTab, tea.KeyDown:
		s.focus = (s.focus + 1) % len(s.targets())
		return s.applyFocus(), nil
	case tea.KeyShiftTab, tea.KeyUp:
		s.focus = (s.focus - 1 + len(s.targets())) % len(s.targets())
		return s.applyFocus(), nil
	case tea.KeyLeft, tea.KeyRight, tea.KeySpace:
		switch focused.kind {
		case fieldMode:
			return s.toggleMode(), nil
		case fieldDisableFairness:
			s.disableFairness = !s.disableFairness
			return s, nil
		default:
		}
	default:
	}

	switch msg.String() {
	case "ctrl+n":
		if s.mode == tracker.ModeFairness {
			return s.addBand(), nil
		}

		return s, nil
	case "ctrl+d":
		if focused.kind >= fieldBandKey {
			return s.removeBand(focused.band), nil
		}

		return s, nil
	}

	s.errs = nil

	return s.updateFocusedInput(msg)
}

func (s FormScreen) remember() {
	if s.prefs == nil {
		return
	}

	bands, _ := s.bandsFromInputs()

	if err := s.prefs.Remember(s.mode, bands); err != nil {
		s.logger.Warn("could not save preferences", "path", s.prefs.Path(), "error", err)
	}
}

func (s FormScreen) removeBand(i int) FormScreen {
	if i < 0 || i >= len(s.bands) {
		return s
	}

	s.bands = append(s.bands[:i:i], s.bands[i+1:]...)
	s.remember()

	return s.applyFocus()
}

func (s FormScreen) renderModeSwitch() string {
	options := make([]string, 0, 2) //nolint:mnd // two modes

	for _, mode := range []tracker.Mode{tracker.ModePriority, tracker.ModeFairness} {
		if mode == s.mode {
			options = append(options, shared.ChipStyle().Render(string(mode)))
		} else {
			options = append(options, shared.RenderDim(string(mode)))
		}
	}

	return strings.Join(options, " ")
}

func (s FormScreen) submit() (tea.Model, tea.Cmd) {
	cfg, errs := s.testConfig()
	if len(errs) > 0 {
		s.errs = errs
		return s, nil
	}

	s.errs = nil
	s.remember()

	return s, func() tea.Msg {
		return shared.SubmitRequestedMsg{Config: cfg}
	}
}

func (s FormScreen) targets() []focusTarget {
	targets := []focusTarget{
		{kind: fieldPrefix, band: -1},
		{kind: fieldWorkflows, band: -1},
		{kind: fieldMode, band: -1},
	}

	if s.mode != tracker.ModeFairness {
		return targets
	}

	targets = append(targets, focusTarget{kind: fieldDisableFairness, band: -1})

	for i := range s.bands {
		targets = append(targets,
			focusTarget{kind: fieldBandKey, band: i},
			focusTarget{kind: fieldBandWeight, band: i},
			focusTarget{kind: fieldBandCount, band: i})
	}

	return targets
}

// testConfig builds the submission and reports every problem with it.
func (s FormScreen) testConfig() (statusapi.TestConfig, config.ValidationErrors) {
	var errs config.ValidationErrors

	cfg := statusapi.TestConfig{
		WorkflowIDPrefix: strings.TrimSpace(s.prefixInput.Value()),
		Mode:             s.mode,
	}

	if raw := strings.TrimSpace(s.workflowsInput.Value()); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, config.FieldError{Field: config.FieldWorkflows, Err: config.ErrWorkflowCount})
		} else {
			cfg.NumberOfWorkflows = n
		}
	}

	if s.mode == tracker.ModeFairness {
		bands, bandErrs := s.bandsFromInputs()
		cfg.Bands = bands
		cfg.DisableFairness = s.disableFairness
		errs = append(errs, bandErrs...)
	}

	var invalid config.ValidationErrors
	if err := config.ValidateTestConfig(cfg); errors.As(err, &invalid) {
		for _, fieldErr := range invalid {
			if errs.For(fieldErr.Field) == "" {
				errs = append(errs, fieldErr)
			}
		}
	}

	return cfg, errs
}

func (s FormScreen) toggleMode() FormScreen {
	if s.mode == tracker.ModeFairness {
		s.mode = tracker.ModePriority
	} else {
		s.mode = tracker.ModeFairness
	}

	s.errs = nil
	s.remember()

	return s.applyFocus()
}

func (s FormScreen) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	focused := s.targets()[s.focus]

	var cmd tea.Cmd

	switch focused.kind {
	case fieldPrefix:
		s.prefixInput, cmd = s.prefixInput.Update(msg)
	case fieldWorkflows:
		s.workflowsInput, cmd = s.workflowsInput.Update(msg)
	case fieldBandKey:
		s.bands[focused.band].key, cmd = s.bands[focused.band].key.Update(msg)
	case fieldBandWeight:
		s.bands[focused.band].weight, cmd = s.bands[focused.band].weight.Update(msg)
	case fieldBandCount:
		s.bands[focused.band].count, cmd = s.bands[focused.band].count.Update(msg)
	case fieldMode, fieldDisableFairness:
	}

	return s, cmd
}

func (s FormScreen) writeField(builder *strings.Builder, focused bool, label, value, errField string) {
	marker := "  "
	styled := shared.RenderLabel(fmt.Sprintf("%-*s", formLabelWidth, label))

	if focused {
		marker = shared.PromptArrow()
		styled = shared.FocusedStyle().Render(fmt.Sprintf("%-*s", formLabelWidth, label))
	}

	builder.WriteString(marker + styled + " " + value + "\n")

	if errField != "" {
		if msg := s.errs.For(errField); msg != "" {
			builder.WriteString("  " + shared.RenderError(msg) + "\n")
		}
	}
}

// unexported constants.
const (
	bandKeyWidth     = 16
	formLabelWidth   = 17
	numberInputWidth = 8
	prefixInputWidth = 32
)

// Focusable form fields, in tab order.
const (
	fieldPrefix fieldKind = iota
	fieldWorkflows
	fieldMode
	fieldDisableFairness
	fieldBandKey
	fieldBandWeight
	fieldBandCount
)

type bandRow struct {
	key    textinput.Model
	weight textinput.Model
	count  textinput.Model
}

type fieldKind int

type focusTarget struct {
	kind fieldKind
	band int
}

func formHelp(mode tracker.Mode) string {
	help := "tab/shift+tab move · ←/→ switch mode · enter submit · ctrl+c quit"
	if mode == tracker.ModeFairness {
		help += " · space toggle · ctrl+n add band · ctrl+d remove band"
	}

	return help
}

func newBandRow(band statusapi.Band) bandRow {
	row := bandRow{
		key:    newInput("key", bandKeyWidth),
		weight: newInput("1", numberInputWidth),
		count:  newInput("auto", numberInputWidth),
	}

	row.key.SetValue(band.Key)
	row.weight.SetValue(tracker.FormatWeight(band.Weight))

	if band.Count > 0 {
		row.count.SetValue(strconv.Itoa(band.Count))
	}

	return row
}

func newInput(placeholder string, width int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = ""
	input.Width = width

	return input
}

func renderCheckbox(checked bool) string {
	if checked {
		return "[x]"
	}

	return "[ ]"
}

func setFocus(input textinput.Model, focused bool) textinput.Model {
	if focused {
		input.Focus()
	} else {
		input.Blur()
	}

	return input
}
