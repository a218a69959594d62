package tui_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // Dot import is idiomatic for Ginkgo
	. "github.com/onsi/gomega"    //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/fairwatch/internal/config"
	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
	"github.com/joe/fairwatch/internal/tui"
	"github.com/joe/fairwatch/internal/tui/screens"
	"github.com/joe/fairwatch/internal/tui/shared"
)

var _ = Describe("AppModel", func() {
	var (
		api *fakeAPI
		cfg *config.Config
	)

	BeforeEach(func() {
		api = &fakeAPI{}
		cfg = &config.Config{
			Mode:            tracker.ModePriority,
			Workflows:       10,
			PollInterval:    time.Millisecond,
			InteractiveMode: true,
		}
	})

	newApp := func() tui.AppModel {
		return *tui.NewAppModel(cfg, tui.Options{API: api})
	}

	Describe("interactive start", func() {
		It("opens the form in the configure phase", func() {
			app := newApp()

			Expect(app.Phase()).To(Equal(tui.PhaseConfigure))
			Expect(app.CurrentScreen()).To(BeAssignableToTypeOf(screens.FormScreen{}))
			Expect(app.View()).To(ContainSubstring("Run prefix"))
		})

		It("submits the form's run and starts tracking it", func() {
			app := newApp()
			run := statusapi.TestConfig{WorkflowIDPrefix: "Run-7", NumberOfWorkflows: 10, Mode: tracker.ModePriority}

			model, cmd := app.Update(shared.SubmitRequestedMsg{Config: run})
			app = model.(tui.AppModel)

			Expect(app.Phase()).To(Equal(tui.PhaseSubmit))
			Expect(app.View()).To(ContainSubstring("Submitting"))

			result := findMsg[shared.SubmitResultMsg](cmd)
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Endpoint).To(Equal("http://sim.test/start-workflows"))
			Expect(api.Submitted()).To(Equal([]statusapi.TestConfig{run}))

			model, cmd = app.Update(result)
			app = model.(tui.AppModel)

			Expect(app.Phase()).To(Equal(tui.PhaseTrack))
			Expect(app.CurrentScreen()).To(BeAssignableToTypeOf(screens.ResultsScreen{}))

			fetched := findMsg[shared.FetchResultMsg](cmd)
			Expect(fetched.Result.Err).NotTo(HaveOccurred())
			Expect(api.Fetches()).To(Equal(1))
		})

		It("returns to the form with a banner when submission fails", func() {
			app := newApp()
			model, _ := app.Update(shared.SubmitRequestedMsg{Config: statusapi.TestConfig{WorkflowIDPrefix: "Dup"}})
			app = model.(tui.AppModel)

			model, _ = app.Update(shared.SubmitResultMsg{
				Config:   statusapi.TestConfig{WorkflowIDPrefix: "Dup"},
				Endpoint: "http://sim.test/start-workflows",
				Err:      &statusapi.APIError{Status: http.StatusConflict, Message: "a run with this prefix already exists"},
			})
			app = model.(tui.AppModel)

			Expect(app.Phase()).To(Equal(tui.PhaseConfigure))
			Expect(app.View()).To(ContainSubstring("a run with this prefix already exists"))
			Expect(app.View()).To(ContainSubstring("Run prefix"))
		})

		It("goes back to the form when the run is left", func() {
			app := newApp()
			model, _ := app.Update(shared.SubmitResultMsg{Config: statusapi.TestConfig{WorkflowIDPrefix: "R", Mode: tracker.ModePriority}})
			app = model.(tui.AppModel)

			model, _ = app.Update(shared.LeaveRunMsg{})
			app = model.(tui.AppModel)

			Expect(app.Phase()).To(Equal(tui.PhaseConfigure))
			Expect(app.CurrentScreen()).To(BeAssignableToTypeOf(screens.FormScreen{}))
		})
	})

	Describe("non-interactive start", func() {
		BeforeEach(func() {
			cfg.InteractiveMode = false
			cfg.RunPrefix = "Given-1"
		})

		It("tracks the given run right away", func() {
			app := newApp()

			Expect(app.Phase()).To(Equal(tui.PhaseTrack))

			fetched := findMsg[shared.FetchResultMsg](app.Init())
			Expect(fetched.Result.Seq).To(Equal(uint64(1)))
		})

		It("submits first with --submit", func() {
			cfg.Submit = true
			app := newApp()

			Expect(app.Phase()).To(Equal(tui.PhaseSubmit))

			result := findMsg[shared.SubmitResultMsg](app.Init())
			Expect(result.Config.WorkflowIDPrefix).To(Equal("Given-1"))
		})

		It("quits when the run is left", func() {
			app := newApp()

			_, cmd := app.Update(shared.LeaveRunMsg{})

			Expect(cmd()).To(Equal(tea.QuitMsg{}))
		})

		It("marks the run done when every class completes", func() {
			app := newApp()

			model, _ := app.Update(shared.RunCompletedMsg{})

			Expect(model.(tui.AppModel).Phase()).To(Equal(tui.PhaseDone))
		})

		It("shows a failed submission and quits on q", func() {
			cfg.Submit = true
			app := newApp()

			model, _ := app.Update(shared.SubmitResultMsg{Err: errors.New("dial tcp: connect: connection refused")})
			app = model.(tui.AppModel)

			Expect(app.Phase()).To(Equal(tui.PhaseSubmit))
			Expect(app.View()).To(ContainSubstring("connection refused"))

			_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
			Expect(cmd()).To(Equal(tea.QuitMsg{}))
		})
	})
})

type fakeAPI struct {
	mu        sync.Mutex
	fetches   int
	submitted []statusapi.TestConfig
}

func (f *fakeAPI) Endpoint(path string) string {
	return "http://sim.test" + path
}

func (f *fakeAPI) Fetch(_ context.Context, mode tracker.Mode, _ string) (tracker.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches++

	return tracker.NewSnapshot(mode, nil, 0), nil
}

func (f *fakeAPI) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fetches
}

func (f *fakeAPI) Submit(_ context.Context, cfg statusapi.TestConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitted = append(f.submitted, cfg)

	return nil
}

func (f *fakeAPI) Submitted() []statusapi.TestConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.submitted
}

// findMsg runs cmd, flattening batches, and returns the first message of type T.
func findMsg[T tea.Msg](cmd tea.Cmd) T {
	for _, msg := range collect(cmd) {
		if found, ok := msg.(T); ok {
			return found
		}
	}

	Fail("command produced no message of the expected type")

	var zero T

	return zero
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()

	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}

	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, collect(c)...)
	}

	return msgs
}
