//nolint:varnamelen // Test files use idiomatic short variable names (g, etc.)
package screens

import (
	"path/filepath"
	"regexp"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/fairwatch/internal/config"
	"github.com/joe/fairwatch/internal/prefs"
	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
	"github.com/joe/fairwatch/internal/tui/shared"
)

func newTestForm(t *testing.T, defaults statusapi.TestConfig) (FormScreen, *prefs.Store) {
	t.Helper()

	store, err := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	return NewFormScreen(FormOptions{Defaults: defaults, Prefs: store}), store
}

func press(s FormScreen, msgs ...tea.Msg) (FormScreen, tea.Cmd) {
	var cmd tea.Cmd

	for _, msg := range msgs {
		var model tea.Model
		model, cmd = s.Update(msg)
		s = model.(FormScreen)
	}

	return s, cmd
}

func TestFormDefaults(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s, _ := newTestForm(t, statusapi.TestConfig{WorkflowIDPrefix: "Test-010126-0900", NumberOfWorkflows: 40})

	g.Expect(s.Mode()).To(Equal(tracker.ModePriority))
	g.Expect(s.prefixInput.Value()).To(Equal("Test-010126-0900"))
	g.Expect(s.workflowsInput.Value()).To(Equal("40"))
	g.Expect(s.bands).To(HaveLen(len(config.DefaultBands())))

	view := stripANSI(s.View())
	g.Expect(view).To(ContainSubstring("Run prefix"))
	g.Expect(view).NotTo(ContainSubstring("Bands"))
}

func TestFormLoadsSavedPreferences(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	store, err := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.yaml"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(store.Save(prefs.Prefs{
		Mode:  tracker.ModeFairness,
		Bands: []statusapi.Band{{Key: "vip", Weight: 9}},
	})).To(Succeed())

	s := NewFormScreen(FormOptions{Prefs: store})

	g.Expect(s.Mode()).To(Equal(tracker.ModeFairness))
	g.Expect(s.bands).To(HaveLen(1))
	g.Expect(s.bands[0].key.Value()).To(Equal("vip"))
	g.Expect(stripANSI(s.View())).To(ContainSubstring("Bands"))
}

func TestFormModeSwitchIsRemembered(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s, store := newTestForm(t, statusapi.TestConfig{WorkflowIDPrefix: "P"})

	s, _ = press(s, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyRight})

	g.Expect(s.Mode()).To(Equal(tracker.ModeFairness))

	saved, err := store.Load()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(saved.Mode).To(Equal(tracker.ModeFairness))
	g.Expect(saved.Bands).To(Equal(config.DefaultBands()))
}

func TestFormSubmitPriority(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s, _ := newTestForm(t, statusapi.TestConfig{WorkflowIDPrefix: "P", NumberOfWorkflows: 25})

	_, cmd := press(s, tea.KeyMsg{Type: tea.KeyEnter})
	g.Expect(cmd).NotTo(BeNil())

	msg := cmd().(shared.SubmitRequestedMsg)
	g.Expect(msg.Config).To(Equal(statusapi.TestConfig{
		WorkflowIDPrefix:  "P",
		NumberOfWorkflows: 25,
		Mode:              tracker.ModePriority,
	}))
}

func TestFormSubmitFairnessWithCounts(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s, _ := newTestForm(t, statusapi.TestConfig{
		WorkflowIDPrefix: "F",
		Mode:             tracker.ModeFairness,
		Bands:            []statusapi.Band{{Key: "gold", Weight: 3, Count: 4}},
	})
	s.workflowsInput.SetValue("")

	_, cmd := press(s, tea.KeyMsg{Type: tea.KeyEnter})
	g.Expect(cmd).NotTo(BeNil())

	msg := cmd().(shared.SubmitRequestedMsg)
	g.Expect(msg.Config.Bands).To(Equal([]statusapi.Band{{Key: "gold", Weight: 3, Count: 4}}))
	g.Expect(msg.Config.NumberOfWorkflows).To(Equal(0))
}

func TestFormValidationBlocksSubmit(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s, _ := newTestForm(t, statusapi.TestConfig{
		Mode:  tracker.ModeFairness,
		Bands: []statusapi.Band{{Key: "gold", Weight: 3}},
	})
	s.prefixInput.SetValue("  ")
	s.bands[0].weight.SetValue("heavy")

	s, cmd := press(s, tea.KeyMsg{Type: tea.KeyEnter})

	g.Expect(cmd).To(BeNil())
	g.Expect(s.errs.For(config.FieldPrefix)).NotTo(BeEmpty())
	g.Expect(s.errs.For(config.BandField(0, "weight"))).To(Equal(config.ErrBandWeight.Error()))

	view := stripANSI(s.View())
	g.Expect(view).To(ContainSubstring(config.ErrPrefixRequired.Error()))
	g.Expect(view).To(ContainSubstring("weight: " + config.ErrBandWeight.Error()))

	// typing clears the messages
	s, _ = press(s, key("x"))
	g.Expect(s.errs).To(BeEmpty())
}

func TestFormAddAndRemoveBands(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s, store := newTestForm(t, statusapi.TestConfig{
		WorkflowIDPrefix: "F",
		Mode:             tracker.ModeFairness,
		Bands:            []statusapi.Band{{Key: "gold", Weight: 3}},
	})

	s, _ = press(s, tea.KeyMsg{Type: tea.KeyCtrlN})
	g.Expect(s.bands).To(HaveLen(2))
	g.Expect(s.targets()[s.focus]).To(Equal(focusTarget{kind: fieldBandKey, band: 1}))

	s, _ = press(s, key("tin"))
	g.Expect(s.bands[1].key.Value()).To(Equal("tin"))

	s, _ = press(s, tea.KeyMsg{Type: tea.KeyCtrlD})
	g.Expect(s.bands).To(HaveLen(1))
	g.Expect(s.bands[0].key.Value()).To(Equal("gold"))

	saved, err := store.Load()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(saved.Bands).To(Equal([]statusapi.Band{{Key: "gold", Weight: 3}}))
}

func TestFormAddBandIgnoredInPriorityMode(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	s, _ := newTestForm(t, statusapi.TestConfig{WorkflowIDPrefix: "P"})
	count := len(s.bands)

	s, _ = press(s, tea.KeyMsg{Type: tea.KeyCtrlN})

	g.Expect(s.bands).To(HaveLen(count))
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
