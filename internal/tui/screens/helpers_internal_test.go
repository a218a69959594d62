package screens

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
)

// fakeAPI serves scripted snapshots; the last one repeats.
type fakeAPI struct {
	mu        sync.Mutex
	snapshots []tracker.Snapshot
	err       error
	fetches   int
	submitted []statusapi.TestConfig
}

func (f *fakeAPI) Endpoint(path string) string {
	return "http://sim.test" + path
}

func (f *fakeAPI) Fetch(_ context.Context, _ tracker.Mode, _ string) (tracker.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches++

	if f.err != nil {
		return tracker.Snapshot{}, f.err
	}

	snapshot := f.snapshots[min(f.fetches, len(f.snapshots))-1]

	return snapshot, nil
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

	return f.err
}

// runCmd executes cmd, flattening batches, and returns the produced messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}

		return msgs
	}

	if msg == nil {
		return nil
	}

	return []tea.Msg{msg}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func priorityClasses(completed int) tracker.Snapshot {
	return tracker.NewSnapshot(tracker.ModePriority, []tracker.Class{
		tracker.NewPriorityClass(1, 10, map[int]int{1: completed, 2: completed, 3: completed, 4: completed, 5: completed}),
	}, 10)
}
