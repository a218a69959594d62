package tracker

import (
	"cmp"
	"log/slog"
	"slices"
	"time"
)

// OriginState is where the tracker is in establishing the run's time origin.
type OriginState int

// OriginState values.
const (
	// OriginIdle: no class has shown progress yet; elapsed time counts from the first poll.
	OriginIdle OriginState = iota
	// OriginWarmed: elapsed time counts from the first poll that showed progress.
	OriginWarmed
)

// String returns the state name.
func (o OriginState) String() string {
	if o == OriginWarmed {
		return "warmed"
	}

	return "idle"
}

// Options configures a Tracker.
type Options struct {
	// PollInterval is the elapsed time assumed when no previous poll exists to measure from.
	PollInterval time.Duration
	// HistoryCapacity caps the chart series; 0 means DefaultHistoryCapacity.
	HistoryCapacity int
	// DeclaredOrder lists the classes the run was submitted with, for stable colors.
	DeclaredOrder []ClassID
	// Logger receives debug output; nil discards.
	Logger *slog.Logger
}

// Tracker runs every snapshot of one run through rate estimation, completion tracking and
// chart history, and owns the run's time origin.
type Tracker struct {
	opts       Options
	logger     *slog.Logger
	rates      *RateEstimator
	completion *CompletionTracker
	history    *HistoryBuffer

	origin    OriginState
	firstPoll time.Time
	zero      time.Time

	mode    Mode
	order   []ClassID
	latest  map[ClassID]Class
	evals   map[ClassID]Evaluation
	ratesBy map[ClassID]float64
	present map[ClassID]bool
	total   int

	// lastSeen is the poll time at which each class was last reported.
	lastSeen map[ClassID]time.Time

	last     Summary
	disposed bool
}

// New creates a Tracker for a fresh run.
func New(opts Options) *Tracker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = ModePriority.DefaultPollInterval()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	t := &Tracker{
		opts:   opts,
		logger: logger,
	}
	t.reset()

	return t
}

// Dispose releases per-run state. Later Observe calls return the last summary unchanged.
func (t *Tracker) Dispose() {
	if t.disposed {
		return
	}

	t.disposed = true
	t.rates = nil
	t.completion = nil
	t.history = nil
	t.latest = nil
	t.evals = nil
	t.ratesBy = nil
	t.present = nil
	t.lastSeen = nil
}

// Disposed reports whether Dispose has been called.
func (t *Tracker) Disposed() bool {
	return t.disposed
}

// FirstPoll returns the wall-clock time of the first observed snapshot, or the zero time.
func (t *Tracker) FirstPoll() time.Time {
	return t.firstPoll
}

// Last returns the summary produced by the most recent Observe.
func (t *Tracker) Last() Summary {
	return t.last
}

// Observe folds a snapshot taken at now into the run and returns the updated summary.
func (t *Tracker) Observe(snapshot Snapshot, now time.Time) Summary {
	if t.disposed {
		return t.last
	}

	if t.firstPoll.IsZero() {
		t.firstPoll = now
		t.zero = now
	}

	if t.origin == OriginIdle && hasProgress(snapshot) {
		t.warm(now)
	}

	if snapshot.Mode != "" {
		t.mode = snapshot.Mode
	}

	t.total = snapshot.TotalWorkflows

	nowElapsed := max(0, now.Sub(t.zero).Seconds())
	point := make(map[ClassID]float64, len(t.order)+len(snapshot.Classes))

	// classes missing from this poll keep their last-known percent in the series
	for _, id := range t.order {
		if eval, ok := t.evals[id]; ok {
			point[id] = eval.Percent
		}
	}

	clear(t.present)

	for _, class := range snapshot.Classes {
		if _, seen := t.latest[class.ID]; !seen {
			t.order = append(t.order, class.ID)
		}

		t.latest[class.ID] = class
		t.present[class.ID] = true

		// elapsed since this class was last reported, not since the last poll
		sincePrev := 0.0
		if seen, ok := t.lastSeen[class.ID]; ok {
			sincePrev = now.Sub(seen).Seconds()
		}

		t.lastSeen[class.ID] = now

		steps := class.StepsCompleted()
		rate := t.rates.Update(class.ID, steps, sincePrev)
		eval := t.completion.Evaluate(class.ID, steps, class.StepsTotal(), rate, nowElapsed)

		t.ratesBy[class.ID] = rate
		t.evals[class.ID] = eval
		point[class.ID] = eval.Percent
	}

	t.history.Append(nowElapsed, point)

	t.last = t.summarize(nowElapsed, snapshot.AllComplete())

	return t.last
}

// Origin returns the time-origin state.
func (t *Tracker) Origin() OriginState {
	return t.origin
}

// Reset returns the tracker to a fresh run, keeping its options.
func (t *Tracker) Reset() {
	t.reset()
}

// Warmed reports whether the run's origin has moved to the first poll with progress.
func (t *Tracker) Warmed() bool {
	return t.origin == OriginWarmed
}

func (t *Tracker) classLess(a, b ClassID) int {
	ca, cb := t.latest[a], t.latest[b]

	if t.mode == ModeFairness {
		if ca.Weight != cb.Weight {
			// heavier bands first
			return cmp.Compare(cb.Weight, ca.Weight)
		}

		if c := cmp.Compare(ca.Key, cb.Key); c != 0 {
			return c
		}

		return cmp.Compare(a, b)
	}

	if c := cmp.Compare(ca.Priority, cb.Priority); c != 0 {
		return c
	}

	return cmp.Compare(a, b)
}

func (t *Tracker) reset() {
	t.rates = NewRateEstimator(t.opts.PollInterval)
	t.completion = NewCompletionTracker()
	t.history = NewHistoryBuffer(t.opts.HistoryCapacity)
	t.origin = OriginIdle
	t.firstPoll = time.Time{}
	t.zero = time.Time{}
	t.mode = ""
	t.order = nil
	t.latest = make(map[ClassID]Class)
	t.evals = make(map[ClassID]Evaluation)
	t.ratesBy = make(map[ClassID]float64)
	t.present = make(map[ClassID]bool)
	t.lastSeen = make(map[ClassID]time.Time)
	t.total = 0
	t.last = Summary{}
	t.disposed = false
}

func (t *Tracker) summarize(nowElapsed float64, allComplete bool) Summary {
	order := slices.Clone(t.order)
	slices.SortStableFunc(order, t.classLess)

	summary := Summary{
		Mode:                 t.mode,
		ChartSeries:          t.history.Points(),
		ETASecondsByClass:    make(map[ClassID]*float64, len(order)),
		RateByClass:          make(map[ClassID]float64, len(order)),
		LabelByClass:         make(map[ClassID]string, len(order)),
		ClassOrder:           order,
		PercentByClass:       make(map[ClassID]float64, len(order)),
		ChartMaxX:            ChartMaxX(nowElapsed, t.completion.MaxFinishElapsed()),
		FinishedByClass:      make(map[ClassID]bool, len(order)),
		FinishElapsedByClass: make(map[ClassID]float64),
		ElapsedSeconds:       nowElapsed,
		Warmed:               t.Warmed(),
		AllComplete:          allComplete,
		TotalWorkflows:       t.total,
		Classes:              make([]ClassSummary, 0, len(order)),
	}

	for _, id := range order {
		class := t.latest[id]
		eval := t.evals[id]
		rate := t.ratesBy[id]

		summary.ETASecondsByClass[id] = eval.ETASeconds
		summary.RateByClass[id] = rate
		summary.LabelByClass[id] = class.Label
		summary.PercentByClass[id] = eval.Percent
		summary.FinishedByClass[id] = eval.Finished

		if eval.FinishElapsed != nil {
			summary.FinishElapsedByClass[id] = *eval.FinishElapsed
		}

		classSummary := ClassSummary{
			ID:            id,
			Label:         class.Label,
			Key:           class.Key,
			Weight:        class.Weight,
			Priority:      class.Priority,
			DeclaredTotal: class.DeclaredTotal,
			Stages:        class.Stages,
			Percent:       eval.Percent,
			Rate:          rate,
			ETASeconds:    eval.ETASeconds,
			Finished:      eval.Finished,
			FinishElapsed: eval.FinishElapsed,
			PaletteSlot:   PaletteSlot(id, t.opts.DeclaredOrder),
			Present:       t.present[id],
		}

		for i := range classSummary.StagePercent {
			classSummary.StagePercent[i] = class.StagePercent(i)
		}

		summary.Classes = append(summary.Classes, classSummary)
	}

	return summary
}

// warm moves the origin to now. History and finish latches restart from the new origin;
// rate state is kept so throughput stays continuous.
func (t *Tracker) warm(now time.Time) {
	idle := now.Sub(t.zero)

	t.origin = OriginWarmed
	t.zero = now
	t.history.Reset()
	t.completion.Reset()

	clear(t.evals)

	t.logger.Debug("first progress observed, moving time origin",
		"idle", idle.Round(time.Millisecond),
		"first_poll", t.firstPoll)
}

func hasProgress(snapshot Snapshot) bool {
	for _, class := range snapshot.Classes {
		if class.StepsCompleted() > 0 {
			return true
		}
	}

	return false
}
