// Package simbackend is an in-memory stand-in for the workflow API. It accepts run
// submissions, advances every workflow through its five activities on a fixed step, and
// reports per-class progress with the same JSON contract as the real server.
package simbackend

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
)

// Exported variables.
var (
	ErrMissingPrefix = errors.New("workflowIdPrefix is required")
	ErrNoWorkflows   = errors.New("numberOfWorkflows must be at least 1")
	ErrRunExists     = errors.New("a run with this prefix already exists")
)

// Options configures a Simulator.
type Options struct {
	// Capacity is the number of activity completions performed per Step.
	Capacity int
	// StartDelayScale multiplies the delay before a run's workflows become eligible.
	StartDelayScale float64
	// Rand shuffles band submissions; nil uses a random seed.
	Rand    *rand.Rand
	Logger  *slog.Logger
	Metrics *Metrics
}

// RunInfo describes an accepted submission.
type RunInfo struct {
	ID        uuid.UUID    `json:"id"`
	Prefix    string       `json:"workflowIdPrefix"`
	Mode      tracker.Mode `json:"mode"`
	Workflows int          `json:"numberOfWorkflows"`
	StartsAt  time.Time    `json:"startsAt"`
}

// Simulator holds every submitted run. It is safe for concurrent use.
type Simulator struct {
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	runs      map[string]*run
	workflows []*workflow
	nextSeq   int
}

// New creates an empty simulator.
func New(opts Options) *Simulator {
	if opts.Capacity < 1 {
		opts.Capacity = 1
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Shuffling demo workloads
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Simulator{
		opts:   opts,
		logger: logger,
		runs:   make(map[string]*run),
	}
}

// FairnessStatus aggregates the fairness workflows whose id starts with prefix by
// key|weight, heaviest band first.
func (s *Simulator) FairnessStatus(prefix string) statusapi.FairnessStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make(map[tracker.ClassID]*statusapi.FairnessSummary)
	total := 0

	for _, wf := range s.matching(prefix, tracker.ModeFairness) {
		total++

		id := tracker.FairnessClassID(wf.key, wf.weight)

		group, ok := groups[id]
		if !ok {
			group = &statusapi.FairnessSummary{
				FairnessKey:    wf.key,
				FairnessWeight: wf.weight,
				Activities:     emptyActivities(),
			}
			groups[id] = group
		}

		group.NumberOfWorkflows++
		countActivities(group.Activities, wf.completed)
	}

	summaries := make([]statusapi.FairnessSummary, 0, len(groups))
	for _, group := range groups {
		summaries = append(summaries, *group)
	}

	slices.SortFunc(summaries, func(a, b statusapi.FairnessSummary) int {
		if c := cmp.Compare(b.FairnessWeight, a.FairnessWeight); c != 0 {
			return c
		}

		return cmp.Compare(a.FairnessKey, b.FairnessKey)
	})

	return statusapi.FairnessStatus{Workflows: summaries, TotalWorkflows: total}
}

// Pending returns the number of workflows with activities left.
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending()
}

// PriorityStatus aggregates the priority workflows whose id starts with prefix into the
// five priority levels.
func (s *Simulator) PriorityStatus(prefix string) statusapi.PriorityStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := make([]statusapi.WorkflowSummary, tracker.PriorityLevels)
	for i := range levels {
		levels[i] = statusapi.WorkflowSummary{WorkflowPriority: i + 1, Activities: emptyActivities()}
	}

	total := 0

	for _, wf := range s.matching(prefix, tracker.ModePriority) {
		total++

		level := &levels[wf.priority-1]
		level.NumberOfWorkflows++
		countActivities(level.Activities, wf.completed)
	}

	return statusapi.PriorityStatus{Workflows: levels, TotalWorkflows: total}
}

// Start accepts a run submitted at now.
//
// Priority runs assign workflow n priority ((n-1) % 5) + 1. Fairness runs either submit
// each band's exact count in shuffled order or, without counts, cycle through the bands.
// Disabling fairness records every workflow with weight 0.
func (s *Simulator) Start(cfg statusapi.TestConfig, now time.Time) (RunInfo, error) {
	prefix := strings.TrimSpace(cfg.WorkflowIDPrefix)
	if prefix == "" {
		return RunInfo{}, ErrMissingPrefix
	}

	mode := cfg.Mode
	if mode != tracker.ModePriority {
		mode = tracker.ModeFairness
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[prefix]; exists {
		return RunInfo{}, fmt.Errorf("%w: %s", ErrRunExists, prefix)
	}

	var assignments []assignment

	if mode == tracker.ModePriority {
		assignments = priorityAssignments(cfg.NumberOfWorkflows)
	} else {
		assignments = s.fairnessAssignments(cfg)
	}

	if len(assignments) == 0 {
		return RunInfo{}, ErrNoWorkflows
	}

	delay := time.Duration(float64(StartDelay(mode, len(assignments))) * s.opts.StartDelayScale)

	r := &run{
		info: RunInfo{
			ID:        uuid.New(),
			Prefix:    prefix,
			Mode:      mode,
			Workflows: len(assignments),
			StartsAt:  now.Add(delay),
		},
	}

	for i, a := range assignments {
		s.nextSeq++

		wf := &workflow{
			id:       fmt.Sprintf("%s-%d", prefix, i+1),
			run:      r,
			seq:      s.nextSeq,
			priority: a.priority,
			key:      a.band.Key,
			weight:   a.band.Weight,
		}

		if cfg.DisableFairness {
			wf.weight = 0
		}

		s.workflows = append(s.workflows, wf)
	}

	s.runs[prefix] = r

	s.logger.Info("run submitted",
		"run_id", r.info.ID,
		"prefix", prefix,
		"mode", mode,
		"workflows", len(assignments),
		"start_delay", delay)

	if s.opts.Metrics != nil {
		s.opts.Metrics.WorkflowsSubmitted.WithLabelValues(string(mode)).Add(float64(len(assignments)))
	}

	return r.info, nil
}

// Step performs up to Capacity activity completions among workflows eligible at now and
// returns how many were performed. Each workflow completes at most one activity per step.
func (s *Simulator) Step(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var priority, fairness []*workflow

	for _, wf := range s.workflows {
		if wf.completed >= tracker.StageCount || now.Before(wf.run.info.StartsAt) {
			continue
		}

		if wf.run.info.Mode == tracker.ModePriority {
			priority = append(priority, wf)
		} else {
			fairness = append(fairness, wf)
		}
	}

	chosen := pickByPriority(priority, s.opts.Capacity)
	chosen = append(chosen, pickFair(fairness, s.opts.Capacity-len(chosen))...)

	for _, wf := range chosen {
		wf.completed++

		if s.opts.Metrics != nil {
			s.opts.Metrics.ActivitiesCompleted.WithLabelValues(string(wf.run.info.Mode)).Inc()
		}
	}

	if s.opts.Metrics != nil {
		s.opts.Metrics.PendingWorkflows.Set(float64(s.pending()))
	}

	return len(chosen)
}

func (s *Simulator) fairnessAssignments(cfg statusapi.TestConfig) []assignment {
	bands := cfg.Bands
	if len(bands) == 0 {
		bands = DefaultBands()
	}

	counted := 0
	for _, band := range bands {
		counted += max(0, band.Count)
	}

	if counted > 0 {
		assignments := make([]assignment, 0, counted)

		for _, band := range bands {
			for range max(0, band.Count) {
				assignments = append(assignments, assignment{band: band})
			}
		}

		s.opts.Rand.Shuffle(len(assignments), func(i, j int) {
			assignments[i], assignments[j] = assignments[j], assignments[i]
		})

		return assignments
	}

	assignments := make([]assignment, 0, max(0, cfg.NumberOfWorkflows))
	for n := range max(0, cfg.NumberOfWorkflows) {
		assignments = append(assignments, assignment{band: bands[n%len(bands)]})
	}

	return assignments
}

// pending must be called with s.mu held.
func (s *Simulator) pending() int {
	count := 0

	for _, wf := range s.workflows {
		if wf.completed < tracker.StageCount {
			count++
		}
	}

	return count
}

// matching must be called with s.mu held.
func (s *Simulator) matching(prefix string, mode tracker.Mode) []*workflow {
	var out []*workflow

	for _, wf := range s.workflows {
		if wf.run.info.Mode == mode && strings.HasPrefix(wf.id, prefix) {
			out = append(out, wf)
		}
	}

	return out
}

// DefaultBands are used for fairness runs submitted without bands.
func DefaultBands() []statusapi.Band {
	return []statusapi.Band{
		{Key: "first-class", Weight: 15},
		{Key: "business-class", Weight: 5},
		{Key: "economy-class", Weight: 1},
	}
}

// StartDelay is how long a run of n workflows waits before its workflows become eligible,
// leaving time for all of them to be submitted: 0.05s per workflow plus 5s for priority
// runs, and ceil(0.15n - 15) seconds clamped to [7, 30] for fairness runs.
func StartDelay(mode tracker.Mode, n int) time.Duration {
	if mode == tracker.ModePriority {
		return time.Duration(n)*priorityPerWorkflow + priorityBuffer
	}

	// ceil((15n - 1500) / 100) without float rounding
	seconds := fairnessMinDelay
	if excess := fairnessPerHundred*n - fairnessOffset*100; excess > 0 {
		seconds = max(seconds, (excess+99)/100)
	}

	return time.Duration(min(seconds, fairnessMaxDelay)) * time.Second
}

const (
	fairnessMaxDelay    = 30
	fairnessMinDelay    = 7
	fairnessOffset      = 15
	fairnessPerHundred  = 15
	priorityBuffer      = 5 * time.Second
	priorityPerWorkflow = 50 * time.Millisecond
)

type assignment struct {
	priority int
	band     statusapi.Band
}

type run struct {
	info RunInfo
}

type workflow struct {
	id        string
	run       *run
	seq       int
	priority  int
	key       string
	weight    float64
	completed int
}

func countActivities(activities []statusapi.ActivitySummary, completed int) {
	for a := 0; a < completed && a < len(activities); a++ {
		activities[a].NumberCompleted++
	}
}

func emptyActivities() []statusapi.ActivitySummary {
	activities := make([]statusapi.ActivitySummary, tracker.StageCount)
	for i := range activities {
		activities[i].ActivityNumber = i + 1
	}

	return activities
}

func priorityAssignments(n int) []assignment {
	assignments := make([]assignment, 0, max(0, n))
	for i := range max(0, n) {
		assignments = append(assignments, assignment{priority: i%tracker.PriorityLevels + 1})
	}

	return assignments
}
