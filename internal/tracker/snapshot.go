// Package tracker turns periodic, already-aggregated status snapshots of a workflow run into
// per-class throughput, completion, ETA and a chartable percent-over-time series.
//
// A Tracker is owned by one run. It is not safe for concurrent use; callers serialize
// Observe calls (the TUI does so through Bubble Tea's single-threaded Update loop).
package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Exported constants.
const (
	// StageCount is the number of activities every workflow executes.
	StageCount = 5
	// PriorityLevels is the number of distinct priority levels in priority mode.
	PriorityLevels = 5
)

const (
	ModePriority Mode = "priority"
	ModeFairness Mode = "fairness"
)

// Exported variables.
var (
	ErrInvalidMode = errors.New("invalid mode")
)

// Class is one priority level or fairness band as reported by a single status snapshot.
type Class struct {
	ID            ClassID
	Label         string
	Key           string
	Weight        float64
	Priority      int
	DeclaredTotal int
	Stages        [StageCount]int
}

// FullyComplete reports whether every stage counter has reached DeclaredTotal. A class with
// no declared workflows is trivially complete.
func (c Class) FullyComplete() bool {
	for _, done := range c.Stages {
		if done < c.DeclaredTotal {
			return false
		}
	}

	return true
}

// StagePercent returns the completion percent of stage i (0-based).
func (c Class) StagePercent(i int) float64 {
	if i < 0 || i >= StageCount || c.DeclaredTotal <= 0 {
		return 0
	}

	return clampPercent(percentScale * float64(c.Stages[i]) / float64(c.DeclaredTotal))
}

// StepsCompleted is the sum of all stage counters.
func (c Class) StepsCompleted() int {
	total := 0
	for _, done := range c.Stages {
		total += done
	}

	return total
}

// StepsTotal is the number of steps the class needs to finish.
func (c Class) StepsTotal() int {
	return c.DeclaredTotal * StageCount
}

// normalized clamps stage counters into [0, DeclaredTotal].
func (c Class) normalized() Class {
	if c.DeclaredTotal < 0 {
		c.DeclaredTotal = 0
	}

	for i, done := range c.Stages {
		switch {
		case done < 0:
			c.Stages[i] = 0
		case done > c.DeclaredTotal:
			c.Stages[i] = c.DeclaredTotal
		}
	}

	return c
}

// ClassID identifies a class across snapshots of one run.
type ClassID string

// FairnessClassID builds the identity of a fairness band. Weight 0 is a real weight.
func FairnessClassID(key string, weight float64) ClassID {
	return ClassID(key + "|" + FormatWeight(weight))
}

// PriorityClassID builds the identity of a priority level.
func PriorityClassID(priority int) ClassID {
	return ClassID("priority-" + strconv.Itoa(priority))
}

// Priority returns the priority number encoded in a priority class id.
func (id ClassID) Priority() (int, bool) {
	rest, ok := strings.CutPrefix(string(id), "priority-")
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Mode selects how a run's workflows are grouped.
type Mode string

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePriority:
		return ModePriority, nil
	case ModeFairness:
		return ModeFairness, nil
	default:
		return "", fmt.Errorf("%w: %q (must be 'priority' or 'fairness')", ErrInvalidMode, s)
	}
}

// DefaultPollInterval is the refresh period used when none is configured.
// Fairness runs list far more workflows per poll, so they poll half as often.
func (m Mode) DefaultPollInterval() time.Duration {
	if m == ModeFairness {
		return fairnessPollInterval
	}

	return priorityPollInterval
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// UnmarshalText implements encoding.TextUnmarshaler for flag parsing.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// Snapshot is one normalized status report for a run.
type Snapshot struct {
	Mode           Mode
	Classes        []Class
	TotalWorkflows int
}

// NewSnapshot normalizes classes: entries sharing an identity are merged by summing their
// counters, then every counter is clamped into [0, DeclaredTotal]. Input order is kept.
func NewSnapshot(mode Mode, classes []Class, totalWorkflows int) Snapshot {
	merged := make([]Class, 0, len(classes))
	index := make(map[ClassID]int, len(classes))

	for _, class := range classes {
		class = nonNegative(class)

		pos, seen := index[class.ID]
		if !seen {
			index[class.ID] = len(merged)
			merged = append(merged, class)

			continue
		}

		existing := &merged[pos]
		existing.DeclaredTotal += class.DeclaredTotal

		for i := range existing.Stages {
			existing.Stages[i] += class.Stages[i]
		}
	}

	for i := range merged {
		merged[i] = merged[i].normalized()
	}

	if totalWorkflows < 0 {
		totalWorkflows = 0
	}

	return Snapshot{Mode: mode, Classes: merged, TotalWorkflows: totalWorkflows}
}

// AllComplete reports whether every class is fully complete and at least one class declares
// workflows. An empty or all-zero snapshot is a run that has not started, not a finished one.
func (s Snapshot) AllComplete() bool {
	declared := false

	for _, class := range s.Classes {
		if !class.FullyComplete() {
			return false
		}

		if class.DeclaredTotal > 0 {
			declared = true
		}
	}

	return declared
}

// Class looks up a class by id.
func (s Snapshot) Class(id ClassID) (Class, bool) {
	for _, class := range s.Classes {
		if class.ID == id {
			return class, true
		}
	}

	return Class{}, false
}

// FormatWeight renders a weight without trailing zeros ("15", "2.5").
func FormatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}

// NewFairnessClass builds a fairness band from wire values. completed maps activity
// numbers (1-based) to completion counts; numbers outside 1..StageCount are ignored.
func NewFairnessClass(key string, weight float64, declaredTotal int, completed map[int]int) Class {
	label := key
	if strings.TrimSpace(label) == "" {
		label = unkeyedLabel
	}

	return Class{
		ID:            FairnessClassID(key, weight),
		Label:         label,
		Key:           key,
		Weight:        weight,
		DeclaredTotal: declaredTotal,
		Stages:        stagesFrom(completed),
	}
}

// NewPriorityClass builds a priority level from wire values.
func NewPriorityClass(priority int, declaredTotal int, completed map[int]int) Class {
	return Class{
		ID:            PriorityClassID(priority),
		Label:         "Priority " + strconv.Itoa(priority),
		Priority:      priority,
		DeclaredTotal: declaredTotal,
		Stages:        stagesFrom(completed),
	}
}

// unexported constants.
const (
	fairnessPollInterval = 3 * time.Second
	percentScale         = 100.0
	priorityPollInterval = 1500 * time.Millisecond
	unkeyedLabel         = "(no key)"
)

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > percentScale:
		return percentScale
	default:
		return p
	}
}

func nonNegative(c Class) Class {
	if c.DeclaredTotal < 0 {
		c.DeclaredTotal = 0
	}

	for i, done := range c.Stages {
		if done < 0 {
			c.Stages[i] = 0
		}
	}

	return c
}

func stagesFrom(completed map[int]int) [StageCount]int {
	var stages [StageCount]int

	for activity, count := range completed {
		if activity < 1 || activity > StageCount {
			continue
		}

		stages[activity-1] += count
	}

	return stages
}
