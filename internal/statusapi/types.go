package statusapi

import (
	"github.com/joe/fairwatch/internal/tracker"
)

// ActivitySummary is the number of workflows that completed one activity.
type ActivitySummary struct {
	ActivityNumber  int `json:"activityNumber"`
	NumberCompleted int `json:"numberCompleted"`
}

// Band is one fairness band of a submitted run. Count is optional; when any band has a
// count, the server submits exactly those counts instead of NumberOfWorkflows.
type Band struct {
	Key    string  `json:"key"             yaml:"key"`
	Weight float64 `json:"weight"          yaml:"weight"`
	Count  int     `json:"count,omitempty" yaml:"count,omitempty"`
}

// FairnessStatus is the response of the fairness status endpoint.
type FairnessStatus struct {
	Workflows      []FairnessSummary `json:"workflowsByFairness"`
	TotalWorkflows int               `json:"totalWorkflowsInTest"`
}

// Snapshot converts the response into a normalized tracker snapshot.
func (s *FairnessStatus) Snapshot() tracker.Snapshot {
	classes := make([]tracker.Class, 0, len(s.Workflows))
	for _, band := range s.Workflows {
		classes = append(classes, tracker.NewFairnessClass(
			band.FairnessKey,
			band.FairnessWeight,
			band.NumberOfWorkflows,
			completedByActivity(band.Activities),
		))
	}

	return tracker.NewSnapshot(tracker.ModeFairness, classes, s.TotalWorkflows)
}

// FairnessSummary aggregates the workflows of one key|weight band.
type FairnessSummary struct {
	FairnessKey       string            `json:"fairnessKey"`
	FairnessWeight    float64           `json:"fairnessWeight"`
	NumberOfWorkflows int               `json:"numberOfWorkflows"`
	Activities        []ActivitySummary `json:"activities"`
}

// PriorityStatus is the response of the priority status endpoint.
type PriorityStatus struct {
	Workflows      []WorkflowSummary `json:"workflowsByPriority"`
	TotalWorkflows int               `json:"totalWorkflowsInTest"`
}

// Snapshot converts the response into a normalized tracker snapshot.
func (s *PriorityStatus) Snapshot() tracker.Snapshot {
	classes := make([]tracker.Class, 0, len(s.Workflows))
	for _, level := range s.Workflows {
		classes = append(classes, tracker.NewPriorityClass(
			level.WorkflowPriority,
			level.NumberOfWorkflows,
			completedByActivity(level.Activities),
		))
	}

	return tracker.NewSnapshot(tracker.ModePriority, classes, s.TotalWorkflows)
}

// TestConfig is the body of a run submission.
type TestConfig struct {
	WorkflowIDPrefix  string       `json:"workflowIdPrefix"`
	NumberOfWorkflows int          `json:"numberOfWorkflows"`
	Mode              tracker.Mode `json:"mode,omitempty"`
	Bands             []Band       `json:"bands,omitempty"`
	DisableFairness   bool         `json:"disableFairness,omitempty"`
}

// DeclaredOrder lists the class ids the run's bands will be reported under, in submission
// order. Disabling fairness records every band with weight 0.
func (c TestConfig) DeclaredOrder() []tracker.ClassID {
	if c.Mode != tracker.ModeFairness {
		return nil
	}

	order := make([]tracker.ClassID, 0, len(c.Bands))
	for _, band := range c.Bands {
		weight := band.Weight
		if c.DisableFairness {
			weight = 0
		}

		order = append(order, tracker.FairnessClassID(band.Key, weight))
	}

	return order
}

// WorkflowSummary aggregates the workflows of one priority level.
type WorkflowSummary struct {
	WorkflowPriority  int               `json:"workflowPriority"`
	NumberOfWorkflows int               `json:"numberOfWorkflows"`
	Activities        []ActivitySummary `json:"activities"`
}

func completedByActivity(activities []ActivitySummary) map[int]int {
	completed := make(map[int]int, len(activities))
	for _, activity := range activities {
		completed[activity.ActivityNumber] += activity.NumberCompleted
	}

	return completed
}
