//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package simbackend_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/joe/fairwatch/internal/simbackend"
	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

var t0 = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func newSim(capacity int) *simbackend.Simulator {
	return simbackend.New(simbackend.Options{
		Capacity: capacity,
		Rand:     rand.New(rand.NewPCG(1, 2)),
	})
}

func TestStartDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode tracker.Mode
		n    int
		want time.Duration
	}{
		{tracker.ModePriority, 100, 10 * time.Second},
		{tracker.ModePriority, 300, 20 * time.Second},
		{tracker.ModeFairness, 100, 7 * time.Second},
		{tracker.ModeFairness, 200, 15 * time.Second},
		{tracker.ModeFairness, 300, 30 * time.Second},
		{tracker.ModeFairness, 440, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := simbackend.StartDelay(tt.mode, tt.n); got != tt.want {
			t.Errorf("StartDelay(%s, %d) = %v, want %v", tt.mode, tt.n, got, tt.want)
		}
	}
}

func TestStartPriorityAssignsLevels(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sim := newSim(1)
	info, err := sim.Start(statusapi.TestConfig{
		WorkflowIDPrefix:  "P",
		NumberOfWorkflows: 12,
		Mode:              tracker.ModePriority,
	}, t0)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(info.Workflows).To(Equal(12))
	g.Expect(info.StartsAt).To(Equal(t0))

	status := sim.PriorityStatus("P")
	g.Expect(status.TotalWorkflows).To(Equal(12))
	g.Expect(status.Workflows).To(HaveLen(5))

	counts := []int{}
	for _, level := range status.Workflows {
		counts = append(counts, level.NumberOfWorkflows)
		g.Expect(level.Activities).To(HaveLen(tracker.StageCount))
	}

	g.Expect(counts).To(Equal([]int{3, 3, 2, 2, 2}))
}

func TestStartFairnessWithCounts(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sim := newSim(1)
	_, err := sim.Start(statusapi.TestConfig{
		WorkflowIDPrefix:  "F",
		NumberOfWorkflows: 999,
		Mode:              tracker.ModeFairness,
		Bands: []statusapi.Band{
			{Key: "gold", Weight: 5, Count: 4},
			{Key: "tin", Weight: 1, Count: 6},
		},
	}, t0)
	g.Expect(err).NotTo(HaveOccurred())

	status := sim.FairnessStatus("F")
	g.Expect(status.TotalWorkflows).To(Equal(10))
	g.Expect(status.Workflows).To(HaveLen(2))
	g.Expect(status.Workflows[0].FairnessKey).To(Equal("gold"))
	g.Expect(status.Workflows[0].NumberOfWorkflows).To(Equal(4))
	g.Expect(status.Workflows[1].NumberOfWorkflows).To(Equal(6))
}

func TestStartFairnessDefaultsAndDisabled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sim := newSim(1)
	_, err := sim.Start(statusapi.TestConfig{
		WorkflowIDPrefix:  "D",
		NumberOfWorkflows: 7,
		DisableFairness:   true,
	}, t0)
	g.Expect(err).NotTo(HaveOccurred())

	status := sim.FairnessStatus("D")
	g.Expect(status.Workflows).To(HaveLen(3))

	total := 0
	for _, band := range status.Workflows {
		g.Expect(band.FairnessWeight).To(Equal(0.0))
		total += band.NumberOfWorkflows
	}

	g.Expect(total).To(Equal(7))
	// round robin over first/business/economy
	g.Expect(status.Workflows[1].FairnessKey).To(Equal("economy-class"))
	g.Expect(status.Workflows[1].NumberOfWorkflows).To(Equal(2))
}

func TestStartRejects(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sim := newSim(1)

	_, err := sim.Start(statusapi.TestConfig{NumberOfWorkflows: 1}, t0)
	g.Expect(err).To(MatchError(simbackend.ErrMissingPrefix))

	_, err = sim.Start(statusapi.TestConfig{WorkflowIDPrefix: "X", Mode: tracker.ModePriority}, t0)
	g.Expect(err).To(MatchError(simbackend.ErrNoWorkflows))

	_, err = sim.Start(statusapi.TestConfig{WorkflowIDPrefix: "X", NumberOfWorkflows: 1, Mode: tracker.ModePriority}, t0)
	g.Expect(err).NotTo(HaveOccurred())

	_, err = sim.Start(statusapi.TestConfig{WorkflowIDPrefix: "X", NumberOfWorkflows: 1, Mode: tracker.ModePriority}, t0)
	g.Expect(err).To(MatchError(simbackend.ErrRunExists))
}

func TestStepHonorsStartDelay(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sim := simbackend.New(simbackend.Options{Capacity: 10, StartDelayScale: 1})
	info, err := sim.Start(statusapi.TestConfig{
		WorkflowIDPrefix:  "S",
		NumberOfWorkflows: 5,
		Mode:              tracker.ModePriority,
	}, t0)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(info.StartsAt).To(Equal(t0.Add(5250 * time.Millisecond)))

	g.Expect(sim.Step(t0.Add(time.Second))).To(Equal(0))
	g.Expect(sim.Step(info.StartsAt)).To(Equal(5))
}

func TestStepPriorityServesLowestFirst(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sim := newSim(2)
	_, err := sim.Start(statusapi.TestConfig{
		WorkflowIDPrefix:  "P",
		NumberOfWorkflows: 10,
		Mode:              tracker.ModePriority,
	}, t0)
	g.Expect(err).NotTo(HaveOccurred())

	for range tracker.StageCount {
		sim.Step(t0)
	}

	status := sim.PriorityStatus("P")
	// the two priority-1 workflows finish before anyone else starts
	g.Expect(status.Workflows[0].Activities[4].NumberCompleted).To(Equal(2))
	g.Expect(status.Workflows[1].Activities[0].NumberCompleted).To(Equal(0))

	sim.Step(t0)
	status = sim.PriorityStatus("P")
	g.Expect(status.Workflows[1].Activities[0].NumberCompleted).To(Equal(2))
}

func TestStepFairnessSharesByWeight(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sim := newSim(4)
	_, err := sim.Start(statusapi.TestConfig{
		WorkflowIDPrefix: "F",
		Mode:             tracker.ModeFairness,
		Bands: []statusapi.Band{
			{Key: "heavy", Weight: 3, Count: 20},
			{Key: "light", Weight: 1, Count: 20},
		},
	}, t0)
	g.Expect(err).NotTo(HaveOccurred())

	sim.Step(t0)

	status := sim.FairnessStatus("F")
	g.Expect(status.Workflows[0].FairnessKey).To(Equal("heavy"))
	g.Expect(status.Workflows[0].Activities[0].NumberCompleted).To(Equal(3))
	g.Expect(status.Workflows[1].Activities[0].NumberCompleted).To(Equal(1))
}

func TestStepRunsToCompletion(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reg := prometheus.NewRegistry()
	metrics := simbackend.NewMetrics(reg)
	sim := simbackend.New(simbackend.Options{Capacity: 3, Metrics: metrics})

	_, err := sim.Start(statusapi.TestConfig{
		WorkflowIDPrefix:  "C",
		NumberOfWorkflows: 4,
		Mode:              tracker.ModePriority,
	}, t0)
	g.Expect(err).NotTo(HaveOccurred())

	for i := 0; i < 20 && sim.Pending() > 0; i++ {
		sim.Step(t0)
	}

	g.Expect(sim.Pending()).To(Equal(0))
	status := sim.PriorityStatus("C")
	g.Expect(status.Snapshot().AllComplete()).To(BeTrue())
	g.Expect(testutil.ToFloat64(metrics.WorkflowsSubmitted.WithLabelValues("priority"))).To(Equal(4.0))
	g.Expect(testutil.ToFloat64(metrics.ActivitiesCompleted.WithLabelValues("priority"))).To(Equal(20.0))
	g.Expect(testutil.ToFloat64(metrics.PendingWorkflows)).To(Equal(0.0))
}
