package tracker

import (
	"math"
	"time"
)

// Exported constants.
const (
	// MinElapsedSeconds is the floor applied to the time between polls.
	MinElapsedSeconds = 0.25
	// RateWindowSize is the number of per-poll samples averaged into the smoothed rate.
	RateWindowSize = 5
)

// RateEstimator keeps a short moving average of completed steps per second for each class.
type RateEstimator struct {
	defaultElapsed float64
	classes        map[ClassID]*rateState
}

// NewRateEstimator creates an estimator. defaultElapsed stands in for the time between polls
// when the caller has no previous poll to measure from.
func NewRateEstimator(defaultElapsed time.Duration) *RateEstimator {
	return &RateEstimator{
		defaultElapsed: defaultElapsed.Seconds(),
		classes:        make(map[ClassID]*rateState),
	}
}

// Forget drops the state of one class.
func (r *RateEstimator) Forget(id ClassID) {
	delete(r.classes, id)
}

// Rate returns the current smoothed rate of a class without recording a sample.
func (r *RateEstimator) Rate(id ClassID) float64 {
	state, ok := r.classes[id]
	if !ok {
		return 0
	}

	return state.mean()
}

// Reset drops all state.
func (r *RateEstimator) Reset() {
	r.classes = make(map[ClassID]*rateState)
}

// Update records the class's step count at this poll and returns the smoothed rate.
//
// The first observation of a class only seeds the previous step count: a class that shows
// up mid-run with work already done must not register that backlog as throughput.
// Regressions count as zero progress, so the result is never negative.
func (r *RateEstimator) Update(id ClassID, stepsNow int, elapsedSeconds float64) float64 {
	state, ok := r.classes[id]
	if !ok {
		r.classes[id] = &rateState{previous: stepsNow}

		return 0
	}

	elapsed := r.effectiveElapsed(elapsedSeconds)

	delta := max(0, stepsNow-state.previous)
	state.previous = stepsNow

	state.samples = append(state.samples, float64(delta)/elapsed)
	if len(state.samples) > RateWindowSize {
		state.samples = state.samples[len(state.samples)-RateWindowSize:]
	}

	return state.mean()
}

func (r *RateEstimator) effectiveElapsed(elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 || math.IsNaN(elapsedSeconds) || math.IsInf(elapsedSeconds, 0) {
		elapsedSeconds = r.defaultElapsed
	}

	return math.Max(elapsedSeconds, MinElapsedSeconds)
}

type rateState struct {
	previous int
	samples  []float64
}

func (s *rateState) mean() float64 {
	if len(s.samples) == 0 {
		return 0
	}

	sum := 0.0
	for _, sample := range s.samples {
		sum += sample
	}

	return sum / float64(len(s.samples))
}
