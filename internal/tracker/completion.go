package tracker

// Evaluation is the completion state of one class at one poll.
type Evaluation struct {
	Percent float64
	// ETASeconds is nil while the rate is unknown (zero).
	ETASeconds *float64
	Finished   bool
	// FinishElapsed is set once the class first reaches 100% and never changes afterwards.
	FinishElapsed *float64
}

// CompletionTracker derives percent and ETA per class and latches the first time each
// class finishes.
type CompletionTracker struct {
	finishedAt map[ClassID]float64
}

// NewCompletionTracker creates an empty tracker.
func NewCompletionTracker() *CompletionTracker {
	return &CompletionTracker{finishedAt: make(map[ClassID]float64)}
}

// Evaluate computes the class's completion at nowElapsed seconds past the run origin.
func (c *CompletionTracker) Evaluate(
	id ClassID,
	stepsNow, totalSteps int,
	rate, nowElapsed float64,
) Evaluation {
	var eval Evaluation

	if totalSteps > 0 {
		eval.Percent = clampPercent(percentScale * float64(stepsNow) / float64(totalSteps))
	}

	remaining := max(0, totalSteps-stepsNow)
	if rate > 0 {
		eta := float64(remaining) / rate
		eval.ETASeconds = &eta
	}

	if _, latched := c.finishedAt[id]; !latched && totalSteps > 0 && eval.Percent >= percentScale {
		c.finishedAt[id] = nowElapsed
	}

	if at, latched := c.finishedAt[id]; latched {
		eval.Finished = true
		eval.FinishElapsed = &at
	}

	return eval
}

// Finished reports whether a class has latched as finished, and when.
func (c *CompletionTracker) Finished(id ClassID) (float64, bool) {
	at, ok := c.finishedAt[id]

	return at, ok
}

// MaxFinishElapsed returns the latest latched finish time, or 0.
func (c *CompletionTracker) MaxFinishElapsed() float64 {
	latest := 0.0
	for _, at := range c.finishedAt {
		latest = max(latest, at)
	}

	return latest
}

// Reset clears every latch.
func (c *CompletionTracker) Reset() {
	c.finishedAt = make(map[ClassID]float64)
}
