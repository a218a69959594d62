package tracker

// ClassSummary is the derived view of one class at the latest poll.
type ClassSummary struct {
	ID            ClassID             `json:"id"`
	Label         string              `json:"label"`
	Key           string              `json:"key,omitempty"`
	Weight        float64             `json:"weight"`
	Priority      int                 `json:"priority,omitempty"`
	DeclaredTotal int                 `json:"numberOfWorkflows"`
	Stages        [StageCount]int     `json:"stages"`
	StagePercent  [StageCount]float64 `json:"stagePercent"`
	Percent       float64             `json:"percent"`
	Rate          float64             `json:"rate"`
	ETASeconds    *float64            `json:"etaSeconds"`
	Finished      bool                `json:"finished"`
	FinishElapsed *float64            `json:"finishElapsedSeconds,omitempty"`
	PaletteSlot   int                 `json:"paletteSlot"`
	Present       bool                `json:"present"`
}

// Summary is everything a view needs to render a run after one poll.
type Summary struct {
	Mode                 Mode                 `json:"mode"`
	ChartSeries          []HistoryPoint       `json:"chartSeries"`
	ETASecondsByClass    map[ClassID]*float64 `json:"etaSecondsByClass"`
	RateByClass          map[ClassID]float64  `json:"rateByClass"`
	LabelByClass         map[ClassID]string   `json:"labelByClass"`
	ClassOrder           []ClassID            `json:"classOrder"`
	PercentByClass       map[ClassID]float64  `json:"percentByClass"`
	ChartMaxX            float64              `json:"chartMaxX"`
	FinishedByClass      map[ClassID]bool     `json:"finishedByClass"`
	FinishElapsedByClass map[ClassID]float64  `json:"finishElapsedSecondsByClass"`
	ElapsedSeconds       float64              `json:"elapsedSeconds"`
	Warmed               bool                 `json:"warmed"`
	AllComplete          bool                 `json:"allComplete"`
	TotalWorkflows       int                  `json:"totalWorkflows"`
	Classes              []ClassSummary       `json:"classes"`
}

// Class returns the summary of one class.
func (s Summary) Class(id ClassID) (ClassSummary, bool) {
	for _, class := range s.Classes {
		if class.ID == id {
			return class, true
		}
	}

	return ClassSummary{}, false
}

// OverallPercent is the step-weighted completion across all classes.
func (s Summary) OverallPercent() float64 {
	done, total := 0, 0

	for _, class := range s.Classes {
		for _, stage := range class.Stages {
			done += stage
		}

		total += class.DeclaredTotal * StageCount
	}

	if total == 0 {
		return 0
	}

	return clampPercent(percentScale * float64(done) / float64(total))
}
