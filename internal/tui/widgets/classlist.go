package widgets

import (
	"fmt"
	"strings"

	"github.com/joe/fairwatch/internal/tracker"
	"github.com/joe/fairwatch/internal/tui/shared"
	"github.com/joe/fairwatch/pkg/formatters"
)

// NewClassListWidget creates a widget with one row per class: label in its palette color,
// workflow count, progress bar, percent, rate, ETA and finish time.
// Returns a closure that formats the rows from the latest summary.
func NewClassListWidget(getSummary func() tracker.Summary, barWidth int) func() string {
	return func() string {
		summary := getSummary()
		if len(summary.Classes) == 0 {
			return shared.RenderDim("waiting for the first status…")
		}

		rows := make([]string, 0, len(summary.Classes))
		for _, class := range summary.Classes {
			rows = append(rows, renderClassRow(class, barWidth))
		}

		return strings.Join(rows, "\n")
	}
}

func renderClassRow(class tracker.ClassSummary, barWidth int) string {
	label := shared.PaletteStyle(class.PaletteSlot).Bold(true).Render(padLabel(class.Label))

	status := "ETA " + formatters.FormatETA(class.ETASeconds)
	if class.Finished && class.FinishElapsed != nil {
		status = shared.RenderSuccess(shared.SuccessSymbol() + " done at " + formatters.FormatSeconds(*class.FinishElapsed))
	}

	row := fmt.Sprintf("%s %6s wf  %s %6s  %14s  %s",
		label,
		formatters.FormatCount(class.DeclaredTotal),
		shared.RenderBar(class.Percent/shared.ProgressPercentageScale, barWidth, class.PaletteSlot),
		formatters.FormatPercent(class.Percent),
		formatters.FormatRate(class.Rate),
		status)

	if !class.Present {
		return shared.RenderDim(row + "  (not reported)")
	}

	return row
}

func padLabel(label string) string {
	runes := []rune(label)
	if len(runes) > shared.LabelWidth {
		return string(runes[:shared.LabelWidth-1]) + "…"
	}

	return label + strings.Repeat(" ", shared.LabelWidth-len(runes))
}
