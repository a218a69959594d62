package widgets

import (
	"fmt"
	"strings"

	"github.com/joe/fairwatch/internal/tracker"
	"github.com/joe/fairwatch/internal/tui/shared"
)

// NewStageWidget creates a widget showing, per class, how many workflows finished each of
// the five activities.
func NewStageWidget(getSummary func() tracker.Summary, barWidth int) func() string {
	return func() string {
		summary := getSummary()
		if len(summary.Classes) == 0 {
			return ""
		}

		var builder strings.Builder

		for i, class := range summary.Classes {
			if i > 0 {
				builder.WriteString("\n")
			}

			builder.WriteString(shared.PaletteStyle(class.PaletteSlot).Render(padLabel(class.Label)))

			for stage, percent := range class.StagePercent {
				fmt.Fprintf(&builder, " %d %s", stage+1,
					shared.RenderBar(percent/shared.ProgressPercentageScale, barWidth, class.PaletteSlot))
			}
		}

		return builder.String()
	}
}
