package shared

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
)

// NewProgressModel creates a progress bar of the given width, filled with a class color.
func NewProgressModel(width int, slot int) progress.Model {
	bar := progress.New(progress.WithSolidFill(string(PaletteColor(slot))))
	bar.Width = width
	bar.ShowPercentage = false

	if !colorsDisabled {
		bar.EmptyColor = dimColorCode
	}

	return bar
}

// RenderASCIIProgress renders a progress bar in ASCII format.
// percent should be between 0.0 and 1.0, width is the total width of the bar.
// Returns a string like: "[=========>          ] 45%"
func RenderASCIIProgress(percent float64, width int) string {
	return fmt.Sprintf("%s %d%%", renderASCIIBar(percent, width), int(percent*ProgressPercentageScale))
}

// RenderBar renders a bar without a percentage label, styled unless colors are disabled.
func RenderBar(percent float64, width int, slot int) string {
	percent = min(1, max(0, percent))

	if colorsDisabled {
		return renderASCIIBar(percent, width)
	}

	return NewProgressModel(width, slot).ViewAs(percent)
}

func renderASCIIBar(percent float64, width int) string {
	percent = min(1, max(0, percent))
	filled := int(percent * float64(width))

	const (
		minWideBarWidth    = 3 // Minimum width to show equals before arrow
		arrowSpaceReserved = 2 // Space reserved for arrow and spacing in wide bars
	)

	var bar strings.Builder
	bar.WriteString("[")

	switch {
	case filled >= width:
		bar.WriteString(strings.Repeat("=", width))
	case percent > 0:
		var equalsCount int
		if filled >= minWideBarWidth {
			equalsCount = filled - arrowSpaceReserved
		} else {
			equalsCount = max(0, filled-1)
		}

		bar.WriteString(strings.Repeat("=", equalsCount))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", width-equalsCount-1))
	default:
		bar.WriteString(strings.Repeat(" ", width))
	}

	bar.WriteString("]")

	return bar.String()
}
