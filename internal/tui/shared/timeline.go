package shared

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ActiveSymbol returns a circled dot symbol with ASCII fallback
func ActiveSymbol() string {
	if unicodeDisabled {
		return "[*]"
	}

	return "◉"
}

// CancelledSymbol returns a cancelled/prohibited symbol with ASCII fallback
func CancelledSymbol() string {
	if unicodeDisabled {
		return "[!]"
	}

	return "⊘"
}

// ErrorSymbol returns a cross symbol with ASCII fallback
func ErrorSymbol() string {
	if unicodeDisabled {
		return "[x]"
	}

	return "✗"
}

// PendingSymbol returns an empty circle symbol with ASCII fallback
func PendingSymbol() string {
	if unicodeDisabled {
		return "[ ]"
	}

	return "○"
}

// PromptArrow returns the arrow marking the focused form field
func PromptArrow() string {
	if unicodeDisabled {
		return "> "
	}

	return "▶ "
}

// SuccessSymbol returns a check mark symbol with ASCII fallback
func SuccessSymbol() string {
	if unicodeDisabled {
		return "[v]"
	}

	return "✓"
}

// RenderTimeline renders the phase progression for the header:
// Configure ── Submit ── Track ── Done.
//
// Phases before the current one show ✓, the current one ◉ and later ones ○. A phase with an
// "_error" suffix (e.g. "submit_error") shows ✗ there and ⊘ for the phases it cut off.
func RenderTimeline(currentPhase string) string {
	phase := strings.ToLower(strings.TrimSpace(currentPhase))

	isError := strings.HasSuffix(phase, "_error")
	if isError {
		phase = strings.TrimSuffix(phase, "_error")
	}

	currentIdx := 0

	for i, def := range timelinePhases {
		if def.key == phase {
			currentIdx = i
			break
		}
	}

	parts := make([]string, 0, len(timelinePhases))

	for phaseIdx, def := range timelinePhases {
		var (
			symbol string
			style  lipgloss.Style
		)

		switch {
		case isError && phaseIdx == currentIdx:
			symbol = ErrorSymbol()
			style = lipgloss.NewStyle().Foreground(ErrorColor())
		case isError && phaseIdx > currentIdx:
			symbol = CancelledSymbol()
			style = DimStyle()
		case phaseIdx < currentIdx:
			symbol = SuccessSymbol()
			style = lipgloss.NewStyle().Foreground(SuccessColor())
		case phaseIdx == currentIdx && currentIdx == len(timelinePhases)-1:
			// done is a terminal state, not an active one
			symbol = SuccessSymbol()
			style = lipgloss.NewStyle().Foreground(SuccessColor())
		case phaseIdx == currentIdx:
			symbol = ActiveSymbol()
			style = lipgloss.NewStyle().Foreground(PrimaryColor())
		default:
			symbol = PendingSymbol()
			style = DimStyle()
		}

		parts = append(parts, style.Render(symbol+" "+def.name))
	}

	return strings.Join(parts, DimStyle().Render(" ── "))
}

type timelinePhase struct {
	name string
	key  string
}

//nolint:gochecknoglobals
var timelinePhases = []timelinePhase{
	{"Configure", "configure"},
	{"Submit", "submit"},
	{"Track", "track"},
	{"Done", "done"},
}

// AxisSymbols returns the chart's vertical axis, tick, corner and horizontal axis
// characters with ASCII fallback
func AxisSymbols() (vertical, tick, corner, horizontal string) {
	if unicodeDisabled {
		return "|", "+", "+", "-"
	}

	return "│", "┤", "└", "─"
}

// ChartPointSymbol returns the chart line marker with ASCII fallback
func ChartPointSymbol() string {
	if unicodeDisabled {
		return "*"
	}

	return "•"
}
