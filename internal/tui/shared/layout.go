package shared

import "github.com/charmbracelet/lipgloss"

// RenderWidgetBox renders content in a titled box with borders.
// Width accounts for the border and padding.
func RenderWidgetBox(title, content string, width int) string {
	const widthOverhead = 4 // Account for borders (2) and padding (2)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor())
	boxStyle := BoxStyle().Width(max(1, width-widthOverhead))

	return boxStyle.Render(titleStyle.Render(title) + "\n" + content)
}
