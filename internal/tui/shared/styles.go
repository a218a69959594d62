package shared

import (
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/joe/fairwatch/internal/tracker"
)

// Exported constants organized by category for clarity.
const (
	// ============================================================================
	// UI Layout & Display
	// ============================================================================

	// DefaultPadding is the default padding for UI elements
	DefaultPadding = 2
	// DefaultWidth is assumed until the first WindowSizeMsg arrives
	DefaultWidth = 100
	// ProgressBarWidth is the default width of per-class progress bars
	ProgressBarWidth = 24
	// StageBarWidth is the width of each per-stage bar
	StageBarWidth = 8
	// ChartHeight is the number of rows in the history chart
	ChartHeight = 10
	// LabelWidth is the column reserved for class labels
	LabelWidth = 18

	// ============================================================================
	// Display Limits & Formatting
	// ============================================================================

	// ProgressPercentageScale is the scale for percentage calculations (100 for percentages)
	ProgressPercentageScale = 100

	// ============================================================================
	// Keys
	// ============================================================================

	KeyAutoRefresh = "a"
	KeyCtrlC       = "ctrl+c"
	KeyDismiss     = "x"
	KeyEsc         = "esc"
	KeyQuit        = "q"
	KeyRefresh     = "r"
)

func AccentColor() lipgloss.Color { return lipgloss.Color(accentColorCode) }

// BoxStyle returns the style for boxes with padding
func BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AccentColor()).
		Padding(0, 1)
}

// ChipStyle returns the style for the mode chip next to the run title
func ChipStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(chipTextColorCode)).
		Background(AccentColor()).
		Padding(0, 1).
		Bold(true)
}

func DimColor() lipgloss.Color { return lipgloss.Color(dimColorCode) }

// DimStyle returns the style for dimmed text
func DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(DimColor())
}

func ErrorColor() lipgloss.Color { return lipgloss.Color(errorColorCode) }

// ErrorStyle returns the style for error messages
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ErrorColor()).
		Bold(true)
}

// FocusedStyle returns the style for the focused form field
func FocusedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(HighlightColor()).
		Bold(true)
}

func HighlightColor() lipgloss.Color { return lipgloss.Color(highlightColorCode) }

// LabelStyle returns the style for labels
func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(HighlightColor()).
		Bold(true)
}

func NormalColor() lipgloss.Color { return lipgloss.Color(normalColorCode) }

// PaletteColor returns the color of a class palette slot.
func PaletteColor(slot int) lipgloss.Color {
	if slot < 0 {
		slot = -slot
	}

	return lipgloss.Color(paletteColorCodes[slot%tracker.PaletteSize])
}

// PaletteStyle returns the foreground style for a class palette slot.
func PaletteStyle(slot int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PaletteColor(slot))
}

// PrimaryColor returns the primary color for the UI
func PrimaryColor() lipgloss.Color { return lipgloss.Color(primaryColorCode) }

// RenderBox renders content in a box with consistent styling
func RenderBox(content string) string {
	return BoxStyle().Render(content)
}

// RenderDim renders dimmed text with consistent styling
func RenderDim(text string) string {
	return DimStyle().Render(text)
}

// RenderError renders an error message with consistent styling
func RenderError(text string) string {
	return ErrorStyle().Render(text)
}

// RenderLabel renders a label with consistent styling
func RenderLabel(text string) string {
	return LabelStyle().Render(text)
}

// RenderSuccess renders a success message with consistent styling
func RenderSuccess(text string) string {
	return SuccessStyle().Render(text)
}

// RenderTitle renders a title with consistent styling
func RenderTitle(text string) string {
	return TitleStyle().Render(text)
}

// RenderWarning renders a warning message with consistent styling
func RenderWarning(text string) string {
	return WarningStyle().Render(text)
}

func SuccessColor() lipgloss.Color { return lipgloss.Color(successColorCode) }

// SuccessStyle returns the style for success messages
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(SuccessColor()).
		Bold(true)
}

// TitleStyle returns the style for titles
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor())
}

func WarningColor() lipgloss.Color { return lipgloss.Color(warningColorCode) }

// WarningStyle returns the style for warning messages
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(WarningColor()).
		Bold(true)
}

// unexported constants.
const (
	accentColorCode    = "62"  // Blue
	chipTextColorCode  = "230" // Cream
	dimColorCode       = "240" // Dark gray
	errorColorCode     = "196" // Red
	highlightColorCode = "86"  // Cyan
	normalColorCode    = "252" // Light gray
	primaryColorCode   = "205" // Pink/purple
	successColorCode   = "42"  // Green
	warningColorCode   = "226"
)

// unexported variables.
//
//nolint:gochecknoglobals
var (
	// NO_COLOR and dumb terminals get ASCII bars and symbols.
	colorsDisabled  = os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"
	unicodeDisabled = os.Getenv("TERM") == "dumb"

	paletteColorCodes = [tracker.PaletteSize]string{
		"39",  // Blue
		"208", // Orange
		"42",  // Green
		"205", // Pink
		"220", // Yellow
		"141", // Purple
		"51",  // Cyan
		"203", // Salmon
	}
)

// ErrorBannerStyle returns the style for the box around a request failure
func ErrorBannerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(ErrorColor()).
		Padding(0, 1)
}
