// Package formatters provides human-readable formatting for counts, rates, durations and
// percentages shown by the TUI and the headless reporter.
package formatters

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Exported constants.
const (
	// UnknownETA is displayed when no throughput estimate exists yet.
	UnknownETA = "calculating…"
)

// FormatCount formats an integer count with thousands separators (e.g., "12,345").
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatDuration formats a duration into a compact form (e.g., "2m 05s", "13.5s").
// Sub-minute durations keep one decimal so fast-moving ETAs remain readable.
func FormatDuration(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	if duration < time.Minute {
		return fmt.Sprintf("%.1fs", duration.Seconds())
	}

	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}

	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// FormatSeconds formats a floating-point number of seconds using FormatDuration.
func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return UnknownETA
	}

	return FormatDuration(time.Duration(seconds * float64(time.Second)))
}

// FormatETA formats an optional ETA. A nil ETA means "no estimate yet".
func FormatETA(etaSeconds *float64) string {
	if etaSeconds == nil {
		return UnknownETA
	}

	return FormatSeconds(*etaSeconds)
}

// FormatPercent formats a 0-100 percentage with one decimal (e.g., "42.5%").
func FormatPercent(percent float64) string {
	return fmt.Sprintf("%.1f%%", percent)
}

// FormatRate formats a throughput in steps per second (e.g., "33.3 steps/s", "1,204 steps/s").
func FormatRate(stepsPerSec float64) string {
	if stepsPerSec < rateDecimalThreshold {
		return humanize.CommafWithDigits(stepsPerSec, 1) + " steps/s"
	}

	return humanize.Comma(int64(math.Round(stepsPerSec))) + " steps/s"
}

// unexported constants.
const (
	rateDecimalThreshold = 1000
)
