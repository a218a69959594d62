package shared

import (
	"strings"

	"github.com/joe/fairwatch/pkg/errors"
)

// RenderErrorBanner renders a failed request as a banner: the message, the endpoint it came
// from, and suggestions for the kind of failure. It returns "" for a nil error.
func RenderErrorBanner(err error, message, endpoint string, width int) string {
	if err == nil {
		return ""
	}

	if message == "" {
		message = err.Error()
	}

	enriched := errors.NewEnricher().Enrich(err, endpoint)

	var builder strings.Builder

	builder.WriteString(RenderError(ErrorSymbol() + " " + message))
	builder.WriteString("\n")

	if endpoint != "" {
		builder.WriteString(RenderDim("  " + endpoint))
		builder.WriteString("\n")
	}

	if suggestions := errors.FormatSuggestions(enriched); suggestions != "" {
		builder.WriteString(suggestions)
		builder.WriteString("\n")
	}

	builder.WriteString(RenderDim("  press " + KeyDismiss + " to dismiss"))

	return ErrorBannerStyle().Width(max(1, width-bannerOverhead)).Render(builder.String())
}

const bannerOverhead = 4
