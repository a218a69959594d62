//nolint:varnamelen // Test files use idiomatic short variable names (g, etc.)
package shared_test

import (
	"regexp"
	"strings"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/fairwatch/internal/tui/shared"
)

func TestRenderTimeline_Phases(t *testing.T) {
	t.Parallel()

	active, pending, done := shared.ActiveSymbol(), shared.PendingSymbol(), shared.SuccessSymbol()

	tests := []struct {
		phase   string
		symbols []string
	}{
		{"configure", []string{active, pending, pending, pending}},
		{"submit", []string{done, active, pending, pending}},
		{"track", []string{done, done, active, pending}},
		{"done", []string{done, done, done, done}},
		{"  TRACK ", []string{done, done, active, pending}},
		{"bogus", []string{active, pending, pending, pending}},
	}

	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(timelineSymbols(shared.RenderTimeline(tt.phase))).To(Equal(tt.symbols))
		})
	}
}

func TestRenderTimeline_ErrorVariant(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	result := timelineSymbols(shared.RenderTimeline("submit_error"))

	g.Expect(result).To(Equal([]string{
		shared.SuccessSymbol(),
		shared.ErrorSymbol(),
		shared.CancelledSymbol(),
		shared.CancelledSymbol(),
	}))
}

func TestRenderTimeline_Names(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	plain := stripANSI(shared.RenderTimeline("track"))

	g.Expect(plain).To(ContainSubstring("Configure"))
	g.Expect(plain).To(ContainSubstring("Submit"))
	g.Expect(plain).To(ContainSubstring("Track"))
	g.Expect(plain).To(ContainSubstring("Done"))
	g.Expect(strings.Count(plain, " ── ")).To(Equal(3))
}

func timelineSymbols(rendered string) []string {
	parts := strings.Split(stripANSI(rendered), " ── ")
	symbols := make([]string, 0, len(parts))

	for _, part := range parts {
		// names never contain spaces, so the symbol is everything before the last one
		symbols = append(symbols, part[:strings.LastIndex(part, " ")])
	}

	return symbols
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
