package widgets

import (
	"math"
	"strings"

	"github.com/joe/fairwatch/internal/tracker"
	"github.com/joe/fairwatch/internal/tui/shared"
	"github.com/joe/fairwatch/pkg/formatters"
)

// NewChartWidget creates a widget that draws the run's history chart.
func NewChartWidget(getSummary func() tracker.Summary, width, height int) func() string {
	return func() string {
		return RenderChart(getSummary(), width, height)
	}
}

// RenderChart draws percent complete over elapsed seconds for every class as a line chart
// of roughly width x height cells. The x axis spans 0 to summary.ChartMaxX; the y axis 0 to
// 100%. A class missing from a history point breaks its line there.
func RenderChart(summary tracker.Summary, width, height int) string {
	if len(summary.ChartSeries) == 0 {
		return shared.RenderDim("no history yet")
	}

	plotWidth := max(minPlotWidth, width-yAxisWidth)
	height = max(minPlotHeight, height)

	maxX := summary.ChartMaxX
	if maxX <= 0 {
		maxX = 1
	}

	plot := newGrid(plotWidth, height)
	slots := make(map[tracker.ClassID]int, len(summary.Classes))

	for _, class := range summary.Classes {
		slots[class.ID] = class.PaletteSlot
	}

	for _, id := range summary.ClassOrder {
		var (
			prevCol, prevRow int
			havePrev         bool
		)

		for _, point := range summary.ChartSeries {
			percent, ok := point.Percent[id]
			if !ok {
				havePrev = false
				continue
			}

			col := scale(point.ElapsedSeconds/maxX, plotWidth)
			row := height - 1 - scale(percent/shared.ProgressPercentageScale, height)

			if havePrev {
				plot.line(prevCol, prevRow, col, row, slots[id])
			} else {
				plot.set(col, row, slots[id])
			}

			prevCol, prevRow, havePrev = col, row, true
		}
	}

	return plot.render(formatters.FormatSeconds(maxX)) + "\n" + renderLegend(summary)
}

const (
	minPlotHeight = 3
	minPlotWidth  = 10
	yAxisWidth    = 6
)

type grid struct {
	width, height int
	cells         [][]int
}

func newGrid(width, height int) *grid {
	cells := make([][]int, height)
	for r := range cells {
		cells[r] = make([]int, width)
		for c := range cells[r] {
			cells[r][c] = -1
		}
	}

	return &grid{width: width, height: height, cells: cells}
}

func (g *grid) line(fromCol, fromRow, toCol, toRow, slot int) {
	if fromCol == toCol {
		for r := min(fromRow, toRow); r <= max(fromRow, toRow); r++ {
			g.set(toCol, r, slot)
		}

		return
	}

	step := 1
	if toCol < fromCol {
		step = -1
	}

	for c := fromCol; ; c += step {
		t := float64(c-fromCol) / float64(toCol-fromCol)
		g.set(c, int(math.Round(float64(fromRow)+t*float64(toRow-fromRow))), slot)

		if c == toCol {
			return
		}
	}
}

func (g *grid) render(maxXLabel string) string {
	vertical, tick, corner, horizontal := shared.AxisSymbols()
	point := shared.ChartPointSymbol()

	var builder strings.Builder

	for r, row := range g.cells {
		label, axis := "    ", vertical

		switch r {
		case 0:
			label, axis = "100%", tick
		case (g.height - 1) / 2:
			label, axis = " 50%", tick
		case g.height - 1:
			label, axis = "  0%", tick
		}

		builder.WriteString(shared.RenderDim(label + " " + axis))

		for _, slot := range row {
			if slot < 0 {
				builder.WriteString(" ")
				continue
			}

			builder.WriteString(shared.PaletteStyle(slot).Render(point))
		}

		builder.WriteString("\n")
	}

	builder.WriteString(shared.RenderDim(strings.Repeat(" ", yAxisWidth-1) + corner + strings.Repeat(horizontal, g.width)))
	builder.WriteString("\n")

	gap := max(1, g.width-len("0s")-len(maxXLabel))
	builder.WriteString(shared.RenderDim(strings.Repeat(" ", yAxisWidth) + "0s" + strings.Repeat(" ", gap) + maxXLabel))

	return builder.String()
}

func (g *grid) set(col, row, slot int) {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return
	}

	g.cells[row][col] = slot
}

func renderLegend(summary tracker.Summary) string {
	entries := make([]string, 0, len(summary.Classes))
	for _, class := range summary.Classes {
		entries = append(entries, shared.PaletteStyle(class.PaletteSlot).Render(shared.ChartPointSymbol()+" "+class.Label))
	}

	return strings.Join(entries, "  ")
}

// scale maps a 0..1 fraction onto 0..cells-1.
func scale(fraction float64, cells int) int {
	if math.IsNaN(fraction) {
		return 0
	}

	fraction = min(1, max(0, fraction))

	return int(math.Round(fraction * float64(cells-1)))
}
