package components

import (
	"fmt"
	"math"
	"strings"
)

// chartBlocks are block characters from empty to full, used for rendering
// the chart area. Index 0 is empty (space), index 8 is full block.
var chartBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// chartLabelWidth is the width of the Y-axis label column.
const chartLabelWidth = 7

// RenderChart renders a block chart of percentages on a fixed 0-100 axis.
// data: values to plot (oldest to newest, left to right)
// width: total width in characters (including Y-axis labels)
// height: total height in characters (including title row)
func RenderChart(data []float64, width, height int, title string) string {
	width = max(width, 10)
	height = max(height, 4)

	chartWidth := max(width-chartLabelWidth, 2)
	chartHeight := max(height-1, 2)

	lines := []string{centerText(title, width)}

	if len(data) > chartWidth {
		data = data[len(data)-chartWidth:]
	}
	padding := strings.Repeat(" ", chartWidth-len(data))

	const top = 100.0
	for row := chartHeight - 1; row >= 0; row-- {
		cellBottom := top * float64(row) / float64(chartHeight)
		cellTop := top * float64(row+1) / float64(chartHeight)

		label := strings.Repeat(" ", chartLabelWidth)
		if row == chartHeight-1 || row == 0 || row == chartHeight/2 {
			label = fmt.Sprintf("%5s ┤", FormatPercentShort(cellTop))
		}

		var sb strings.Builder
		sb.WriteString(label)
		sb.WriteString(padding)
		for _, v := range data {
			switch {
			case v <= cellBottom:
				sb.WriteRune(' ')
			case v >= cellTop:
				sb.WriteRune(chartBlocks[8])
			default:
				fraction := (v - cellBottom) / (cellTop - cellBottom)
				idx := int(math.Round(fraction * 8))
				sb.WriteRune(chartBlocks[max(0, min(idx, 8))])
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// FormatPercentShort renders an axis value without decimals.
func FormatPercentShort(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// centerText centers s within the given width, padding with spaces.
func centerText(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(s)-pad)
}
