package components

import (
	"fmt"
	"strings"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the newest width values of data as block characters,
// right aligned. With ceiling > 0 the scale runs from 0 to ceiling;
// otherwise it spans the data's own range.
func Sparkline(data []float64, width int, ceiling float64) string {
	if width <= 0 {
		return ""
	}
	if len(data) == 0 {
		return strings.Repeat(" ", width)
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	lo, hi := 0.0, ceiling
	if ceiling <= 0 {
		lo, hi = data[0], data[0]
		for _, v := range data {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(data)))
	spread := hi - lo
	for _, v := range data {
		if spread == 0 {
			sb.WriteRune(blocks[3])
			continue
		}
		idx := int((v - lo) / spread * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		sb.WriteRune(blocks[idx])
	}
	return sb.String()
}

// FormatPercent renders a usage value for axis labels and tables.
func FormatPercent(v float64) string {
	if v >= 99.95 {
		return "100%"
	}
	return fmt.Sprintf("%.1f%%", v)
}
