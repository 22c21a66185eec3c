package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var (
	sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	// partial fills for the top cell of a bar, index = eighths filled
	eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := maxOf(values)
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// Chart is a vertical bar chart with a labelled Y axis. Values are plotted
// left to right; Labels, when set, must match Values in length.
type Chart struct {
	Values []float64
	Labels []string
	Color  lipgloss.Color
	Width  int
	Height int

	// Target draws a dashed line at this value when positive, e.g. the
	// daily budget. Bars above it are drawn in the warning colour.
	Target float64
}

// BarChart renders values without a target line.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	return Chart{Values: values, Labels: labels, Color: color, Width: width, Height: height}.Render()
}

// yScale maps values onto chart rows.
type yScale struct {
	step        float64 // value per tick
	ceiling     float64 // value at the top row
	rows        int     // total plot rows
	rowsPerTick int
	labelW      int
}

func newYScale(peak float64, height int) yScale {
	if peak <= 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	maxTicks := max(height/2, 2)
	for math.Ceil(peak/step) > float64(maxTicks) {
		step *= 2
	}
	ticks := max(int(math.Ceil(peak/step)), 1)
	perTick := max(height/ticks, 2)

	ceiling := float64(ticks) * step
	return yScale{
		step:        step,
		ceiling:     ceiling,
		rows:        perTick * ticks,
		rowsPerTick: perTick,
		labelW:      max(len(formatChartLabel(ceiling))+1, 4),
	}
}

// label returns the tick label for row, or "" between ticks.
func (s yScale) label(row int) string {
	if row%s.rowsPerTick != 0 {
		return ""
	}
	return formatChartLabel(s.step * float64(row/s.rowsPerTick))
}

// bounds returns the value range covered by row (1 = bottom).
func (s yScale) bounds(row int) (lo, hi float64) {
	return s.ceiling * float64(row-1) / float64(s.rows), s.ceiling * float64(row) / float64(s.rows)
}

// downsample picks evenly spaced points so n bars of width 2 fit plotW.
func downsample(values []float64, labels []string, plotW int) ([]float64, []string) {
	n := len(values)
	keep := max((plotW+1)/3, 2)
	if keep >= n {
		return values, labels
	}
	vs := make([]float64, keep)
	var ls []string
	if len(labels) == n {
		ls = make([]string, keep)
	}
	for i := range vs {
		src := i * (n - 1) / (keep - 1)
		vs[i] = values[src]
		if ls != nil {
			ls[i] = labels[src]
		}
	}
	return vs, ls
}

// Render draws the chart, falling back to a sparkline when the area is too
// small for axes.
func (c Chart) Render() string {
	if len(c.Values) == 0 {
		return ""
	}
	if c.Width < 15 || c.Height < 3 {
		return Sparkline(c.Values, c.Color)
	}
	t := theme.Active

	scale := newYScale(math.Max(maxOf(c.Values), c.Target), c.Height)
	plotW := max(c.Width-scale.labelW-1, 5)

	values, labels := c.Values, c.Labels
	gap := 1
	barW := plotW
	if n := len(values); n > 1 {
		barW = (plotW - (n - 1)) / n
		if barW < 2 {
			values, labels = downsample(values, labels, plotW)
			barW = 2
		}
	} else {
		gap = 0
	}
	barW = min(barW, 6)
	n := len(values)
	axisLen := n*barW + max(0, n-1)*gap

	surface := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	targetStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	overStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	targetRow := 0
	if c.Target > 0 {
		targetRow = max(int(math.Round(c.Target/scale.ceiling*float64(scale.rows))), 1)
	}

	var b strings.Builder
	for row := scale.rows; row >= 1; row-- {
		lo, hi := scale.bounds(row)

		barStyle := lipgloss.NewStyle().Foreground(c.gradient(float64(row) / float64(scale.rows))).Background(t.Surface)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", scale.labelW, scale.label(row))))
		for i, v := range values {
			if i > 0 && gap > 0 {
				if row == targetRow {
					b.WriteString(targetStyle.Render("╌"))
				} else {
					b.WriteString(surface.Render(" "))
				}
			}

			style := barStyle
			if c.Target > 0 && v > c.Target {
				style = overStyle
			}
			switch {
			case v >= hi:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > lo:
				idx := min(max(int((v-lo)/(hi-lo)*8), 1), 8)
				b.WriteString(style.Render(strings.Repeat(string(eighths[idx]), barW)))
			case row == targetRow:
				b.WriteString(targetStyle.Render(strings.Repeat("╌", barW)))
			default:
				b.WriteString(surface.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", scale.labelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(surface.Render(strings.Repeat(" ", scale.labelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// gradient picks the bar colour for a row at relative height h (0..1).
func (c Chart) gradient(h float64) lipgloss.Color {
	t := theme.Active
	switch {
	case h > 0.8:
		return t.AccentBright
	case h > 0.5:
		return c.Color
	default:
		return t.Accent
	}
}

// xAxisLabels places labels under their bars, skipping any that would
// collide. The last label is always shown when it fits.
func xAxisLabels(labels []string, pitch, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	n := len(labels)
	step := max(1, (n*8)/(axisLen+1))

	place := func(pos int, lbl string, after int) int {
		r := []rune(lbl)
		if pos+len(r) > axisLen {
			pos = axisLen - len(r)
		}
		if pos < 0 || pos <= after {
			return after
		}
		copy(buf[pos:], r)
		return pos + len(r)
	}

	lastEnd := -1
	for i := 0; i < n; i += step {
		lastEnd = place(i*pitch, labels[i], lastEnd)
	}
	if n > 1 && (n-1)%step != 0 {
		place((n-1)*pitch, labels[n-1], lastEnd)
	}
	return strings.TrimRight(string(buf), " ")
}

func maxOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	return peak
}

// chartTickStep picks a 1/2/5 tick interval targeting about five ticks.
func chartTickStep(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel renders an axis value with Indian short units
// (K = thousand, L = lakh, Cr = crore).
func formatChartLabel(v float64) string {
	units := []struct {
		size   float64
		suffix string
	}{
		{1e7, "Cr"},
		{1e5, "L"},
		{1e3, "K"},
	}
	for _, u := range units {
		if v >= u.size {
			if v == math.Trunc(v/u.size)*u.size {
				return fmt.Sprintf("%.0f%s", v/u.size, u.suffix)
			}
			return fmt.Sprintf("%.1f%s", v/u.size, u.suffix)
		}
	}
	if v >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
