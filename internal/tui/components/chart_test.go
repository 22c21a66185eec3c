package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0.5, "0.50"},
		{500, "500"},
		{2000, "2K"},
		{2500, "2.5K"},
		{100000, "1L"},
		{250000, "2.5L"},
		{10000000, "1Cr"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.v); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestBarChartFitsWidth(t *testing.T) {
	values := []float64{100, 0, 2500, 400, 1200, 0, 800}
	labels := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	out := BarChart(values, labels, lipgloss.Color("#3AA99F"), 60, 8)
	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d width %d exceeds 60", i, w)
		}
	}
}

func TestBarChartTooSmallFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2, 3}, nil, lipgloss.Color("#3AA99F"), 10, 2)
	if strings.Contains(out, "\n") {
		t.Errorf("expected single-line sparkline, got %q", out)
	}
}

func TestChartTargetLine(t *testing.T) {
	c := Chart{
		Values: []float64{100, 900, 300, 0},
		Labels: []string{"1", "2", "3", "4"},
		Color:  lipgloss.Color("#3AA99F"),
		Width:  40,
		Height: 8,
		Target: 500,
	}
	out := c.Render()
	if !strings.Contains(out, "╌") {
		t.Errorf("expected a dashed target line in:\n%s", out)
	}
	if strings.Contains(BarChart(c.Values, c.Labels, c.Color, 40, 8), "╌") {
		t.Error("BarChart without target drew a target line")
	}
}

func TestXAxisLabelsKeepsLast(t *testing.T) {
	labels := []string{"Jan", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	got := xAxisLabels(labels, 3, 29)
	if !strings.HasPrefix(got, "Jan") {
		t.Errorf("first label missing: %q", got)
	}
	if !strings.HasSuffix(got, "10") {
		t.Errorf("last label missing: %q", got)
	}
}
