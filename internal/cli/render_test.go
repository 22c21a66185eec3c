package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestIsNumericCell(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"₹1,250.50", true},
		{"42.5%", true},
		{"+₹300", true},
		{"-12", true},
		{"1,204", true},
		{"2024-03-01", true},
		{"", false},
		{"-", false},
		{"Food & Dining", false},
		{"3f2a9c1b", false},
		{mutedStyle.Render("₹10"), true},
	}
	for _, tt := range tests {
		if got := isNumericCell(tt.cell); got != tt.want {
			t.Errorf("isNumericCell(%q) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Spent"},
		Rows: [][]string{
			{"Food & Dining", "₹450"},
			{"---"},
			{"Total", "₹12,450"},
		},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Errorf("line %d width %d, want %d", i, w, width)
		}
	}
	if !strings.Contains(lines[3], "    ₹450 ") {
		t.Errorf("amount not right-aligned: %q", lines[3])
	}
}

func TestRenderTableIgnoresShortWidths(t *testing.T) {
	out := RenderTable(Table{Headers: []string{"A", "B"}, Rows: [][]string{{"x", "1"}}, Widths: []int{3}})
	if out == "" {
		t.Fatal("empty table")
	}
}
