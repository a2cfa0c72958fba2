package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4321, "-4,321"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUsedFraction(t *testing.T) {
	tests := []struct {
		spent, budget, want float64
	}{
		{0, 100, 0},
		{25, 100, 0.25},
		{150, 100, 1},
		{-5, 100, 0},
		{5, 0, 1},
		{0, 0, 0},
		{3, -10, 1},
	}
	for _, tt := range tests {
		if got := UsedFraction(tt.spent, tt.budget); got != tt.want {
			t.Fatalf("UsedFraction(%v, %v) = %v, want %v", tt.spent, tt.budget, got, tt.want)
		}
	}
}

func TestRenderTableAlignsUnicode(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Expense", "Amount"},
		Rows: [][]string{
			{"Ñoquis", "$4.00"},
			{"Taxi", "$12.00"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("table has %d lines, want 6:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Ñoquis") || !strings.Contains(out, "$12.00") {
		t.Fatalf("table missing cells:\n%s", out)
	}
}

func TestRenderTableWideRunesAndFooter(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Item", "Price"},
		Rows: [][]string{
			{"寿司", "$8.00"},
			{"Taxi", "$12.00"},
		},
		Footer: []string{"Total", "$20.00"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("table has %d lines, want 8:\n%s", len(lines), out)
	}
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Fatalf("line %d width = %d, want %d:\n%s", i, w, want, out)
		}
	}
	if !strings.Contains(lines[6], "Total") {
		t.Fatalf("footer line = %q", lines[6])
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Fatalf("RenderTable(empty) = %q, want empty", got)
	}
}
