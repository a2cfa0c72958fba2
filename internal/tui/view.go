package tui

import (
	"fmt"
	"strings"

	"github.com/dailybudget/dailybudget/internal/cli"
	"github.com/dailybudget/dailybudget/internal/money"
	"github.com/dailybudget/dailybudget/internal/tui/components"
	"github.com/dailybudget/dailybudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	return fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  dailybudget needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
}

func (a App) viewMain() string {
	t := theme.Active
	cw := a.contentWidth()

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ dailybudget"))
	if a.day != "" {
		b.WriteString(dimStyle.Render("  " + a.day))
	}
	b.WriteString("\n")

	b.WriteString(components.InputCard("Today's budget", a.inputs[fieldBudget].View(), a.focus == fieldBudget, cw))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		components.InputCard("Expense name", a.inputs[fieldName].View(), a.focus == fieldName, widths[0]),
		components.InputCard("Expense amount", a.inputs[fieldAmount].View(), a.focus == fieldAmount, widths[1]),
	))
	b.WriteString("\n")

	b.WriteString(components.ContentCard(a.listTitle(), a.renderList(components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	b.WriteString(a.renderTotals(cw))
	b.WriteString("\n")

	b.WriteString(components.RenderStatusBar(cw, a.hints(), a.status, a.statusWarn))
	return b.String()
}

func (a App) listTitle() string {
	n := a.state.Len()
	if n <= listRows {
		return "Expenses"
	}
	end := a.listOffset + listRows
	if end > n {
		end = n
	}
	return fmt.Sprintf("Expenses (%d-%d of %d)", a.listOffset+1, end, n)
}

// renderList renders the visible window of the sorted expense list. Rows use
// the plain two-decimal dollar format; the totals below are locale-aware.
func (a App) renderList(innerW int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	entries := a.state.Entries()
	if len(entries) == 0 {
		return emptyStyle.Render("No expenses recorded")
	}

	var b strings.Builder
	b.WriteString(spread(headerStyle.Render("Item"), headerStyle.Render("Price"), innerW))

	end := a.listOffset + listRows
	if end > len(entries) {
		end = len(entries)
	}
	for _, e := range entries[a.listOffset:end] {
		amount := amountStyle.Render(money.Plain(e.Amount))
		name := nameStyle.Render(truncStr(e.Name, innerW-lipgloss.Width(amount)-2))
		b.WriteString("\n")
		b.WriteString(spread(name, amount, innerW))
	}
	return b.String()
}

// renderTotals renders the budget/spent/left cards and the usage bar.
func (a App) renderTotals(cw int) string {
	t := theme.Active

	available := a.state.Available()
	leftColor := t.Green
	if a.state.Exhausted() {
		leftColor = t.Red
	}

	row := components.MetricCardRow([]components.Metric{
		{Label: "Budget", Value: a.money.Format(a.state.DailyBudget)},
		{Label: "Spent", Value: a.money.Format(a.state.Total())},
		{Label: "Money left", Value: a.money.Format(available), Color: leftColor},
	}, cw)

	used := cli.UsedFraction(a.state.Total(), a.state.DailyBudget)
	return row + "\n" + components.BudgetBar(" Used", used, cw)
}

func (a App) hints() string {
	switch a.focus {
	case fieldBudget:
		return "[enter] next  [tab] next field  [esc] done"
	case fieldName, fieldAmount:
		return "[enter] add to list  [tab] next field  [esc] done"
	}
	return "[n] new expense  [b] budget  [j/k] scroll  [?] help  [q] quit"
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Form", []struct{ key, desc string }{
			{"n a", "Focus expense name"},
			{"b", "Focus budget"},
			{"tab ↑ ↓", "Next / previous field"},
			{"enter", "Add to list"},
			{"esc", "Done (release focus)"},
		}},
		{"List", []struct{ key, desc string }{
			{"j k", "Scroll expenses"},
			{"g G", "Top / bottom"},
		}},
		{"General", []struct{ key, desc string }{
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

// spread places left and right at the edges of a line of width w.
func spread(left, right string, w int) string {
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
