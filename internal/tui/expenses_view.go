package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lachiem1/paycycle/internal/finance"
)

// flattenGroups lists expenses in the order they are rendered, so the cursor
// can index them directly.
func flattenGroups(groups []finance.ExpenseGroup) []finance.Expense {
	out := make([]finance.Expense, 0)
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}

func (m model) renderExpenseList(layoutWidth int) string {
	titleStyle := lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorMuted)
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	selectedStyle := lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	prefixStyle := lipgloss.NewStyle().Foreground(colorCoral).Bold(true)

	lines := []string{titleStyle.Render(fmt.Sprintf("expenses this cycle (%d)", len(m.expenses)))}
	if len(m.expenses) == 0 {
		return strings.Join(append(lines, labelStyle.Render("nothing logged yet - press a to add one")), "\n")
	}

	visible := m.expenseVisibleRows()
	index := 0
	rendered := 0
	for _, g := range m.dash.ExpenseGroups {
		headerShown := false
		for _, e := range g.Items {
			i := index
			index++
			if i < m.offset || rendered >= visible {
				continue
			}
			if !headerShown {
				lines = append(lines, labelStyle.Render(fmt.Sprintf("%s  %s", g.Label, m.money.Format(g.Total))))
				headerShown = true
			}
			row := fmt.Sprintf("%-12s %14s  %s", e.Category, m.money.Format(e.Amount), expenseTime(e.Date))
			row = truncateDisplayWidth(row, max(10, layoutWidth-4))
			if i == m.cursor {
				lines = append(lines, prefixStyle.Render("> ")+selectedStyle.Render(row))
			} else {
				lines = append(lines, rowStyle.Render("  "+row))
			}
			rendered++
		}
	}
	if hidden := len(m.expenses) - m.offset - rendered; hidden > 0 {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("  ... %d more", hidden)))
	}
	return strings.Join(lines, "\n")
}

func expenseTime(raw string) string {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return t.Local().Format("15:04")
}

func truncateDisplayWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
