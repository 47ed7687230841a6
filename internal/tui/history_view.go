package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderHistoryTitle() string {
	raw := []string{
		"█ █ █ █▀ ▀█▀ █▀█ █▀█ █▄█",
		"█▀█ █ ▄█  █  █▄█ █▀▄  █ ",
		"▀ ▀ ▀ ▀▀  ▀  ▀▀▀ ▀ ▀  ▀ ",
	}
	style := lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	rows := make([]string, 0, len(raw))
	for _, line := range raw {
		rows = append(rows, style.Render(line))
	}
	return strings.Join(rows, "\n")
}

// renderHistoryScreen shows savings per closed cycle as horizontal bars,
// newest first.
func (m model) renderHistoryScreen(layoutWidth int) string {
	title := lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, renderHistoryTitle())
	labelStyle := lipgloss.NewStyle().Foreground(colorMuted)

	history := m.dash.History
	if len(history) == 0 {
		return strings.Join([]string{title, "", labelStyle.Render("no closed cycles yet")}, "\n")
	}

	peak := 0.0
	labelWidth := 1
	for _, h := range history {
		peak = math.Max(peak, math.Abs(h.SavedAmount))
		labelWidth = max(labelWidth, lipgloss.Width(h.Label))
	}
	amountWidth := 1
	for _, h := range history {
		amountWidth = max(amountWidth, lipgloss.Width(m.money.Format(h.SavedAmount)))
	}
	barWidth := max(8, layoutWidth-labelWidth-amountWidth-8)

	okStyle := lipgloss.NewStyle().Foreground(colorGreen)
	missStyle := lipgloss.NewStyle().Foreground(colorRed)

	lines := []string{title, ""}
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(h.SavedAmount) / peak * float64(barWidth)))
		}
		style := okStyle
		mark := "✓"
		if !h.GoalAchieved {
			style = missStyle
			mark = "✗"
		}
		bar := style.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barWidth-n)
		lines = append(lines, fmt.Sprintf(
			"%s %s %s %s",
			labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, h.Label)),
			bar,
			fmt.Sprintf("%*s", amountWidth, m.money.Format(h.SavedAmount)),
			style.Render(mark),
		))
	}
	lines = append(lines, "", m.renderLongTerm())
	return strings.Join(lines, "\n")
}
