package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lachiem1/paycycle/internal/money"
)

const (
	settingsFocusDate = iota
	settingsFocusSalary
)

func renderSettingsTitle() string {
	raw := []string{
		"█▀█ ▄▀█ █ █   █▀▄ ▄▀█ █▄█",
		"█▀▀ █▀█  █    █▄▀ █▀█  █ ",
		"▀   ▀ ▀  ▀    ▀▀  ▀ ▀  ▀ ",
	}
	style := lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	rows := make([]string, 0, len(raw))
	for _, line := range raw {
		rows = append(rows, style.Render(line))
	}
	return strings.Join(rows, "\n")
}

func (m model) enterSettingsView() (tea.Model, tea.Cmd) {
	m.screen = screenSettings
	m.settingsErr = ""
	m.settingsFocus = settingsFocusDate
	m.settingsDateDigits = dateToDigits(m.dash.State.NextSalaryDate)
	m.settingsDateDirty = false
	m.settingsSalaryDigits = ""
	if m.dash.State.NextSalaryAmount > 0 {
		m.settingsSalaryDigits = strconv.FormatInt(int64(m.dash.State.NextSalaryAmount*100+0.5), 10)
	}
	return m, nil
}

func (m model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.screen = screenHome
		m.settingsErr = ""
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		if m.settingsFocus == settingsFocusDate {
			m.settingsFocus = settingsFocusSalary
		} else {
			m.settingsFocus = settingsFocusDate
		}
		return m, nil
	case tea.KeyBackspace:
		if m.settingsFocus == settingsFocusDate {
			if n := len(m.settingsDateDigits); n > 0 {
				m.settingsDateDigits = m.settingsDateDigits[:n-1]
				m.settingsDateDirty = true
			}
		} else if n := len(m.settingsSalaryDigits); n > 0 {
			m.settingsSalaryDigits = m.settingsSalaryDigits[:n-1]
		}
		return m, nil
	case tea.KeyEnter:
		return m.saveSettings()
	case tea.KeyRunes:
		digits := digitsOnly(string(msg.Runes))
		if m.settingsFocus == settingsFocusDate {
			m.settingsDateDigits = limitDigits(m.settingsDateDigits+digits, 8)
			m.settingsDateDirty = true
		} else {
			m.settingsSalaryDigits = limitDigits(strings.TrimLeft(m.settingsSalaryDigits+digits, "0"), 12)
		}
		return m, nil
	}
	return m, nil
}

func (m model) saveSettings() (tea.Model, tea.Cmd) {
	date, err := validateAndFormatDateDigits(m.settingsDateDigits, m.svc.Today(), m.settingsDateDirty)
	if err != nil {
		m.settingsErr = err.Error()
		m.settingsFocus = settingsFocusDate
		return m, nil
	}
	salary := money.ParseCents(m.settingsSalaryDigits)
	if salary <= 0 {
		m.settingsErr = "salary must be greater than 0"
		m.settingsFocus = settingsFocusSalary
		return m, nil
	}
	m.settingsErr = ""
	return m, m.mutateCmd("next pay "+date+" "+m.money.Format(salary), func(ctx context.Context) error {
		if err := m.svc.SetNextSalaryDate(ctx, date); err != nil {
			return err
		}
		return m.svc.SetNextSalaryAmount(ctx, salary)
	})
}

func dateToDigits(raw string) string {
	v := strings.TrimSpace(raw)
	if len(v) != 10 || v[4] != '-' || v[7] != '-' {
		return ""
	}
	digits := strings.ReplaceAll(v, "-", "")
	if len(digits) != 8 || digitsOnly(digits) != digits {
		return ""
	}
	return digits
}

// validateAndFormatDateDigits turns YYYYMMDD digits into a pay date. A newly
// typed date may not be before today; an untouched stored one may.
func validateAndFormatDateDigits(digits string, now time.Time, requireNotPast bool) (string, error) {
	if len(digits) != 8 {
		return "", fmt.Errorf("next pay date must be YYYY / MM / DD")
	}
	year, err := strconv.Atoi(digits[0:4])
	if err != nil || year < 1900 || year > 9999 {
		return "", fmt.Errorf("year must be 1900-9999")
	}
	month, err := strconv.Atoi(digits[4:6])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("month must be 01-12")
	}
	day, err := strconv.Atoi(digits[6:8])
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("day must be 01-31")
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return "", fmt.Errorf("date is not valid in the calendar")
	}
	if requireNotPast {
		now = now.In(time.Local)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
		if date.Before(today) {
			return "", fmt.Errorf("date cannot be in the past")
		}
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, ch := range raw {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func limitDigits(raw string, maxLen int) string {
	if len(raw) > maxLen {
		return raw[:maxLen]
	}
	return raw
}

func renderDateMask(digits string) string {
	d := make([]rune, 8)
	for i := range d {
		d[i] = '_'
	}
	for i, ch := range digits {
		if i >= len(d) {
			break
		}
		d[i] = ch
	}

	numStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB")).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(colorMuted)
	part := func(start, end int) string { return numStyle.Render(string(d[start:end])) }
	return part(0, 4) + sepStyle.Render(" / ") + part(4, 6) + sepStyle.Render(" / ") + part(6, 8)
}

func (m model) renderSettingsScreen(layoutWidth int) string {
	title := lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, renderSettingsTitle())

	field := func(label, value string, focused bool, border lipgloss.Color) string {
		labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
		if focused {
			labelStyle = labelStyle.Bold(true)
			if border == "" {
				border = colorYellow
			}
		}
		if border == "" {
			border = lipgloss.Color("#FFFFFF")
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Render(value)
		return labelStyle.Render(label) + "\n" + box
	}

	dateBorder := lipgloss.Color("")
	dateWarning := ""
	if len(m.settingsDateDigits) == 8 {
		if _, err := validateAndFormatDateDigits(m.settingsDateDigits, m.svc.Today(), m.settingsDateDirty); err != nil {
			dateBorder = colorRed
			dateWarning = err.Error()
		} else {
			dateBorder = colorGreen
		}
	}

	salary := m.money.Format(money.ParseCents(m.settingsSalaryDigits))
	content := []string{
		field("next pay date", renderDateMask(m.settingsDateDigits), m.settingsFocus == settingsFocusDate, dateBorder),
		"",
		field("salary", salary, m.settingsFocus == settingsFocusSalary, ""),
	}

	warningText := strings.TrimSpace(m.settingsErr)
	if warningText == "" {
		warningText = dateWarning
	}
	if warningText != "" {
		content = append(content, "", lipgloss.NewStyle().Foreground(colorRed).Render(warningText))
	}

	panel := lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(content, "\n"))
	panel = lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, panel)
	return strings.Join([]string{title, "", panel}, "\n")
}
