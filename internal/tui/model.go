package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lachiem1/paycycle/internal/budget"
	"github.com/lachiem1/paycycle/internal/finance"
	"github.com/lachiem1/paycycle/internal/money"
)

type dashboardMsg struct {
	dash finance.Dashboard
	err  error
}

type mutationMsg struct {
	feedback string
	err      error
}

type clearCommandTextMsg struct {
	id int
}

// refreshTickMsg re-checks the cycle so a dashboard left open across pay day
// still rolls over.
type refreshTickMsg struct{}

type refreshedMsg struct {
	closed int
	err    error
}

const refreshInterval = time.Minute

type screenMode int

const (
	screenHome screenMode = iota
	screenSettings
	screenHistory
)

type promptMode int

const (
	promptNone promptMode = iota
	promptExpense
	promptGoal
	promptBalance
	promptLongTerm
	promptConfirmRollover
	promptConfirmDelete
)

const (
	colorCoral  = lipgloss.Color("#F47A60")
	colorYellow = lipgloss.Color("#FFD54A")
	colorBlue   = lipgloss.Color("#87CEEB")
	colorGreen  = lipgloss.Color("#5CCB76")
	colorRed    = lipgloss.Color("#F15B5B")
	colorMuted  = lipgloss.Color("#9CA3AF")
	colorText   = lipgloss.Color("#D4CDE9")
)

type model struct {
	svc   *budget.Service
	money *money.Formatter

	width  int
	height int

	screen    screenMode
	dash      finance.Dashboard
	loaded    bool
	dashErr   string
	expenses  []finance.Expense
	cursor    int
	offset    int
	prompt    promptMode
	promptErr string
	input     textinput.Model
	category  int
	cycleBar  progress.Model
	goalBar   progress.Model

	commandText   string
	commandTextID int

	settingsDateDigits   string
	settingsSalaryDigits string
	settingsFocus        int
	settingsDateDirty    bool
	settingsErr          string

	quitting bool
}

// New returns the dashboard program model. svc must already be loaded.
func New(svc *budget.Service, formatter *money.Formatter) tea.Model {
	input := textinput.New()
	input.Prompt = formatter.Symbol() + " "
	input.Placeholder = "0,00"
	input.Width = 20
	input.CharLimit = 16

	return model{
		svc:      svc,
		money:    formatter,
		screen:   screenHome,
		input:    input,
		category: categoryIndex(finance.DefaultCategory),
		cycleBar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		goalBar:  progress.New(progress.WithGradient(string(colorYellow), string(colorGreen)), progress.WithoutPercentage()),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadDashboardCmd(), scheduleRefresh())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := max(20, min(60, msg.Width-30))
		m.cycleBar.Width = barWidth
		m.goalBar.Width = barWidth
		return m, nil

	case dashboardMsg:
		if msg.err != nil {
			m.dashErr = msg.err.Error()
			return m, nil
		}
		m.dashErr = ""
		m.loaded = true
		m.dash = msg.dash
		m.expenses = flattenGroups(msg.dash.ExpenseGroups)
		m.clampCursor()
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			if m.screen == screenSettings {
				m.settingsErr = msg.err.Error()
				return m, nil
			}
			return m.withCommandFeedback("error: " + msg.err.Error())
		}
		if m.screen == screenSettings {
			m.screen = screenHome
			m.settingsErr = ""
		}
		next, cmd := m.withCommandFeedback(msg.feedback)
		return next, tea.Batch(cmd, m.loadDashboardCmd())

	case refreshTickMsg:
		return m, tea.Batch(m.refreshCmd(), scheduleRefresh())

	case refreshedMsg:
		if msg.err != nil {
			m.dashErr = msg.err.Error()
			return m, nil
		}
		if msg.closed == 0 {
			return m, m.loadDashboardCmd()
		}
		next, cmd := m.withCommandFeedback(fmt.Sprintf("pay day passed, %d cycle(s) closed", msg.closed))
		return next, tea.Batch(cmd, m.loadDashboardCmd())

	case clearCommandTextMsg:
		if msg.id == m.commandTextID {
			m.commandText = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		switch m.screen {
		case screenSettings:
			return m.updateSettings(msg)
		case screenHistory:
			return m.updateHistory(msg)
		default:
			return m.updateHome(msg)
		}
	}

	return m, nil
}

func (m model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureExpenseScrollWindow()
	case "down", "j":
		if m.cursor < len(m.expenses)-1 {
			m.cursor++
		}
		m.ensureExpenseScrollWindow()
	case "a":
		return m.openPrompt(promptExpense)
	case "g":
		return m.openPrompt(promptGoal)
	case "b":
		return m.openPrompt(promptBalance)
	case "l":
		return m.openPrompt(promptLongTerm)
	case "d":
		if len(m.expenses) == 0 {
			return m.withCommandFeedback("no expense selected")
		}
		m.prompt = promptConfirmDelete
	case "r":
		m.prompt = promptConfirmRollover
	case "s":
		return m.enterSettingsView()
	case "h":
		m.screen = screenHistory
	}
	return m, nil
}

func (m model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "esc", "h":
		m.screen = screenHome
	}
	return m, nil
}

func (m model) openPrompt(mode promptMode) (tea.Model, tea.Cmd) {
	m.prompt = mode
	m.promptErr = ""
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

func (m model) closePrompt() model {
	m.prompt = promptNone
	m.promptErr = ""
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.prompt {
	case promptConfirmRollover:
		switch msg.String() {
		case "y", "enter":
			m = m.closePrompt()
			return m, m.forceRolloverCmd()
		case "n", "esc", "q":
			return m.closePrompt(), nil
		}
		return m, nil

	case promptConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			m = m.closePrompt()
			if m.cursor < 0 || m.cursor >= len(m.expenses) {
				return m, nil
			}
			id := m.expenses[m.cursor].ID
			return m, m.mutateCmd("expense removed", func(ctx context.Context) error {
				return m.svc.RemoveExpense(ctx, id)
			})
		case "n", "esc", "q":
			return m.closePrompt(), nil
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		return m.closePrompt(), nil
	case tea.KeyTab:
		if m.prompt == promptExpense {
			m.category = (m.category + 1) % len(finance.Categories)
		}
		return m, nil
	case tea.KeyShiftTab:
		if m.prompt == promptExpense {
			m.category = (m.category - 1 + len(finance.Categories)) % len(finance.Categories)
		}
		return m, nil
	case tea.KeyEnter:
		return m.submitPrompt()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submitPrompt() (tea.Model, tea.Cmd) {
	amount, err := money.Parse(m.input.Value())
	if err != nil {
		m.promptErr = err.Error()
		return m, nil
	}

	mode := m.prompt
	category := finance.Categories[m.category]
	m = m.closePrompt()

	switch mode {
	case promptExpense:
		return m, m.mutateCmd("expense added: "+m.money.Format(amount)+" "+category, func(ctx context.Context) error {
			_, err := m.svc.AddExpense(ctx, amount, category)
			return err
		})
	case promptGoal:
		return m, m.mutateCmd("goal set to "+m.money.Format(amount), func(ctx context.Context) error {
			return m.svc.SetGoal(ctx, amount)
		})
	case promptBalance:
		return m, m.mutateCmd("balance set to "+m.money.Format(amount), func(ctx context.Context) error {
			return m.svc.SetBalance(ctx, amount)
		})
	case promptLongTerm:
		return m, m.mutateCmd("long-term goal set to "+m.money.Format(amount), func(ctx context.Context) error {
			return m.svc.SetLongTermGoal(ctx, amount)
		})
	}
	return m, nil
}

func (m model) loadDashboardCmd() tea.Cmd {
	return func() tea.Msg {
		if m.svc == nil {
			return dashboardMsg{err: errors.New("budget service is not initialized")}
		}
		dash, err := m.svc.Dashboard()
		return dashboardMsg{dash: dash, err: err}
	}
}

func (m model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		if m.svc == nil {
			return refreshedMsg{err: errors.New("budget service is not initialized")}
		}
		closed, err := m.svc.Refresh(context.Background())
		return refreshedMsg{closed: closed, err: err}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m model) mutateCmd(feedback string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if m.svc == nil {
			return mutationMsg{err: errors.New("budget service is not initialized")}
		}
		if err := fn(context.Background()); err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{feedback: feedback}
	}
}

func (m model) forceRolloverCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := m.svc.ForceRollover(context.Background())
		if err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{feedback: "cycle closed, next pay date " + st.NextSalaryDate}
	}
}

func (m model) withCommandFeedback(text string) (tea.Model, tea.Cmd) {
	m.commandText = text
	m.commandTextID++
	id := m.commandTextID
	return m, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearCommandTextMsg{id: id}
	})
}

func (m *model) clampCursor() {
	if m.cursor >= len(m.expenses) {
		m.cursor = max(0, len(m.expenses)-1)
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureExpenseScrollWindow()
}

func (m *model) ensureExpenseScrollWindow() {
	visible := m.expenseVisibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m model) expenseVisibleRows() int {
	if m.height <= 0 {
		return 6
	}
	return max(3, min(10, m.height-34))
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCoral).
		Padding(0, 1)
	contentStyle := lipgloss.NewStyle().Padding(1, 1, 0, 1)
	if m.width > 0 {
		frame = frame.Width(max(1, m.width-frame.GetHorizontalBorderSize()))
	}
	layoutWidth := max(40, m.width-frame.GetHorizontalFrameSize()-contentStyle.GetHorizontalFrameSize())

	var body string
	switch m.screen {
	case screenSettings:
		body = m.renderSettingsScreen(layoutWidth)
	case screenHistory:
		body = m.renderHistoryScreen(layoutWidth)
	default:
		body = m.renderHomeScreen(layoutWidth)
	}

	lines := []string{body}
	if prompt := m.renderPrompt(); prompt != "" {
		lines = append(lines, "", prompt)
	}
	if strings.TrimSpace(m.commandText) != "" {
		messageArea := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6CBFE6")).
			Padding(0, 1).
			Foreground(colorText).
			Render(m.commandText)
		lines = append(lines, "", lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, messageArea))
	}
	lines = append(lines, "", m.renderKeyHints(layoutWidth))

	return frame.Render(contentStyle.Render(strings.Join(lines, "\n")))
}

func (m model) renderHomeScreen(layoutWidth int) string {
	title := lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, renderBlockTitle())
	labelStyle := lipgloss.NewStyle().Foreground(colorMuted)

	if m.dashErr != "" {
		return strings.Join([]string{title, "", lipgloss.NewStyle().Foreground(colorRed).Render(m.dashErr)}, "\n")
	}
	if !m.loaded {
		return strings.Join([]string{title, "", labelStyle.Render("loading...")}, "\n")
	}

	sections := []string{title, ""}
	if m.dash.HasMissingData || m.dash.Projection == nil {
		sections = append(sections,
			labelStyle.Render("balance, next pay date and salary are needed for a projection."),
			labelStyle.Render("press b to set the balance and s to set the pay date and salary."),
		)
	} else {
		sections = append(sections, m.renderSummary(*m.dash.Projection, layoutWidth), "")
		sections = append(sections, renderBurndownLines(m.dash.Projection.DailyProjection, layoutWidth, m.money)...)
	}

	sections = append(sections, "", m.renderLongTerm())
	sections = append(sections, "", m.renderExpenseList(layoutWidth))
	return strings.Join(sections, "\n")
}

func (m model) renderSummary(p finance.Projection, layoutWidth int) string {
	labelStyle := lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	risk := riskStyle(p.RiskLevel)

	card := func(label, value string, style lipgloss.Style) string {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Padding(0, 1).
			Render(labelStyle.Render(label) + "\n" + style.Render(value))
	}

	state := m.dash.State
	budgetValue := m.money.Format(p.DailyBudget) + "/day"
	if !p.Achievable {
		budgetValue = "goal out of reach"
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("balance", m.money.Format(state.CurrentBalance), valueStyle), " ",
		card("daily budget", budgetValue, risk), " ",
		card("days left", fmt.Sprintf("%d", p.DaysLeft), valueStyle), " ",
		card("risk", strings.ToUpper(string(p.RiskLevel)), risk),
	)

	rows := []string{lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, cards), ""}
	rows = append(rows, labelStyle.Render(fmt.Sprintf(
		"cycle day %d of %d  |  pay date %s",
		p.DaysPassed, p.TotalCycleDays, state.NextSalaryDate,
	)))
	rows = append(rows, m.cycleBar.ViewAs(p.ProgressPercentage/100))
	rows = append(rows, "")
	rows = append(rows, labelStyle.Render(fmt.Sprintf(
		"spent %s  |  remaining %s  |  goal %s",
		m.money.Format(p.TotalExpenses),
		m.money.Format(p.RemainingBalance),
		m.money.Format(m.dash.GoalAmount),
	)))
	after := labelStyle.Render(fmt.Sprintf(
		"before salary %s  |  after salary %s",
		m.money.Format(p.ProjectedBalanceBeforeSalary),
		m.money.Format(p.ProjectedBalanceAfterSalary),
	))
	if p.IsDeficit {
		after += "  " + lipgloss.NewStyle().Foreground(colorRed).Bold(true).Render("nothing left to spend")
	}
	rows = append(rows, after)
	return strings.Join(rows, "\n")
}

func (m model) renderLongTerm() string {
	labelStyle := lipgloss.NewStyle().Foreground(colorMuted)
	lt := m.dash.LongTerm
	if lt.TargetAmount <= 0 {
		return labelStyle.Render("long-term goal: not set (press l)")
	}
	line := fmt.Sprintf(
		"long-term goal: %s / %s",
		m.money.Format(lt.AccumulatedAmount),
		m.money.Format(lt.TargetAmount),
	)
	if lt.IsCompleted {
		line += "  " + lipgloss.NewStyle().Foreground(colorGreen).Bold(true).Render("completed")
	} else {
		line += fmt.Sprintf("  (%s to go)", m.money.Format(lt.RemainingAmount))
	}
	return labelStyle.Render(line) + "\n" + m.goalBar.ViewAs(lt.Percentage/100)
}

func (m model) renderPrompt() string {
	labelStyle := lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(colorMuted)

	var label, hint string
	switch m.prompt {
	case promptNone:
		return ""
	case promptConfirmRollover:
		return labelStyle.Render("close the current cycle now? (y/n)")
	case promptConfirmDelete:
		if m.cursor >= 0 && m.cursor < len(m.expenses) {
			e := m.expenses[m.cursor]
			return labelStyle.Render(fmt.Sprintf("remove %s %s? (y/n)", m.money.Format(e.Amount), e.Category))
		}
		return ""
	case promptExpense:
		label = "new expense"
		hint = "tab category: " + finance.Categories[m.category]
	case promptGoal:
		label = "goal for this cycle"
		hint = "0 clears the goal"
	case promptBalance:
		label = "current balance"
	case promptLongTerm:
		label = "long-term goal target"
	}

	lines := []string{labelStyle.Render(label), m.input.View()}
	if hint != "" {
		lines = append(lines, hintStyle.Render(hint+"  enter save  esc cancel"))
	} else {
		lines = append(lines, hintStyle.Render("enter save  esc cancel"))
	}
	if m.promptErr != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorRed).Render(m.promptErr))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6CBFE6")).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (m model) renderKeyHints(layoutWidth int) string {
	var hints string
	switch m.screen {
	case screenSettings:
		hints = "tab switch field  enter save  esc back"
	case screenHistory:
		hints = "esc back  q quit"
	default:
		hints = "a add  d delete  g goal  b balance  l long-term  s pay  h history  r rollover  q quit"
	}
	return lipgloss.NewStyle().
		Foreground(colorMuted).
		Width(layoutWidth).
		Align(lipgloss.Center).
		Render(hints)
}

func riskStyle(level finance.RiskLevel) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch level {
	case finance.RiskSafe:
		return style.Foreground(colorGreen)
	case finance.RiskWarning:
		return style.Foreground(colorYellow)
	default:
		return style.Foreground(colorRed)
	}
}

func categoryIndex(category string) int {
	for i, c := range finance.Categories {
		if c == category {
			return i
		}
	}
	return 0
}

func renderBlockTitle() string {
	glyphs := map[rune][3]string{
		'A': {"▄▀█", "█▀█", "▀ ▀"},
		'C': {"█▀▀", "█▄▄", "▀▀▀"},
		'E': {"█▀▀", "█▀▀", "▀▀▀"},
		'L': {"█  ", "█▄▄", "▀▀▀"},
		'P': {"█▀█", "█▀▀", "▀  "},
		'Y': {"█ █", " █ ", " ▀ "},
	}
	coral := lipgloss.NewStyle().Foreground(colorCoral).Bold(true)
	yellow := lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	// Letters alternate coral/yellow.
	lines := [3][]string{}
	i := 0
	for _, ch := range "PAYCYCLE" {
		g, ok := glyphs[ch]
		if !ok {
			continue
		}
		style := coral
		if i%2 == 1 {
			style = yellow
		}
		for row := range lines {
			lines[row] = append(lines[row], style.Render(g[row]))
		}
		i++
	}
	out := make([]string, 0, len(lines))
	for _, row := range lines {
		out = append(out, strings.Join(row, " "))
	}
	return strings.Join(out, "\n")
}
