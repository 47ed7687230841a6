package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lachiem1/paycycle/internal/budget"
	"github.com/lachiem1/paycycle/internal/finance"
	"github.com/lachiem1/paycycle/internal/money"
)

type memoryRepo struct {
	state finance.State
}

func (r *memoryRepo) Load(context.Context) (finance.State, bool, error) {
	return r.state.Clone(), true, nil
}

func (r *memoryRepo) Save(_ context.Context, s finance.State) error {
	r.state = s.Clone()
	return nil
}

var testNow = time.Date(2026, time.June, 10, 9, 0, 0, 0, time.Local)

func newTestModel(t *testing.T) (model, *budget.Service) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := &memoryRepo{state: finance.State{
		CurrentBalance:   1000,
		NextSalaryDate:   "2026-06-20",
		NextSalaryAmount: 3000,
	}}
	svc := budget.NewService(repo, log, budget.WithClock(func() time.Time { return testNow }))
	require.NoError(t, svc.Load(context.Background()))

	m := New(svc, money.MustFormatter("pt-BR", "BRL")).(model)
	next, _ := m.Update(m.loadDashboardCmd()())
	return next.(model), svc
}

func press(t *testing.T, m model, key tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	return next.(model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelLoadsDashboard(t *testing.T) {
	m, _ := newTestModel(t)
	require.True(t, m.loaded)
	require.NotNil(t, m.dash.Projection)
	assert.Equal(t, 10, m.dash.Projection.DaysLeft)
	assert.NotEmpty(t, m.View())
}

func TestModelAddExpense(t *testing.T) {
	m, svc := newTestModel(t)

	m, _ = press(t, m, runes("a"))
	require.Equal(t, promptExpense, m.prompt)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, runes("12,50"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, promptNone, m.prompt)

	msg := cmd()
	require.IsType(t, mutationMsg{}, msg)
	require.NoError(t, msg.(mutationMsg).err)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	require.Len(t, st.Expenses, 1)
	assert.InDelta(t, 12.5, st.Expenses[0].Amount, 1e-9)
	assert.Equal(t, finance.Categories[(categoryIndex(finance.DefaultCategory)+1)%len(finance.Categories)], st.Expenses[0].Category)
}

func TestModelPromptRejectsGarbage(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("g"))
	m, _ = press(t, m, runes("abc"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, promptGoal, m.prompt)
	assert.NotEmpty(t, m.promptErr)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, promptNone, m.prompt)
}

func TestModelForceRolloverNeedsConfirmation(t *testing.T) {
	m, svc := newTestModel(t)

	m, _ = press(t, m, runes("r"))
	require.Equal(t, promptConfirmRollover, m.prompt)
	m, cmd := press(t, m, runes("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, promptNone, m.prompt)

	m, _ = press(t, m, runes("r"))
	_, cmd = press(t, m, runes("y"))
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(mutationMsg).err)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2026-07-20", st.NextSalaryDate)
	assert.Len(t, st.CyclesHistory, 1)
}

func TestModelRefreshClosesCycleOnPayDay(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	now := testNow
	repo := &memoryRepo{state: finance.State{
		CurrentBalance:   1000,
		NextSalaryDate:   "2026-06-20",
		NextSalaryAmount: 3000,
	}}
	svc := budget.NewService(repo, log, budget.WithClock(func() time.Time { return now }))
	require.NoError(t, svc.Load(context.Background()))
	m := New(svc, money.MustFormatter("pt-BR", "BRL")).(model)

	msg := m.refreshCmd()()
	assert.Equal(t, refreshedMsg{}, msg)

	now = time.Date(2026, time.June, 20, 0, 5, 0, 0, time.Local)
	msg = m.refreshCmd()()
	require.Equal(t, refreshedMsg{closed: 1}, msg)

	next, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.Contains(t, next.(model).commandText, "1 cycle(s) closed")
	assert.Equal(t, "2026-07-20", repo.state.NextSalaryDate)
}

func TestModelSettingsSave(t *testing.T) {
	m, svc := newTestModel(t)

	m, _ = press(t, m, runes("s"))
	require.Equal(t, screenSettings, m.screen)
	assert.Equal(t, "20260620", m.settingsDateDigits)
	assert.Equal(t, "300000", m.settingsSalaryDigits)

	for i := 0; i < 2; i++ {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m, _ = press(t, m, runes("25"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, runes("9"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(mutationMsg).err)

	st, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2026-06-25", st.NextSalaryDate)
	assert.InDelta(t, 30000.09, st.NextSalaryAmount, 1e-9)
}

func TestModelSettingsRejectsPastDate(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("s"))
	for i := 0; i < 8; i++ {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m, _ = press(t, m, runes("20260101"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.settingsErr, "past")
}

func TestValidateAndFormatDateDigits(t *testing.T) {
	got, err := validateAndFormatDateDigits("20260630", testNow, true)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-30", got)

	for _, bad := range []string{"2026063", "20261301", "20260231", "18991201"} {
		_, err := validateAndFormatDateDigits(bad, testNow, false)
		assert.Error(t, err, bad)
	}

	_, err = validateAndFormatDateDigits("20260601", testNow, false)
	assert.NoError(t, err)
}

func TestRenderBurndownLines(t *testing.T) {
	p := finance.Project(finance.ProjectionInput{
		CurrentBalance:   1000,
		NextSalaryDate:   "2026-06-20",
		NextSalaryAmount: 3000,
	}, testNow)

	lines := renderBurndownLines(p.DailyProjection, 80, money.MustFormatter("en-US", "USD"))
	require.Greater(t, len(lines), 3)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "●")
	assert.Contains(t, joined, "10 Jun")
	assert.Contains(t, joined, "19 Jun")

	empty := renderBurndownLines(nil, 80, money.MustFormatter("en-US", "USD"))
	assert.Len(t, empty, 2)
}

func TestBurndownRowClampsAboveAxis(t *testing.T) {
	assert.Equal(t, 0, burndownRow(100, 100, 6))
	assert.Equal(t, 5, burndownRow(0, 100, 6))
	assert.Equal(t, 5, burndownRow(-50, 100, 6))
}

func TestRenderBlockTitle(t *testing.T) {
	assert.Len(t, strings.Split(renderBlockTitle(), "\n"), 3)
}
