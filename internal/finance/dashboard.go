package finance

import (
	"math"
	"time"

	"github.com/lachiem1/paycycle/internal/dateutil"
)

type LongTermProgress struct {
	TargetAmount      float64 `json:"targetAmount"`
	AccumulatedAmount float64 `json:"accumulatedAmount"`
	RemainingAmount   float64 `json:"remainingAmount"`
	Percentage        float64 `json:"percentage"`
	IsCompleted       bool    `json:"isCompleted"`
}

func ProgressOf(g LongTermGoal) LongTermProgress {
	pct := 0.0
	if g.TargetAmount > 0 {
		pct = math.Min(g.AccumulatedAmount/g.TargetAmount*100, 100)
	}
	return LongTermProgress{
		TargetAmount:      g.TargetAmount,
		AccumulatedAmount: g.AccumulatedAmount,
		RemainingAmount:   math.Max(g.TargetAmount-g.AccumulatedAmount, 0),
		Percentage:        math.Max(pct, 0),
		IsCompleted:       g.IsCompleted,
	}
}

type HistoryPoint struct {
	CycleDate    string  `json:"cycleDate"`
	Label        string  `json:"label"`
	SavedAmount  float64 `json:"savedAmount"`
	GoalAmount   float64 `json:"goalAmount"`
	GoalAchieved bool    `json:"goalAchieved"`
}

// HistoryChart maps archived cycles to chart rows in chronological order.
func HistoryChart(history []CycleHistoryEntry) []HistoryPoint {
	out := make([]HistoryPoint, 0, len(history))
	for _, h := range history {
		out = append(out, HistoryPoint{
			CycleDate:    h.CycleDate,
			Label:        CycleLabel(h.CycleDate),
			SavedAmount:  h.SavedAmount,
			GoalAmount:   h.GoalAmount,
			GoalAchieved: h.GoalAchieved,
		})
	}
	return out
}

// CycleLabel renders a cycle date as "Jan 2006", or returns it untouched when
// it cannot be parsed.
func CycleLabel(cycleDate string) string {
	t, ok := dateutil.ParseDateOnly(cycleDate)
	if !ok {
		return cycleDate
	}
	return t.Format("Jan 2006")
}

// Dashboard is everything the presentation layer renders for one "today".
type Dashboard struct {
	HasMissingData bool             `json:"hasMissingData"`
	Projection     *Projection      `json:"projection,omitempty"`
	RiskLevel      RiskLevel        `json:"riskLevel"`
	GoalAmount     float64          `json:"goalAmount"`
	LongTerm       LongTermProgress `json:"longTerm"`
	History        []HistoryPoint   `json:"history"`
	ExpenseGroups  []ExpenseGroup   `json:"expenseGroups"`
	State          State            `json:"-"`
}

// BuildDashboard derives the dashboard view of s. The projection is nil and
// the risk level reads danger while onboarding data is missing.
func BuildDashboard(s State, today time.Time) Dashboard {
	d := Dashboard{
		HasMissingData: s.HasMissingData(),
		RiskLevel:      RiskDanger,
		GoalAmount:     s.GoalAmount,
		LongTerm:       ProgressOf(s.LongTermGoal),
		History:        HistoryChart(s.CyclesHistory),
		ExpenseGroups:  GroupExpensesByDay(s.Expenses, today),
		State:          s,
	}
	if !d.HasMissingData {
		p := Project(s.ProjectionInput(), today)
		d.Projection = &p
		d.RiskLevel = p.RiskLevel
	}
	return d
}
