// Package finance holds the budgeting data model and the pure calculations
// over it: the projection of the open pay cycle and the rollover of elapsed
// cycles into history. Nothing here performs I/O or returns errors; malformed
// input degrades to safe defaults.
package finance

import (
	"math"
	"strings"
)

// Expense is a single spend logged against the open cycle.
type Expense struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
	Category string  `json:"category,omitempty"`
}

// LongTermGoal accumulates positive savings across cycles until the target is met.
type LongTermGoal struct {
	TargetAmount      float64 `json:"targetAmount"`
	AccumulatedAmount float64 `json:"accumulatedAmount"`
	IsCompleted       bool    `json:"isCompleted"`
}

// WithTarget sets a new target and recomputes completion against what has
// already been accumulated.
func (g LongTermGoal) WithTarget(target float64) LongTermGoal {
	g.TargetAmount = math.Max(sanitize(target), 0)
	g.IsCompleted = g.TargetAmount > 0 && g.AccumulatedAmount >= g.TargetAmount
	return g
}

// CycleHistoryEntry is an archived cycle. CycleDate is the cycle's pay date.
type CycleHistoryEntry struct {
	CycleDate     string  `json:"cycleDate"`
	Salary        float64 `json:"salary"`
	TotalExpenses float64 `json:"totalExpenses"`
	SavedAmount   float64 `json:"savedAmount"`
	GoalAmount    float64 `json:"goalAmount"`
	GoalAchieved  bool    `json:"goalAchieved"`
}

// State is the root aggregate and the only unit of persistence. Expenses and
// GoalAmount always belong to the cycle ending on NextSalaryDate.
type State struct {
	CurrentBalance   float64             `json:"currentBalance"`
	NextSalaryDate   string              `json:"nextSalaryDate"`
	NextSalaryAmount float64             `json:"nextSalaryAmount"`
	GoalAmount       float64             `json:"goalAmount"`
	LongTermGoal     LongTermGoal        `json:"longTermGoal"`
	Expenses         []Expense           `json:"expenses"`
	CyclesHistory    []CycleHistoryEntry `json:"cyclesHistory"`
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	out := s
	out.Expenses = append([]Expense(nil), s.Expenses...)
	out.CyclesHistory = append([]CycleHistoryEntry(nil), s.CyclesHistory...)
	if out.Expenses == nil {
		out.Expenses = []Expense{}
	}
	if out.CyclesHistory == nil {
		out.CyclesHistory = []CycleHistoryEntry{}
	}
	return out
}

// HasMissingData reports whether onboarding is incomplete. Callers must not
// show a projection in that case.
func (s State) HasMissingData() bool {
	return s.CurrentBalance <= 0 || strings.TrimSpace(s.NextSalaryDate) == "" || s.NextSalaryAmount <= 0
}

// ProjectionInput extracts the facts the projection reads.
func (s State) ProjectionInput() ProjectionInput {
	return ProjectionInput{
		CurrentBalance:   s.CurrentBalance,
		NextSalaryDate:   s.NextSalaryDate,
		NextSalaryAmount: s.NextSalaryAmount,
		GoalAmount:       s.GoalAmount,
		Expenses:         s.Expenses,
	}
}

// TotalExpenses sums expense amounts, counting non-finite amounts as zero.
func TotalExpenses(expenses []Expense) float64 {
	total := 0.0
	for _, e := range expenses {
		total += sanitize(e.Amount)
	}
	return total
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
