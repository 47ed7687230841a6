package finance

import (
	"time"

	"github.com/lachiem1/paycycle/internal/dateutil"
)

// MaxRolloverCycles bounds a single rollover so a corrupt or extreme stored
// date cannot spin forever. Hitting it leaves the state part-way advanced.
const MaxRolloverCycles = 120

// Patch is the result of a rollover. It replaces the listed fields wholesale.
type Patch struct {
	CyclesHistory  []CycleHistoryEntry
	LongTermGoal   LongTermGoal
	Expenses       []Expense
	GoalAmount     float64
	NextSalaryDate string
	// CyclesClosed is the number of history entries this patch appends.
	CyclesClosed int
}

// Apply returns a copy of s with the patch applied.
func (p Patch) Apply(s State) State {
	out := s.Clone()
	out.CyclesHistory = append([]CycleHistoryEntry(nil), p.CyclesHistory...)
	out.LongTermGoal = p.LongTermGoal
	out.Expenses = append([]Expense{}, p.Expenses...)
	out.GoalAmount = p.GoalAmount
	out.NextSalaryDate = p.NextSalaryDate
	return out
}

// Rollover closes every cycle whose pay date is on or before today. With force
// set it closes exactly one cycle even if it is not due yet. The boolean is
// false when there is nothing to do, including when the stored pay date is
// unparseable (malformed state is left alone rather than corrected).
func Rollover(s State, today time.Time, force bool) (Patch, bool) {
	active, ok := dateutil.ParseDateOnly(s.NextSalaryDate)
	if !ok {
		return Patch{}, false
	}
	today = dateutil.StartOfDay(today)
	if !force && today.Before(active) {
		return Patch{}, false
	}

	history := append([]CycleHistoryEntry(nil), s.CyclesHistory...)
	longTerm := s.LongTermGoal
	expenses := s.Expenses
	goal := sanitize(s.GoalAmount)
	salary := sanitize(s.NextSalaryAmount)

	closed := 0
	for {
		total := TotalExpenses(expenses)
		saved := salary - total
		history = append(history, CycleHistoryEntry{
			CycleDate:     dateutil.FormatDateOnly(active),
			Salary:        salary,
			TotalExpenses: total,
			SavedAmount:   saved,
			GoalAmount:    goal,
			GoalAchieved:  saved >= goal,
		})
		longTerm = accumulate(longTerm, saved)

		expenses = nil
		goal = 0
		active = dateutil.AddMonths(active, 1)
		closed++

		if force || closed >= MaxRolloverCycles || today.Before(active) {
			break
		}
	}

	return Patch{
		CyclesHistory:  history,
		LongTermGoal:   longTerm,
		Expenses:       []Expense{},
		GoalAmount:     goal,
		NextSalaryDate: dateutil.FormatDateOnly(active),
		CyclesClosed:   closed,
	}, true
}

// accumulate adds a cycle's savings to the long-term goal. Deficit cycles add
// nothing and never reduce the accumulator.
func accumulate(g LongTermGoal, saved float64) LongTermGoal {
	if saved <= 0 || g.TargetAmount <= 0 || g.IsCompleted {
		return g
	}
	g.AccumulatedAmount += saved
	if g.AccumulatedAmount >= g.TargetAmount {
		g.IsCompleted = true
	}
	return g
}

// EnsureCycleCurrent rolls s forward to the cycle containing today. Every
// mutation of the open cycle must go through this first.
func EnsureCycleCurrent(s State, today time.Time) (State, int) {
	patch, ok := Rollover(s, today, false)
	if !ok {
		return s, 0
	}
	return patch.Apply(s), patch.CyclesClosed
}
