package finance

import (
	"math"
	"time"

	"github.com/lachiem1/paycycle/internal/dateutil"
)

type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskWarning RiskLevel = "warning"
	RiskDanger  RiskLevel = "danger"
)

// Daily budget thresholds, in currency units.
const (
	SafeDailyBudget    = 100.0
	WarningDailyBudget = 50.0
)

// cycleLookbackDays approximates the previous pay date, which is not stored.
const cycleLookbackDays = 30

// Rank orders tiers from best (1) to worst (3).
func (r RiskLevel) Rank() int {
	switch r {
	case RiskSafe:
		return 1
	case RiskWarning:
		return 2
	default:
		return 3
	}
}

// RiskForDailyBudget is the one risk ruler used by projections and simulations.
func RiskForDailyBudget(dailyBudget float64) RiskLevel {
	switch {
	case dailyBudget >= SafeDailyBudget:
		return RiskSafe
	case dailyBudget >= WarningDailyBudget:
		return RiskWarning
	default:
		return RiskDanger
	}
}

type ProjectionInput struct {
	CurrentBalance   float64
	NextSalaryDate   string
	NextSalaryAmount float64
	GoalAmount       float64
	Expenses         []Expense
}

type ProjectionPoint struct {
	Date             string  `json:"date"`
	ProjectedBalance float64 `json:"projectedBalance"`
}

type Projection struct {
	DaysLeft                     int               `json:"daysLeft"`
	TotalCycleDays               int               `json:"totalCycleDays"`
	DaysPassed                   int               `json:"daysPassed"`
	ProgressPercentage           float64           `json:"progressPercentage"`
	TotalExpenses                float64           `json:"totalExpenses"`
	RemainingBalance             float64           `json:"remainingBalance"`
	EffectiveBalance             float64           `json:"effectiveBalance"`
	Achievable                   bool              `json:"achievable"`
	DailyBudget                  float64           `json:"dailyBudget"`
	RiskLevel                    RiskLevel         `json:"riskLevel"`
	ProjectedBalanceBeforeSalary float64           `json:"projectedBalanceBeforeSalary"`
	ProjectedBalanceAfterSalary  float64           `json:"projectedBalanceAfterSalary"`
	IsDeficit                    bool              `json:"isDeficit"`
	DailyProjection              []ProjectionPoint `json:"dailyProjection"`
}

// Project derives the open cycle's budget as seen on today.
func Project(in ProjectionInput, today time.Time) Projection {
	payDate, validPayDate := dateutil.ParseDateOnly(in.NextSalaryDate)

	daysLeft := 1
	if validPayDate {
		daysLeft = max(dateutil.DaysBetweenCeil(today, payDate), 1)
	}
	totalCycleDays, daysPassed, progress := cycleProgress(payDate, validPayDate, today)

	balance := sanitize(in.CurrentBalance)
	goal := sanitize(in.GoalAmount)
	payAmount := sanitize(in.NextSalaryAmount)

	totalExpenses := TotalExpenses(in.Expenses)
	remaining := balance - totalExpenses
	achievable := remaining-goal >= 0
	effective := math.Max(remaining-goal, 0)

	dailyBudget := 0.0
	if achievable {
		dailyBudget = effective / float64(daysLeft)
	}

	risk := RiskDanger
	if achievable {
		risk = RiskForDailyBudget(dailyBudget)
	}

	return Projection{
		DaysLeft:                     daysLeft,
		TotalCycleDays:               totalCycleDays,
		DaysPassed:                   daysPassed,
		ProgressPercentage:           progress,
		TotalExpenses:                totalExpenses,
		RemainingBalance:             remaining,
		EffectiveBalance:             effective,
		Achievable:                   achievable,
		DailyBudget:                  dailyBudget,
		RiskLevel:                    risk,
		ProjectedBalanceBeforeSalary: effective,
		ProjectedBalanceAfterSalary:  effective + payAmount,
		IsDeficit:                    effective <= 0,
		DailyProjection:              dailyCurve(today, daysLeft, effective, dailyBudget),
	}
}

func cycleProgress(payDate time.Time, valid bool, today time.Time) (int, int, float64) {
	if !valid {
		return cycleLookbackDays, 0, 0
	}

	cycleStart := dateutil.AddDays(payDate, -cycleLookbackDays)
	cycleSpan := float64(payDate.Sub(cycleStart)) / float64(dateutil.Day)
	totalCycleDays := max(int(math.Round(cycleSpan)), 1)

	daysPassed := dateutil.DaysBetweenFloor(cycleStart, today)
	daysPassed = min(max(daysPassed, 0), totalCycleDays)

	progress := float64(daysPassed) / float64(totalCycleDays) * 100
	progress = math.Min(math.Max(progress, 0), 100)
	return totalCycleDays, daysPassed, progress
}

// dailyCurve draws a straight line from effective down to zero at dailyBudget
// per day. It is not a re-simulation of expected expenses.
func dailyCurve(today time.Time, daysLeft int, effective, dailyBudget float64) []ProjectionPoint {
	start := dateutil.StartOfDay(today)
	points := make([]ProjectionPoint, 0, daysLeft)
	for i := 0; i < daysLeft; i++ {
		points = append(points, ProjectionPoint{
			Date:             dateutil.FormatDateOnly(dateutil.AddDays(start, i)),
			ProjectedBalance: math.Max(effective-dailyBudget*float64(i), 0),
		})
	}
	return points
}

// Simulation is the effect of a hypothetical one-off spend on the open cycle.
type Simulation struct {
	Amount       float64   `json:"amount"`
	DailyBudget  float64   `json:"dailyBudget"`
	RiskLevel    RiskLevel `json:"riskLevel"`
	FinalBalance float64   `json:"finalBalance"`
	RiskWorse    bool      `json:"riskWorse"`
}

// Simulate applies a what-if spend to p without touching any state.
func Simulate(p Projection, amount, payAmount float64) Simulation {
	spend := math.Max(sanitize(amount), 0)
	remaining := math.Max(p.EffectiveBalance-spend, 0)
	daysLeft := max(p.DaysLeft, 1)
	daily := remaining / float64(daysLeft)
	risk := RiskForDailyBudget(daily)

	return Simulation{
		Amount:       spend,
		DailyBudget:  daily,
		RiskLevel:    risk,
		FinalBalance: remaining + sanitize(payAmount),
		RiskWorse:    risk.Rank() > p.RiskLevel.Rank(),
	}
}
