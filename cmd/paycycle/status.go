package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lachiem1/paycycle/internal/finance"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the open cycle's budget, risk and goals",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Show the projected balance for each day until pay day",
	Args:  cobra.NoArgs,
	RunE:  runCurve,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <amount>",
	Short: "Show the effect of a one-off spend without saving it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

func init() {
	rootCmd.AddCommand(statusCmd, curveCmd, simulateCmd)
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

func riskStyle(level finance.RiskLevel) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch level {
	case finance.RiskSafe:
		return style.Foreground(lipgloss.Color("#5CCB76"))
	case finance.RiskWarning:
		return style.Foreground(lipgloss.Color("#FFD54A"))
	default:
		return style.Foreground(lipgloss.Color("#F15B5B"))
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, printStatus)
}

func printStatus(_ context.Context, a *app) error {
	d, err := a.svc.Dashboard()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(os.Stdout, d)
	}

	fmt.Println()
	fmt.Println("  " + titleStyle.Render("PAY CYCLE"))
	fmt.Println()
	if d.HasMissingData || d.Projection == nil {
		fmt.Println("  Balance, next pay date and salary are needed for a projection.")
		fmt.Println()
		fmt.Println("    paycycle onboard")
		fmt.Println()
		return nil
	}

	p := *d.Projection
	st := d.State
	risk := riskStyle(p.RiskLevel)

	fmt.Printf("  Balance:        %s\n", a.money.Format(st.CurrentBalance))
	fmt.Printf("  Spent:          %s\n", a.money.Format(p.TotalExpenses))
	fmt.Printf("  Remaining:      %s\n", a.money.Format(p.RemainingBalance))
	if d.GoalAmount > 0 {
		fmt.Printf("  Goal:           %s\n", a.money.Format(d.GoalAmount))
	}
	fmt.Println()
	if p.Achievable {
		fmt.Printf("  Daily budget:   %s\n", risk.Render(a.money.Format(p.DailyBudget)))
	} else {
		fmt.Printf("  Daily budget:   %s\n", risk.Render("goal out of reach"))
	}
	fmt.Printf("  Risk:           %s\n", risk.Render(strings.ToUpper(string(p.RiskLevel))))
	fmt.Printf("  Days left:      %d (pay date %s)\n", p.DaysLeft, st.NextSalaryDate)
	fmt.Printf("  Cycle:          day %d of %d  %s\n", p.DaysPassed, p.TotalCycleDays, renderBar(p.ProgressPercentage, 24))
	fmt.Println()
	fmt.Printf("  Before salary:  %s\n", a.money.Format(p.ProjectedBalanceBeforeSalary))
	fmt.Printf("  After salary:   %s\n", a.money.Format(p.ProjectedBalanceAfterSalary))
	if p.IsDeficit {
		fmt.Println("  " + riskStyle(finance.RiskDanger).Render("Nothing left to spend this cycle."))
	}

	if lt := d.LongTerm; lt.TargetAmount > 0 {
		fmt.Println()
		fmt.Printf("  Long-term goal: %s / %s  %s\n",
			a.money.Format(lt.AccumulatedAmount),
			a.money.Format(lt.TargetAmount),
			renderBar(lt.Percentage, 24),
		)
		if lt.IsCompleted {
			fmt.Println("                  " + riskStyle(finance.RiskSafe).Render("completed"))
		}
	}
	fmt.Println()
	return nil
}

func runCurve(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		d, err := a.svc.Dashboard()
		if err != nil {
			return err
		}
		if d.Projection == nil {
			return fmt.Errorf("no projection yet: run paycycle onboard")
		}
		points := d.Projection.DailyProjection
		if flagJSON {
			return printJSON(os.Stdout, points)
		}

		top := 0.0
		if len(points) > 0 {
			top = points[0].ProjectedBalance
		}
		fmt.Println()
		for _, pt := range points {
			pct := 0.0
			if top > 0 {
				pct = pt.ProjectedBalance / top * 100
			}
			fmt.Printf("  %s  %14s  %s\n", pt.Date, a.money.Format(pt.ProjectedBalance), renderBar(pct, 30))
		}
		fmt.Println()
		return nil
	})
}

func runSimulate(cmd *cobra.Command, args []string) error {
	amount, err := parseAmountArg(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(_ context.Context, a *app) error {
		d, err := a.svc.Dashboard()
		if err != nil {
			return err
		}
		if d.Projection == nil {
			return fmt.Errorf("no projection yet: run paycycle onboard")
		}
		sim := finance.Simulate(*d.Projection, amount, d.State.NextSalaryAmount)
		if flagJSON {
			return printJSON(os.Stdout, sim)
		}

		risk := riskStyle(sim.RiskLevel)
		fmt.Println()
		fmt.Printf("  If you spend %s now:\n", a.money.Format(sim.Amount))
		fmt.Printf("    Daily budget:  %s (was %s)\n", risk.Render(a.money.Format(sim.DailyBudget)), a.money.Format(d.Projection.DailyBudget))
		fmt.Printf("    Risk:          %s\n", risk.Render(strings.ToUpper(string(sim.RiskLevel))))
		fmt.Printf("    After salary:  %s\n", a.money.Format(sim.FinalBalance))
		if sim.RiskWorse {
			fmt.Println("    " + riskStyle(finance.RiskDanger).Render("This moves you into a worse risk level."))
		}
		fmt.Println()
		return nil
	})
}

func renderBar(pct float64, width int) string {
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]" + mutedStyle.Render(fmt.Sprintf(" %.0f%%", pct))
}
