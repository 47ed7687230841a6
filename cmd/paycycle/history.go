package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lachiem1/paycycle/internal/finance"
	"github.com/lachiem1/paycycle/internal/storage"
)

var (
	flagHistoryLimit  int
	flagRolloverForce bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show closed cycles and recent rollovers",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Close the open cycle",
	Long: "Overdue cycles are closed automatically whenever paycycle runs. Pass --force\n" +
		"to close the open cycle now and move the pay date one month ahead.",
	Args: cobra.NoArgs,
	RunE: runRollover,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "Rollover log entries to show")
	rolloverCmd.Flags().BoolVar(&flagRolloverForce, "force", false, "Close the open cycle even though pay day has not come")
	rootCmd.AddCommand(historyCmd, rolloverCmd)
}

type historyOutput struct {
	Cycles    []finance.HistoryPoint   `json:"cycles"`
	LongTerm  finance.LongTermProgress `json:"longTerm"`
	Rollovers []storage.RolloverRecord `json:"rollovers"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		st, err := a.svc.Snapshot()
		if err != nil {
			return err
		}
		recent, err := a.rollovers.Recent(ctx, flagHistoryLimit)
		if err != nil {
			return err
		}
		out := historyOutput{
			Cycles:    finance.HistoryChart(st.CyclesHistory),
			LongTerm:  finance.ProgressOf(st.LongTermGoal),
			Rollovers: recent,
		}
		if flagJSON {
			return printJSON(os.Stdout, out)
		}

		fmt.Println()
		fmt.Println("  " + titleStyle.Render("CLOSED CYCLES"))
		fmt.Println()
		if len(out.Cycles) == 0 {
			fmt.Println("  No cycle has closed yet.")
		}
		for i := len(out.Cycles) - 1; i >= 0; i-- {
			c := out.Cycles[i]
			mark := riskStyle(finance.RiskDanger).Render("✗")
			if c.GoalAchieved {
				mark = riskStyle(finance.RiskSafe).Render("✓")
			}
			goal := mutedStyle.Render("no goal")
			if c.GoalAmount > 0 {
				goal = mutedStyle.Render("goal " + a.money.Format(c.GoalAmount))
			}
			fmt.Printf("  %-9s %14s  %s %s\n", c.Label, a.money.Format(c.SavedAmount), mark, goal)
		}

		if lt := out.LongTerm; lt.TargetAmount > 0 {
			fmt.Println()
			fmt.Printf("  Long-term goal: %s / %s  %s\n",
				a.money.Format(lt.AccumulatedAmount),
				a.money.Format(lt.TargetAmount),
				renderBar(lt.Percentage, 24),
			)
		}

		if len(out.Rollovers) > 0 {
			fmt.Println()
			fmt.Println("  " + titleStyle.Render("ROLLOVERS"))
			fmt.Println()
			for _, r := range out.Rollovers {
				kind := "auto"
				if r.Forced {
					kind = "forced"
				}
				fmt.Printf("  %s  %-6s closed %d, next pay %s\n",
					mutedStyle.Render(r.RanAt.Local().Format("2006-01-02 15:04")),
					kind,
					r.CyclesClosed,
					r.NextSalaryDate,
				)
			}
		}
		fmt.Println()
		return nil
	})
}

func runRollover(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if !flagRolloverForce {
			st, err := a.svc.Snapshot()
			if err != nil {
				return err
			}
			if st.NextSalaryDate == "" {
				fmt.Println("  No pay date set yet: run paycycle onboard.")
				return nil
			}
			fmt.Printf("  The open cycle ends on %s. Use --force to close it now.\n", st.NextSalaryDate)
			return nil
		}

		st, err := a.svc.ForceRollover(ctx)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(os.Stdout, st)
		}
		if n := len(st.CyclesHistory); n > 0 {
			last := st.CyclesHistory[n-1]
			fmt.Printf("  Closed %s, saved %s.\n", finance.CycleLabel(last.CycleDate), a.money.Format(last.SavedAmount))
		}
		fmt.Printf("  Next pay on %s.\n", st.NextSalaryDate)
		return printDailyBudget(a)
	})
}
