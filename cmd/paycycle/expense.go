package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lachiem1/paycycle/internal/finance"
)

var flagCategory string

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Log, remove and list expenses of the open cycle",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Log an expense now",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpenseAdd,
}

var expenseRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove an expense by id",
	Args:    cobra.ExactArgs(1),
	RunE:    runExpenseRm,
}

var expenseLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List expenses grouped by day, newest first",
	Args:    cobra.NoArgs,
	RunE:    runExpenseLs,
}

func init() {
	expenseAddCmd.Flags().StringVarP(&flagCategory, "category", "c", finance.DefaultCategory,
		"One of: "+strings.Join(finance.Categories, ", "))
	expenseCmd.AddCommand(expenseAddCmd, expenseRmCmd, expenseLsCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(cmd *cobra.Command, args []string) error {
	amount, err := parseAmountArg(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		e, err := a.svc.AddExpense(ctx, amount, flagCategory)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(os.Stdout, e)
		}
		fmt.Printf("  Logged %s (%s)  id %s\n", a.money.Format(e.Amount), e.Category, e.ID)
		return printDailyBudget(a)
	})
}

func runExpenseRm(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.svc.RemoveExpense(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("  Expense removed.")
		return printDailyBudget(a)
	})
}

func runExpenseLs(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		d, err := a.svc.Dashboard()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(os.Stdout, d.ExpenseGroups)
		}
		if len(d.ExpenseGroups) == 0 {
			fmt.Println("\n  No expenses in this cycle.")
			fmt.Println()
			return nil
		}

		fmt.Println()
		for _, g := range d.ExpenseGroups {
			fmt.Printf("  %s  %s\n", titleStyle.Render(g.Label), mutedStyle.Render(a.money.Format(g.Total)))
			for _, e := range g.Items {
				fmt.Printf("    %-12s %14s  %s  %s\n",
					e.Category,
					a.money.Format(e.Amount),
					mutedStyle.Render(expenseClock(e.Date)),
					mutedStyle.Render(e.ID),
				)
			}
			fmt.Println()
		}
		return nil
	})
}

func printDailyBudget(a *app) error {
	d, err := a.svc.Dashboard()
	if err != nil {
		return err
	}
	if d.Projection == nil {
		return nil
	}
	p := d.Projection
	fmt.Printf("  Daily budget now %s (%s)\n",
		riskStyle(p.RiskLevel).Render(a.money.Format(p.DailyBudget)),
		p.RiskLevel,
	)
	return nil
}

func expenseClock(raw string) string {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return "--:--"
	}
	return t.Local().Format("15:04")
}
