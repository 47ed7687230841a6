package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagSalaryDate   string
	flagSalaryAmount string
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage the savings goal of the open cycle",
}

var goalSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the amount to keep untouched this cycle (0 clears it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmountArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.svc.SetGoal(ctx, amount); err != nil {
				return err
			}
			fmt.Printf("  Goal set to %s.\n", a.money.Format(amount))
			return printDailyBudget(a)
		})
	},
}

var longTermCmd = &cobra.Command{
	Use:   "longterm",
	Short: "Manage the long-term goal fed by each cycle's savings",
}

var longTermSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the long-term target, keeping what was accumulated",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmountArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.svc.SetLongTermGoal(ctx, amount); err != nil {
				return err
			}
			st, err := a.svc.Snapshot()
			if err != nil {
				return err
			}
			fmt.Printf("  Long-term goal %s, accumulated %s.\n",
				a.money.Format(st.LongTermGoal.TargetAmount),
				a.money.Format(st.LongTermGoal.AccumulatedAmount),
			)
			return nil
		})
	},
}

var longTermResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the accumulated long-term savings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.svc.ResetLongTermGoal(ctx); err != nil {
				return err
			}
			fmt.Println("  Long-term savings reset.")
			return nil
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Manage the current balance",
}

var balanceSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the current balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmountArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.svc.SetBalance(ctx, amount); err != nil {
				return err
			}
			fmt.Printf("  Balance set to %s.\n", a.money.Format(amount))
			return printDailyBudget(a)
		})
	},
}

var salaryCmd = &cobra.Command{
	Use:   "salary",
	Short: "Manage the next pay date and amount",
}

var salarySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the next pay date and/or amount",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flagSalaryDate == "" && flagSalaryAmount == "" {
			return errors.New("nothing to set: pass --date and/or --amount")
		}
		var amount float64
		if flagSalaryAmount != "" {
			v, err := parseAmountArg(flagSalaryAmount)
			if err != nil {
				return err
			}
			amount = v
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if flagSalaryDate != "" {
				if err := a.svc.SetNextSalaryDate(ctx, flagSalaryDate); err != nil {
					return err
				}
			}
			if flagSalaryAmount != "" {
				if err := a.svc.SetNextSalaryAmount(ctx, amount); err != nil {
					return err
				}
			}
			st, err := a.svc.Snapshot()
			if err != nil {
				return err
			}
			fmt.Printf("  Next pay %s on %s.\n", a.money.Format(st.NextSalaryAmount), st.NextSalaryDate)
			return printDailyBudget(a)
		})
	},
}

func init() {
	salarySetCmd.Flags().StringVar(&flagSalaryDate, "date", "", "Next pay date (YYYY-MM-DD)")
	salarySetCmd.Flags().StringVar(&flagSalaryAmount, "amount", "", "Next pay amount")

	goalCmd.AddCommand(goalSetCmd)
	longTermCmd.AddCommand(longTermSetCmd, longTermResetCmd)
	balanceCmd.AddCommand(balanceSetCmd)
	salaryCmd.AddCommand(salarySetCmd)
	rootCmd.AddCommand(goalCmd, longTermCmd, balanceCmd, salaryCmd)
}
