package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lachiem1/paycycle/internal/dateutil"
	"github.com/lachiem1/paycycle/internal/money"
)

var (
	flagOnboardBalance   string
	flagOnboardPayDate   string
	flagOnboardPayAmount string
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Set the balance, next pay date and salary",
	Long: "Set the three facts a projection needs. Without flags, and when stdin is a\n" +
		"terminal, an interactive form asks for them.",
	Args: cobra.NoArgs,
	RunE: runOnboard,
}

func init() {
	onboardCmd.Flags().StringVar(&flagOnboardBalance, "balance", "", "Current balance")
	onboardCmd.Flags().StringVar(&flagOnboardPayDate, "pay-date", "", "Next pay date (YYYY-MM-DD)")
	onboardCmd.Flags().StringVar(&flagOnboardPayAmount, "pay-amount", "", "Next pay amount")
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, _ []string) error {
	noFlags := flagOnboardBalance == "" && flagOnboardPayDate == "" && flagOnboardPayAmount == ""
	if noFlags && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := runOnboardForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Onboarding cancelled.")
				return nil
			}
			return err
		}
	}

	var missing []string
	if flagOnboardBalance == "" {
		missing = append(missing, "--balance")
	}
	if flagOnboardPayDate == "" {
		missing = append(missing, "--pay-date")
	}
	if flagOnboardPayAmount == "" {
		missing = append(missing, "--pay-amount")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	balance, err := parseAmountArg(flagOnboardBalance)
	if err != nil {
		return err
	}
	salary, err := parseAmountArg(flagOnboardPayAmount)
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.svc.Onboard(ctx, balance, flagOnboardPayDate, salary); err != nil {
			return err
		}
		fmt.Println("  All set.")
		return printStatus(ctx, a)
	})
}

func runOnboardForm() error {
	validAmount := func(s string) error {
		v, err := money.Parse(s)
		if err != nil {
			return err
		}
		if v < 0 {
			return errors.New("must not be negative")
		}
		return nil
	}
	validDate := func(s string) error {
		if _, ok := dateutil.ParseInput(s); !ok {
			return errors.New("use YYYY-MM-DD")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("balance").
				Title("How much do you have today?").
				Placeholder("0,00").
				Value(&flagOnboardBalance).
				Validate(validAmount),
			huh.NewInput().
				Key("pay_date").
				Title("When is your next pay day?").
				Placeholder("YYYY-MM-DD").
				Value(&flagOnboardPayDate).
				Validate(validDate),
			huh.NewInput().
				Key("pay_amount").
				Title("How much will you be paid?").
				Placeholder("0,00").
				Value(&flagOnboardPayAmount).
				Validate(validAmount),
		),
	).WithShowHelp(true).Run()
}
