package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lachiem1/paycycle/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *app) error {
			// Log lines would tear the alt screen.
			a.log.SetOutput(io.Discard)
			_, err := tea.NewProgram(tui.New(a.svc, a.money), tea.WithAltScreen()).Run()
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
