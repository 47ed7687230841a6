package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lachiem1/paycycle/internal/config"
)

var flagConfigForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := initConfigFile(flagConfig, flagConfigForce)
		if err != nil {
			return err
		}
		fmt.Printf("  Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagConfigForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, sc, err := loadConfig()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(os.Stdout, cfg)
	}

	fmt.Printf("  Config file: %s\n", configPath(flagConfig))
	if config.Exists(flagConfig) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Mode:     %s\n", sc.Mode)
	fmt.Printf("    Database: %s\n", sc.Path)
	fmt.Println()

	fmt.Println("  [Display]")
	fmt.Printf("    Locale:   %s\n", cfg.Display.Locale)
	fmt.Printf("    Currency: %s\n", cfg.Display.Currency)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:    %s\n", cfg.Log.Level)
	fmt.Printf("    Format:   %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `paycycle config init` to write a config file.")
	return nil
}

// initConfigFile writes the defaults to path and returns where it wrote them.
func initConfigFile(path string, force bool) (string, error) {
	path = configPath(path)
	if config.Exists(path) && !force {
		return "", fmt.Errorf("config file %s already exists; pass --force to overwrite it", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return "", err
	}
	return path, nil
}

func configPath(path string) string {
	if path == "" {
		return config.Path()
	}
	return path
}
