package cmd

import (
	"fmt"

	"github.com/dailybudget/dailybudget/internal/config"
	"github.com/dailybudget/dailybudget/internal/logging"
	"github.com/dailybudget/dailybudget/internal/money"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	f := money.NewFormatter(cfg.General.Currency, cfg.General.Locale)

	fmt.Println("  [General]")
	fmt.Printf("    Default budget: %s\n", f.Format(cfg.General.DefaultBudget))
	fmt.Printf("    Currency:       %s\n", f.Code())
	fmt.Printf("    Locale:         %s\n", cfg.General.Locale)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Ledger]")
	if cfg.Ledger.Enabled {
		fmt.Printf("    Enabled: yes (%s)\n", cfg.LedgerPath())
	} else {
		fmt.Println("    Enabled: no")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	logDir := cfg.Log.Dir
	if logDir == "" {
		logDir = logging.Dir()
	}
	fmt.Printf("    Directory: %s\n", logDir)
	fmt.Printf("    Debug:     %v\n", cfg.Log.Debug)
	fmt.Println()

	fmt.Printf("  Environment overrides: %s, %s, %s\n", config.EnvBudget, config.EnvCurrency, config.EnvLedger)
	fmt.Println("  Run `dailybudget setup` to reconfigure.")
	return nil
}
