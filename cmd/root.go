// Package cmd implements the dailybudget CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dailybudget/dailybudget/internal/config"
	"github.com/dailybudget/dailybudget/internal/logging"
	"github.com/dailybudget/dailybudget/internal/money"
	"github.com/dailybudget/dailybudget/internal/store"
	"github.com/dailybudget/dailybudget/internal/tui"
	"github.com/dailybudget/dailybudget/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagBudget   string
	flagCurrency string
	flagNoLedger bool
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:          "dailybudget",
	Short:        "Track today's spending against a daily budget",
	Long:         "Enter a daily budget and expenses; dailybudget shows how much money is left for the day.",
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCurrency, "currency", "", "ISO 4217 currency code for display (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoLedger, "no-ledger", false, "Keep today's state in memory only")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Write debug entries to the log file")
	rootCmd.Flags().StringVarP(&flagBudget, "budget", "b", "", "Today's budget (overrides the configured default)")
}

// loadConfig is the shared config path used by all commands: file, .env,
// environment, then command-line flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagCurrency != "" {
		cfg.General.Currency = flagCurrency
	}
	if flagNoLedger {
		cfg.Ledger.Enabled = false
	}
	if flagDebug {
		cfg.Log.Debug = true
	}
	return cfg, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := tui.Options{
		Config:    cfg,
		Day:       store.DayKey(time.Now()),
		NeedSetup: !config.Exists(),
	}
	if flagBudget != "" {
		b, err := money.Parse(flagBudget)
		if err != nil {
			return fmt.Errorf("--budget: %w", err)
		}
		opts.Budget = &b
	}

	closeLog, err := logging.Setup(logging.Config{Dir: cfg.Log.Dir, Debug: cfg.Log.Debug})
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Logging disabled: %s\n", err)
	}
	defer func() { _ = closeLog() }()

	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	logging.L().Info("tui.start", "day", opts.Day, "ledger", cfg.Ledger.Enabled, "currency", cfg.General.Currency)

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	app, ok := final.(tui.App)
	if !ok {
		return nil
	}
	s := app.State()
	logging.L().Info("tui.exit", "day", opts.Day, "entries", s.Len(), "available", s.Available())
	if err := app.Flush(); err != nil {
		logging.L().Error("ledger.flush_failed", "day", opts.Day, "error", err)
		return fmt.Errorf("saving today's ledger: %w", err)
	}
	return nil
}
