package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dailybudget/dailybudget/internal/config"
	"github.com/dailybudget/dailybudget/internal/money"
	"github.com/dailybudget/dailybudget/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// Currencies offered by the setup form.
var Currencies = []string{"USD", "EUR", "ARS", "MXN", "CLP", "COP", "UYU", "GBP", "JPY"}

// SetupValues holds the answers of the setup form.
type SetupValues struct {
	Budget   string
	Currency string
	Theme    string
	Ledger   bool
}

// NewSetupValues seeds the form from cfg.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		Budget:   formatInputAmount(cfg.General.DefaultBudget),
		Currency: cfg.General.Currency,
		Theme:    cfg.Appearance.Theme,
		Ledger:   cfg.Ledger.Enabled,
	}
}

// NewSetupForm builds the first-run setup form bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to dailybudget").
				Description("Set a default daily budget, how amounts are shown,\nand whether each day is kept on disk."),
			huh.NewInput().
				Title("Default daily budget").
				Placeholder("100").
				Value(&vals.Budget).
				Validate(validateBudget),
			huh.NewSelect[string]().
				Title("Currency").
				Options(huh.NewOptions(Currencies...)...).
				Value(&vals.Currency),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
			huh.NewConfirm().
				Title("Keep a daily ledger?").
				Description("Stores each day's budget and expenses in a local SQLite file.").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.Ledger),
		),
	).WithTheme(huh.ThemeCharm())
}

func validateBudget(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("enter an amount")
	}
	_, err := money.Parse(s)
	return err
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	b, err := money.Parse(v.Budget)
	if err != nil {
		return fmt.Errorf("default budget: %w", err)
	}
	cfg.General.DefaultBudget = b
	if v.Currency != "" {
		cfg.General.Currency = v.Currency
	}
	if theme.Valid(v.Theme) {
		cfg.Appearance.Theme = v.Theme
	}
	cfg.Ledger.Enabled = v.Ledger
	return nil
}
