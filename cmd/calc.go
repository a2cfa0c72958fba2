package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dailybudget/dailybudget/internal/budget"
	"github.com/dailybudget/dailybudget/internal/cli"
	"github.com/dailybudget/dailybudget/internal/money"

	"github.com/spf13/cobra"
)

var (
	flagCalcBudget   string
	flagCalcExpenses []string
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute money left without the interactive form",
	Example: `  dailybudget calc --budget 100 --expense "Comida=30" --expense "comida=20"
  dailybudget calc -b 50 -e "Taxi=70"`,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVarP(&flagCalcBudget, "budget", "b", "", "Today's budget (defaults to the configured budget)")
	calcCmd.Flags().StringArrayVarP(&flagCalcExpenses, "expense", "e", nil, `Expense as "name=amount", repeatable`)
	rootCmd.AddCommand(calcCmd)
}

func runCalc(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	b := cfg.General.DefaultBudget
	if flagCalcBudget != "" {
		if b, err = money.Parse(flagCalcBudget); err != nil {
			return fmt.Errorf("--budget: %w", err)
		}
	}

	s := budget.New(b)
	for _, raw := range flagCalcExpenses {
		name, amount, err := parseExpenseFlag(raw)
		if err != nil {
			return err
		}
		s.AddExpense(name, amount)
	}

	f := money.NewFormatter(cfg.General.Currency, cfg.General.Locale)
	fmt.Print(renderCalc(s, f))
	return nil
}

// parseExpenseFlag splits "name=amount". The name keeps its inner spaces;
// only line breaks at the edges are trimmed, as in the form.
func parseExpenseFlag(raw string) (string, float64, error) {
	i := strings.LastIndex(raw, "=")
	if i < 0 {
		return "", 0, fmt.Errorf("--expense %q: want name=amount", raw)
	}
	name := budget.TrimNewlines(raw[:i])
	if name == "" {
		return "", 0, fmt.Errorf("--expense %q: empty name", raw)
	}
	amount, err := money.Parse(raw[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("--expense %q: %w", raw, err)
	}
	if amount == 0 {
		return "", 0, fmt.Errorf("--expense %q: %w", raw, errZeroAmount)
	}
	return name, amount, nil
}

var errZeroAmount = errors.New("amount must not be zero")

func renderCalc(s budget.State, f money.Formatter) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(cli.RenderTitle("DAILY BUDGET  " + f.Format(s.DailyBudget)))
	b.WriteString("\n\n")

	entries := s.Entries()
	if len(entries) == 0 {
		b.WriteString(cli.RenderEmpty("No expenses recorded"))
		b.WriteString("\n")
	} else {
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Name, money.Plain(e.Amount)})
		}
		b.WriteString(cli.RenderTable(cli.Table{
			Headers: []string{"Item", "Price"},
			Rows:    rows,
			Footer:  []string{"Total", f.Format(s.Total())},
		}))
	}

	b.WriteString("\n")
	b.WriteString(cli.RenderRemaining("Money left", f.Format(s.Available()), s.Exhausted()))
	b.WriteString("\n\n")
	return b.String()
}
