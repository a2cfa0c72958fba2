package cmd

import (
	"fmt"
	"strconv"

	"github.com/dailybudget/dailybudget/internal/cli"
	"github.com/dailybudget/dailybudget/internal/money"
	"github.com/dailybudget/dailybudget/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List days stored in the ledger",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 14, "Number of days to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Ledger.Enabled {
		fmt.Println()
		fmt.Println(cli.RenderEmpty("The ledger is disabled. Enable it with `dailybudget setup`."))
		fmt.Println()
		return nil
	}

	l, err := store.Open(cfg.LedgerPath())
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer l.Close()

	days, err := l.ListDays(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Println("\n  No days recorded yet.")
		return nil
	}

	total, err := l.DayCount()
	if err != nil {
		return err
	}

	f := money.NewFormatter(cfg.General.Currency, cfg.General.Locale)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HISTORY  %d of %s days", len(days), cli.FormatNumber(int64(total)))))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Day", "Items", "Budget", "Spent", "Left", "Used", "Updated"},
		Rows:    historyRows(days, f),
	}))
	fmt.Println()
	return nil
}

func historyRows(days []store.DaySummary, f money.Formatter) [][]string {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		updated := "-"
		if !d.UpdatedAt.IsZero() {
			updated = humanize.Time(d.UpdatedAt)
		}
		rows = append(rows, []string{
			d.Day,
			strconv.Itoa(d.Entries),
			f.Format(d.Budget),
			f.Format(d.Spent),
			f.Format(d.Available()),
			cli.FormatPercent(cli.UsedFraction(d.Spent, d.Budget)),
			updated,
		})
	}
	return rows
}
