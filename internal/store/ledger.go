// Package store provides the optional SQLite-backed day ledger.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dailybudget/dailybudget/internal/budget"

	_ "modernc.org/sqlite" // register sqlite driver
)

// DayLayout is the key format of a ledger day.
const DayLayout = "2006-01-02"

// Ledger stores one budget state per calendar day.
type Ledger struct {
	db *sql.DB
}

// DaySummary is one row of the history listing.
type DaySummary struct {
	Day       string
	Budget    float64
	Spent     float64
	Entries   int
	UpdatedAt time.Time
}

// Available applies the same floor-at-zero rule as the live state.
func (d DaySummary) Available() float64 {
	if d.Spent <= d.Budget {
		return d.Budget - d.Spent
	}
	return 0
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// DayKey formats t as a ledger day key in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// SaveDay replaces the stored state for day.
func (l *Ledger) SaveDay(day string, s budget.State) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO days (day, budget, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET budget = excluded.budget, updated_at = excluded.updated_at`,
		day, s.DailyBudget, now)
	if err != nil {
		return fmt.Errorf("saving day %s: %w", day, err)
	}

	if _, err := tx.Exec("DELETE FROM expenses WHERE day = ?", day); err != nil {
		return fmt.Errorf("clearing expenses for %s: %w", day, err)
	}

	for _, e := range s.Entries() {
		_, err = tx.Exec("INSERT INTO expenses (day, name, amount) VALUES (?, ?, ?)", day, e.Name, e.Amount)
		if err != nil {
			return fmt.Errorf("saving expense %q: %w", e.Name, err)
		}
	}

	return tx.Commit()
}

// LoadDay reads the stored state for day. found is false when nothing was
// saved for that day.
func (l *Ledger) LoadDay(day string) (s budget.State, found bool, err error) {
	var b float64
	err = l.db.QueryRow("SELECT budget FROM days WHERE day = ?", day).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return budget.State{}, false, nil
	}
	if err != nil {
		return budget.State{}, false, fmt.Errorf("loading day %s: %w", day, err)
	}

	s = budget.New(b)
	rows, err := l.db.Query("SELECT name, amount FROM expenses WHERE day = ? ORDER BY name", day)
	if err != nil {
		return budget.State{}, false, fmt.Errorf("loading expenses for %s: %w", day, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		var amount float64
		if err := rows.Scan(&name, &amount); err != nil {
			return budget.State{}, false, err
		}
		// Rows that differ only in case fold into the first name.
		s.Restore(name, amount)
	}
	if err := rows.Err(); err != nil {
		return budget.State{}, false, err
	}
	return s, true, nil
}

// ListDays returns the most recent days first. limit <= 0 returns all days.
func (l *Ledger) ListDays(limit int) ([]DaySummary, error) {
	q := `SELECT d.day, d.budget, d.updated_at, COALESCE(SUM(e.amount), 0), COUNT(e.name)
		FROM days d LEFT JOIN expenses e ON e.day = d.day
		GROUP BY d.day
		ORDER BY d.day DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []DaySummary
	for rows.Next() {
		var d DaySummary
		var updated string
		if err := rows.Scan(&d.Day, &d.Budget, &updated, &d.Spent, &d.Entries); err != nil {
			return nil, err
		}
		d.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		days = append(days, d)
	}
	return days, rows.Err()
}

// DayCount returns the number of stored days.
func (l *Ledger) DayCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM days").Scan(&count)
	return count, err
}
