// Package budget holds the daily budget state and the expense aggregation rule.
package budget

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// State is the budget for the current day plus the expenses recorded so far.
// Expenses keys keep the casing they were first entered with; no two keys
// are equal under case-insensitive comparison.
type State struct {
	DailyBudget float64
	Expenses    map[string]float64
}

// Entry is one aggregated expense line.
type Entry struct {
	Name   string
	Amount float64
}

// Input mirrors the two expense input fields of the form.
type Input struct {
	Name   string
	Amount float64
}

// Submission is what the form layer must apply after AddExpense returns.
type Submission struct {
	// Input is the reset value for the expense fields.
	Input Input
	// ReleaseFocus tells the caller to blur every input field.
	ReleaseFocus bool
	// Applied reports whether Expenses changed.
	Applied bool
	// Key is the expense key that received the amount, if Applied.
	Key string
}

// New returns an empty state with the given daily budget.
func New(dailyBudget float64) State {
	return State{
		DailyBudget: dailyBudget,
		Expenses:    make(map[string]float64),
	}
}

// SetBudget replaces the daily budget. Any value is accepted.
func (s *State) SetBudget(v float64) {
	s.DailyBudget = v
}

// AddExpense records amount under name, merging into an existing entry whose
// key matches case-insensitively. An empty name or a zero amount leaves the
// entries untouched. The input fields are reset in every case.
func (s *State) AddExpense(name string, amount float64) Submission {
	sub := Submission{ReleaseFocus: true}

	if name == "" || amount == 0.0 {
		return sub
	}

	sub.Applied = true
	sub.Key = s.merge(name, amount)
	return sub
}

// Restore adds a stored entry back into the state. It merges like AddExpense
// but keeps zero amounts, which a refund can leave behind. Empty names are
// dropped.
func (s *State) Restore(name string, amount float64) {
	if name == "" {
		return
	}
	s.merge(name, amount)
}

func (s *State) merge(name string, amount float64) string {
	if s.Expenses == nil {
		s.Expenses = make(map[string]float64)
	}
	key, ok := s.match(name)
	if !ok {
		key = name
	}
	s.Expenses[key] += amount
	return key
}

// match scans the existing keys in lexicographic order and returns the first
// one equal to name ignoring case.
func (s *State) match(name string) (string, bool) {
	lower := cases.Lower(language.Und)
	want := lower.String(name)
	for _, k := range s.keys() {
		if lower.String(k) == want {
			return k, true
		}
	}
	return "", false
}

func (s State) keys() []string {
	keys := make([]string, 0, len(s.Expenses))
	for k := range s.Expenses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total sums every recorded expense.
func (s State) Total() float64 {
	total := 0.0
	for _, v := range s.Expenses {
		total += v
	}
	return total
}

// Available is the money left for the day. When expenses strictly exceed the
// budget the result is exactly zero, never negative.
func (s State) Available() float64 {
	total := s.Total()
	if total <= s.DailyBudget {
		return s.DailyBudget - total
	}
	return 0.0
}

// Exhausted reports whether nothing is left to spend.
func (s State) Exhausted() bool {
	return s.Available() == 0
}

// Entries returns the expenses sorted by name.
func (s State) Entries() []Entry {
	keys := s.keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Name: k, Amount: s.Expenses[k]})
	}
	return entries
}

// Len returns the number of distinct expense entries.
func (s State) Len() int {
	return len(s.Expenses)
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := State{DailyBudget: s.DailyBudget, Expenses: make(map[string]float64, len(s.Expenses))}
	for k, v := range s.Expenses {
		c.Expenses[k] = v
	}
	return c
}

// TrimNewlines strips leading and trailing newline characters. Spaces and
// tabs are kept.
func TrimNewlines(s string) string {
	return strings.Trim(s, "\n\v\f\r\u0085\u2028\u2029")
}
