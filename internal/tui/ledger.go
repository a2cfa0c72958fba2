package tui

import (
	"sync"

	"github.com/dailybudget/dailybudget/internal/budget"
	"github.com/dailybudget/dailybudget/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// dayLoadedMsg carries today's state read from the ledger.
type dayLoadedMsg struct {
	state budget.State
	found bool
	err   error
}

// daySavedMsg reports the outcome of a background save.
type daySavedMsg struct {
	rev int
	err error
}

// persister serializes ledger writes so an older revision never overwrites
// a newer one when save commands finish out of order.
type persister struct {
	path string
	day  string

	mu      sync.Mutex
	written int
}

func newPersister(path, day string) *persister {
	return &persister{path: path, day: day}
}

func (p *persister) load() (budget.State, bool, error) {
	l, err := store.Open(p.path)
	if err != nil {
		return budget.State{}, false, err
	}
	defer func() { _ = l.Close() }()
	return l.LoadDay(p.day)
}

// save writes s as revision rev. Revisions at or below the last written one
// are skipped.
func (p *persister) save(rev int, s budget.State) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rev <= p.written {
		return nil
	}

	l, err := store.Open(p.path)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	if err := l.SaveDay(p.day, s); err != nil {
		return err
	}
	p.written = rev
	return nil
}

// loadDayCmd reads today's state in the background.
func loadDayCmd(p *persister) tea.Cmd {
	return func() tea.Msg {
		s, found, err := p.load()
		return dayLoadedMsg{state: s, found: found, err: err}
	}
}

// saveDayCmd writes a snapshot of s in the background.
func saveDayCmd(p *persister, rev int, s budget.State) tea.Cmd {
	snapshot := s.Clone()
	return func() tea.Msg {
		return daySavedMsg{rev: rev, err: p.save(rev, snapshot)}
	}
}
