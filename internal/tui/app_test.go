package tui

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dailybudget/dailybudget/internal/budget"
	"github.com/dailybudget/dailybudget/internal/config"
	"github.com/dailybudget/dailybudget/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T, cfg config.Config) App {
	t.Helper()
	a := NewApp(Options{Config: cfg, Day: "2026-10-17"})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return m.(App)
}

func send(t *testing.T, a App, msgs ...tea.Msg) (App, []tea.Cmd) {
	t.Helper()
	var cmds []tea.Cmd
	for _, msg := range msgs {
		m, cmd := a.Update(msg)
		a = m.(App)
		cmds = append(cmds, cmd)
	}
	return a, cmds
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	bksp  = tea.KeyMsg{Type: tea.KeyBackspace}
)

// addExpense drives the form the way a user would: focus the name field,
// type, tab to the amount, type, press enter.
func addExpense(t *testing.T, a App, name, amount string) (App, tea.Cmd) {
	t.Helper()
	a, _ = send(t, a, runes("n"))
	if name != "" {
		a, _ = send(t, a, runes(name))
	}
	a, _ = send(t, a, tab)
	if amount != "" {
		a, _ = send(t, a, runes(amount))
	}
	a, cmds := send(t, a, enter)
	return a, cmds[0]
}

func TestAddMergesAndResetsForm(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())

	a, _ = addExpense(t, a, "Comida", "30")
	a, _ = addExpense(t, a, "comida", "20")

	s := a.State()
	if s.Len() != 1 || s.Expenses["Comida"] != 50 {
		t.Fatalf("expenses = %v, want {Comida: 50}", s.Expenses)
	}
	if got := s.Available(); got != 50 {
		t.Fatalf("Available() = %v, want 50", got)
	}
	if a.focus != noFocus {
		t.Fatalf("focus = %d after add, want released", a.focus)
	}
	if a.inputs[fieldName].Value() != "" || a.inputs[fieldAmount].Value() != "" {
		t.Fatalf("inputs not reset: name=%q amount=%q", a.inputs[fieldName].Value(), a.inputs[fieldAmount].Value())
	}
}

func TestDegenerateInputIsIgnoredButResets(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())
	a, _ = addExpense(t, a, "Pan", "2")

	for _, tc := range []struct{ name, amount string }{
		{"", "10"},
		{"Cafe", ""},
		{"Cafe", "0"},
		{"Cafe", "not a number"},
	} {
		a, _ = addExpense(t, a, tc.name, tc.amount)
		s := a.State()
		if s.Len() != 1 || s.Expenses["Pan"] != 2 {
			t.Fatalf("add(%q, %q) changed expenses: %v", tc.name, tc.amount, s.Expenses)
		}
		if a.focus != noFocus || a.inputs[fieldName].Value() != "" || a.inputs[fieldAmount].Value() != "" {
			t.Fatalf("add(%q, %q) did not reset the form", tc.name, tc.amount)
		}
	}
}

func TestBudgetEditsAreLive(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())
	a, _ = addExpense(t, a, "Taxi", "70")

	a, _ = send(t, a, runes("b"), bksp, bksp, bksp, runes("50"))
	if got := a.State().DailyBudget; got != 50 {
		t.Fatalf("DailyBudget = %v, want 50", got)
	}
	if got := a.State().Available(); got != 0 {
		t.Fatalf("Available() = %v, want 0 (over budget)", got)
	}

	// Unparsable text keeps the last good value.
	a, _ = send(t, a, runes("x"))
	if got := a.State().DailyBudget; got != 50 {
		t.Fatalf("DailyBudget after bad input = %v, want 50", got)
	}

	a, _ = send(t, a, esc)
	if a.focus != noFocus {
		t.Fatal("esc did not release focus")
	}
	if got := a.inputs[fieldBudget].Value(); got != "50" {
		t.Fatalf("budget field = %q, want normalized 50", got)
	}
}

func TestFocusCycle(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())

	a, _ = send(t, a, runes("b"))
	want := []field{fieldName, fieldAmount, fieldBudget}
	for _, f := range want {
		a, _ = send(t, a, tab)
		if a.focus != f {
			t.Fatalf("focus = %d, want %d", a.focus, f)
		}
	}
	a, _ = send(t, a, tea.KeyMsg{Type: tea.KeyShiftTab})
	if a.focus != fieldAmount {
		t.Fatalf("shift+tab focus = %d, want %d", a.focus, fieldAmount)
	}
}

func TestQuitOnlyWhenBlurred(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())

	a, _ = send(t, a, runes("n"), runes("q"))
	if a.inputs[fieldName].Value() != "q" || a.focus != fieldName {
		t.Fatalf("name field = %q, want q typed", a.inputs[fieldName].Value())
	}

	a, _ = send(t, a, esc)
	_, cmds := send(t, a, runes("q"))
	if cmds[0] == nil {
		t.Fatal("q while blurred returned no command")
	}
	if _, ok := cmds[0]().(tea.QuitMsg); !ok {
		t.Fatal("q while blurred did not quit")
	}
}

func TestListScrollClamps(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())
	for _, name := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"} {
		a, _ = addExpense(t, a, name, "1")
	}

	a, _ = send(t, a, runes("G"))
	if a.listOffset != 2 {
		t.Fatalf("listOffset after G = %d, want 2", a.listOffset)
	}
	a, _ = send(t, a, runes("j"))
	if a.listOffset != 2 {
		t.Fatalf("listOffset past end = %d, want 2", a.listOffset)
	}
	a, _ = send(t, a, runes("g"), runes("k"))
	if a.listOffset != 0 {
		t.Fatalf("listOffset before start = %d, want 0", a.listOffset)
	}
}

func TestViewRendersState(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())

	if v := a.View(); !strings.Contains(v, "No expenses recorded") {
		t.Fatalf("empty view missing placeholder:\n%s", v)
	}

	a, _ = addExpense(t, a, "Cafe", "2.5")
	v := a.View()
	for _, want := range []string{"Cafe", "2.50", "97.50", "Money left"} {
		if !strings.Contains(v, want) {
			t.Fatalf("view missing %q:\n%s", want, v)
		}
	}

	a, _ = addExpense(t, a, "Taxi", "30")
	var row string
	for _, line := range strings.Split(a.View(), "\n") {
		if strings.Contains(line, "Taxi") {
			row = line
			break
		}
	}
	if !strings.Contains(row, "$30.00") {
		t.Fatalf("list row = %q, want $30.00", row)
	}

	narrow, _ := send(t, a, tea.WindowSizeMsg{Width: 20, Height: 10})
	if !strings.Contains(narrow.View(), "too narrow") {
		t.Fatal("narrow terminal not reported")
	}
}

func TestHelpToggle(t *testing.T) {
	a := newTestApp(t, config.DefaultConfig())

	a, _ = send(t, a, runes("?"))
	if !a.showHelp || !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("help not shown")
	}
	a, _ = send(t, a, runes("x"))
	if a.showHelp {
		t.Fatal("help not dismissed")
	}
}

func ledgerConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Ledger.Enabled = true
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "ledger.db")
	return cfg
}

func storeDay(t *testing.T, path string, s budget.State) {
	t.Helper()
	l, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer l.Close()
	if err := l.SaveDay("2026-10-17", s); err != nil {
		t.Fatalf("SaveDay: %v", err)
	}
}

func storedDay(t *testing.T, path string) budget.State {
	t.Helper()
	l, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer l.Close()
	s, found, err := l.LoadDay("2026-10-17")
	if err != nil || !found {
		t.Fatalf("LoadDay found=%v err=%v", found, err)
	}
	return s
}

// loaded delivers the startup ledger load.
func loaded(t *testing.T, a App) (App, tea.Cmd) {
	t.Helper()
	a, cmds := send(t, a, loadDayCmd(a.ledger)())
	return a, cmds[0]
}

func runSaves(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range collect(cmd) {
		if saved, ok := msg.(daySavedMsg); ok && saved.err != nil {
			t.Fatalf("save failed: %v", saved.err)
		}
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	cfg := ledgerConfig(t)

	a := newTestApp(t, cfg)
	a, _ = loaded(t, a)
	a, cmd := addExpense(t, a, "Comida", "30")
	runSaves(t, cmd)

	if s := storedDay(t, cfg.Ledger.Path); s.Expenses["Comida"] != 30 {
		t.Fatalf("stored expenses = %v", s.Expenses)
	}

	// A fresh app restores the stored day.
	b := newTestApp(t, cfg)
	b, _ = loaded(t, b)
	if got := b.State().Expenses["Comida"]; got != 30 {
		t.Fatalf("restored Comida = %v, want 30", got)
	}
	if b.inputs[fieldBudget].Value() != "100" {
		t.Fatalf("budget field = %q, want 100", b.inputs[fieldBudget].Value())
	}
}

func TestEditsBeforeLoadKeepStoredExpenses(t *testing.T) {
	cfg := ledgerConfig(t)
	stored := budget.New(80)
	stored.AddExpense("Pan", 5)
	stored.AddExpense("Cena", 20)
	storeDay(t, cfg.Ledger.Path, stored)

	a := newTestApp(t, cfg)
	a, cmd := addExpense(t, a, "Bus", "1")
	runSaves(t, cmd)
	a, _ = addExpense(t, a, "pan", "2")

	if s := storedDay(t, cfg.Ledger.Path); s.Len() != 2 || s.Expenses["Pan"] != 5 {
		t.Fatalf("save ran before the load resolved: %v", s.Expenses)
	}

	a, cmd = loaded(t, a)
	runSaves(t, cmd)

	want := map[string]float64{"Pan": 7, "Cena": 20, "Bus": 1}
	for _, s := range []budget.State{a.State(), storedDay(t, cfg.Ledger.Path)} {
		if s.Len() != len(want) {
			t.Fatalf("expenses = %v, want %v", s.Expenses, want)
		}
		for k, v := range want {
			if s.Expenses[k] != v {
				t.Fatalf("expenses = %v, want %v", s.Expenses, want)
			}
		}
		if s.DailyBudget != 80 {
			t.Fatalf("DailyBudget = %v, want stored 80", s.DailyBudget)
		}
	}
}

func TestFailedLoadDisablesLedger(t *testing.T) {
	a := newTestApp(t, ledgerConfig(t))
	a, _ = send(t, a, dayLoadedMsg{err: errors.New("disk gone")})
	if a.ledger != nil || !a.statusWarn {
		t.Fatal("failed load left the ledger enabled")
	}
	_, cmd := addExpense(t, a, "Bus", "1")
	if cmd != nil {
		t.Fatal("save scheduled without a ledger")
	}
}

func TestQuitCommitsFocusedBudget(t *testing.T) {
	cfg := ledgerConfig(t)

	a := newTestApp(t, cfg)
	a, _ = loaded(t, a)
	a, _ = send(t, a, runes("b"), bksp, bksp, bksp, runes("40"))

	_, cmds := send(t, a, tea.KeyMsg{Type: tea.KeyCtrlC})
	msgs := collect(cmds[0])

	var quit bool
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Fatalf("ctrl+c did not quit: %v", msgs)
	}
	if s := storedDay(t, cfg.Ledger.Path); s.DailyBudget != 40 {
		t.Fatalf("stored budget = %v, want 40", s.DailyBudget)
	}
}

func TestFlushMergesWhenLoadNeverArrived(t *testing.T) {
	cfg := ledgerConfig(t)
	stored := budget.New(60)
	stored.AddExpense("Cena", 20)
	storeDay(t, cfg.Ledger.Path, stored)

	a := newTestApp(t, cfg)
	a, _ = addExpense(t, a, "Bus", "1")
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	s := storedDay(t, cfg.Ledger.Path)
	if s.Expenses["Cena"] != 20 || s.Expenses["Bus"] != 1 || s.DailyBudget != 60 {
		t.Fatalf("stored day = %+v", s)
	}
}

func TestFlushWithoutChangesWritesNothing(t *testing.T) {
	cfg := ledgerConfig(t)

	a := newTestApp(t, cfg)
	a, _ = loaded(t, a)
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	l, err := store.Open(cfg.Ledger.Path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer l.Close()
	if _, found, _ := l.LoadDay("2026-10-17"); found {
		t.Fatal("Flush stored an untouched day")
	}
}

func TestSetupKeepsRestoredBudget(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := ledgerConfig(t)
	stored := budget.New(35)
	storeDay(t, cfg.Ledger.Path, stored)

	a := NewApp(Options{Config: cfg, Day: "2026-10-17", NeedSetup: true})
	a, _ = loaded(t, a)

	a.setupVals.Budget = "250"
	a.finishSetup()
	if got := a.State().DailyBudget; got != 35 {
		t.Fatalf("DailyBudget = %v, want restored 35", got)
	}
	if a.cfg.General.DefaultBudget != 250 {
		t.Fatalf("config default = %v, want 250", a.cfg.General.DefaultBudget)
	}
}

func TestSetupAppliesDefaultToUntouchedBudget(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	a := NewApp(Options{Config: config.DefaultConfig(), Day: "2026-10-17", NeedSetup: true})
	a.setupVals.Budget = "250"
	a.finishSetup()
	if got := a.State().DailyBudget; got != 250 {
		t.Fatalf("DailyBudget = %v, want 250", got)
	}
}

func TestPersisterSkipsStaleRevisions(t *testing.T) {
	p := newPersister(filepath.Join(t.TempDir(), "ledger.db"), "2026-10-17")

	newer := budget.New(100)
	newer.AddExpense("Cena", 20)
	older := budget.New(100)
	older.AddExpense("Pan", 1)

	if err := p.save(2, newer); err != nil {
		t.Fatalf("save(2): %v", err)
	}
	if err := p.save(1, older); err != nil {
		t.Fatalf("save(1): %v", err)
	}

	s, _, err := p.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.Expenses["Pan"]; ok || s.Expenses["Cena"] != 20 {
		t.Fatalf("stale revision overwrote ledger: %v", s.Expenses)
	}
}

// collect runs cmd and any batched or sequenced commands it expands to.
// Sequence messages are unexported, so any slice of commands is expanded.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Slice {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for i := 0; i < v.Len(); i++ {
		if c, ok := v.Index(i).Interface().(tea.Cmd); ok {
			out = append(out, collect(c)...)
		}
	}
	return out
}
