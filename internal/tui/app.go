// Package tui provides the interactive Bubble Tea budget form.
package tui

import (
	"fmt"
	"strconv"

	"github.com/dailybudget/dailybudget/internal/budget"
	"github.com/dailybudget/dailybudget/internal/config"
	"github.com/dailybudget/dailybudget/internal/logging"
	"github.com/dailybudget/dailybudget/internal/money"
	"github.com/dailybudget/dailybudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// field indexes the three form inputs.
type field int

const (
	fieldBudget field = iota
	fieldName
	fieldAmount
	fieldCount // sentinel

	noFocus field = -1
)

const (
	minTerminalWidth = 48
	maxContentWidth  = 90
	listRows         = 6 // visible rows of the expense list
)

// Options configures a new App.
type Options struct {
	Config config.Config
	// Budget overrides Config.General.DefaultBudget when non-nil.
	Budget *float64
	// Day is the ledger key for today's state.
	Day string
	// NeedSetup shows the first-run setup form before the main screen.
	NeedSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	state  budget.State
	inputs [fieldCount]textinput.Model
	focus  field

	money     money.Formatter
	cfg       config.Config
	day       string
	ledger    *persister
	rev       int // bumped on every state change
	loadedRev int // rev when the ledger load was requested

	// loading is set while the ledger load is outstanding. Saves are held
	// until it resolves so an early edit cannot replace the stored day.
	loading     bool
	pendingSave bool
	// budgetPinned marks a budget that came from a flag, an edit or the
	// ledger. The setup default never replaces it.
	budgetPinned bool

	listOffset int

	width    int
	height   int
	showHelp bool

	status     string
	statusWarn bool

	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
}

// NewApp creates the form model.
func NewApp(opts Options) App {
	cfg := opts.Config
	start := cfg.General.DefaultBudget
	if opts.Budget != nil {
		start = *opts.Budget
	}

	a := App{
		state:        budget.New(start),
		focus:        noFocus,
		money:        money.NewFormatter(cfg.General.Currency, cfg.General.Locale),
		cfg:          cfg,
		day:          opts.Day,
		needSetup:    opts.NeedSetup,
		budgetPinned: opts.Budget != nil,
	}
	if cfg.Ledger.Enabled {
		a.ledger = newPersister(cfg.LedgerPath(), opts.Day)
		a.loading = true
	}

	a.inputs[fieldBudget] = newInput("Today's budget", 16)
	a.inputs[fieldBudget].SetValue(formatInputAmount(start))
	a.inputs[fieldName] = newInput("e.g. Food", 64)
	a.inputs[fieldAmount] = newInput("Expense amount", 16)

	if a.needSetup {
		a.setupVals = NewSetupValues(cfg)
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	return ti
}

// formatInputAmount renders a value for an editable field. Zero is shown as
// an empty field so the placeholder is visible.
func formatInputAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// State returns a copy of the current budget state.
func (a App) State() budget.State {
	return a.state.Clone()
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.ledger != nil {
		cmds = append(cmds, loadDayCmd(a.ledger))
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(a.contentWidth())
		}
		return a, nil

	case dayLoadedMsg:
		m, cmd := a.applyLoadedDay(msg)
		return m, cmd

	case daySavedMsg:
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("ledger save failed: %s", msg.err), true)
			logging.L().Error("ledger.save_failed", "day", a.day, "error", msg.err)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a.quit()
		}

		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if a.focus != noFocus {
			return a.updateFocused(msg)
		}
		return a.updateBlurred(msg)
	}

	// Forward unhandled messages (cursor blinks) to the setup form or the
	// focused input.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.focus != noFocus {
		var cmd tea.Cmd
		a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
		return a, cmd
	}
	return a, nil
}

// updateFocused handles keys while an input has focus.
func (a App) updateFocused(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// "Done": release focus without submitting.
		return a.blur()
	case "tab", "down":
		return a.moveFocus(1)
	case "shift+tab", "up":
		return a.moveFocus(-1)
	case "enter":
		if a.focus == fieldBudget {
			return a.moveFocus(1)
		}
		return a.submit()
	}

	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	if a.focus == fieldBudget {
		a.syncBudget()
	}
	return a, cmd
}

// updateBlurred handles keys while no input has focus.
func (a App) updateBlurred(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a.quit()
	case "b":
		return a.focusField(fieldBudget)
	case "n", "a", "tab", "enter":
		return a.focusField(fieldName)
	case "j", "down":
		a.scrollList(1)
	case "k", "up":
		a.scrollList(-1)
	case "g":
		a.listOffset = 0
	case "G":
		a.scrollList(a.state.Len())
	}
	return a, nil
}

// syncBudget commits the budget field whenever its text parses, mirroring a
// bound currency field: unparsable text keeps the previous value.
func (a *App) syncBudget() {
	v, err := money.Parse(a.inputs[fieldBudget].Value())
	if err != nil || v == a.state.DailyBudget {
		return
	}
	a.state.SetBudget(v)
	a.budgetPinned = true
	a.rev++
}

// submit runs the "add to list" action.
func (a App) submit() (tea.Model, tea.Cmd) {
	name := budget.TrimNewlines(a.inputs[fieldName].Value())
	amount, err := money.Parse(a.inputs[fieldAmount].Value())
	if err != nil {
		amount = 0
	}

	sub := a.state.AddExpense(name, amount)

	a.inputs[fieldName].SetValue(sub.Input.Name)
	a.inputs[fieldAmount].SetValue(formatInputAmount(sub.Input.Amount))

	var cmds []tea.Cmd
	if sub.ReleaseFocus {
		m, cmd := a.blur()
		a = m.(App)
		cmds = append(cmds, cmd)
	}

	if sub.Applied {
		a.rev++
		a.setStatus(fmt.Sprintf("added %s to %s", a.money.Format(amount), sub.Key), false)
		logging.L().Info("expense.added", "day", a.day, "key", sub.Key, "amount", amount, "available", a.state.Available())
		cmds = append(cmds, a.saveCmd())
	} else {
		logging.L().Debug("expense.ignored", "name", name, "amount", amount)
	}
	return a, tea.Batch(cmds...)
}

func (a App) focusField(f field) (tea.Model, tea.Cmd) {
	for i := range a.inputs {
		a.inputs[i].Blur()
	}
	a.focus = f
	cmd := a.inputs[f].Focus()
	return a, cmd
}

func (a App) moveFocus(delta int) (tea.Model, tea.Cmd) {
	leaving := a.focus
	next := field((int(a.focus) + delta + int(fieldCount)) % int(fieldCount))
	m, cmd := a.focusField(next)
	a = m.(App)
	if leaving == fieldBudget {
		save := a.commitBudget()
		return a, tea.Batch(cmd, save)
	}
	return a, cmd
}

// blur releases focus from every input.
func (a App) blur() (tea.Model, tea.Cmd) {
	leaving := a.focus
	for i := range a.inputs {
		a.inputs[i].Blur()
	}
	a.focus = noFocus
	if leaving == fieldBudget {
		save := a.commitBudget()
		return a, save
	}
	return a, nil
}

// commitBudget normalizes the budget field and persists the budget when it
// changed since the last save.
func (a *App) commitBudget() tea.Cmd {
	a.inputs[fieldBudget].SetValue(formatInputAmount(a.state.DailyBudget))
	return a.saveCmd()
}

func (a *App) scrollList(delta int) {
	maxOffset := a.state.Len() - listRows
	if maxOffset < 0 {
		maxOffset = 0
	}
	a.listOffset += delta
	if a.listOffset > maxOffset {
		a.listOffset = maxOffset
	}
	if a.listOffset < 0 {
		a.listOffset = 0
	}
}

func (a *App) setStatus(s string, warn bool) {
	a.status = s
	a.statusWarn = warn
}

// saveCmd writes the current revision in the background. While the ledger
// load is outstanding the save is only recorded as pending.
func (a *App) saveCmd() tea.Cmd {
	if a.ledger == nil {
		return nil
	}
	if a.loading {
		a.pendingSave = true
		return nil
	}
	return saveDayCmd(a.ledger, a.rev, a.state)
}

// quit commits a budget being edited and exits.
func (a App) quit() (tea.Model, tea.Cmd) {
	if a.focus == fieldBudget {
		save := a.commitBudget()
		return a, tea.Sequence(save, tea.Quit)
	}
	return a, tea.Quit
}

// Flush writes the final state to the ledger synchronously. A load that never
// resolved is done here so stored entries are merged rather than replaced.
func (a App) Flush() error {
	if a.ledger == nil {
		return nil
	}
	s := a.state
	if a.loading {
		stored, found, err := a.ledger.load()
		if err != nil {
			return err
		}
		if found {
			s = mergeStored(stored, a.state, a.budgetPinned)
		} else if a.rev == 0 {
			return nil
		}
		a.rev++
	}
	return a.ledger.save(a.rev, s)
}

// mergeStored replays the live entries on top of the stored day. The live
// budget wins when it was set explicitly.
func mergeStored(stored, live budget.State, keepBudget bool) budget.State {
	merged := stored.Clone()
	for _, e := range live.Entries() {
		merged.Restore(e.Name, e.Amount)
	}
	if keepBudget {
		merged.SetBudget(live.DailyBudget)
	}
	return merged
}

func (a App) applyLoadedDay(msg dayLoadedMsg) (App, tea.Cmd) {
	a.loading = false
	save := a.pendingSave
	a.pendingSave = false

	switch {
	case msg.err != nil:
		a.ledger = nil
		a.setStatus("ledger unavailable, changes stay in memory", true)
		logging.L().Warn("ledger.load_failed", "day", a.day, "error", msg.err)
		return a, nil
	case !msg.found:
		logging.L().Debug("ledger.day_missing", "day", a.day)
	case a.rev != a.loadedRev:
		live := a.state.Len()
		a.state = mergeStored(msg.state, a.state, a.budgetPinned)
		a.budgetPinned = true
		a.rev++
		save = true
		a.setStatus(fmt.Sprintf("merged %d stored expenses with %d new", msg.state.Len(), live), false)
		logging.L().Info("ledger.day_merged", "day", a.day, "stored", msg.state.Len(), "live", live)
	default:
		stored := msg.state
		if a.budgetPinned && stored.DailyBudget != a.state.DailyBudget {
			stored.SetBudget(a.state.DailyBudget)
			a.rev++
			save = true
		}
		a.state = stored
		a.budgetPinned = true
		a.setStatus(fmt.Sprintf("restored %d expenses for %s", a.state.Len(), a.day), false)
		logging.L().Info("ledger.day_loaded", "day", a.day, "entries", a.state.Len())
	}

	if a.focus != fieldBudget {
		a.inputs[fieldBudget].SetValue(formatInputAmount(a.state.DailyBudget))
	}
	a.scrollList(0)
	if save {
		save := a.saveCmd()
		return a, save
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		load := a.finishSetup()
		return a, load
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// finishSetup applies the form answers. It returns the ledger load when setup
// just enabled the ledger.
func (a *App) finishSetup() tea.Cmd {
	cfg := a.cfg
	if err := a.setupVals.Apply(&cfg); err != nil {
		a.setStatus(err.Error(), true)
	} else if err := config.Save(cfg); err != nil {
		a.setStatus(fmt.Sprintf("could not save config: %s", err), true)
	} else {
		a.setStatus("saved "+config.Path(), false)
	}

	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.money = money.NewFormatter(cfg.General.Currency, cfg.General.Locale)
	if !a.budgetPinned {
		a.state.SetBudget(cfg.General.DefaultBudget)
		a.inputs[fieldBudget].SetValue(formatInputAmount(cfg.General.DefaultBudget))
	}
	a.needSetup = false
	a.setupForm = nil

	if cfg.Ledger.Enabled && a.ledger == nil {
		a.ledger = newPersister(cfg.LedgerPath(), a.day)
		a.loading = true
		a.loadedRev = a.rev
		return loadDayCmd(a.ledger)
	}
	return nil
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}
