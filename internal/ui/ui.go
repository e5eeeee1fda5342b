package ui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"weekplan/internal/config"
	"weekplan/internal/dates"
	"weekplan/internal/fitness"
	"weekplan/internal/planner"
	"weekplan/internal/watcher"
)

type mode int

const (
	modeList mode = iota
	modeInput
)

type tab int

const (
	tabPlanner tab = iota
	tabFitness
)

type calendar int

const (
	calendarWeek calendar = iota
	calendarMonth
)

// inputTarget is what the text input writes to on confirm.
type inputTarget int

const (
	inputTaskText inputTarget = iota
	inputItemText
	inputWeight
	inputSteps
	inputWater
)

// pending identifies the record a delete confirmation will remove. itemID is
// zero for a whole task.
type pending struct {
	entry  planner.Entry
	itemID int64
	label  string
}

type Model struct {
	store   *planner.Store
	tracker *fitness.Tracker
	cfg     config.Config
	now     func() time.Time

	tab      tab
	calendar calendar
	day      dates.Date
	cursor   int
	// inItems is set while the cursor walks the items of a to-do list.
	inItems    bool
	itemCursor int

	fitCursor int
	fitDay    dates.Weekday

	mode       mode
	target     inputTarget
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *pending
	width      int
}

// New builds the root model. The planner opens on today's week.
func New(store *planner.Store, tracker *fitness.Tracker, cfg config.Config, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	today := dates.FromTime(now())
	return Model{
		store:   store,
		tracker: tracker,
		cfg:     cfg,
		now:     now,
		day:     today,
		fitDay:  today.Weekday(),
		input:   ti,
		mode:    modeList,
		status: fmt.Sprintf("Press '%s' to add, '%s' to toggle, '%s' for fitness.",
			cfg.Keys.Add, keyLabel(cfg.Keys.Toggle), cfg.Keys.Fitness),
	}
}

// Run starts the program. When w is non-nil, changes it reports reload both
// models while the program runs.
func Run(store *planner.Store, tracker *fitness.Tracker, cfg config.Config, w *watcher.Watcher) error {
	program := tea.NewProgram(New(store, tracker, cfg, time.Now), tea.WithAltScreen())
	if w != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx, func() { program.Send(watcher.ReloadMsg{}) })
	}
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode == modeInput {
			return m.updateInputMode(msg.String(), msg)
		}
		return m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 10)
	case watcher.ReloadMsg:
		return m.reload(), nil
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Fitness:
		if m.mode == modeList && !m.inItems {
			if m.tab == tabPlanner {
				m.tab = tabFitness
				m.status = "Fitness"
			} else {
				m.tab = tabPlanner
				m.status = "Planner"
			}
			return m, nil
		}
	}
	if m.tab == tabFitness {
		return m.updateFitness(key)
	}
	return m.updatePlanner(key)
}

func (m Model) reload() Model {
	before := m.snapshot()
	if err := m.store.Reload(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m
	}
	if err := m.tracker.Reload(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m
	}
	m = m.clampPlannerCursor()
	m.fitCursor = clampCursor(m.fitCursor, len(m.tracker.Data().Workouts))
	// Our own saves echo back through the watcher; keep their status.
	if !bytes.Equal(before, m.snapshot()) {
		m.status = "Reloaded from disk"
	}
	return m
}

func (m Model) snapshot() []byte {
	plan, _ := m.store.Snapshot()
	fit, _ := m.tracker.Snapshot()
	return append(plan, fit...)
}

func (m Model) startInput(target inputTarget, value, placeholder, status string) Model {
	m.mode = modeInput
	m.target = target
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.input.Focus()
	m.status = status
	return m
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m = m.endInput()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		value := strings.TrimSpace(m.input.Value())
		var err error
		switch m.target {
		case inputTaskText, inputItemText:
			if value == "" {
				m.status = "Text cannot be empty"
				return m, nil
			}
			err = m.saveText(value)
		default:
			err = m.saveFitnessInput(value)
		}
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m = m.endInput()
		m.status = "Saved"
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) endInput() Model {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		p := m.pendingDel
		m.confirmDel = false
		m.pendingDel = nil
		var err error
		if p.itemID != 0 {
			err = m.store.DeleteTodoItem(m.day, p.entry.OriginalID, p.itemID, p.entry.Daily())
		} else {
			err = m.store.DeleteTask(m.day, p.entry.OriginalID, p.entry.Daily())
			m.inItems = false
		}
		if err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			return m, nil
		}
		m = m.clampPlannerCursor()
		m.status = fmt.Sprintf("Deleted %s", p.label)
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	if m.tab == tabFitness {
		b.WriteString(m.renderFitness())
	} else {
		b.WriteString(m.renderPlanner())
	}

	b.WriteString("\n")
	if m.mode == modeInput {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	if m.tab == tabFitness {
		b.WriteString(helpStyle.Render(renderFitnessHelp(m.cfg.Keys)))
	} else {
		b.WriteString(helpStyle.Render(renderPlannerHelp(m.cfg.Keys)))
	}
	return b.String()
}

func (m Model) renderTabs() string {
	names := []string{"Planner", "Fitness"}
	parts := make([]string, len(names))
	for i, n := range names {
		if tab(i) == m.tab {
			parts[i] = activeTabStyle.Render(n)
		} else {
			parts[i] = tabStyle.Render(n)
		}
	}
	return strings.Join(parts, " ")
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
