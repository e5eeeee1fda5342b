package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekplan/internal/config"
	"weekplan/internal/dates"
	"weekplan/internal/fitness"
	"weekplan/internal/planner"
	"weekplan/internal/storage"
	"weekplan/internal/watcher"
)

var monday = time.Date(2025, 1, 6, 12, 0, 0, 0, time.Local)

type harness struct {
	t       *testing.T
	m       Model
	mem     *storage.Memory
	store   *planner.Store
	tracker *fitness.Tracker
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := storage.NewMemory()
	clock := func() time.Time { return monday }
	store, err := planner.Open(mem, planner.WithClock(clock))
	require.NoError(t, err)
	tracker, err := fitness.Open(mem, fitness.WithClock(clock))
	require.NoError(t, err)
	cfg, err := config.LoadOrCreate(t.TempDir() + "/config.toml")
	require.NoError(t, err)
	return &harness{t: t, m: New(store, tracker, cfg, clock), mem: mem, store: store, tracker: tracker}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func (h *harness) press(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		next, _ := h.m.Update(keyMsg(k))
		h.m = next.(Model)
	}
}

func (h *harness) entries(d dates.Date) []planner.Entry {
	return h.store.TasksForDate(d)
}

func TestAddToggleAndRename(t *testing.T) {
	h := newHarness(t)
	mon := dates.FromTime(monday)

	h.press("a")
	require.Len(t, h.entries(mon), 1)
	assert.Contains(t, h.m.status, "Added")

	h.press(" ")
	assert.True(t, h.entries(mon)[0].Completed)
	h.press(" ")
	assert.False(t, h.entries(mon)[0].Completed)

	h.press("r", "!", "enter")
	assert.Equal(t, "New Task!", h.entries(mon)[0].Text)
	assert.Equal(t, modeList, h.m.mode)

	h.press("c")
	assert.Equal(t, h.m.cfg.Palette[0], h.entries(mon)[0].Color)
}

func TestRenameCancelKeepsText(t *testing.T) {
	h := newHarness(t)
	mon := dates.FromTime(monday)

	h.press("a", "r", "x", "esc")
	assert.Equal(t, planner.DefaultTaskText, h.entries(mon)[0].Text)
	assert.Equal(t, "Cancelled", h.m.status)
}

func TestDailyTaskAcrossDays(t *testing.T) {
	h := newHarness(t)
	mon := dates.FromTime(monday)
	tue := mon.AddDays(1)

	h.press("a", "*")
	require.True(t, h.entries(mon)[0].Daily())

	h.press("l")
	assert.Equal(t, tue, h.m.day)
	tueEntries := h.entries(tue)
	require.Len(t, tueEntries, 1)
	assert.False(t, tueEntries[0].Completed)

	h.press(" ")
	assert.True(t, h.entries(tue)[0].Completed)
	assert.False(t, h.entries(mon)[0].Completed)

	h.press("h", "*")
	assert.False(t, h.entries(mon)[0].Daily())
	assert.Empty(t, h.entries(tue))
}

func TestTodoListItems(t *testing.T) {
	h := newHarness(t)
	mon := dates.FromTime(monday)

	h.press("t", " ")
	assert.Contains(t, h.m.status, "all its items")

	h.press("i")
	assert.True(t, h.m.inItems)
	list := h.entries(mon)[0]
	require.Len(t, list.Items, 1)
	assert.False(t, list.Completed)

	h.press(" ")
	assert.True(t, h.entries(mon)[0].Completed)

	h.press("r", "s", "enter")
	assert.Equal(t, planner.DefaultItemText+"s", h.entries(mon)[0].Items[0].Text)

	h.press("d", "y")
	assert.Empty(t, h.entries(mon)[0].Items)
	assert.False(t, h.entries(mon)[0].Completed)

	h.press("esc")
	assert.False(t, h.m.inItems)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	mon := dates.FromTime(monday)

	h.press("a", "d")
	assert.True(t, h.m.confirmDel)
	h.press("n")
	assert.Len(t, h.entries(mon), 1)

	h.press("d", "y")
	assert.Empty(t, h.entries(mon))
	assert.Equal(t, "Deleted task", h.m.status)
}

func TestWeekAndMonthNavigation(t *testing.T) {
	h := newHarness(t)
	mon := dates.FromTime(monday)

	h.press("]")
	assert.Equal(t, mon.AddDays(7), h.m.day)
	h.press("g")
	assert.Equal(t, mon, h.m.day)

	h.press("m")
	assert.Equal(t, calendarMonth, h.m.calendar)
	h.press("j")
	assert.Equal(t, mon.AddDays(7), h.m.day)
	assert.Contains(t, h.m.View(), "January 2025")
	h.press("enter")
	assert.Equal(t, calendarWeek, h.m.calendar)
}

func TestFitnessInputs(t *testing.T) {
	h := newHarness(t)

	h.press("tab")
	assert.Equal(t, tabFitness, h.m.tab)

	h.press("w", "8", "0", " ", "6", "0", "enter")
	h.press("w", "7", "0", "enter")
	assert.InDelta(t, 50.0, h.tracker.Data().WeightProgress(), 1e-9)

	h.press("w", "-", "1", "enter")
	assert.Contains(t, h.m.status, "positive")
	assert.Equal(t, modeInput, h.m.mode)
	h.press("esc")

	h.press("s", "1", "2", "0", "0", "0", "enter")
	assert.Equal(t, 12000, h.tracker.Data().Steps.History[dates.Mon])

	h.press(" ")
	keys := h.tracker.Data().WorkoutKeys()
	assert.True(t, h.tracker.Data().Workouts[keys[0]].DoneToday[dates.Mon])
	assert.Contains(t, h.m.View(), "Workouts")

	h.press("tab")
	assert.Equal(t, tabPlanner, h.m.tab)
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	h := newHarness(t)
	mon := dates.FromTime(monday)

	other, err := planner.Open(h.mem)
	require.NoError(t, err)
	_, err = other.AddTask(mon, false)
	require.NoError(t, err)
	assert.Empty(t, h.entries(mon))

	next, _ := h.m.Update(watcher.ReloadMsg{})
	h.m = next.(Model)
	assert.Len(t, h.entries(mon), 1)
	assert.Equal(t, "Reloaded from disk", h.m.status)
	assert.Contains(t, h.m.View(), planner.DefaultTaskText)
}

func TestReloadOfOwnSaveKeepsStatus(t *testing.T) {
	h := newHarness(t)

	h.press("a")
	status := h.m.status
	require.NotEmpty(t, status)

	next, _ := h.m.Update(watcher.ReloadMsg{})
	h.m = next.(Model)
	assert.Equal(t, status, h.m.status)
	assert.Len(t, h.entries(dates.FromTime(monday)), 1)
}
