package planner

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekplan/internal/dates"
	"weekplan/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	s, err := Open(mem, WithClock(fixedClock()))
	require.NoError(t, err)
	return s, mem
}

// fixedClock always reports the same instant so ids come from the
// monotonic bump.
func fixedClock() func() time.Time {
	ts := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func ptr[T any](v T) *T { return &v }

var (
	mon = dates.New(2025, time.January, 6)
	tue = dates.New(2025, time.January, 7)
)

func TestAddTaskDefaults(t *testing.T) {
	s, mem := newTestStore(t)

	task, err := s.AddTask(mon, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultTaskText, task.Text)
	assert.Equal(t, DefaultColor, task.Color)
	assert.Equal(t, KindPlain, task.Kind)
	assert.False(t, task.Completed)

	list, err := s.AddTask(mon, true)
	require.NoError(t, err)
	assert.Equal(t, DefaultListText, list.Text)
	assert.Equal(t, KindTodo, list.Kind)
	assert.Greater(t, list.ID, task.ID)

	entries := s.TasksForDate(mon)
	require.Len(t, entries, 2)
	assert.Equal(t, task.ID, entries[0].OriginalID)
	assert.Equal(t, list.ID, entries[1].OriginalID)
	assert.Equal(t, 2, mem.Saves)
}

func TestTogglePlainTask(t *testing.T) {
	s, _ := newTestStore(t)
	task, err := s.AddTask(mon, false)
	require.NoError(t, err)

	require.NoError(t, s.ToggleTaskComplete(mon, task.ID, false))
	entries := s.TasksForDate(mon)
	require.Len(t, entries, 1)
	assert.Equal(t, "New Task", entries[0].Text)
	assert.True(t, entries[0].Completed)

	require.NoError(t, s.ToggleTaskComplete(mon, task.ID, false))
	assert.False(t, s.TasksForDate(mon)[0].Completed)
}

func TestDailyTaskAppearsOnEveryDate(t *testing.T) {
	s, _ := newTestStore(t)
	task, err := s.AddTask(mon, false)
	require.NoError(t, err)
	require.NoError(t, s.UpdateTask(mon, task.ID, false, Patch{Daily: ptr(true)}))

	for i := 1; i <= 7; i++ {
		d := mon.AddDays(i)
		entries := s.TasksForDate(d)
		require.Len(t, entries, 1, d.String())
		e := entries[0]
		assert.Equal(t, "daily-"+strconv.FormatInt(task.ID, 10)+"-"+d.String(), e.DisplayID)
		assert.Equal(t, task.ID, e.OriginalID)
		assert.True(t, e.Daily())
		assert.False(t, e.Completed)
	}

	wed := mon.AddDays(2)
	require.NoError(t, s.ToggleTaskComplete(wed, task.ID, true))
	assert.True(t, s.TasksForDate(wed)[0].Completed)
	assert.False(t, s.TasksForDate(mon.AddDays(3))[0].Completed)
}

func TestDailyCompletionIsPerDate(t *testing.T) {
	s, _ := newTestStore(t)
	task, err := s.AddTask(mon, false)
	require.NoError(t, err)
	require.NoError(t, s.UpdateTask(mon, task.ID, false, Patch{Daily: ptr(true)}))

	require.NoError(t, s.ToggleTaskComplete(mon, task.ID, true))
	assert.True(t, s.TasksForDate(mon)[0].Completed)
	assert.False(t, s.TasksForDate(tue)[0].Completed)

	require.NoError(t, s.ToggleTaskComplete(tue, task.ID, true))
	require.NoError(t, s.ToggleTaskComplete(mon, task.ID, true))
	assert.False(t, s.TasksForDate(mon)[0].Completed)
	assert.True(t, s.TasksForDate(tue)[0].Completed)

	_, ok := s.completions[mon.String()]
	assert.False(t, ok, "empty completion set should have no entry")
}

func TestDailyEditVisibleFromOtherDates(t *testing.T) {
	s, _ := newTestStore(t)
	task, err := s.AddTask(mon, false)
	require.NoError(t, err)
	require.NoError(t, s.UpdateTask(mon, task.ID, false, Patch{Daily: ptr(true)}))

	// Edited from Friday's view.
	fri := mon.AddDays(4)
	require.NoError(t, s.UpdateTask(fri, task.ID, true, Patch{Text: ptr("Yoga"), Color: ptr("#10b981")}))

	for _, d := range []dates.Date{mon, tue, fri, mon.AddDays(30)} {
		e := s.TasksForDate(d)[0]
		assert.Equal(t, "Yoga", e.Text)
		assert.Equal(t, "#10b981", e.Color)
	}
}

func TestDailyDuplicatesListedOnce(t *testing.T) {
	s, _ := newTestStore(t)
	stray := Task{ID: 42, Text: "first", Kind: KindDaily, Color: "#fff"}
	s.buckets[mon.String()] = []Task{stray}
	dup := stray
	dup.Text = "second"
	s.buckets[tue.String()] = []Task{dup, {ID: 7, Text: "plain", Kind: KindPlain}}

	entries := s.TasksForDate(tue)
	require.Len(t, entries, 2)
	assert.Equal(t, "plain", entries[0].Text)
	assert.Equal(t, "first", entries[1].Text, "first copy in date order wins")

	// Propagation fixes every copy.
	require.NoError(t, s.UpdateTask(tue, 42, true, Patch{Text: ptr("fixed")}))
	assert.Equal(t, "fixed", s.buckets[mon.String()][0].Text)
	assert.Equal(t, "fixed", s.buckets[tue.String()][0].Text)

	require.NoError(t, s.DeleteTask(tue, 42, true))
	assert.Empty(t, s.DailyTasks())
	assert.NotContains(t, s.buckets, mon.String())
	assert.Len(t, s.buckets[tue.String()], 1)
}

func TestTodoListCompletionIsDerived(t *testing.T) {
	s, _ := newTestStore(t)
	list, err := s.AddTask(mon, true)
	require.NoError(t, err)
	assert.False(t, s.TasksForDate(mon)[0].Completed, "empty list is never complete")

	a, err := s.AddTodoItem(mon, list.ID, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultItemText, a.Text)
	b, err := s.AddTodoItem(mon, list.ID, false)
	require.NoError(t, err)

	require.NoError(t, s.ToggleTodoItem(mon, list.ID, a.ID, false))
	assert.False(t, s.TasksForDate(mon)[0].Completed)

	require.NoError(t, s.ToggleTodoItem(mon, list.ID, b.ID, false))
	e := s.TasksForDate(mon)[0]
	assert.True(t, e.Completed)
	done, total := e.ItemProgress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, total)

	require.NoError(t, s.UpdateTodoItem(mon, list.ID, a.ID, "milk", false))
	assert.Equal(t, "milk", s.TasksForDate(mon)[0].Items[0].Text)

	require.NoError(t, s.DeleteTodoItem(mon, list.ID, a.ID, false))
	require.NoError(t, s.DeleteTodoItem(mon, list.ID, b.ID, false))
	e = s.TasksForDate(mon)[0]
	assert.Empty(t, e.Items)
	assert.False(t, e.Completed)
}

func TestItemOpsOnTaskStoredElsewhere(t *testing.T) {
	s, _ := newTestStore(t)
	list, err := s.AddTask(mon, true)
	require.NoError(t, err)

	// Plain addressing only looks at the given date.
	item, err := s.AddTodoItem(tue, list.ID, false)
	require.NoError(t, err)
	assert.Zero(t, item.ID)

	// Scanning addressing finds it anywhere.
	item, err = s.AddTodoItem(tue, list.ID, true)
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Len(t, s.TasksForDate(mon)[0].Items, 1)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	s, mem := newTestStore(t)
	_, err := s.AddTask(mon, false)
	require.NoError(t, err)
	saves := mem.Saves

	require.NoError(t, s.ToggleTaskComplete(mon, 999, false))
	require.NoError(t, s.ToggleTaskComplete(mon, 999, true))
	require.NoError(t, s.UpdateTask(mon, 999, true, Patch{Text: ptr("x")}))
	require.NoError(t, s.DeleteTask(mon, 999, false))
	require.NoError(t, s.ToggleTodoItem(mon, 999, 1, false))
	_, err = s.AddTodoItem(mon, 999, true)
	require.NoError(t, err)

	assert.Equal(t, saves, mem.Saves)
	assert.Len(t, s.TasksForDate(mon), 1)
}

func TestReclassifyInPlace(t *testing.T) {
	s, _ := newTestStore(t)
	first, err := s.AddTask(mon, false)
	require.NoError(t, err)
	second, err := s.AddTask(mon, false)
	require.NoError(t, err)
	list, err := s.AddTask(mon, true)
	require.NoError(t, err)

	require.NoError(t, s.UpdateTask(mon, first.ID, false, Patch{Daily: ptr(true)}))
	require.NoError(t, s.UpdateTask(mon, list.ID, false, Patch{Daily: ptr(true)}))

	stored := s.buckets[mon.String()]
	require.Len(t, stored, 3)
	assert.Equal(t, first.ID, stored[0].ID, "reclassified task keeps its slot")
	assert.Equal(t, KindDaily, stored[0].Kind)
	assert.Equal(t, KindTodo, stored[2].Kind, "to-do lists cannot become daily")

	entries := s.TasksForDate(mon)
	require.Len(t, entries, 3)
	assert.Equal(t, second.ID, entries[0].OriginalID)
	assert.Equal(t, list.ID, entries[1].OriginalID)
	assert.Equal(t, first.ID, entries[2].OriginalID)

	require.NoError(t, s.UpdateTask(tue, first.ID, true, Patch{Daily: ptr(false)}))
	assert.Empty(t, s.TasksForDate(tue))
}

func TestDeleteLeavesCompletionsUntilPruned(t *testing.T) {
	s, _ := newTestStore(t)
	task, err := s.AddTask(mon, false)
	require.NoError(t, err)
	require.NoError(t, s.UpdateTask(mon, task.ID, false, Patch{Daily: ptr(true)}))
	require.NoError(t, s.ToggleTaskComplete(tue, task.ID, true))

	require.NoError(t, s.DeleteTask(tue, task.ID, true))
	assert.Empty(t, s.TasksForDate(tue))
	assert.Equal(t, []int64{task.ID}, s.completions[tue.String()])

	n, err := s.PruneCompletions()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, s.completions)
}

func TestRoundTripPreservesOrder(t *testing.T) {
	s, mem := newTestStore(t)
	var ids []int64
	for i := 0; i < 5; i++ {
		task, err := s.AddTask(mon, i%2 == 1)
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	_, err := s.AddTodoItem(mon, ids[1], false)
	require.NoError(t, err)
	require.NoError(t, s.UpdateTask(mon, ids[4], false, Patch{Daily: ptr(true)}))
	require.NoError(t, s.ToggleTaskComplete(tue, ids[4], true))
	require.NoError(t, s.ToggleTaskComplete(mon, ids[0], false))

	reopened, err := Open(mem, WithClock(fixedClock()))
	require.NoError(t, err)
	assert.Equal(t, s.buckets, reopened.buckets)
	assert.Equal(t, s.completions, reopened.completions)
	assert.Equal(t, s.TasksForDate(mon), reopened.TasksForDate(mon))
	assert.Equal(t, s.TasksForDate(tue), reopened.TasksForDate(tue))

	next, err := reopened.AddTask(mon, false)
	require.NoError(t, err)
	assert.Greater(t, next.ID, reopened.buckets[mon.String()][1].Items[0].ID)
}

func TestImportBrowserDocument(t *testing.T) {
	s, _ := newTestStore(t)
	doc := `{
		"2025-01-06": [
			{"id": 1736150000000, "text": "Gym", "completed": false, "color": "#ef4444", "isDaily": true, "isTodoList": false},
			{"id": 1736150000001, "text": "Groceries", "completed": false, "color": "#3b82f6", "isDaily": false, "isTodoList": true,
			 "todoItems": [{"id": 1736150000002, "text": "eggs", "completed": true}]}
		],
		"2025-01-07": [],
		"2025-01-07-completions": [1736150000000]
	}`
	require.NoError(t, s.Import([]byte(doc)))

	entries := s.TasksForDate(tue)
	require.Len(t, entries, 1)
	assert.Equal(t, "Gym", entries[0].Text)
	assert.True(t, entries[0].Completed)

	entries = s.TasksForDate(mon)
	require.Len(t, entries, 2)
	assert.Equal(t, "Groceries", entries[0].Text)
	assert.True(t, entries[0].Completed)
	assert.False(t, entries[1].Completed)

	assert.Error(t, s.Import([]byte(`{"weight": {"current": 70}}`)))
	assert.Len(t, s.TasksForDate(mon), 2, "failed import keeps state")
}

func TestMalformedDocumentIsColdStart(t *testing.T) {
	mem := storage.NewMemory()
	require.NoError(t, mem.Save(storage.PlannerKey, []byte("not json")))
	s, err := Open(mem)
	require.NoError(t, err)
	assert.Empty(t, s.Dates())
}

func TestParseDisplayID(t *testing.T) {
	id, d, err := ParseDisplayID("daily-1736150000000-2025-01-07")
	require.NoError(t, err)
	assert.Equal(t, int64(1736150000000), id)
	assert.Equal(t, "2025-01-07", d.String())

	id, d, err = ParseDisplayID("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.True(t, d.IsZero())

	_, _, err = ParseDisplayID("daily-x-2025-01-07")
	assert.Error(t, err)
}

func TestDailyListKeepsItems(t *testing.T) {
	s, mem := newTestStore(t)
	doc := `{"2025-01-06": [{"id": 1, "text": "Stretch", "completed": false, "color": "#10b981",
		"isDaily": true, "isTodoList": true, "todoItems": [{"id": 2, "text": "a", "completed": true}]}]}`
	require.NoError(t, s.Import([]byte(doc)))

	entries := s.TasksForDate(tue)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Daily())
	assert.True(t, entries[0].List)
	require.Len(t, entries[0].Items, 1)

	reopened, err := Open(mem, WithClock(fixedClock()))
	require.NoError(t, err)
	_, err = reopened.AddTask(tue, false)
	require.NoError(t, err)

	var stored map[string][]map[string]any
	data, err := mem.Load(storage.PlannerKey)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &stored))
	first := stored["2025-01-06"][0]
	assert.Equal(t, true, first["isDaily"])
	assert.Equal(t, true, first["isTodoList"])
	assert.Len(t, first["todoItems"], 1)

	require.NoError(t, reopened.UpdateTask(mon, 1, true, Patch{Daily: ptr(false)}))
	task, _, ok := reopened.Find(1)
	require.True(t, ok)
	assert.Equal(t, KindTodo, task.Kind)
	assert.True(t, task.Done())
}

func TestNullBucketEntriesAreSkipped(t *testing.T) {
	s, _ := newTestStore(t)
	doc := `{"2025-01-06": [null, {"id": 5, "text": "Read", "completed": false, "color": "#3b82f6",
		"isDaily": false, "isTodoList": false}]}`
	require.NoError(t, s.Import([]byte(doc)))

	entries := s.TasksForDate(mon)
	require.Len(t, entries, 1)
	assert.Equal(t, "5", entries[0].DisplayID)
}

func TestEntryJSONCarriesPerDateFields(t *testing.T) {
	s, _ := newTestStore(t)
	task, err := s.AddTask(mon, false)
	require.NoError(t, err)
	require.NoError(t, s.UpdateTask(mon, task.ID, false, Patch{Daily: ptr(true)}))
	require.NoError(t, s.ToggleTaskComplete(tue, task.ID, true))

	data, err := json.Marshal(s.TasksForDate(tue)[0])
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, DailyDisplayID(task.ID, tue), got["displayId"])
	assert.Equal(t, "2025-01-07", got["date"])
	assert.Equal(t, true, got["completed"])
	assert.Equal(t, true, got["isDaily"])
}
