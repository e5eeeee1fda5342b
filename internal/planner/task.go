package planner

import (
	"encoding/json"
	"fmt"
)

// Default texts for new records.
const (
	DefaultTaskText = "New Task"
	DefaultListText = "To-Do List"
	DefaultItemText = "New item"
	DefaultColor    = "#3b82f6"
)

// Kind tells the three task shapes apart.
type Kind int

const (
	// KindPlain is a one-off task living in a single date bucket.
	KindPlain Kind = iota
	// KindDaily recurs on every date; its completion is tracked per date.
	KindDaily
	// KindTodo derives its completion from its items.
	KindTodo
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindDaily:
		return "daily"
	case KindTodo:
		return "todo"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TodoItem is one line of a to-do-list task.
type TodoItem struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is a planner record. Items only exist for KindTodo and for daily
// tasks with List set. Completed is only authoritative for KindPlain.
type Task struct {
	ID        int64
	Text      string
	Color     string
	Kind      Kind
	Completed bool
	Items     []TodoItem
	// List marks a daily task that also carries the to-do-list flag. Its
	// items are kept untouched so the record round-trips.
	List bool
}

// Done reports the effective completion of the task. For a to-do list it is
// true iff there is at least one item and every item is complete.
func (t Task) Done() bool {
	if t.Kind != KindTodo {
		return t.Completed
	}
	if len(t.Items) == 0 {
		return false
	}
	for _, it := range t.Items {
		if !it.Completed {
			return false
		}
	}
	return true
}

// ItemProgress returns completed and total item counts.
func (t Task) ItemProgress() (done, total int) {
	for _, it := range t.Items {
		if it.Completed {
			done++
		}
	}
	return done, len(t.Items)
}

func (t Task) clone() Task {
	if t.Items != nil {
		t.Items = append([]TodoItem(nil), t.Items...)
	}
	return t
}

// taskJSON is the browser wire shape: kinds are boolean flags.
type taskJSON struct {
	ID         int64      `json:"id"`
	Text       string     `json:"text"`
	Completed  bool       `json:"completed"`
	Color      string     `json:"color"`
	IsDaily    bool       `json:"isDaily"`
	IsTodoList bool       `json:"isTodoList"`
	TodoItems  []TodoItem `json:"todoItems,omitempty"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.wire())
}

func (t Task) wire() taskJSON {
	w := taskJSON{
		ID:         t.ID,
		Text:       t.Text,
		Completed:  t.Completed,
		Color:      t.Color,
		IsDaily:    t.Kind == KindDaily,
		IsTodoList: t.Kind == KindTodo || t.List,
	}
	if t.Kind == KindTodo || t.List {
		w.TodoItems = t.Items
	}
	return w
}

// UnmarshalJSON maps the flag pair onto Kind. A record flagged both daily and
// to-do list decodes as daily with List set and its items kept.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Task{
		ID:        w.ID,
		Text:      w.Text,
		Completed: w.Completed,
		Color:     w.Color,
	}
	switch {
	case w.IsDaily:
		t.Kind = KindDaily
		if w.IsTodoList {
			t.List = true
			t.Items = w.TodoItems
		}
	case w.IsTodoList:
		t.Kind = KindTodo
		t.Items = w.TodoItems
	default:
		t.Kind = KindPlain
	}
	return nil
}
