package planner

import (
	"slices"

	"weekplan/internal/dates"
)

// Patch holds the task fields UpdateTask merges. Nil fields are left alone.
type Patch struct {
	Text  *string
	Color *string
	// Daily reclassifies a plain task as daily (true) or a daily task as
	// plain (false) in place. It is ignored for to-do lists.
	Daily *bool
}

// AddTask appends a new plain task or to-do list to date's bucket.
func (s *Store) AddTask(date dates.Date, todo bool) (Task, error) {
	t := Task{
		ID:    s.nextID(),
		Text:  DefaultTaskText,
		Color: s.color,
		Kind:  KindPlain,
	}
	if todo {
		t.Text = DefaultListText
		t.Kind = KindTodo
	}
	key := date.String()
	s.buckets[key] = append(s.buckets[key], t)
	s.log.Debug("task added", "id", t.ID, "date", key, "kind", t.Kind)
	return t.clone(), s.persist("add task")
}

// UpdateTask merges patch into the addressed task. Daily addressing patches
// every stored copy; plain addressing only looks in date's bucket.
func (s *Store) UpdateTask(date dates.Date, taskID int64, daily bool, patch Patch) error {
	found := s.apply(date, taskID, daily, func(t *Task) {
		if patch.Text != nil {
			t.Text = *patch.Text
		}
		if patch.Color != nil {
			t.Color = *patch.Color
		}
		if patch.Daily != nil && t.Kind != KindTodo {
			switch {
			case *patch.Daily:
				t.Kind = KindDaily
			case t.List:
				t.Kind = KindTodo
				t.List = false
			default:
				t.Kind = KindPlain
			}
		}
	})
	if !found {
		return nil
	}
	return s.persist("update task")
}

// ToggleTaskComplete flips completion. For daily tasks only date's completion
// set changes; other dates are untouched.
func (s *Store) ToggleTaskComplete(date dates.Date, taskID int64, daily bool) error {
	if daily {
		if _, ok := s.findDaily(taskID); !ok {
			return nil
		}
		key := date.String()
		set := s.completions[key]
		if i := slices.Index(set, taskID); i >= 0 {
			set = slices.Delete(set, i, i+1)
		} else {
			set = append(set, taskID)
		}
		if len(set) == 0 {
			delete(s.completions, key)
		} else {
			s.completions[key] = set
		}
		return s.persist("toggle task")
	}
	found := s.apply(date, taskID, false, func(t *Task) {
		t.Completed = !t.Completed
	})
	if !found {
		return nil
	}
	return s.persist("toggle task")
}

// DeleteTask removes the addressed task. Completion entries naming a deleted
// daily task stay until PruneCompletions.
func (s *Store) DeleteTask(date dates.Date, taskID int64, daily bool) error {
	keys := []string{date.String()}
	if daily {
		keys = s.bucketKeys()
	}
	removed := 0
	for _, k := range keys {
		tasks, ok := s.buckets[k]
		if !ok {
			continue
		}
		kept := slices.DeleteFunc(tasks, func(t Task) bool { return t.ID == taskID })
		removed += len(tasks) - len(kept)
		if len(kept) == 0 {
			delete(s.buckets, k)
		} else {
			s.buckets[k] = kept
		}
	}
	if removed == 0 {
		return nil
	}
	s.log.Debug("task deleted", "id", taskID, "daily", daily, "copies", removed)
	return s.persist("delete task")
}

// AddTodoItem appends a new incomplete item to the addressed to-do list.
func (s *Store) AddTodoItem(date dates.Date, taskID int64, daily bool) (TodoItem, error) {
	item := TodoItem{Text: DefaultItemText}
	found := s.applyList(date, taskID, daily, func(t *Task) {
		if item.ID == 0 {
			item.ID = s.nextID()
		}
		t.Items = append(t.Items, item)
	})
	if !found {
		return TodoItem{}, nil
	}
	return item, s.persist("add item")
}

// ToggleTodoItem flips one item's completion.
func (s *Store) ToggleTodoItem(date dates.Date, taskID, itemID int64, daily bool) error {
	return s.updateItem(date, taskID, itemID, daily, "toggle item", func(it *TodoItem) {
		it.Completed = !it.Completed
	})
}

// UpdateTodoItem replaces one item's text.
func (s *Store) UpdateTodoItem(date dates.Date, taskID, itemID int64, text string, daily bool) error {
	return s.updateItem(date, taskID, itemID, daily, "update item", func(it *TodoItem) {
		it.Text = text
	})
}

// DeleteTodoItem removes one item.
func (s *Store) DeleteTodoItem(date dates.Date, taskID, itemID int64, daily bool) error {
	removed := false
	s.applyList(date, taskID, daily, func(t *Task) {
		n := len(t.Items)
		t.Items = slices.DeleteFunc(t.Items, func(it TodoItem) bool { return it.ID == itemID })
		if len(t.Items) != n {
			removed = true
		}
		if len(t.Items) == 0 {
			t.Items = nil
		}
	})
	if !removed {
		return nil
	}
	return s.persist("delete item")
}

// PruneCompletions drops completion ids that no longer name a daily task and
// reports how many were dropped.
func (s *Store) PruneCompletions() (int, error) {
	live := make(map[int64]bool)
	for _, t := range s.DailyTasks() {
		live[t.ID] = true
	}
	dropped := 0
	for k, ids := range s.completions {
		kept := slices.DeleteFunc(ids, func(id int64) bool { return !live[id] })
		dropped += len(ids) - len(kept)
		if len(kept) == 0 {
			delete(s.completions, k)
		} else {
			s.completions[k] = kept
		}
	}
	if dropped == 0 {
		return 0, nil
	}
	s.log.Info("pruned orphaned completions", "count", dropped)
	return dropped, s.persist("prune")
}

func (s *Store) updateItem(date dates.Date, taskID, itemID int64, daily bool, op string, fn func(*TodoItem)) error {
	changed := false
	s.applyList(date, taskID, daily, func(t *Task) {
		for i := range t.Items {
			if t.Items[i].ID == itemID {
				fn(&t.Items[i])
				changed = true
			}
		}
	})
	if !changed {
		return nil
	}
	return s.persist(op)
}

// apply runs fn on every task with taskID in the addressed buckets: all task
// buckets for daily addressing, date's bucket otherwise. Zero or several
// matches are both fine.
func (s *Store) apply(date dates.Date, taskID int64, daily bool, fn func(*Task)) bool {
	keys := []string{date.String()}
	if daily {
		keys = s.bucketKeys()
	}
	found := false
	for _, k := range keys {
		tasks := s.buckets[k]
		for i := range tasks {
			if tasks[i].ID == taskID {
				fn(&tasks[i])
				found = true
			}
		}
	}
	return found
}

// applyList is apply restricted to to-do lists.
func (s *Store) applyList(date dates.Date, taskID int64, daily bool, fn func(*Task)) bool {
	found := false
	s.apply(date, taskID, daily, func(t *Task) {
		if t.Kind == KindTodo {
			fn(t)
			found = true
		}
	})
	return found
}
