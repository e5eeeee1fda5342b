package planner

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"weekplan/internal/dates"
)

// Entry is a task as seen from one date.
type Entry struct {
	Task
	// DisplayID is unique per date: daily tasks get "daily-<id>-<date>".
	DisplayID string
	// OriginalID is the stored task id.
	OriginalID int64
	// Date is the date the entry was read for.
	Date dates.Date
	// Completed is the effective completion on Date.
	Completed bool
}

type entryJSON struct {
	taskJSON
	DisplayID  string     `json:"displayId"`
	OriginalID int64      `json:"originalId"`
	Date       dates.Date `json:"date"`
}

// MarshalJSON emits the task's wire fields with the per-date completion and
// the display id in place of the promoted Task encoder.
func (e Entry) MarshalJSON() ([]byte, error) {
	w := e.Task.wire()
	w.Completed = e.Completed
	return json.Marshal(entryJSON{
		taskJSON:   w,
		DisplayID:  e.DisplayID,
		OriginalID: e.OriginalID,
		Date:       e.Date,
	})
}

// Daily reports whether the entry is a daily task.
func (e Entry) Daily() bool {
	return e.Kind == KindDaily
}

// TasksForDate returns date's own tasks in insertion order followed by every
// distinct daily task, with completion read from date's completion set.
func (s *Store) TasksForDate(date dates.Date) []Entry {
	key := date.String()
	var out []Entry
	for _, t := range s.buckets[key] {
		if t.Kind == KindDaily {
			continue
		}
		t = t.clone()
		out = append(out, Entry{
			Task:       t,
			DisplayID:  strconv.FormatInt(t.ID, 10),
			OriginalID: t.ID,
			Date:       date,
			Completed:  t.Done(),
		})
	}
	done := s.completions[key]
	for _, t := range s.DailyTasks() {
		t.Completed = slices.Contains(done, t.ID)
		out = append(out, Entry{
			Task:       t,
			DisplayID:  DailyDisplayID(t.ID, date),
			OriginalID: t.ID,
			Date:       date,
			Completed:  t.Completed,
		})
	}
	return out
}

// DailyTasks returns each daily task once, deduplicated by id. Buckets are
// scanned in date order and the first copy found wins.
func (s *Store) DailyTasks() []Task {
	seen := make(map[int64]bool)
	var out []Task
	for _, k := range s.bucketKeys() {
		for _, t := range s.buckets[k] {
			if t.Kind != KindDaily || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t.clone())
		}
	}
	return out
}

func (s *Store) findDaily(taskID int64) (Task, bool) {
	for _, t := range s.DailyTasks() {
		if t.ID == taskID {
			return t, true
		}
	}
	return Task{}, false
}

// Find locates a stored task by id and returns the date bucket holding its
// first copy.
func (s *Store) Find(taskID int64) (Task, dates.Date, bool) {
	for _, k := range s.bucketKeys() {
		for _, t := range s.buckets[k] {
			if t.ID != taskID {
				continue
			}
			d, err := dates.Parse(k)
			if err != nil {
				continue
			}
			return t.clone(), d, true
		}
	}
	return Task{}, dates.Date{}, false
}

// DailyDisplayID formats the per-date id of a daily task.
func DailyDisplayID(taskID int64, date dates.Date) string {
	return fmt.Sprintf("daily-%d-%s", taskID, date)
}

// ParseDisplayID accepts a plain numeric id or a "daily-<id>-<date>" id. The
// date is zero for plain ids.
func ParseDisplayID(s string) (int64, dates.Date, error) {
	rest, ok := strings.CutPrefix(s, "daily-")
	if !ok {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, dates.Date{}, fmt.Errorf("invalid task id %q", s)
		}
		return id, dates.Date{}, nil
	}
	idPart, datePart, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, dates.Date{}, fmt.Errorf("invalid daily id %q", s)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, dates.Date{}, fmt.Errorf("invalid daily id %q", s)
	}
	d, err := dates.Parse(datePart)
	if err != nil {
		return 0, dates.Date{}, fmt.Errorf("invalid daily id %q: %w", s, err)
	}
	return id, d, nil
}
