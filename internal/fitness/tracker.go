// Package fitness tracks weight, steps, water and weekly workouts in a single
// document. Invalid numeric input is ignored and the previous value kept.
package fitness

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weekplan/internal/dates"
	"weekplan/internal/logging"
	"weekplan/internal/storage"
)

// Tracker owns the fitness document and writes it through on every change.
// It is not safe for concurrent use.
type Tracker struct {
	backend storage.Backend
	log     *slog.Logger
	now     func() time.Time
	data    Data
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// Open loads the fitness document, falling back to Default when it is
// absent or unreadable.
func Open(backend storage.Backend, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		backend: backend,
		log:     logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-reads the stored document.
func (t *Tracker) Reload() error {
	var d Data
	found, err := storage.LoadJSON(t.backend, storage.FitnessKey, &d)
	if err != nil {
		var syntax *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &syntax) && !errors.As(err, &typeErr) {
			return fmt.Errorf("fitness: load: %w", err)
		}
		t.log.Warn("fitness document unreadable, using defaults", "error", err)
		found = false
	}
	if !found {
		t.data = Default()
		return nil
	}
	d.normalize()
	t.data = d
	return nil
}

// Import replaces the document and persists it.
func (t *Tracker) Import(data []byte) error {
	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("fitness: import: %w", err)
	}
	d.normalize()
	t.data = d
	return t.persist("import")
}

// Snapshot returns the persisted form of the document.
func (t *Tracker) Snapshot() ([]byte, error) {
	return json.Marshal(t.data)
}

// Data returns a copy of the document.
func (t *Tracker) Data() Data {
	return t.data.clone()
}

// Today is the current weekday according to the tracker clock.
func (t *Tracker) Today() dates.Weekday {
	return dates.FromTime(t.now()).Weekday()
}

func (t *Tracker) persist(op string) error {
	if err := storage.SaveJSON(t.backend, storage.FitnessKey, t.data); err != nil {
		t.log.Error("fitness save failed", "op", op, "error", err)
		return fmt.Errorf("fitness: %s: %w", op, err)
	}
	t.log.Debug("fitness saved", "op", op)
	return nil
}

// SaveWeight records a positive current weight (appending a history point
// dated today) and a positive goal. Other values are ignored.
func (t *Tracker) SaveWeight(current, goal float64) error {
	changed := false
	if current > 0 {
		if len(t.data.Weight.History) == 0 && t.data.Weight.Starting <= 0 {
			t.data.Weight.Starting = current
		}
		t.data.Weight.Current = current
		t.data.Weight.History = append(t.data.Weight.History, WeightPoint{
			Date:   dates.FromTime(t.now()),
			Weight: current,
		})
		changed = true
	}
	if goal > 0 {
		t.data.Weight.Goal = goal
		changed = true
	}
	if !changed {
		return nil
	}
	return t.persist("save weight")
}

// SetStartingWeight sets the baseline used by WeightProgress.
func (t *Tracker) SetStartingWeight(v float64) error {
	if v <= 0 {
		return nil
	}
	t.data.Weight.Starting = v
	return t.persist("starting weight")
}

// SaveSteps stores a non-negative step count for day.
func (t *Tracker) SaveSteps(day dates.Weekday, steps int) error {
	if steps < 0 {
		return nil
	}
	t.data.Steps.History[day] = steps
	if day == t.Today() {
		t.data.Steps.Today = steps
	}
	return t.persist("save steps")
}

// SaveWater stores a non-negative volume in litres for day.
func (t *Tracker) SaveWater(day dates.Weekday, litres float64) error {
	if litres < 0 {
		return nil
	}
	t.data.Water.History[day] = litres
	if day == t.Today() {
		t.data.Water.Today = litres
	}
	return t.persist("save water")
}

func (t *Tracker) SetStepsGoal(goal int) error {
	if goal <= 0 {
		return nil
	}
	t.data.Steps.Goal = goal
	return t.persist("steps goal")
}

func (t *Tracker) SetWaterGoal(goal float64) error {
	if goal <= 0 {
		return nil
	}
	t.data.Water.Goal = goal
	return t.persist("water goal")
}

// AddWorkout creates a workout under key. An existing key is left untouched.
func (t *Tracker) AddWorkout(key, name string, target int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if _, ok := t.data.Workouts[key]; ok {
		return nil
	}
	if strings.TrimSpace(name) == "" {
		name = key
	}
	w := newWorkout(name, clampTarget(target))
	t.data.Workouts[key] = w
	t.data.normalize()
	return t.persist("add workout")
}

func (t *Tracker) RenameWorkout(key, name string) error {
	w, ok := t.data.Workouts[key]
	if !ok || strings.TrimSpace(name) == "" {
		return nil
	}
	w.Name = name
	return t.persist("rename workout")
}

// SetWeeklyTarget sets the days-per-week target, clamped to 1..7.
func (t *Tracker) SetWeeklyTarget(key string, target int) error {
	w, ok := t.data.Workouts[key]
	if !ok {
		return nil
	}
	w.WeeklyTarget = clampTarget(target)
	return t.persist("weekly target")
}

func (t *Tracker) AddWorkoutType(key, typ string) error {
	w, ok := t.data.Workouts[key]
	typ = strings.TrimSpace(typ)
	if !ok || typ == "" {
		return nil
	}
	w.Types = append(w.Types, typ)
	return t.persist("add workout type")
}

// ToggleWorkoutDone flips day's done flag and recounts completed days.
func (t *Tracker) ToggleWorkoutDone(key string, day dates.Weekday) error {
	w, ok := t.data.Workouts[key]
	if !ok {
		return nil
	}
	w.DoneToday[day] = !w.DoneToday[day]
	w.Completed = 0
	for _, done := range w.DoneToday {
		if done {
			w.Completed++
		}
	}
	return t.persist("toggle workout")
}

// ResetWeek clears the weekly histories for a new week.
func (t *Tracker) ResetWeek() error {
	t.data.Steps.Today = 0
	t.data.Water.Today = 0
	for _, day := range dates.Week {
		t.data.Steps.History[day] = 0
		t.data.Water.History[day] = 0
		for _, w := range t.data.Workouts {
			w.DoneToday[day] = false
		}
	}
	for _, w := range t.data.Workouts {
		w.Completed = 0
	}
	return t.persist("reset week")
}

func clampTarget(n int) int {
	return min(max(n, 1), 7)
}
