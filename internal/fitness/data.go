package fitness

import (
	"maps"
	"slices"

	"weekplan/internal/dates"
)

type WeightPoint struct {
	Date   dates.Date `json:"date"`
	Weight float64    `json:"weight"`
}

type Weight struct {
	Starting float64       `json:"starting"`
	Current  float64       `json:"current"`
	Goal     float64       `json:"goal"`
	History  []WeightPoint `json:"history"`
}

type Steps struct {
	Today   int                   `json:"today"`
	Goal    int                   `json:"goal"`
	History map[dates.Weekday]int `json:"history"`
}

type Water struct {
	Today   float64                   `json:"today"`
	Goal    float64                   `json:"goal"`
	History map[dates.Weekday]float64 `json:"history"`
}

type Workout struct {
	Name         string                 `json:"name"`
	WeeklyTarget int                    `json:"weeklyTarget"`
	Completed    int                    `json:"completed"`
	Types        []string               `json:"types"`
	DoneToday    map[dates.Weekday]bool `json:"doneToday"`
}

// Data is the whole fitness document.
type Data struct {
	Weight   Weight              `json:"weight"`
	Steps    Steps               `json:"steps"`
	Water    Water               `json:"water"`
	Workouts map[string]*Workout `json:"workouts"`
}

// Default is the cold start document.
func Default() Data {
	d := Data{
		Steps: Steps{Goal: 10000},
		Water: Water{Goal: 2.0},
		Workouts: map[string]*Workout{
			"yoga":    newWorkout("yoga", 7, "Morning Flow", "Evening Stretch"),
			"pilates": newWorkout("pilates", 4, "Core", "Full Body"),
			"workout": newWorkout("workout", 3, "Back", "Legs", "Arms"),
		},
	}
	d.normalize()
	return d
}

func newWorkout(name string, target int, types ...string) *Workout {
	return &Workout{Name: name, WeeklyTarget: target, Types: types}
}

// WorkoutKeys returns workout keys in a stable order.
func (d Data) WorkoutKeys() []string {
	var keys []string
	for k := range d.Workouts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// normalize fills maps left nil by older or hand-written documents.
func (d *Data) normalize() {
	if d.Steps.History == nil {
		d.Steps.History = make(map[dates.Weekday]int)
	}
	if d.Water.History == nil {
		d.Water.History = make(map[dates.Weekday]float64)
	}
	if d.Workouts == nil {
		d.Workouts = make(map[string]*Workout)
	}
	for key, w := range d.Workouts {
		if w == nil {
			delete(d.Workouts, key)
			continue
		}
		if w.DoneToday == nil {
			w.DoneToday = make(map[dates.Weekday]bool)
		}
		if w.Types == nil {
			w.Types = []string{}
		}
	}
	for _, day := range dates.Week {
		if _, ok := d.Steps.History[day]; !ok {
			d.Steps.History[day] = 0
		}
		if _, ok := d.Water.History[day]; !ok {
			d.Water.History[day] = 0
		}
		for _, w := range d.Workouts {
			if _, ok := w.DoneToday[day]; !ok {
				w.DoneToday[day] = false
			}
		}
	}
	if d.Weight.History == nil {
		d.Weight.History = []WeightPoint{}
	}
	if d.Weight.Starting == 0 && len(d.Weight.History) > 0 {
		d.Weight.Starting = d.Weight.History[0].Weight
	}
}

func (d Data) clone() Data {
	out := d
	out.Weight.History = slices.Clone(d.Weight.History)
	out.Steps.History = maps.Clone(d.Steps.History)
	out.Water.History = maps.Clone(d.Water.History)
	out.Workouts = make(map[string]*Workout, len(d.Workouts))
	for k, w := range d.Workouts {
		cp := *w
		cp.Types = slices.Clone(w.Types)
		cp.DoneToday = maps.Clone(w.DoneToday)
		out.Workouts[k] = &cp
	}
	return out
}
