package fitness

import "weekplan/internal/dates"

// WeightProgress is the share of the way from the starting weight to the goal,
// in percent, clamped to [0, 100]. Unlike the browser's absolute-value
// formula, the ratio is signed: moving away from the goal counts as 0 rather
// than as progress.
func (d Data) WeightProgress() float64 {
	w := d.Weight
	if w.Starting <= 0 || w.Goal <= 0 || w.Current <= 0 {
		return 0
	}
	span := w.Starting - w.Goal
	if span == 0 {
		if w.Current == w.Goal {
			return 100
		}
		return 0
	}
	p := (w.Starting - w.Current) / span * 100
	return min(max(p, 0), 100)
}

// WorkoutProgress is completed days over the weekly target, in percent.
func (d Data) WorkoutProgress(key string) float64 {
	w, ok := d.Workouts[key]
	if !ok || w.WeeklyTarget <= 0 {
		return 0
	}
	return min(float64(w.Completed)/float64(w.WeeklyTarget)*100, 100)
}

// Indicator names a tracker that met its goal on a day.
type Indicator struct {
	Kind string `json:"kind"`          // "steps", "water" or "workout"
	Key  string `json:"key,omitempty"` // workout key; empty for steps and water
}

// Indicators lists what was achieved on day: steps and water at or above
// goal, then each workout marked done.
func (d Data) Indicators(day dates.Weekday) []Indicator {
	var out []Indicator
	if d.Steps.Goal > 0 && d.Steps.History[day] >= d.Steps.Goal {
		out = append(out, Indicator{Kind: "steps"})
	}
	if d.Water.Goal > 0 && d.Water.History[day] >= d.Water.Goal {
		out = append(out, Indicator{Kind: "water"})
	}
	for _, key := range d.WorkoutKeys() {
		if d.Workouts[key].DoneToday[day] {
			out = append(out, Indicator{Kind: "workout", Key: key})
		}
	}
	return out
}
