package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"weekplan/internal/config"
	"weekplan/internal/dates"
	"weekplan/internal/fitness"
)

const barWidth = 20

func (m Model) updateFitness(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	data := m.tracker.Data()
	workouts := data.WorkoutKeys()
	switch key {
	case k.Left, "left":
		m.fitDay = shiftDay(m.fitDay, -1)
	case k.Right, "right":
		m.fitDay = shiftDay(m.fitDay, 1)
	case k.Today:
		m.fitDay = m.tracker.Today()
	case k.Up, "up":
		m.fitCursor = max(m.fitCursor-1, 0)
	case k.Down, "down":
		m.fitCursor = clampCursor(m.fitCursor+1, len(workouts))
	case k.Toggle:
		if len(workouts) == 0 {
			return m, nil
		}
		wk := workouts[clampCursor(m.fitCursor, len(workouts))]
		if err := m.tracker.ToggleWorkoutDone(wk, m.fitDay); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Toggled %s on %s", data.Workouts[wk].Name, m.fitDay)
	case k.Weight:
		m = m.startInput(inputWeight, "", "current [goal] in kg",
			"Weight: enter current weight and optionally a goal")
		return m, textinput.Blink
	case k.Steps:
		m = m.startInput(inputSteps, strconv.Itoa(data.Steps.History[m.fitDay]), "steps",
			fmt.Sprintf("Steps for %s", m.fitDay))
		return m, textinput.Blink
	case k.Water:
		m = m.startInput(inputWater, strconv.FormatFloat(data.Water.History[m.fitDay], 'f', -1, 64), "litres",
			fmt.Sprintf("Water for %s", m.fitDay))
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) saveFitnessInput(v string) error {
	switch m.target {
	case inputWeight:
		fields := strings.Fields(v)
		if len(fields) == 0 || len(fields) > 2 {
			return errors.New("enter a weight, optionally followed by a goal")
		}
		var nums [2]float64
		for i, f := range fields {
			n, err := strconv.ParseFloat(f, 64)
			if err != nil || n <= 0 {
				return fmt.Errorf("weight %q must be a positive number", f)
			}
			nums[i] = n
		}
		return m.tracker.SaveWeight(nums[0], nums[1])
	case inputSteps:
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("steps %q must be a whole number of at least 0", v)
		}
		return m.tracker.SaveSteps(m.fitDay, n)
	case inputWater:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("water %q must be a number of at least 0", v)
		}
		return m.tracker.SaveWater(m.fitDay, n)
	}
	return nil
}

func (m Model) renderFitness() string {
	d := m.tracker.Data()
	var b strings.Builder

	w := d.Weight
	b.WriteString(dayHeaderStyle.Render("Weight"))
	b.WriteString("\n")
	if w.Current > 0 {
		b.WriteString(fmt.Sprintf("current %.1f kg • goal %.1f kg • start %.1f kg\n", w.Current, w.Goal, w.Starting))
	} else {
		b.WriteString(faintStyle.Render("no weight recorded"))
		b.WriteString("\n")
	}
	b.WriteString(bar(d.WeightProgress()))
	b.WriteString("\n\n")

	b.WriteString(m.renderWeekStrip(d))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Steps %-4s %6d / %d\n", m.fitDay, d.Steps.History[m.fitDay], d.Steps.Goal))
	b.WriteString(fmt.Sprintf("Water %-4s %6.1f / %.1f L\n\n", m.fitDay, d.Water.History[m.fitDay], d.Water.Goal))

	b.WriteString(dayHeaderStyle.Render("Workouts"))
	b.WriteString("\n")
	keys := d.WorkoutKeys()
	if len(keys) == 0 {
		b.WriteString(faintStyle.Render("no workouts"))
		b.WriteString("\n")
	}
	for i, key := range keys {
		wk := d.Workouts[key]
		cursor := " "
		if i == clampCursor(m.fitCursor, len(keys)) {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %-10s %d/%d %s", cursor, checkbox(wk.DoneToday[m.fitDay]), wk.Name,
			wk.Completed, wk.WeeklyTarget, bar(d.WorkoutProgress(key))))
		if len(wk.Types) > 0 {
			b.WriteString(faintStyle.Render("  " + strings.Join(wk.Types, ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderWeekStrip shows each day with a mark per goal met.
func (m Model) renderWeekStrip(d fitness.Data) string {
	today := m.tracker.Today()
	parts := make([]string, 0, len(dates.Week))
	for _, day := range dates.Week {
		label := string(day) + strings.Repeat("•", len(d.Indicators(day)))
		label = fmt.Sprintf("%-8s", label)
		switch {
		case day == m.fitDay:
			label = selectedDayStyle.Render(label)
		case day == today:
			label = todayStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

func bar(pct float64) string {
	filled := int(pct / 100 * barWidth)
	filled = min(max(filled, 0), barWidth)
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		faintStyle.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %3.0f%%", pct)
}

func shiftDay(day dates.Weekday, n int) dates.Weekday {
	i := 0
	for j, d := range dates.Week {
		if d == day {
			i = j
		}
	}
	return dates.Week[wrapIndex(i+n, len(dates.Week))]
}

func renderFitnessHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s day • %s/%s workout • %s done • %s weight • %s steps • %s water • %s planner • %s quit",
		k.Left, k.Right, k.Up, k.Down, keyLabel(k.Toggle), k.Weight, k.Steps, k.Water, k.Fitness, k.Quit)
}
