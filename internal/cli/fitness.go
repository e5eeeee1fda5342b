package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"weekplan/internal/dates"
	"weekplan/internal/fitness"
)

// fitnessView is the JSON shape of `fitness show`.
type fitnessView struct {
	fitness.Data
	WeightProgress  float64                               `json:"weightProgress"`
	WorkoutProgress map[string]float64                    `json:"workoutProgress"`
	Indicators      map[dates.Weekday][]fitness.Indicator `json:"indicators"`
}

func addFitness(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "fitness",
		Aliases: []string{"fit"},
		Short:   "Track weight, steps, water and workouts",
	}
	addFitnessShow(cmd, a)
	addFitnessWeight(cmd, a)
	addFitnessSteps(cmd, a)
	addFitnessWater(cmd, a)
	addWorkout(cmd, a)
	addFitnessReset(cmd, a)
	topLevel.AddCommand(cmd)
}

// day is the --day flag, defaulting to today's weekday.
func (a *app) day(s string) (dates.Weekday, error) {
	if s == "" {
		return a.tracker.Today(), nil
	}
	return dates.ParseWeekday(s)
}

func addFitnessShow(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show this week's fitness summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showFitness(cmd)
		},
	}
	parent.AddCommand(cmd)
}

func (a *app) showFitness(cmd *cobra.Command) error {
	d := a.tracker.Data()
	v := fitnessView{
		Data:            d,
		WeightProgress:  d.WeightProgress(),
		WorkoutProgress: make(map[string]float64),
		Indicators:      make(map[dates.Weekday][]fitness.Indicator),
	}
	for _, k := range d.WorkoutKeys() {
		v.WorkoutProgress[k] = d.WorkoutProgress(k)
	}
	for _, day := range dates.Week {
		if ind := d.Indicators(day); len(ind) > 0 {
			v.Indicators[day] = ind
		}
	}
	return a.emit(cmd.OutOrStdout(), v, func() string {
		var b strings.Builder
		w := d.Weight
		fmt.Fprintf(&b, "%s %.1f kg, goal %.1f kg, start %.1f kg (%.0f%%)\n\n",
			bold.Sprint("Weight"), w.Current, w.Goal, w.Starting, v.WeightProgress)

		days := newTable(append([]any{""}, weekHeaders()...)...)
		steps := []any{"steps"}
		water := []any{"water"}
		met := []any{"goals"}
		for _, day := range dates.Week {
			steps = append(steps, d.Steps.History[day])
			water = append(water, strconv.FormatFloat(d.Water.History[day], 'f', -1, 64))
			met = append(met, strings.Repeat("•", len(d.Indicators(day))))
		}
		days.AddRow(steps...)
		days.AddRow(water...)
		days.AddRow(met...)
		b.WriteString(days.String())
		fmt.Fprintf(&b, "\nsteps goal %d, water goal %.1f L\n\n", d.Steps.Goal, d.Water.Goal)

		workouts := newTable(append([]any{"KEY", "NAME", "DONE"}, weekHeaders()...)...)
		for _, k := range d.WorkoutKeys() {
			wk := d.Workouts[k]
			row := []any{k, wk.Name, fmt.Sprintf("%d/%d", wk.Completed, wk.WeeklyTarget)}
			for _, day := range dates.Week {
				row = append(row, check(wk.DoneToday[day]))
			}
			workouts.AddRow(row...)
		}
		b.WriteString(workouts.String())
		return b.String()
	})
}

func weekHeaders() []any {
	out := make([]any, len(dates.Week))
	for i, d := range dates.Week {
		out[i] = string(d)
	}
	return out
}

func addFitnessWeight(parent *cobra.Command, a *app) {
	var start float64
	cmd := &cobra.Command{
		Use:   "weight <current> [goal]",
		Short: "Record today's weight and optionally a goal",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums := make([]float64, 2)
			for i, s := range args {
				n, err := strconv.ParseFloat(s, 64)
				if err != nil || n <= 0 {
					return fmt.Errorf("weight %q must be a positive number", s)
				}
				nums[i] = n
			}
			if cmd.Flags().Changed("start") {
				if start <= 0 {
					return errors.New("--start must be a positive number")
				}
				if err := a.tracker.SetStartingWeight(start); err != nil {
					return err
				}
			}
			if err := a.tracker.SaveWeight(nums[0], nums[1]); err != nil {
				return err
			}
			d := a.tracker.Data()
			return a.emit(cmd.OutOrStdout(), d.Weight, func() string {
				return fmt.Sprintf("Weight %.1f kg, %.0f%% of the way to %.1f kg", d.Weight.Current, d.WeightProgress(), d.Weight.Goal)
			})
		},
	}
	cmd.Flags().Float64Var(&start, "start", 0, "set the starting weight")
	parent.AddCommand(cmd)
}

func addFitnessSteps(parent *cobra.Command, a *app) {
	var (
		day  string
		goal int
	)
	cmd := &cobra.Command{
		Use:   "steps [count]",
		Short: "Record steps for --day or set the daily goal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("goal") {
				if goal <= 0 {
					return errors.New("--goal must be positive")
				}
				if err := a.tracker.SetStepsGoal(goal); err != nil {
					return err
				}
			}
			wd, err := a.day(day)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					return fmt.Errorf("steps %q must be a whole number of at least 0", args[0])
				}
				if err := a.tracker.SaveSteps(wd, n); err != nil {
					return err
				}
			}
			s := a.tracker.Data().Steps
			return a.emit(cmd.OutOrStdout(), s, func() string {
				return fmt.Sprintf("Steps %s: %d / %d", wd, s.History[wd], s.Goal)
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "weekday (mon..sun), default today")
	cmd.Flags().IntVar(&goal, "goal", 0, "set the daily steps goal")
	parent.AddCommand(cmd)
}

func addFitnessWater(parent *cobra.Command, a *app) {
	var (
		day  string
		goal float64
	)
	cmd := &cobra.Command{
		Use:   "water [litres]",
		Short: "Record water for --day or set the daily goal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("goal") {
				if goal <= 0 {
					return errors.New("--goal must be positive")
				}
				if err := a.tracker.SetWaterGoal(goal); err != nil {
					return err
				}
			}
			wd, err := a.day(day)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				n, err := strconv.ParseFloat(args[0], 64)
				if err != nil || n < 0 {
					return fmt.Errorf("water %q must be a number of at least 0", args[0])
				}
				if err := a.tracker.SaveWater(wd, n); err != nil {
					return err
				}
			}
			w := a.tracker.Data().Water
			return a.emit(cmd.OutOrStdout(), w, func() string {
				return fmt.Sprintf("Water %s: %.1f / %.1f L", wd, w.History[wd], w.Goal)
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "weekday (mon..sun), default today")
	cmd.Flags().Float64Var(&goal, "goal", 0, "set the daily water goal in litres")
	parent.AddCommand(cmd)
}

func addFitnessReset(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear steps, water and workout days for a new week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.tracker.ResetWeek(); err != nil {
				return err
			}
			return a.showFitness(cmd)
		},
	}
	parent.AddCommand(cmd)
}

func addWorkout(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Manage workouts",
	}

	var day string
	toggle := &cobra.Command{
		Use:   "toggle <key>",
		Short: "Mark a workout done or not done on --day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := a.day(day)
			if err != nil {
				return err
			}
			if err := a.workoutExists(args[0]); err != nil {
				return err
			}
			if err := a.tracker.ToggleWorkoutDone(args[0], wd); err != nil {
				return err
			}
			return a.printWorkout(cmd, args[0])
		},
	}
	toggle.Flags().StringVar(&day, "day", "", "weekday (mon..sun), default today")

	rename := &cobra.Command{
		Use:   "rename <key> <name>",
		Short: "Rename a workout",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.workoutExists(args[0]); err != nil {
				return err
			}
			name := strings.TrimSpace(strings.Join(args[1:], " "))
			if name == "" {
				return errors.New("workout name cannot be empty")
			}
			if err := a.tracker.RenameWorkout(args[0], name); err != nil {
				return err
			}
			return a.printWorkout(cmd, args[0])
		},
	}

	targetCmd := &cobra.Command{
		Use:   "target <key> <days>",
		Short: "Set the days-per-week target (1-7)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.workoutExists(args[0]); err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 || n > 7 {
				return fmt.Errorf("target %q must be between 1 and 7", args[1])
			}
			if err := a.tracker.SetWeeklyTarget(args[0], n); err != nil {
				return err
			}
			return a.printWorkout(cmd, args[0])
		},
	}

	typeCmd := &cobra.Command{
		Use:   "type <key> <type>",
		Short: "Add a workout type",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.workoutExists(args[0]); err != nil {
				return err
			}
			if err := a.tracker.AddWorkoutType(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return a.printWorkout(cmd, args[0])
		},
	}

	var weekly int
	add := &cobra.Command{
		Use:   "add <key> [name]",
		Short: "Create a workout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.tracker.Data().Workouts[args[0]]; ok {
				return fmt.Errorf("workout %q already exists", args[0])
			}
			if err := a.tracker.AddWorkout(args[0], strings.Join(args[1:], " "), weekly); err != nil {
				return err
			}
			return a.printWorkout(cmd, args[0])
		},
	}
	add.Flags().IntVar(&weekly, "target", 3, "days per week (1-7)")

	cmd.AddCommand(toggle, rename, targetCmd, typeCmd, add)
	parent.AddCommand(cmd)
}

func (a *app) workoutExists(key string) error {
	if _, ok := a.tracker.Data().Workouts[key]; !ok {
		return fmt.Errorf("unknown workout %q (have %s)", key, strings.Join(a.tracker.Data().WorkoutKeys(), ", "))
	}
	return nil
}

func (a *app) printWorkout(cmd *cobra.Command, key string) error {
	d := a.tracker.Data()
	w := d.Workouts[key]
	return a.emit(cmd.OutOrStdout(), w, func() string {
		return fmt.Sprintf("%s: %d/%d days (%.0f%%)", w.Name, w.Completed, w.WeeklyTarget, d.WorkoutProgress(key))
	})
}
