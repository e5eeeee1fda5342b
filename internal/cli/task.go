package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"weekplan/internal/dates"
	"weekplan/internal/planner"
)

// entryView is the JSON shape of a task as seen from one date.
type entryView struct {
	ID        string             `json:"id"`
	TaskID    int64              `json:"taskId"`
	Date      string             `json:"date"`
	Kind      string             `json:"kind"`
	Text      string             `json:"text"`
	Color     string             `json:"color"`
	Completed bool               `json:"completed"`
	Items     []planner.TodoItem `json:"items,omitempty"`
}

func viewOf(e planner.Entry) entryView {
	return entryView{
		ID:        e.DisplayID,
		TaskID:    e.OriginalID,
		Date:      e.Date.String(),
		Kind:      e.Kind.String(),
		Text:      e.Text,
		Color:     e.Color,
		Completed: e.Completed,
		Items:     e.Items,
	}
}

// target is a resolved task address: where plain operations look and whether
// daily addressing applies.
type target struct {
	id    int64
	date  dates.Date
	daily bool
	task  planner.Task
}

// resolve accepts a plain id or a daily display id. Plain tasks resolve to
// the bucket holding them; daily tasks to the display id's date or --date.
func (a *app) resolve(s string) (target, error) {
	id, d, err := planner.ParseDisplayID(s)
	if err != nil {
		return target{}, err
	}
	t, home, ok := a.store.Find(id)
	if !ok {
		return target{}, fmt.Errorf("task %s not found", s)
	}
	tg := target{id: id, date: home, task: t, daily: t.Kind == planner.KindDaily}
	if tg.daily {
		if d.IsZero() {
			if d, err = a.date(); err != nil {
				return target{}, err
			}
		}
		tg.date = d
	}
	return tg, nil
}

func addTask(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage planner tasks",
	}
	addTaskAdd(cmd, a)
	addTaskList(cmd, a)
	addTaskWeek(cmd, a)
	addTaskMonth(cmd, a)
	addTaskToggle(cmd, a)
	addTaskEdit(cmd, a)
	addTaskDaily(cmd, a)
	addTaskDelete(cmd, a)
	topLevel.AddCommand(cmd)
}

func addTaskAdd(parent *cobra.Command, a *app) {
	var (
		list  bool
		daily bool
		color string
	)
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a task or to-do list on --date",
		Example: `
weekplan task add "Call the bank"
weekplan task add --list Groceries
weekplan task add --daily --date 2025-01-06 Stretch
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list && daily {
				return errors.New("a to-do list cannot be daily")
			}
			d, err := a.date()
			if err != nil {
				return err
			}
			t, err := a.store.AddTask(d, list)
			if err != nil {
				return err
			}
			patch := planner.Patch{}
			if text := strings.TrimSpace(strings.Join(args, " ")); text != "" {
				patch.Text = &text
			}
			if color != "" {
				patch.Color = &color
			}
			if daily {
				patch.Daily = &daily
			}
			if patch != (planner.Patch{}) {
				if err := a.store.UpdateTask(d, t.ID, false, patch); err != nil {
					return err
				}
			}
			e, err := a.entry(d, t.ID)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), viewOf(e), func() string {
				return fmt.Sprintf("Added %s %q on %s (id %s)", e.Kind, e.Text, d, e.DisplayID)
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "create a to-do list")
	cmd.Flags().BoolVar(&daily, "daily", false, "repeat the task every day")
	cmd.Flags().StringVar(&color, "color", "", "task color, e.g. #ef4444")
	parent.AddCommand(cmd)
}

func addTaskList(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks shown on --date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.date()
			if err != nil {
				return err
			}
			entries := a.store.TasksForDate(d)
			views := make([]entryView, 0, len(entries))
			for _, e := range entries {
				views = append(views, viewOf(e))
			}
			return a.emit(cmd.OutOrStdout(), views, func() string {
				if len(entries) == 0 {
					return fmt.Sprintf("No tasks on %s", d)
				}
				tbl := newTable("", "ID", "KIND", "TEXT", "ITEMS")
				for _, e := range entries {
					tbl.AddRow(check(e.Completed), e.DisplayID, e.Kind, e.Text, itemSummary(e.Task))
					if e.Kind == planner.KindTodo {
						for _, it := range e.Items {
							tbl.AddRow("", "", "", fmt.Sprintf("  %s %s", check(it.Completed), it.Text), it.ID)
						}
					}
				}
				return tbl.String()
			})
		},
	}
	parent.AddCommand(cmd)
}

func addTaskWeek(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the Monday-first week containing --date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.date()
			if err != nil {
				return err
			}
			week := dates.WeekOf(d)
			byDay := make(map[string][]entryView, len(week))
			for _, day := range week {
				views := []entryView{}
				for _, e := range a.store.TasksForDate(day) {
					views = append(views, viewOf(e))
				}
				byDay[day.String()] = views
			}
			return a.emit(cmd.OutOrStdout(), byDay, func() string {
				tbl := newTable("DATE", "", "ID", "TEXT")
				for _, day := range week {
					views := byDay[day.String()]
					label := day.Format("Mon 2006-01-02")
					if len(views) == 0 {
						tbl.AddRow(label, "", "", "")
					}
					for i, v := range views {
						if i > 0 {
							label = ""
						}
						tbl.AddRow(label, check(v.Completed), v.ID, v.Text)
					}
				}
				return tbl.String()
			})
		},
	}
	parent.AddCommand(cmd)
}

func addTaskMonth(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show the month grid containing --date with task counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.date()
			if err != nil {
				return err
			}
			cells := dates.MonthGrid(d)
			counts := make(map[string]int)
			for _, c := range cells {
				if !c.CurrentMonth {
					continue
				}
				if n := len(a.store.TasksForDate(c.Date)); n > 0 {
					counts[c.String()] = n
				}
			}
			return a.emit(cmd.OutOrStdout(), counts, func() string {
				var b strings.Builder
				b.WriteString(bold.Sprint(d.Format("January 2006")))
				b.WriteString("\n")
				tbl := newTable("Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat")
				row := make([]any, 0, 7)
				for _, c := range cells {
					label := ""
					if c.CurrentMonth {
						label = fmt.Sprintf("%2d", c.Day())
						if n := counts[c.String()]; n > 0 {
							label += fmt.Sprintf(" (%d)", n)
						}
					}
					row = append(row, label)
					if len(row) == 7 {
						tbl.AddRow(row...)
						row = row[:0]
					}
				}
				b.WriteString(tbl.String())
				return b.String()
			})
		},
	}
	parent.AddCommand(cmd)
}

func addTaskToggle(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle completion; daily tasks toggle on --date only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if tg.task.Kind == planner.KindTodo {
				return errors.New("a to-do list is complete when all its items are; toggle items instead")
			}
			if err := a.store.ToggleTaskComplete(tg.date, tg.id, tg.daily); err != nil {
				return err
			}
			e, err := a.entry(tg.date, tg.id)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), viewOf(e), func() string {
				return fmt.Sprintf("%s %q on %s", humanDone(e.Completed), e.Text, tg.date)
			})
		},
	}
	parent.AddCommand(cmd)
}

func addTaskEdit(parent *cobra.Command, a *app) {
	var text, color string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's text or color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			patch := planner.Patch{}
			if cmd.Flags().Changed("text") {
				patch.Text = &text
			}
			if cmd.Flags().Changed("color") {
				patch.Color = &color
			}
			if patch == (planner.Patch{}) {
				return errors.New("nothing to change: pass --text or --color")
			}
			if err := a.store.UpdateTask(tg.date, tg.id, tg.daily, patch); err != nil {
				return err
			}
			return a.printEntry(cmd, tg.date, tg.id, "Updated")
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "new text")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	parent.AddCommand(cmd)
}

func addTaskDaily(parent *cobra.Command, a *app) {
	var off bool
	cmd := &cobra.Command{
		Use:   "daily <id>",
		Short: "Make a task repeat every day, or stop with --off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if tg.task.Kind == planner.KindTodo {
				return errors.New("a to-do list cannot be daily")
			}
			daily := !off
			if err := a.store.UpdateTask(tg.date, tg.id, tg.daily, planner.Patch{Daily: &daily}); err != nil {
				return err
			}
			return a.printEntry(cmd, tg.date, tg.id, "Updated")
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "stop repeating")
	parent.AddCommand(cmd)
}

func addTaskDelete(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task; daily tasks disappear from every date",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteTask(tg.date, tg.id, tg.daily); err != nil {
				return err
			}
			out := map[string]any{"deleted": tg.id}
			return a.emit(cmd.OutOrStdout(), out, func() string {
				return fmt.Sprintf("Deleted %q", tg.task.Text)
			})
		},
	}
	parent.AddCommand(cmd)
}

// entry finds the task with id as listed on d.
func (a *app) entry(d dates.Date, id int64) (planner.Entry, error) {
	for _, e := range a.store.TasksForDate(d) {
		if e.OriginalID == id {
			return e, nil
		}
	}
	return planner.Entry{}, fmt.Errorf("task %d not found on %s", id, d)
}

func (a *app) printEntry(cmd *cobra.Command, d dates.Date, id int64, verb string) error {
	e, err := a.entry(d, id)
	if err != nil {
		return err
	}
	return a.emit(cmd.OutOrStdout(), viewOf(e), func() string {
		return fmt.Sprintf("%s %s %q (id %s)", verb, e.Kind, e.Text, e.DisplayID)
	})
}

func itemSummary(t planner.Task) string {
	if t.Kind != planner.KindTodo {
		return ""
	}
	done, total := t.ItemProgress()
	return fmt.Sprintf("%d/%d", done, total)
}

func humanDone(done bool) string {
	if done {
		return "Completed"
	}
	return "Reopened"
}
