package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"weekplan/internal/config"
	"weekplan/internal/dates"
	"weekplan/internal/planner"
)

const columnWidth = 22

func (m Model) entries() []planner.Entry {
	return m.store.TasksForDate(m.day)
}

func (m Model) current() (planner.Entry, bool) {
	entries := m.entries()
	if len(entries) == 0 {
		return planner.Entry{}, false
	}
	return entries[clampCursor(m.cursor, len(entries))], true
}

func (m Model) currentItem() (planner.Entry, planner.TodoItem, bool) {
	e, ok := m.current()
	if !ok || !m.inItems || len(e.Items) == 0 {
		return e, planner.TodoItem{}, false
	}
	return e, e.Items[clampCursor(m.itemCursor, len(e.Items))], true
}

func (m Model) clampPlannerCursor() Model {
	entries := m.entries()
	m.cursor = clampCursor(m.cursor, len(entries))
	if len(entries) == 0 || entries[m.cursor].Kind != planner.KindTodo {
		m.inItems = false
	}
	if m.inItems {
		m.itemCursor = clampCursor(m.itemCursor, len(entries[m.cursor].Items))
	}
	return m
}

// selectTask moves the cursor onto the entry with id on the current day.
func (m Model) selectTask(id int64) Model {
	for i, e := range m.entries() {
		if e.OriginalID == id {
			m.cursor = i
			return m
		}
	}
	return m.clampPlannerCursor()
}

func (m Model) moveDay(n int) Model {
	m.day = m.day.AddDays(n)
	m.cursor = 0
	m.inItems = false
	return m
}

func (m Model) updatePlanner(key string) (tea.Model, tea.Cmd) {
	if m.calendar == calendarMonth {
		return m.updateMonth(key)
	}
	k := m.cfg.Keys
	switch key {
	case k.Left, "left":
		m = m.moveDay(-1)
	case k.Right, "right":
		m = m.moveDay(1)
	case k.PrevWeek:
		m = m.moveDay(-7)
	case k.NextWeek:
		m = m.moveDay(7)
	case k.Today:
		m.day = dates.FromTime(m.now())
		m.cursor = 0
		m.inItems = false
	case k.Month:
		m.calendar = calendarMonth
		m.inItems = false
		m.status = m.day.Format("January 2006")
	case k.Down, "down":
		if m.inItems {
			e, _ := m.current()
			m.itemCursor = clampCursor(m.itemCursor+1, len(e.Items))
		} else {
			m.cursor = clampCursor(m.cursor+1, len(m.entries()))
		}
	case k.Up, "up":
		if m.inItems {
			m.itemCursor = max(m.itemCursor-1, 0)
		} else {
			m.cursor = max(m.cursor-1, 0)
		}
	case k.Cancel:
		if m.inItems {
			m.inItems = false
			m.status = "Back to tasks"
		}
	case k.Add:
		return m.addTask(false)
	case k.AddList:
		return m.addTask(true)
	case k.Toggle:
		return m.toggle()
	case k.Rename:
		if _, it, ok := m.currentItem(); ok {
			m = m.startInput(inputItemText, it.Text, "Item text", "Rename item: Enter to save, Esc to cancel")
			return m, textinput.Blink
		}
		if e, ok := m.current(); ok {
			m = m.startInput(inputTaskText, e.Text, "Task text", "Rename task: Enter to save, Esc to cancel")
			return m, textinput.Blink
		}
	case k.Color:
		return m.cycleColor()
	case k.Daily:
		return m.toggleDaily()
	case k.Items:
		e, ok := m.current()
		if !ok {
			return m, nil
		}
		if e.Kind != planner.KindTodo {
			m.status = "Only to-do lists have items"
			return m, nil
		}
		m.inItems = true
		m.itemCursor = 0
		m.status = fmt.Sprintf("Items of %q: %s to add, %s to go back", e.Text, k.AddItem, k.Cancel)
	case k.AddItem:
		return m.addItem()
	case k.Delete:
		if e, it, ok := m.currentItem(); ok {
			m.confirmDel = true
			m.pendingDel = &pending{entry: e, itemID: it.ID, label: "item"}
			m.status = fmt.Sprintf("Delete item %q? y/n", it.Text)
			return m, nil
		}
		e, ok := m.current()
		if !ok {
			return m, nil
		}
		label := "task"
		if e.Daily() {
			label = "daily task"
		}
		m.confirmDel = true
		m.pendingDel = &pending{entry: e, label: label}
		m.status = fmt.Sprintf("Delete %q? y/n", e.Text)
	}
	return m, nil
}

func (m Model) updateMonth(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Left, "left":
		m = m.moveDay(-1)
	case k.Right, "right":
		m = m.moveDay(1)
	case k.Up, "up":
		m = m.moveDay(-7)
	case k.Down, "down":
		m = m.moveDay(7)
	case k.PrevWeek:
		m.day = dates.FromTime(m.day.AddDate(0, -1, 0))
	case k.NextWeek:
		m.day = dates.FromTime(m.day.AddDate(0, 1, 0))
	case k.Today:
		m.day = dates.FromTime(m.now())
	case k.Month, k.Items, k.Cancel:
		m.calendar = calendarWeek
		m.cursor = 0
		m.status = "Week of " + dates.WeekOf(m.day)[0].Format("Jan 2")
	case k.Add:
		return m.addTask(false)
	case k.AddList:
		return m.addTask(true)
	}
	return m, nil
}

func (m Model) addTask(todo bool) (tea.Model, tea.Cmd) {
	t, err := m.store.AddTask(m.day, todo)
	if err != nil {
		m.status = fmt.Sprintf("add failed: %v", err)
		return m, nil
	}
	m.inItems = false
	m = m.selectTask(t.ID)
	m.status = fmt.Sprintf("Added %q on %s", t.Text, m.day)
	return m, nil
}

func (m Model) addItem() (tea.Model, tea.Cmd) {
	e, ok := m.current()
	if !ok {
		return m, nil
	}
	if e.Kind != planner.KindTodo {
		m.status = "Only to-do lists have items"
		return m, nil
	}
	it, err := m.store.AddTodoItem(m.day, e.OriginalID, e.Daily())
	if err != nil {
		m.status = fmt.Sprintf("add item failed: %v", err)
		return m, nil
	}
	m.inItems = true
	m.itemCursor = len(e.Items)
	m.status = fmt.Sprintf("Added %q", it.Text)
	return m, nil
}

func (m Model) toggle() (tea.Model, tea.Cmd) {
	if e, it, ok := m.currentItem(); ok {
		if err := m.store.ToggleTodoItem(m.day, e.OriginalID, it.ID, e.Daily()); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.status = "Toggled item"
		return m, nil
	}
	e, ok := m.current()
	if !ok {
		return m, nil
	}
	if e.Kind == planner.KindTodo {
		m.status = "A to-do list is done when all its items are"
		return m, nil
	}
	if err := m.store.ToggleTaskComplete(m.day, e.OriginalID, e.Daily()); err != nil {
		m.status = fmt.Sprintf("toggle failed: %v", err)
		return m, nil
	}
	m.status = fmt.Sprintf("%s %s", humanDone(!e.Completed), e.Text)
	return m, nil
}

func (m Model) cycleColor() (tea.Model, tea.Cmd) {
	e, ok := m.current()
	if !ok || len(m.cfg.Palette) == 0 {
		return m, nil
	}
	next := m.cfg.Palette[wrapIndex(slices.Index(m.cfg.Palette, e.Color)+1, len(m.cfg.Palette))]
	if err := m.store.UpdateTask(m.day, e.OriginalID, e.Daily(), planner.Patch{Color: &next}); err != nil {
		m.status = fmt.Sprintf("color failed: %v", err)
		return m, nil
	}
	m.status = "Color " + next
	return m, nil
}

func (m Model) toggleDaily() (tea.Model, tea.Cmd) {
	e, ok := m.current()
	if !ok {
		return m, nil
	}
	if e.Kind == planner.KindTodo {
		m.status = "To-do lists cannot repeat daily"
		return m, nil
	}
	daily := !e.Daily()
	if err := m.store.UpdateTask(m.day, e.OriginalID, e.Daily(), planner.Patch{Daily: &daily}); err != nil {
		m.status = fmt.Sprintf("update failed: %v", err)
		return m, nil
	}
	m = m.selectTask(e.OriginalID)
	if daily {
		m.status = fmt.Sprintf("%q now repeats every day", e.Text)
	} else {
		m.status = fmt.Sprintf("%q no longer repeats", e.Text)
	}
	return m, nil
}

func (m Model) saveText(v string) error {
	if m.target == inputItemText {
		e, it, ok := m.currentItem()
		if !ok {
			return nil
		}
		if err := m.store.UpdateTodoItem(m.day, e.OriginalID, it.ID, v, e.Daily()); err != nil {
			return fmt.Errorf("rename failed: %w", err)
		}
		return nil
	}
	e, ok := m.current()
	if !ok {
		return nil
	}
	if err := m.store.UpdateTask(m.day, e.OriginalID, e.Daily(), planner.Patch{Text: &v}); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}

func (m Model) renderPlanner() string {
	var b strings.Builder
	if m.calendar == calendarMonth {
		b.WriteString(m.renderMonth())
	} else {
		b.WriteString(m.renderWeek())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderDetail())
	return b.String()
}

func (m Model) renderWeek() string {
	week := dates.WeekOf(m.day)
	today := dates.FromTime(m.now())
	cols := make([]string, len(week))
	for i, d := range week {
		var b strings.Builder
		header := d.Format("Mon 02 Jan")
		switch {
		case d.Equal(m.day):
			header = selectedDayStyle.Render(header)
		case d.Equal(today):
			header = todayStyle.Render(header)
		default:
			header = dayHeaderStyle.Render(header)
		}
		b.WriteString(header)
		b.WriteString("\n")
		entries := m.store.TasksForDate(d)
		if len(entries) == 0 {
			b.WriteString(faintStyle.Render("·"))
		}
		for j, e := range entries {
			line := entryLine(e, columnWidth-4)
			if d.Equal(m.day) && j == clampCursor(m.cursor, len(entries)) && !m.inItems {
				line = "> " + line
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		cols[i] = columnStyle.Width(columnWidth).Render(b.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderMonth() string {
	var b strings.Builder
	b.WriteString(dayHeaderStyle.Render(m.day.Format("January 2006")))
	b.WriteString("\n")
	for _, name := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		b.WriteString(fmt.Sprintf("%-7s", name))
	}
	b.WriteString("\n")
	today := dates.FromTime(m.now())
	cells := dates.MonthGrid(m.day)
	for i, c := range cells {
		label := fmt.Sprintf("%2d", c.Day())
		if n := len(m.store.TasksForDate(c.Date)); n > 0 && c.CurrentMonth {
			label += fmt.Sprintf("(%d)", n)
		}
		label = fmt.Sprintf("%-7s", label)
		switch {
		case c.Equal(m.day):
			label = selectedDayStyle.Render(label)
		case !c.CurrentMonth:
			label = faintStyle.Render(label)
		case c.Equal(today):
			label = todayStyle.Render(label)
		}
		b.WriteString(label)
		if i%7 == 6 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderDetail() string {
	e, ok := m.current()
	if !ok {
		return fmt.Sprintf("No tasks on %s. Press '%s' to add one.", m.day, m.cfg.Keys.Add)
	}
	var b strings.Builder
	b.WriteString(dayHeaderStyle.Render(m.day.Format("Monday, 2 January 2006")))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s • %s", swatch(e.Color), e.Text, humanDone(e.Completed)))
	if e.Daily() {
		b.WriteString(" • daily")
	}
	b.WriteString("\n")
	if e.Kind != planner.KindTodo {
		return b.String()
	}
	done, total := e.ItemProgress()
	b.WriteString(fmt.Sprintf("%d/%d items\n", done, total))
	for i, it := range e.Items {
		cursor := " "
		if m.inItems && i == clampCursor(m.itemCursor, len(e.Items)) {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, checkbox(it.Completed), it.Text))
	}
	return b.String()
}

func entryLine(e planner.Entry, width int) string {
	text := e.Text
	if e.Kind == planner.KindTodo {
		done, total := e.ItemProgress()
		text = fmt.Sprintf("%s %d/%d", text, done, total)
	}
	if e.Daily() {
		text = "↻ " + text
	}
	text = truncate(text, width-4)
	line := swatch(e.Color) + " " + checkbox(e.Completed) + " " + text
	if e.Completed {
		return doneStyle.Render(line)
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}

func renderPlannerHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s day • %s/%s move • %s/%s week • %s add • %s list • %s toggle • %s rename • %s color • %s daily • %s items • %s item • %s delete • %s month • %s today • %s quit",
		k.Left, k.Right, k.Up, k.Down, k.PrevWeek, k.NextWeek, k.Add, k.AddList, keyLabel(k.Toggle),
		k.Rename, k.Color, k.Daily, k.Items, k.AddItem, k.Delete, k.Month, k.Today, k.Quit)
}
