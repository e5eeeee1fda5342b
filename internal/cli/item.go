package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"weekplan/internal/planner"
)

func addItem(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the items of a to-do list",
	}
	addItemAdd(cmd, a)
	addItemToggle(cmd, a)
	addItemEdit(cmd, a)
	addItemDelete(cmd, a)
	topLevel.AddCommand(cmd)
}

// list resolves a to-do list id.
func (a *app) list(s string) (target, error) {
	tg, err := a.resolve(s)
	if err != nil {
		return target{}, err
	}
	if tg.task.Kind != planner.KindTodo {
		return target{}, fmt.Errorf("task %s is not a to-do list", s)
	}
	return tg, nil
}

func parseItemID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}

func addItemAdd(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "add <list-id> [text]",
		Short: "Add an item to a to-do list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := a.list(args[0])
			if err != nil {
				return err
			}
			it, err := a.store.AddTodoItem(tg.date, tg.id, tg.daily)
			if err != nil {
				return err
			}
			if text := strings.TrimSpace(strings.Join(args[1:], " ")); text != "" {
				if err := a.store.UpdateTodoItem(tg.date, tg.id, it.ID, text, tg.daily); err != nil {
					return err
				}
				it.Text = text
			}
			return a.emit(cmd.OutOrStdout(), it, func() string {
				return fmt.Sprintf("Added item %q (id %d) to %q", it.Text, it.ID, tg.task.Text)
			})
		},
	}
	parent.AddCommand(cmd)
}

func addItemToggle(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "toggle <list-id> <item-id>",
		Short: "Toggle an item's completion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, itemID, err := a.itemArgs(args)
			if err != nil {
				return err
			}
			if err := a.store.ToggleTodoItem(tg.date, tg.id, itemID, tg.daily); err != nil {
				return err
			}
			return a.printEntry(cmd, tg.date, tg.id, "Updated")
		},
	}
	parent.AddCommand(cmd)
}

func addItemEdit(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "edit <list-id> <item-id> <text>",
		Short: "Change an item's text",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, itemID, err := a.itemArgs(args)
			if err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args[2:], " "))
			if text == "" {
				return errors.New("item text cannot be empty")
			}
			if err := a.store.UpdateTodoItem(tg.date, tg.id, itemID, text, tg.daily); err != nil {
				return err
			}
			return a.printEntry(cmd, tg.date, tg.id, "Updated")
		},
	}
	parent.AddCommand(cmd)
}

func addItemDelete(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "delete <list-id> <item-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an item",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, itemID, err := a.itemArgs(args)
			if err != nil {
				return err
			}
			if err := a.store.DeleteTodoItem(tg.date, tg.id, itemID, tg.daily); err != nil {
				return err
			}
			return a.printEntry(cmd, tg.date, tg.id, "Updated")
		},
	}
	parent.AddCommand(cmd)
}

// itemArgs resolves <list-id> <item-id> and checks the item exists.
func (a *app) itemArgs(args []string) (target, int64, error) {
	tg, err := a.list(args[0])
	if err != nil {
		return target{}, 0, err
	}
	itemID, err := parseItemID(args[1])
	if err != nil {
		return target{}, 0, err
	}
	for _, it := range tg.task.Items {
		if it.ID == itemID {
			return tg, itemID, nil
		}
	}
	return target{}, 0, fmt.Errorf("item %d not found in %q", itemID, tg.task.Text)
}
