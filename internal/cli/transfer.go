package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"weekplan/internal/storage"
)

// documentKey maps the short names accepted on the command line to storage keys.
func documentKey(name string) (string, error) {
	switch name {
	case "planner", storage.PlannerKey:
		return storage.PlannerKey, nil
	case "fitness", storage.FitnessKey:
		return storage.FitnessKey, nil
	default:
		return "", fmt.Errorf("unknown document %q: expected planner or fitness", name)
	}
}

// unwrap accepts a document either inline or as a JSON string holding it, the
// way browser localStorage dumps store values.
func unwrap(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (a *app) importDocument(key string, data []byte) error {
	if key == storage.FitnessKey {
		return a.tracker.Import(data)
	}
	return a.store.Import(data)
}

func addImport(topLevel *cobra.Command, a *app) {
	var as string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace stored data with a JSON export (\"-\" reads stdin)",
		Long: `Import accepts a single planner or fitness document, or an object holding
both under their storage keys as produced by "weekplan export" or a browser
localStorage dump. The document type is detected unless --as is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			var top map[string]json.RawMessage
			if err := json.Unmarshal(data, &top); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			has := func(k string) bool {
				_, ok := top[k]
				return ok
			}
			imported := []string{}
			if as != "" {
				key, err := documentKey(as)
				if err != nil {
					return err
				}
				if err := a.importDocument(key, data); err != nil {
					return err
				}
				imported = append(imported, key)
			} else if has(storage.PlannerKey) || has(storage.FitnessKey) {
				for _, key := range []string{storage.PlannerKey, storage.FitnessKey} {
					raw, ok := top[key]
					if !ok {
						continue
					}
					doc, err := unwrap(raw)
					if err != nil {
						return fmt.Errorf("parse %s: %w", key, err)
					}
					if err := a.importDocument(key, doc); err != nil {
						return err
					}
					imported = append(imported, key)
				}
			} else {
				key := storage.PlannerKey
				if has("workouts") || has("weight") {
					key = storage.FitnessKey
				}
				if err := a.importDocument(key, data); err != nil {
					return err
				}
				imported = append(imported, key)
			}

			return a.emit(cmd.OutOrStdout(), map[string]any{"imported": imported}, func() string {
				return fmt.Sprintf("Imported %v", imported)
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "document type: planner or fitness")
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "export [planner|fitness]",
		Short: "Print stored data as JSON",
		Long: `Export prints one document when named, otherwise every saved document
keyed by its storage key, in the shape import accepts.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.store.Snapshot()
			if err != nil {
				return err
			}
			fit, err := a.tracker.Snapshot()
			if err != nil {
				return err
			}
			snapshots := map[string]json.RawMessage{
				storage.PlannerKey: plan,
				storage.FitnessKey: fit,
			}
			if len(args) == 1 {
				key, err := documentKey(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), snapshots[key])
			}
			// Without a name, only documents that have been saved are exported.
			stored, err := a.backend.Keys()
			if err != nil {
				return err
			}
			docs := make(map[string]json.RawMessage, len(stored))
			for _, k := range stored {
				if raw, ok := snapshots[k]; ok {
					docs[k] = raw
				}
			}
			return writeJSON(cmd.OutOrStdout(), docs)
		},
	}
	topLevel.AddCommand(cmd)
}

func addPrune(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop completion records of deleted daily tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.store.PruneCompletions()
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), map[string]int{"pruned": n}, func() string {
				return fmt.Sprintf("Pruned %d completion records", n)
			})
		},
	}
	topLevel.AddCommand(cmd)
}
