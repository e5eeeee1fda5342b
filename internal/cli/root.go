// Package cli implements the weekplan command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"weekplan/internal/config"
	"weekplan/internal/dates"
	"weekplan/internal/fitness"
	"weekplan/internal/logging"
	"weekplan/internal/planner"
	"weekplan/internal/storage"
	"weekplan/internal/ui"
	"weekplan/internal/watcher"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	ConfigPath string
	Date       string
	JSON       bool
}

// Option adjusts how the command tree opens its dependencies.
type Option func(*app)

// WithBackend makes every command use b instead of the configured storage.
func WithBackend(b storage.Backend) Option {
	return func(a *app) { a.backend = b }
}

// WithClock overrides the clock used for ids, today and weight history.
func WithClock(now func() time.Time) Option {
	return func(a *app) { a.now = now }
}

type app struct {
	opts    globalOptions
	now     func() time.Time
	backend storage.Backend

	cfg     config.Config
	log     *slog.Logger
	closers []io.Closer
	store   *planner.Store
	tracker *fitness.Tracker
}

// Execute runs the command tree on os.Args and releases storage even when a
// command fails.
func Execute(opts ...Option) error {
	cmd, a := build(opts...)
	defer a.close()
	return cmd.Execute()
}

// New builds the root command. Without a subcommand it runs the TUI.
func New(opts ...Option) *cobra.Command {
	cmd, _ := build(opts...)
	return cmd
}

func build(opts ...Option) (*cobra.Command, *app) {
	a := &app{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	cmd := &cobra.Command{
		Use:           "weekplan",
		Short:         "Weekly planner with daily tasks, to-do lists and a fitness tracker.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runTUI()
		},
	}
	cmd.PersistentFlags().StringVar(&a.opts.ConfigPath, "config", "", "path to config file (default $"+config.EnvConfigPath+" or ~/.config/weekplan/config.toml)")
	cmd.PersistentFlags().StringVar(&a.opts.Date, "date", "", "date to act on, YYYY-MM-DD (default today)")
	cmd.PersistentFlags().BoolVar(&a.opts.JSON, "json", false, "output as JSON")

	addTask(cmd, a)
	addItem(cmd, a)
	addFitness(cmd, a)
	addImport(cmd, a)
	addExport(cmd, a)
	addPrune(cmd, a)
	return cmd, a
}

func (a *app) open() error {
	path := a.opts.ConfigPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	log, closer, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log
	a.closers = append(a.closers, closer)

	if a.backend == nil {
		b, err := storage.Open(cfg.Backend, cfg.StoragePath())
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		a.backend = b
		a.closers = append(a.closers, b)
	}

	a.store, err = planner.Open(a.backend,
		planner.WithClock(a.now),
		planner.WithLogger(log.With("model", "planner")),
		planner.WithDefaultColor(cfg.DefaultColor))
	if err != nil {
		return err
	}
	a.tracker, err = fitness.Open(a.backend,
		fitness.WithClock(a.now),
		fitness.WithLogger(log.With("model", "fitness")))
	return err
}

func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *app) runTUI() error {
	var w *watcher.Watcher
	if paths := a.backend.WatchPaths(); len(paths) > 0 {
		var err error
		w, err = watcher.New(paths, watcher.DefaultDelay, a.log.With("component", "watcher"))
		if err != nil {
			a.log.Warn("live reload disabled", "error", err)
			w = nil
		} else {
			defer w.Close()
		}
	}
	return ui.Run(a.store, a.tracker, a.cfg, w)
}

// date is the --date flag, defaulting to today.
func (a *app) date() (dates.Date, error) {
	if a.opts.Date == "" {
		return dates.FromTime(a.now()), nil
	}
	return dates.Parse(a.opts.Date)
}
