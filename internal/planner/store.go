// Package planner owns the date-keyed task store: plain tasks and to-do lists
// live in per-date buckets, daily tasks are stored once and shown on every
// date, and daily completion is tracked per date in completion buckets.
package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"weekplan/internal/dates"
	"weekplan/internal/logging"
	"weekplan/internal/storage"
)

// CompletionSuffix marks the bucket holding daily task ids completed on a date.
const CompletionSuffix = "-completions"

// Store is the in-memory planner state. Every mutation writes the full
// snapshot to the backend before returning. It is not safe for concurrent use.
type Store struct {
	backend storage.Backend
	log     *slog.Logger
	now     func() time.Time
	color   string
	lastID  int64

	buckets     map[string][]Task
	completions map[string][]int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for mutation and persistence messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithDefaultColor sets the color given to new tasks.
func WithDefaultColor(c string) Option {
	return func(s *Store) {
		if c != "" {
			s.color = c
		}
	}
}

// Open builds a Store and loads the planner document from backend. An absent
// or undecodable document starts an empty store.
func Open(backend storage.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		log:     logging.Discard(),
		now:     time.Now,
		color:   DefaultColor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory state with the stored document.
func (s *Store) Reload() error {
	data, err := s.backend.Load(storage.PlannerKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.reset()
		return nil
	}
	if err != nil {
		return fmt.Errorf("planner: load: %w", err)
	}
	if err := s.decode(data); err != nil {
		s.log.Warn("planner document unreadable, starting empty", "error", err)
		s.reset()
	}
	return nil
}

// Import replaces the whole store with a planner document (for example a
// browser localStorage export) and persists it.
func (s *Store) Import(data []byte) error {
	if err := s.decode(data); err != nil {
		return fmt.Errorf("planner: import: %w", err)
	}
	return s.persist("import")
}

// Snapshot returns the persisted form of the store.
func (s *Store) Snapshot() ([]byte, error) {
	doc := make(map[string]any, len(s.buckets)+len(s.completions))
	for k, tasks := range s.buckets {
		doc[k] = tasks
	}
	for k, ids := range s.completions {
		doc[k+CompletionSuffix] = ids
	}
	return json.Marshal(doc)
}

func (s *Store) reset() {
	s.buckets = make(map[string][]Task)
	s.completions = make(map[string][]int64)
}

func (s *Store) decode(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	buckets := make(map[string][]Task)
	completions := make(map[string][]int64)
	for key, msg := range raw {
		if date, ok := strings.CutSuffix(key, CompletionSuffix); ok {
			var ids []int64
			if err := json.Unmarshal(msg, &ids); err != nil {
				return fmt.Errorf("bucket %s: %w", key, err)
			}
			if len(ids) > 0 {
				completions[date] = ids
			}
			continue
		}
		var stored []*Task
		if err := json.Unmarshal(msg, &stored); err != nil {
			return fmt.Errorf("bucket %s: %w", key, err)
		}
		var tasks []Task
		for _, t := range stored {
			if t != nil {
				tasks = append(tasks, *t)
			}
		}
		if len(tasks) > 0 {
			buckets[key] = tasks
		}
	}
	s.buckets = buckets
	s.completions = completions
	s.lastID = max(s.lastID, maxID(buckets))
	return nil
}

func (s *Store) persist(op string) error {
	data, err := s.Snapshot()
	if err != nil {
		return fmt.Errorf("planner: %s: encode: %w", op, err)
	}
	if err := s.backend.Save(storage.PlannerKey, data); err != nil {
		s.log.Error("planner save failed", "op", op, "error", err)
		return fmt.Errorf("planner: %s: %w", op, err)
	}
	s.log.Debug("planner saved", "op", op, "bytes", len(data))
	return nil
}

// nextID returns the creation timestamp in milliseconds, bumped so ids stay
// strictly increasing within the process.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// bucketKeys returns task bucket keys in date order.
func (s *Store) bucketKeys() []string {
	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func maxID(buckets map[string][]Task) int64 {
	var m int64
	for _, tasks := range buckets {
		for _, t := range tasks {
			m = max(m, t.ID)
			for _, it := range t.Items {
				m = max(m, it.ID)
			}
		}
	}
	return m
}

// Dates lists every date holding at least one task, in order.
func (s *Store) Dates() []dates.Date {
	var out []dates.Date
	for _, k := range s.bucketKeys() {
		if d, err := dates.Parse(k); err == nil {
			out = append(out, d)
		}
	}
	return out
}
