// Package storage is the key-value persistence surface the planner and fitness
// models write their JSON documents through.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Document keys. They match the browser localStorage keys so exported data
// can be imported as-is.
const (
	PlannerKey = "weeklyPlannerTasks"
	FitnessKey = "fitnessData"
)

// Backend kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindDisk   = "disk"
	KindMemory = "memory"
)

// ErrNotFound is returned by Load when no document is stored under the key.
var ErrNotFound = errors.New("storage: document not found")

// Backend stores whole JSON documents by key.
type Backend interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Keys() ([]string, error)
	// WatchPaths lists the files that change when documents are saved.
	WatchPaths() []string
	Close() error
}

// Open returns the backend of the given kind rooted at path.
func Open(kind, path string) (Backend, error) {
	switch kind {
	case KindSQLite, "":
		return OpenSQLite(path)
	case KindDisk:
		return OpenDisk(path)
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", kind)
	}
}

// LoadJSON decodes the document under key into v. It reports false without
// error when the document is absent.
func LoadJSON(b Backend, key string, v any) (bool, error) {
	data, err := b.Load(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return b.Save(key, data)
}
