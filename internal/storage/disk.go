package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/peterbourgon/diskv/v3"
)

// Disk keeps one file per document under a base directory.
type Disk struct {
	d        *diskv.Diskv
	basePath string
}

func OpenDisk(basePath string) (*Disk, error) {
	if basePath == "" {
		return nil, errors.New("storage: data dir is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure data dir: %w", err)
	}
	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: flatTransform,
			InverseTransform:  flatInverse,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}, nil
}

func (d *Disk) Load(key string) ([]byte, error) {
	if !d.d.Has(key) {
		return nil, ErrNotFound
	}
	data, err := d.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", key, err)
	}
	return data, nil
}

func (d *Disk) Save(key string, data []byte) error {
	if err := d.d.Write(key, data); err != nil {
		return fmt.Errorf("storage: save %s: %w", key, err)
	}
	return nil
}

func (d *Disk) Keys() ([]string, error) {
	var keys []string
	for k := range d.d.Keys(nil) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (d *Disk) WatchPaths() []string {
	return []string{
		filepath.Join(d.basePath, PlannerKey),
		filepath.Join(d.basePath, FitnessKey),
	}
}

func (d *Disk) Close() error {
	return nil
}

// Documents live directly under the base path, one file per key.
func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{FileName: key}
}

func flatInverse(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
