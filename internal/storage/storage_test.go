package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	sq, err := OpenSQLite(filepath.Join(dir, "db", "weekplan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	disk, err := OpenDisk(filepath.Join(dir, "data"))
	require.NoError(t, err)

	return map[string]Backend{
		KindSQLite: sq,
		KindDisk:   disk,
		KindMemory: NewMemory(),
	}
}

func TestBackendLoadMissing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Load(PlannerKey)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBackendSaveOverwrites(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Save(PlannerKey, []byte(`{"a":1}`)))
			require.NoError(t, b.Save(PlannerKey, []byte(`{"a":2}`)))
			require.NoError(t, b.Save(FitnessKey, []byte(`{}`)))

			got, err := b.Load(PlannerKey)
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(got))

			keys, err := b.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{FitnessKey, PlannerKey}, keys)
		})
	}
}

func TestSQLiteReopenKeepsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekplan.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(FitnessKey, []byte(`{"x":true}`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(FitnessKey)
	require.NoError(t, err)
	assert.Equal(t, `{"x":true}`, string(got))
	assert.Equal(t, []string{path, path + "-journal", path + "-wal"}, s.WatchPaths())
}

func TestJSONHelpers(t *testing.T) {
	m := NewMemory()

	var v map[string]int
	found, err := LoadJSON(m, PlannerKey, &v)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveJSON(m, PlannerKey, map[string]int{"a": 1}))
	found, err = LoadJSON(m, PlannerKey, &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"a": 1}, v)

	require.NoError(t, m.Save(PlannerKey, []byte("{not json")))
	_, err = LoadJSON(m, PlannerKey, &v)
	assert.Error(t, err)
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open("redis", "")
	assert.Error(t, err)

	b, err := Open(KindMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)
}

func TestDiskWatchPathsAreDocumentFiles(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, PlannerKey),
		filepath.Join(dir, FitnessKey),
	}, d.WatchPaths())
}
