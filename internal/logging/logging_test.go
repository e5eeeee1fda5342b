package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "weekplan.log")

	log, closer, err := New(path, "warn")
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", "op", "save")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=shown op=save")
	assert.NotContains(t, string(data), "hidden")
}

func TestNewEmptyPathDiscards(t *testing.T) {
	log, closer, err := New("", "debug")
	require.NoError(t, err)
	log.Error("nowhere")
	assert.NoError(t, closer.Close())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New("", "loud")
	assert.Error(t, err)
}
