package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2kk/stackctl/internal/resource"
)

func TestStore_RoundTripsThroughDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	store, err := Open(path, nil)
	require.NoError(t, err)

	rec := &Record{
		Kind:      "aws:kms:Key",
		Name:      "hcloud_token",
		ID:        "key-123",
		InputHash: "abc",
		Outputs:   map[string]string{"KeyId": "key-123"},
		AppliedAt: time.Now().UTC(),
		RunID:     "run-1",
	}
	store.Put("aws", "aws:kms:Key/hcloud_token", rec)
	require.NoError(t, store.Save())

	reopened, err := Open(path, nil)
	require.NoError(t, err)

	got, ok := reopened.Get("aws", "aws:kms:Key/hcloud_token")
	require.True(t, ok)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.InputHash, got.InputHash)
	assert.Equal(t, rec.Outputs, got.Outputs)
}

func TestStore_StacksAreIsolated(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state.json"), nil)
	require.NoError(t, err)

	store.Put("aws", "aws:kms:Key/hcloud_token", &Record{ID: "a"})
	store.Put("vm-hcloud", "hcloud:Network/network", &Record{ID: "b"})

	_, ok := store.Get("vm-hcloud", "aws:kms:Key/hcloud_token")
	assert.False(t, ok)
	assert.Len(t, store.Records("aws"), 1)
	assert.Len(t, store.Records("vm-hcloud"), 1)
}

func TestStore_DeleteRemovesRecord(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state.json"), nil)
	require.NoError(t, err)

	store.Put("aws", "k", &Record{ID: "a"})
	store.Delete("aws", "k")

	_, ok := store.Get("aws", "k")
	assert.False(t, ok)
}

func TestOpen_RejectsNewerFileVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "stacks": {}}`), 0o644))

	_, err := Open(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 99")
}

func TestHashInputs_IsStableAcrossMapOrder(t *testing.T) {
	h1, err := HashInputs(resource.Properties{"a": "1", "b": map[string]any{"x": 1, "y": 2}})
	require.NoError(t, err)
	h2, err := HashInputs(resource.Properties{"b": map[string]any{"y": 2, "x": 1}, "a": "1"})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := HashInputs(resource.Properties{"a": "2"})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
