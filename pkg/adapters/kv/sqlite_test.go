package kv_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/kv"
)

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jotter.db")
	b, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, ok, err := b.Read("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Write("k", []byte("v1")))
	require.NoError(t, b.Write("k", []byte("v2")))

	got, ok, err := b.Read("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, b.Remove("k"))
	_, ok, err = b.Read("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SQLitePersistsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jotter.db")

	b, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	first := kv.New("ns", b)
	first.SetAll(kv.Root{"notes": map[string]any{"a": "b"}})
	require.NoError(t, first.Close())

	b, err = kv.OpenSQLite(path)
	require.NoError(t, err)
	second := kv.New("ns", b)
	defer second.Close()

	assert.Equal(t, map[string]any{"a": "b"}, second.GetAll()["notes"])
	assert.False(t, second.Fallback())
}
