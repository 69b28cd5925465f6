package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestPutGet(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	in := snapshot{Name: "widgets", Count: 3}
	require.NoError(t, s.Put(KeyProducts, in))

	var out snapshot
	require.True(t, s.Get(KeyProducts, &out))
	assert.Equal(t, in, out)
}

func TestGet_Missing(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	var out snapshot
	assert.False(t, s.Get("nope", &out))
}

func TestGet_Corrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	// Not gzip at all.
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyCart+".json.gz"), []byte("garbage"), 0o644))

	var out snapshot
	assert.False(t, s.Get(KeyCart, &out))
}

func TestPut_Overwrites(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(KeyCart, snapshot{Name: "a"}))
	require.NoError(t, s.Put(KeyCart, snapshot{Name: "b"}))

	var out snapshot
	require.True(t, s.Get(KeyCart, &out))
	assert.Equal(t, "b", out.Name)
}

func TestDelete(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(KeyOriginalCart, snapshot{Name: "x"}))
	require.NoError(t, s.Delete(KeyOriginalCart))
	require.NoError(t, s.Delete(KeyOriginalCart)) // idempotent

	var out snapshot
	assert.False(t, s.Get(KeyOriginalCart, &out))
}
