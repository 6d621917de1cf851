package jsonfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/jsonfile"
)

type doc struct {
	Name  string         `json:"name"`
	Items map[string]int `json:"items"`
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	require.NoError(t, jsonfile.Save(path, doc{Name: "a", Items: map[string]int{"x": 1}}))

	got, err := jsonfile.Load[doc](path)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, 1, got.Items["x"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestLoad_Missing(t *testing.T) {
	_, err := jsonfile.Load[doc](filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, jsonfile.ErrNotExist)
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := jsonfile.Load[doc](path)

	var corrupt *jsonfile.CorruptError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, path, corrupt.Path)
	assert.False(t, errors.Is(err, jsonfile.ErrNotExist))
}

func TestSave_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := jsonfile.Save(filepath.Join(blocker, "doc.json"), doc{})
	assert.Error(t, err)
}

func TestLoadOrInit(t *testing.T) {
	def := func() doc { return doc{Name: "default"} }

	t.Run("MissingPersistsDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")

		got, err := jsonfile.LoadOrInit(path, def)
		require.NoError(t, err)
		assert.Equal(t, "default", got.Name)

		onDisk, err := jsonfile.Load[doc](path)
		require.NoError(t, err)
		assert.Equal(t, "default", onDisk.Name)
	})

	t.Run("CorruptKeepsFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		require.NoError(t, os.WriteFile(path, []byte("[1,"), 0o644))

		got, err := jsonfile.LoadOrInit(path, def)

		var corrupt *jsonfile.CorruptError
		require.True(t, errors.As(err, &corrupt))
		assert.Equal(t, "default", got.Name)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[1,", string(data))
	})

	t.Run("Existing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		require.NoError(t, jsonfile.Save(path, doc{Name: "stored"}))

		got, err := jsonfile.LoadOrInit(path, def)
		require.NoError(t, err)
		assert.Equal(t, "stored", got.Name)
	})
}
