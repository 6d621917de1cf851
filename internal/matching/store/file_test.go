package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/logger"
	"github.com/MrJamesThe3rd/balancea/internal/matching"
	"github.com/MrJamesThe3rd/balancea/internal/matching/store"
)

func TestJSONStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mappings.json")

	s, err := store.NewJSONStore(path, logger.Nop())
	require.NoError(t, err)

	got, err := s.FindMatch(ctx, "anything")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.SaveMapping(ctx, "continente", "Food"))
	require.NoError(t, s.SaveMapping(ctx, "galp", "Transport"))
	require.NoError(t, s.SaveMapping(ctx, "galp", "Utilities"))

	reloaded, err := store.NewJSONStore(path, logger.Nop())
	require.NoError(t, err)

	got, err = reloaded.FindMatch(ctx, "COMPRA CONTINENTE 1234")
	require.NoError(t, err)
	assert.Equal(t, "Food", got)

	ms, err := reloaded.ListMappings(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "continente", ms[0].Pattern)
	assert.Equal(t, "Utilities", ms[1].Category)

	require.NoError(t, reloaded.DeleteMapping(ctx, "galp"))
	assert.ErrorIs(t, reloaded.DeleteMapping(ctx, "galp"), matching.ErrNotFound)
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.json")
	require.NoError(t, os.WriteFile(path, []byte("[{"), 0o644))

	s, err := store.NewJSONStore(path, logger.Nop())
	require.NoError(t, err)

	ms, err := s.ListMappings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ms)
}
