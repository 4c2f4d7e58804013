package tokenstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLStore(t *testing.T, path string) *SQLStore {
	t.Helper()
	client, err := db.New(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	store, err := NewSQLStore(context.Background(), client)
	require.NoError(t, err)
	return store
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSQLStore(t, filepath.Join(t.TempDir(), "tokens.db")) },
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := build(t)

			token, err := store.Token(ctx)
			require.NoError(t, err)
			assert.Empty(t, token)

			require.NoError(t, store.SetToken(ctx, "first"))
			require.NoError(t, store.SetToken(ctx, "second"))
			token, err = store.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, "second", token)

			require.NoError(t, store.Set(ctx, "cookie:refreshToken", "r1"))
			value, ok, err := store.Get(ctx, "cookie:refreshToken")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "r1", value)

			require.NoError(t, store.ClearToken(ctx))
			token, err = store.Token(ctx)
			require.NoError(t, err)
			assert.Empty(t, token)

			require.NoError(t, store.Delete(ctx, "cookie:refreshToken", "missing"))
			_, ok, err = store.Get(ctx, "cookie:refreshToken")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.db")

	client, err := db.New(ctx, path, nil)
	require.NoError(t, err)
	store, err := NewSQLStore(ctx, client)
	require.NoError(t, err)
	require.NoError(t, store.SetToken(ctx, "durable"))
	require.NoError(t, client.Close())

	reopened := newSQLStore(t, path)
	token, err := reopened.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "durable", token)
}

func TestNewSQLStoreRequiresClient(t *testing.T) {
	_, err := NewSQLStore(context.Background(), nil)
	assert.Error(t, err)
}
