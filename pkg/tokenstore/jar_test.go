package tokenstore

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarPersistsTrackedCookies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	origin, _ := url.Parse("http://shop.test/api/v1")

	jar, err := NewJar(ctx, store, origin, nil, "refreshToken")
	require.NoError(t, err)

	jar.SetCookies(origin, []*http.Cookie{
		{Name: "refreshToken", Value: "r-1", Path: "/", HttpOnly: true, MaxAge: 3600},
		{Name: "theme", Value: "dark", Path: "/"},
	})

	_, ok, _ := store.Get(ctx, "cookie:refreshToken")
	assert.True(t, ok, "tracked cookie should be persisted")
	_, ok, _ = store.Get(ctx, "cookie:theme")
	assert.False(t, ok, "untracked cookie should stay in memory only")

	restored, err := NewJar(ctx, store, origin, nil, "refreshToken")
	require.NoError(t, err)
	cookies := restored.Cookies(origin)
	require.Len(t, cookies, 1)
	assert.Equal(t, "refreshToken", cookies[0].Name)
	assert.Equal(t, "r-1", cookies[0].Value)
}

func TestJarDropsDeletedAndExpiredCookies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	origin, _ := url.Parse("http://shop.test/")

	jar, err := NewJar(ctx, store, origin, nil, "refreshToken")
	require.NoError(t, err)
	jar.SetCookies(origin, []*http.Cookie{{Name: "refreshToken", Value: "r-1", Path: "/"}})
	jar.SetCookies(origin, []*http.Cookie{{Name: "refreshToken", Value: "", Path: "/", MaxAge: -1}})

	_, ok, _ := store.Get(ctx, "cookie:refreshToken")
	assert.False(t, ok)
	assert.Empty(t, jar.Cookies(origin))

	require.NoError(t, store.Set(ctx, "cookie:refreshToken", `{"name":"refreshToken","value":"old","expires":"2000-01-01T00:00:00Z"}`))
	restored, err := NewJar(ctx, store, origin, nil, "refreshToken")
	require.NoError(t, err)
	assert.Empty(t, restored.Cookies(origin))
	_, ok, _ = store.Get(ctx, "cookie:refreshToken")
	assert.False(t, ok, "expired cookie should be purged on restore")
}

func TestJarClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	origin, _ := url.Parse("http://shop.test/")

	jar, err := NewJar(ctx, store, origin, nil, "refreshToken")
	require.NoError(t, err)
	jar.SetCookies(origin, []*http.Cookie{{Name: "refreshToken", Value: "r-1", Path: "/", Expires: time.Now().Add(time.Hour)}})
	require.NotEmpty(t, jar.Cookies(origin))

	require.NoError(t, jar.Clear(ctx))
	assert.Empty(t, jar.Cookies(origin))
	_, ok, _ := store.Get(ctx, "cookie:refreshToken")
	assert.False(t, ok)
}
