package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cart struct {
	Items []string `json:"items"`
}

func TestFetchCachesResult(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{StaleTime: time.Minute})

	var calls int32
	load := func(context.Context) (cart, error) {
		atomic.AddInt32(&calls, 1)
		return cart{Items: []string{"a"}}, nil
	}

	first, err := Fetch(ctx, c, KeyCart, load)
	require.NoError(t, err)
	second, err := Fetch(ctx, c, KeyCart, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, c.InFlight(KeyCart))
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := New(nil, Options{})
	boom := errors.New("boom")

	_, err := Fetch(ctx, c, KeyCart, func(context.Context) (cart, error) { return cart{}, boom })
	require.ErrorIs(t, err, boom)

	_, ok, err := Get[cart](ctx, c, KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchDedupesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{})

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	load := func(context.Context) (cart, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return cart{Items: []string{"shared"}}, nil
	}

	var wg sync.WaitGroup
	results := make(chan cart, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		value, err := Fetch(ctx, c, KeyCart, load)
		assert.NoError(t, err)
		results <- value
	}()
	<-started
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := Fetch(ctx, c, KeyCart, load)
			assert.NoError(t, err)
			results <- value
		}()
	}
	// Give the followers time to join the running flight.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for value := range results {
		assert.Equal(t, []string{"shared"}, value.Items)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCancelDiscardsSlowReadAfterOptimisticWrite(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan cart, 1)
	go func() {
		value, err := Fetch(ctx, c, KeyCart, func(context.Context) (cart, error) {
			close(started)
			<-release
			return cart{Items: []string{"stale"}}, nil
		})
		assert.NoError(t, err)
		done <- value
	}()

	<-started
	require.True(t, c.InFlight(KeyCart))
	c.Cancel(KeyCart)
	require.NoError(t, Set(ctx, c, KeyCart, cart{Items: []string{"optimistic"}}))
	close(release)

	got := <-done
	assert.Equal(t, []string{"optimistic"}, got.Items)

	cached, ok, err := Get[cart](ctx, c, KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"optimistic"}, cached.Items)
}

func TestCancelStopsLoadContext(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{})

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, c, KeyWishlist, func(fetchCtx context.Context) (cart, error) {
			close(started)
			<-fetchCtx.Done()
			return cart{}, fetchCtx.Err()
		})
		done <- err
	}()

	<-started
	c.Cancel(KeyWishlist)
	assert.ErrorIs(t, <-done, ErrCancelled)
	assert.False(t, c.InFlight(KeyWishlist))
}

func TestFetchAfterCancelStartsFreshLoad(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{})

	c.Cancel(KeyCart)
	value, err := Fetch(ctx, c, KeyCart, func(context.Context) (cart, error) {
		return cart{Items: []string{"fresh"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, value.Items)

	cached, ok, err := Get[cart](ctx, c, KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, value, cached)
}

func TestWaiterContextCancellation(t *testing.T) {
	c := New(NewMemoryStore(), Options{})
	release := make(chan struct{})
	loadDone := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fetch(ctx, c, KeyBrands, func(context.Context) (cart, error) {
		defer close(loadDone)
		<-release
		return cart{Items: []string{"late"}}, nil
	})
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	<-loadDone
	assert.Eventually(t, func() bool { return !c.InFlight(KeyBrands) }, time.Second, 5*time.Millisecond)
}

func TestInvalidateDropsPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store, Options{})

	require.NoError(t, Set(ctx, c, KeyOrders, []string{"1", "2"}))
	require.NoError(t, Set(ctx, c, OrderKey("1"), "order-1"))
	require.NoError(t, Set(ctx, c, KeyCart, cart{}))

	require.NoError(t, c.Invalidate(ctx, KeyOrders))

	_, ok, _ := Get[[]string](ctx, c, KeyOrders)
	assert.False(t, ok)
	_, ok, _ = Get[string](ctx, c, OrderKey("1"))
	assert.False(t, ok)
	_, ok, _ = Get[cart](ctx, c, KeyCart)
	assert.True(t, ok)
}

func TestClearEmptiesStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store, Options{})

	for _, key := range SessionKeys() {
		require.NoError(t, Set(ctx, c, key, "x"))
	}
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestGetDropsUndecodableEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store, Options{})

	require.NoError(t, store.Set(ctx, KeyCart, []byte("{not json"), 0))
	_, ok, err := Get[cart](ctx, c, KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestDeleteExactKey(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{})
	require.NoError(t, Set(ctx, c, KeyOrders, "list"))
	require.NoError(t, Set(ctx, c, OrderKey("9"), "detail"))

	require.NoError(t, c.Delete(ctx, KeyOrders))

	_, ok, _ := Get[string](ctx, c, KeyOrders)
	assert.False(t, ok)
	_, ok, _ = Get[string](ctx, c, OrderKey("9"))
	assert.True(t, ok)
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{})

	empty, err := c.Snapshot(ctx, KeyCart)
	require.NoError(t, err)
	assert.False(t, empty.Cached())

	require.NoError(t, Set(ctx, c, KeyCart, cart{Items: []string{"a"}}))
	full, err := c.Snapshot(ctx, KeyCart)
	require.NoError(t, err)
	value, ok := Decode[cart](full)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, value.Items)

	require.NoError(t, Set(ctx, c, KeyCart, cart{Items: []string{"a", "b"}}))
	require.NoError(t, c.Restore(ctx, full))
	got, ok, err := Get[cart](ctx, c, KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got.Items)

	require.NoError(t, c.Restore(ctx, empty))
	_, ok, err = Get[cart](ctx, c, KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestoreAfterClearKeepsClearedState(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{})

	require.NoError(t, Set(ctx, c, KeyCart, cart{Items: []string{"a"}}))
	snap, err := c.Snapshot(ctx, KeyCart)
	require.NoError(t, err)

	require.NoError(t, c.Clear(ctx))
	require.NoError(t, c.Restore(ctx, snap))

	_, ok, err := Get[cart](ctx, c, KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetAtDropsWriteFromEarlierEpoch(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), Options{})

	epoch := c.Epoch()
	written, err := SetAt(ctx, c, epoch, KeyCart, cart{Items: []string{"a"}})
	require.NoError(t, err)
	assert.True(t, written)

	require.NoError(t, c.Clear(ctx))
	assert.NotEqual(t, epoch, c.Epoch())

	written, err = SetAt(ctx, c, epoch, KeyCart, cart{Items: []string{"b"}})
	require.NoError(t, err)
	assert.False(t, written)
	_, ok, err := Get[cart](ctx, c, KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}
