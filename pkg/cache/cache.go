package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// ErrCancelled is returned by Fetch when the fetch was cancelled for its key
// and nothing else has been cached since.
var ErrCancelled = errors.New("cache: fetch cancelled")

// Options configures a Cache.
type Options struct {
	StaleTime time.Duration
	Logger    *logger.Logger
	Metrics   *metrics.ClientMetrics
}

type flight struct {
	gen    uint64
	cancel context.CancelFunc
}

// Cache is the shared request cache used by every resource service. Reads go
// through Fetch; optimistic writers call Cancel before touching a key so a
// slower read cannot overwrite their value.
type Cache struct {
	store     Store
	staleTime time.Duration
	logg      *logger.Logger
	metrics   *metrics.ClientMetrics

	group singleflight.Group

	mu          sync.Mutex
	inflight    map[Key]*flight
	generations map[Key]uint64
	// epoch counts Clear calls. Writes prepared before a Clear are dropped.
	epoch uint64
}

func New(store Store, opts Options) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Cache{
		store:       store,
		staleTime:   opts.StaleTime,
		logg:        logg,
		metrics:     opts.Metrics,
		inflight:    make(map[Key]*flight),
		generations: make(map[Key]uint64),
	}
}

// Fetch returns the cached value for key, loading it with load on a miss.
// Concurrent misses for the same key share one load.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if value, ok, err := Get[T](ctx, c, key); err != nil {
		return zero, err
	} else if ok {
		c.metrics.IncCacheLookup(true)
		return value, nil
	}
	c.metrics.IncCacheLookup(false)

	results := c.group.DoChan(string(key), func() (any, error) {
		fetchCtx, gen := c.begin(ctx, key)
		defer c.release(key, gen)

		value, err := load(fetchCtx)
		if err != nil {
			if fetchCtx.Err() != nil && !c.current(key, gen) {
				return nil, ErrCancelled
			}
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		committed, err := c.commit(fetchCtx, key, gen, raw)
		if err != nil {
			return nil, err
		}
		if !committed {
			return nil, ErrCancelled
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			if errors.Is(res.Err, ErrCancelled) {
				// Serve whatever the canceller cached instead of the discarded result.
				if value, ok, err := Get[T](ctx, c, key); err == nil && ok {
					return value, nil
				}
				return zero, ErrCancelled
			}
			return zero, res.Err
		}
		var value T
		if err := json.Unmarshal(res.Val.([]byte), &value); err != nil {
			return zero, fmt.Errorf("decode %s: %w", key, err)
		}
		return value, nil
	}
}

// Get decodes the cached value for key.
func Get[T any](ctx context.Context, c *Cache, key Key) (T, bool, error) {
	var zero T
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return zero, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return zero, false, nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		// An undecodable entry is treated as a miss and dropped.
		_ = c.store.Delete(ctx, key)
		return zero, false, nil
	}
	return value, true, nil
}

// Set writes value for key.
func Set[T any](ctx context.Context, c *Cache, key Key, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.store.Set(ctx, key, raw, c.staleTime)
}

// Delete drops the exact keys.
func (c *Cache) Delete(ctx context.Context, keys ...Key) error {
	for _, key := range keys {
		c.Cancel(key)
	}
	return c.store.Delete(ctx, keys...)
}

// Cancel cancels any in-flight fetch for key. A cancelled fetch never writes
// to the cache, even if its response already arrived.
func (c *Cache) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(key)
}

func (c *Cache) cancelLocked(key Key) {
	c.generations[key]++
	c.group.Forget(string(key))
	if f, ok := c.inflight[key]; ok {
		f.cancel()
		delete(c.inflight, key)
	}
}

// Invalidate cancels fetches under each prefix and drops the cached entries.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...Key) error {
	c.mu.Lock()
	for _, prefix := range prefixes {
		c.cancelLocked(prefix)
		for key := range c.inflight {
			if key.HasPrefix(prefix) {
				c.cancelLocked(key)
			}
		}
	}
	c.mu.Unlock()

	for _, prefix := range prefixes {
		if err := c.store.DeletePrefix(ctx, prefix); err != nil {
			return fmt.Errorf("invalidate %s: %w", prefix, err)
		}
	}
	return nil
}

// Clear cancels every fetch, empties the store and starts a new epoch, so
// snapshots and guesses taken before it can no longer be written back.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for key := range c.inflight {
		c.cancelLocked(key)
	}
	return c.store.Clear(ctx)
}

// Epoch identifies the cache contents between two Clear calls.
func (c *Cache) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// SetAt writes value for key only while the cache is still in epoch. It
// reports whether the write happened.
func SetAt[T any](ctx context.Context, c *Cache, epoch uint64, key Key, value T) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logg.Debug(c.logg.WithCacheKey(ctx, string(key)), "cache.write_after_clear_dropped")
		return false, nil
	}
	c.cancelLocked(key)
	if err := c.store.Set(ctx, key, raw, c.staleTime); err != nil {
		return false, fmt.Errorf("write %s: %w", key, err)
	}
	return true, nil
}

// InFlight reports whether a fetch for key is running.
func (c *Cache) InFlight(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}

func (c *Cache) begin(ctx context.Context, key Key) (context.Context, uint64) {
	// The load outlives any single waiter; only Cancel stops it.
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.generations[key]
	c.inflight[key] = &flight{gen: gen, cancel: cancel}
	return fetchCtx, gen
}

func (c *Cache) current(key Key, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key] == gen
}

func (c *Cache) release(key Key, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.inflight[key]; ok && f.gen == gen {
		f.cancel()
		delete(c.inflight, key)
	}
}

// commit writes raw only when no Cancel happened since the fetch began. The
// write happens under the lock so a concurrent Cancel is ordered before or
// after it, never interleaved.
func (c *Cache) commit(ctx context.Context, key Key, gen uint64, raw []byte) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != gen {
		c.logg.Debug(c.logg.WithCacheKey(ctx, string(key)), "cache.fetch_discarded")
		return false, nil
	}
	if err := c.store.Set(ctx, key, raw, c.staleTime); err != nil {
		return false, fmt.Errorf("write %s: %w", key, err)
	}
	return true, nil
}

// Snapshot is the raw cached state of one key at a point in time.
type Snapshot struct {
	Key   Key
	raw   []byte
	ok    bool
	epoch uint64
}

// Cached reports whether the key held a value when the snapshot was taken.
func (s Snapshot) Cached() bool {
	return s.ok
}

// Epoch is the cache epoch the snapshot was taken in.
func (s Snapshot) Epoch() uint64 {
	return s.epoch
}

// Snapshot captures the current entry for key.
func (c *Cache) Snapshot(ctx context.Context, key Key) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", key, err)
	}
	return Snapshot{Key: key, raw: raw, ok: ok, epoch: c.epoch}, nil
}

// Restore puts back exactly what s captured, deleting the key if it was
// empty then. Fetches in flight for the key are cancelled first. After a
// Clear the restore is skipped: the cleared state wins.
func (c *Cache) Restore(ctx context.Context, s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != s.epoch {
		c.logg.Debug(c.logg.WithCacheKey(ctx, string(s.Key)), "cache.restore_after_clear_dropped")
		return nil
	}
	c.cancelLocked(s.Key)
	if !s.ok {
		return c.store.Delete(ctx, s.Key)
	}
	return c.store.Set(ctx, s.Key, s.raw, c.staleTime)
}

// Decode unpacks the value captured by s. An undecodable entry reads as absent.
func Decode[T any](s Snapshot) (T, bool) {
	var value T
	if !s.ok {
		return value, false
	}
	if err := json.Unmarshal(s.raw, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}
