package optimistic

import (
	"context"
	"sort"
	"sync"

	"github.com/angelmondragon/storefront/pkg/cache"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/notify"
)

const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected"
)

// Patch is the optimistic change one mutation makes to one cache key. R is
// the type of the server result.
type Patch[R any] struct {
	key       cache.Key
	apply     func(ctx context.Context, c *cache.Cache, snap cache.Snapshot) error
	reconcile func(ctx context.Context, c *cache.Cache, snap cache.Snapshot, result R) error
}

// Key returns the cache key the patch touches.
func (p Patch[R]) Key() cache.Key {
	return p.key
}

// On builds a patch for key. apply computes the local guess from the cached
// value; returning false leaves the key untouched. reconcile turns the server
// result into the value to cache; a nil reconcile, or one returning false,
// drops the key so the next read fetches it. Neither write happens once the
// cache has been cleared since the snapshot was taken.
func On[T, R any](
	key cache.Key,
	apply func(current T, cached bool) (T, bool),
	reconcile func(current T, result R) (T, bool),
) Patch[R] {
	return Patch[R]{
		key: key,
		apply: func(ctx context.Context, c *cache.Cache, snap cache.Snapshot) error {
			if apply == nil {
				return nil
			}
			current, cached := cache.Decode[T](snap)
			next, ok := apply(current, cached)
			if !ok {
				return nil
			}
			_, err := cache.SetAt(ctx, c, snap.Epoch(), key, next)
			return err
		},
		reconcile: func(ctx context.Context, c *cache.Cache, snap cache.Snapshot, result R) error {
			if reconcile == nil {
				return c.Delete(ctx, key)
			}
			current, _, err := cache.Get[T](ctx, c, key)
			if err != nil {
				return err
			}
			next, ok := reconcile(current, result)
			if !ok {
				return c.Delete(ctx, key)
			}
			_, err = cache.SetAt(ctx, c, snap.Epoch(), key, next)
			return err
		},
	}
}

// Mutation describes one optimistic write against the backend.
type Mutation[R any] struct {
	// Resource labels metrics and logs.
	Resource string
	// Validate runs before anything touches the cache.
	Validate func() error
	// Settled, if set, runs once the key locks are held. Returning true
	// means the change is already in place: Run returns the value without
	// calling the backend.
	Settled func(ctx context.Context) (R, bool)
	Patches []Patch[R]
	Call     func(ctx context.Context) (R, error)

	SuccessMessage string
	FailureMessage string
}

// Runner executes mutations against a shared cache.
type Runner struct {
	cache    *cache.Cache
	notifier notify.Notifier
	logg     *logger.Logger
	metrics  *metrics.ClientMetrics

	mu    sync.Mutex
	locks map[cache.Key]*sync.Mutex
}

// NewRunner builds a Runner. notifier, logg and m may be nil.
func NewRunner(c *cache.Cache, notifier notify.Notifier, logg *logger.Logger, m *metrics.ClientMetrics) *Runner {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Runner{
		cache:    c,
		notifier: notifier,
		logg:     logg,
		metrics:  m,
		locks:    make(map[cache.Key]*sync.Mutex),
	}
}

// Cache exposes the cache the runner writes to.
func (r *Runner) Cache() *cache.Cache {
	return r.cache
}

// Notifier exposes the notifier failures are reported to.
func (r *Runner) Notifier() notify.Notifier {
	return r.notifier
}

func (r *Runner) Logger() *logger.Logger {
	return r.logg
}

// Run applies m: validate, cancel reads in flight, snapshot, write the local
// guess, call the backend, then either cache the server's answer or restore
// the snapshot and notify. Mutations on the same key run one at a time.
func Run[R any](ctx context.Context, r *Runner, m Mutation[R]) (R, error) {
	var zero R
	ctx = r.logg.WithField(ctx, "resource", m.Resource)

	if m.Validate != nil {
		if err := m.Validate(); err != nil {
			r.metrics.IncMutation(m.Resource, OutcomeRejected)
			r.notifier.Error(ctx, m.FailureMessage, err)
			return zero, err
		}
	}

	keys := make([]cache.Key, 0, len(m.Patches))
	for _, p := range m.Patches {
		keys = append(keys, p.key)
	}
	unlock := r.lock(keys)
	defer unlock()

	if m.Settled != nil {
		if result, ok := m.Settled(ctx); ok {
			return result, nil
		}
	}

	snapshots := make([]cache.Snapshot, 0, len(m.Patches))
	for _, p := range m.Patches {
		r.cache.Cancel(p.key)
		snap, err := r.cache.Snapshot(ctx, p.key)
		if err != nil {
			r.rollback(ctx, snapshots)
			return zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshot cache")
		}
		snapshots = append(snapshots, snap)
	}

	for i, p := range m.Patches {
		if err := p.apply(ctx, r.cache, snapshots[i]); err != nil {
			r.rollback(ctx, snapshots)
			return zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply optimistic update")
		}
	}

	result, err := m.Call(ctx)
	if err != nil {
		r.rollback(ctx, snapshots)
		r.metrics.IncMutation(m.Resource, OutcomeRolledBack)
		r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "optimistic.rolled_back")
		r.notifier.Error(ctx, m.FailureMessage, err)
		return zero, err
	}

	for i, p := range m.Patches {
		if rerr := p.reconcile(ctx, r.cache, snapshots[i], result); rerr != nil {
			// The backend accepted the change; a cache failure only costs a refetch.
			r.logg.Error(r.logg.WithCacheKey(ctx, string(p.key)), "optimistic.reconcile_failed", rerr)
			_ = r.cache.Delete(ctx, p.key)
		}
	}
	r.metrics.IncMutation(m.Resource, OutcomeCommitted)
	if m.SuccessMessage != "" {
		r.notifier.Success(ctx, m.SuccessMessage)
	}
	return result, nil
}

func (r *Runner) rollback(ctx context.Context, snapshots []cache.Snapshot) {
	for i := len(snapshots) - 1; i >= 0; i-- {
		if err := r.cache.Restore(ctx, snapshots[i]); err != nil {
			r.logg.Error(r.logg.WithCacheKey(ctx, string(snapshots[i].Key)), "optimistic.restore_failed", err)
		}
	}
}

// lock takes the per-key locks for keys in sorted order and returns the
// matching unlock.
func (r *Runner) lock(keys []cache.Key) func() {
	sorted := append([]cache.Key(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	r.mu.Lock()
	held := make([]*sync.Mutex, 0, len(sorted))
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		l, ok := r.locks[key]
		if !ok {
			l = &sync.Mutex{}
			r.locks[key] = l
		}
		held = append(held, l)
	}
	r.mu.Unlock()

	for _, l := range held {
		l.Lock()
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
