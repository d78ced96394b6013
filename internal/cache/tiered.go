package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultRemoteTimeout bounds each call to the shared tier so a slow or
// unreachable backend degrades latency instead of blocking callers.
const DefaultRemoteTimeout = 250 * time.Millisecond

// TieredCache composes the local tier (checked first, lowest latency) with
// the shared tier behind one read-through/write-through/invalidate
// contract. Reads fall through to the shared tier on a local miss and
// backfill the local tier on a hit. Writes go to both tiers: the shared
// write is authoritative (explicit TTL), the local write advisory.
//
// The shared tier is best-effort: any infrastructure error there is logged
// and the coordinator degrades to local-only operation for that call. The
// two tiers are each internally thread-safe but their composition is not
// transactionally atomic; staleness is bounded by each tier's TTL.
type TieredCache struct {
	local         Cache
	remote        Cache // may be nil: local-only operation
	remoteTimeout time.Duration
	logger        *slog.Logger
}

// NewTieredCache creates the two-tier coordinator. remote may be nil, in
// which case only the local tier is used. remoteTimeout bounds each shared-
// tier call; non-positive values fall back to DefaultRemoteTimeout. If
// logger is nil, the default logger is used.
func NewTieredCache(local, remote Cache, remoteTimeout time.Duration, logger *slog.Logger) *TieredCache {
	if local == nil {
		panic("local cache tier cannot be nil")
	}
	if remoteTimeout <= 0 {
		remoteTimeout = DefaultRemoteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TieredCache{
		local:         local,
		remote:        remote,
		remoteTimeout: remoteTimeout,
		logger:        logger.With(slog.String("component", "tiered_cache")),
	}
}

// Get returns the cached value for key, or ErrNotFound when neither tier
// holds it. A shared-tier hit is backfilled into the local tier so an
// immediate subsequent Get for the same key is a local hit.
func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := t.local.Get(ctx, key)
	if err == nil {
		return val, nil
	}

	if t.remote == nil {
		return nil, ErrNotFound
	}

	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()

	val, err = t.remote.Get(rctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			t.degraded("get", key, err)
		}
		return nil, ErrNotFound
	}

	// Backfill the local tier, best-effort.
	_ = t.local.Set(ctx, key, val, 0)
	return val, nil
}

// Set writes through to both tiers. ttl applies to the shared tier; the
// local tier keeps its own shorter advisory window. A shared-tier failure
// is logged, not returned.
func (t *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = t.local.Set(ctx, key, value, 0)

	if t.remote == nil {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()

	if err := t.remote.Set(rctx, key, value, ttl); err != nil {
		t.degraded("set", key, err)
	}
	return nil
}

// Delete removes the key from both tiers.
func (t *TieredCache) Delete(ctx context.Context, key string) error {
	_ = t.local.Delete(ctx, key)

	if t.remote == nil {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()

	if err := t.remote.Delete(rctx, key); err != nil {
		t.degraded("delete", key, err)
	}
	return nil
}

// DeletePattern removes every key containing pattern from both tiers and
// returns the number of entries removed across them.
func (t *TieredCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	removed, _ := t.local.DeletePattern(ctx, pattern)

	if t.remote == nil {
		return removed, nil
	}

	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()

	n, err := t.remote.DeletePattern(rctx, pattern)
	removed += n
	if err != nil {
		t.degraded("delete_pattern", pattern, err)
	}
	return removed, nil
}

// Ping checks the local tier. An unreachable shared tier is logged as
// degradation and never surfaced: the coordinator keeps serving from the
// local tier, so losing the shared tier reduces hit rate, not health.
func (t *TieredCache) Ping(ctx context.Context) error {
	if err := t.local.Ping(ctx); err != nil {
		return err
	}
	if t.remote == nil {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, t.remoteTimeout)
	defer cancel()
	if err := t.remote.Ping(rctx); err != nil {
		t.degraded("ping", "", err)
	}
	return nil
}

// Close releases both tiers.
func (t *TieredCache) Close() error {
	_ = t.local.Close()
	if t.remote == nil {
		return nil
	}
	return t.remote.Close()
}

// degraded logs a shared-tier failure. Cache degradation is never surfaced
// to callers; it only affects hit rate and latency.
func (t *TieredCache) degraded(op, key string, err error) {
	t.logger.Warn("shared cache tier degraded",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()))
}
