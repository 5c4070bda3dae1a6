package cache

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/tactical-intel/internal/platform/kv"
	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
	"github.com/riskibarqy/tactical-intel/internal/platform/metrics"
	"github.com/riskibarqy/tactical-intel/internal/platform/resilience"
)

const DefaultTTL = 24 * time.Hour

type GateConfig struct {
	Store     kv.Store
	Namespace string
	TTL       time.Duration
	// SingleFlight deduplicates concurrent misses for a key within this process.
	// Without it concurrent misses all compute and the last write wins.
	SingleFlight bool
	Logger       *logging.Logger
	Metrics      *metrics.Metrics
	Now          func() time.Time
}

// Gate memoizes computed results in a kv.Store. Entries carry their creation
// time and are considered stale at read time once older than the TTL.
type Gate[T any] struct {
	store     kv.Store
	namespace string
	ttl       time.Duration
	logger    *logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	flight    *resilience.Group[flightResult[T]]
}

// flightResult carries provenance so callers sharing a run report it too.
type flightResult[T any] struct {
	value     T
	fromCache bool
}

type entry[T any] struct {
	CreatedAt time.Time `json:"created_at"`
	Value     T         `json:"value"`
}

func NewGate[T any](cfg GateConfig) *Gate[T] {
	store := cfg.Store
	if store == nil {
		store = kv.NewMemoryStore()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	g := &Gate[T]{
		store:     store,
		namespace: strings.TrimSpace(cfg.Namespace),
		ttl:       ttl,
		logger:    logger.Named("cache"),
		metrics:   cfg.Metrics,
		now:       now,
	}
	if cfg.SingleFlight {
		g.flight = &resilience.Group[flightResult[T]]{}
	}
	return g
}

func (g *Gate[T]) TTL() time.Duration {
	return g.ttl
}

// Lookup returns a fresh entry for key. Missing, stale and undecodable
// entries all report ok=false.
func (g *Gate[T]) Lookup(ctx context.Context, key string) (T, bool, error) {
	var zero T
	raw, ok, err := g.store.Get(ctx, g.storageKey(key))
	if err != nil {
		return zero, false, crerr.Wrapf(err, "read cache entry %s", key)
	}
	if !ok || raw == "" {
		return zero, false, nil
	}

	var e entry[T]
	if err := sonic.UnmarshalString(raw, &e); err != nil {
		g.logger.WarnContext(ctx, "discarding corrupt cache entry", "namespace", g.namespace, "key", key, "error", err)
		return zero, false, nil
	}
	if g.now().Sub(e.CreatedAt) >= g.ttl {
		return zero, false, nil
	}
	return e.Value, true, nil
}

// Put stores value stamped with the current time.
func (g *Gate[T]) Put(ctx context.Context, key string, value T) error {
	raw, err := sonic.MarshalString(entry[T]{CreatedAt: g.now().UTC(), Value: value})
	if err != nil {
		return crerr.Wrapf(err, "encode cache entry %s", key)
	}
	if err := g.store.Set(ctx, g.storageKey(key), raw); err != nil {
		return crerr.Wrapf(err, "write cache entry %s", key)
	}
	return nil
}

func (g *Gate[T]) Invalidate(ctx context.Context, key string) error {
	if err := g.store.Delete(ctx, g.storageKey(key)); err != nil {
		return crerr.Wrapf(err, "delete cache entry %s", key)
	}
	return nil
}

// GetOrCompute returns the cached value for key with fromCache=true, or runs
// compute, stores its result and returns it with fromCache=false. Compute
// errors are returned as-is and nothing is stored. A failing store degrades
// to computing on every call. With SingleFlight, callers sharing a run get
// its provenance, and the run is cancelled only once all of them give up.
func (g *Gate[T]) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	if compute == nil {
		return zero, false, crerr.New("cache compute function is required")
	}

	if value, ok := g.lookup(ctx, key); ok {
		return value, true, nil
	}

	if g.flight == nil {
		value, err := g.computeAndStore(ctx, key, compute)
		return value, false, err
	}

	res, err, _ := g.flight.DoContext(ctx, key, func(runCtx context.Context) (flightResult[T], error) {
		if cached, ok := g.lookup(runCtx, key); ok {
			return flightResult[T]{value: cached, fromCache: true}, nil
		}
		value, err := g.computeAndStore(runCtx, key, compute)
		return flightResult[T]{value: value}, err
	})
	if err != nil {
		return zero, false, err
	}
	return res.value, res.fromCache, nil
}

func (g *Gate[T]) lookup(ctx context.Context, key string) (T, bool) {
	value, ok, err := g.Lookup(ctx, key)
	if err != nil {
		g.logger.WarnContext(ctx, "cache lookup failed, computing", "namespace", g.namespace, "key", key, "error", err)
	}
	g.metrics.CacheLookup(g.namespace, ok)
	if ok {
		g.logger.DebugContext(ctx, "cache hit", "namespace", g.namespace, "key", key)
	} else {
		g.logger.DebugContext(ctx, "cache miss", "namespace", g.namespace, "key", key)
	}
	return value, ok
}

func (g *Gate[T]) computeAndStore(ctx context.Context, key string, compute func(context.Context) (T, error)) (T, error) {
	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := g.Put(ctx, key, value); err != nil {
		g.logger.WarnContext(ctx, "cache store failed", "namespace", g.namespace, "key", key, "error", err)
	}
	return value, nil
}

func (g *Gate[T]) storageKey(key string) string {
	if g.namespace == "" {
		return key
	}
	return g.namespace + ":" + key
}
