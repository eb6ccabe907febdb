package tenant

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/pg"
)

// Pool is the subset of *pgxpool.Pool the service depends on.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PoolFactory builds a pool for one tenant config.
type PoolFactory func(ctx context.Context, cfg ConnConfig) (Pool, error)

// NewPoolFactory returns a factory opening lazy pgx pools with the given policy.
func NewPoolFactory(policy pg.PoolConfig) PoolFactory {
	return func(ctx context.Context, cfg ConnConfig) (Pool, error) {
		pool, err := pg.NewPool(ctx, cfg.ConnString(), policy)
		if err != nil {
			return nil, err
		}
		return pool, nil
	}
}

// Entry is a live pool together with the config it was built from.
type Entry struct {
	Pool   Pool
	Config ConnConfig
}

const registryStripes = 64

// Registry caches one pool per tenant key. Reads never lock; writes for the
// same key are serialized while different keys proceed in parallel.
type Registry struct {
	entries sync.Map // key -> *Entry
	stripes [registryStripes]sync.Mutex
	factory PoolFactory
	logger  *slog.Logger
	closed  atomic.Bool
	retired sync.WaitGroup
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for teardown reports.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger.OrDiscard(l)
	}
}

// NewRegistry creates an empty registry building pools with factory.
func NewRegistry(factory PoolFactory, opts ...RegistryOption) *Registry {
	if factory == nil {
		panic("tenant: nil pool factory")
	}
	r := &Registry{
		factory: factory,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("tenant.registry"))
	return r
}

// Get returns the cached entry for key. It performs no I/O.
func (r *Registry) Get(key string) (Entry, bool) {
	v, ok := r.entries.Load(key)
	if !ok {
		return Entry{}, false
	}
	return *v.(*Entry), true
}

// Upsert makes cfg the active config for key and returns its pool.
//
// An existing entry with an identical config is reused as is. Otherwise a new
// pool is built and stored before Upsert returns, and the superseded pool is
// closed in the background. A factory error leaves the current entry in place.
func (r *Registry) Upsert(ctx context.Context, key string, cfg ConnConfig) (Pool, error) {
	if key == "" {
		return nil, errors.Join(ErrInvalidIdentity, errors.New("empty registry key"))
	}

	mu := r.stripe(key)
	mu.Lock()
	defer mu.Unlock()

	if r.closed.Load() {
		return nil, ErrRegistryClosed
	}

	var prev *Entry
	if v, ok := r.entries.Load(key); ok {
		prev = v.(*Entry)
		if prev.Config == cfg {
			return prev.Pool, nil
		}
	}

	pool, err := r.factory(ctx, cfg)
	if err != nil {
		return nil, errors.Join(ErrPoolBuild, err)
	}
	if pool == nil {
		return nil, errors.Join(ErrPoolBuild, errors.New("factory returned nil pool"))
	}

	r.entries.Store(key, &Entry{Pool: pool, Config: cfg})
	if prev != nil {
		r.logger.InfoContext(ctx, "tenant pool replaced", logger.Tenant(key), slog.Any("config", cfg))
		r.retire(key, prev.Pool)
	} else {
		r.logger.DebugContext(ctx, "tenant pool created", logger.Tenant(key), slog.Any("config", cfg))
	}

	return pool, nil
}

// Remove evicts key and closes its pool in the background.
func (r *Registry) Remove(key string) bool {
	mu := r.stripe(key)
	mu.Lock()
	defer mu.Unlock()

	v, ok := r.entries.LoadAndDelete(key)
	if !ok {
		return false
	}
	r.retire(key, v.(*Entry).Pool)
	return true
}

// Len reports the number of cached pools.
func (r *Registry) Len() int {
	n := 0
	r.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Range calls fn for every cached entry until fn returns false.
func (r *Registry) Range(fn func(key string, e Entry) bool) {
	r.entries.Range(func(k, v any) bool {
		return fn(k.(string), *v.(*Entry))
	})
}

// Close closes every cached pool and waits for background teardowns.
// Later upserts fail with ErrRegistryClosed.
func (r *Registry) Close() {
	if r.closed.Swap(true) {
		return
	}

	r.entries.Range(func(k, _ any) bool {
		key := k.(string)
		mu := r.stripe(key)
		mu.Lock()
		if v, ok := r.entries.LoadAndDelete(key); ok {
			r.closePool(key, v.(*Entry).Pool)
		}
		mu.Unlock()
		return true
	})

	r.retired.Wait()
}

func (r *Registry) retire(key string, p Pool) {
	r.retired.Add(1)
	go func() {
		defer r.retired.Done()
		r.closePool(key, p)
	}()
}

func (r *Registry) closePool(key string, p Pool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("tenant pool teardown panicked", logger.Tenant(key), slog.Any("panic", rec))
		}
	}()
	p.Close()
	r.logger.Debug("tenant pool closed", logger.Tenant(key))
}

func (r *Registry) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &r.stripes[h.Sum32()%registryStripes]
}
