package tenant_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

var errNotSupported = errors.New("not supported by fake pool")

// fakePool answers QueryRow with its own name, which lets tests tell pools apart.
type fakePool struct {
	name    string
	cfg     tenant.ConnConfig
	closed  atomic.Int32
	onClose func()

	mu      sync.Mutex
	queries []string
}

func newFakePool(name string) *fakePool {
	return &fakePool{name: name}
}

func (p *fakePool) record(sql string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, sql)
}

func (p *fakePool) Queries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.queries...)
}

func (p *fakePool) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	p.record(sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (p *fakePool) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	p.record(sql)
	return nil, errNotSupported
}

func (p *fakePool) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	p.record(sql)
	return fakeRow{values: []any{p.name}}
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	return nil, errNotSupported
}

func (p *fakePool) Ping(context.Context) error {
	if p.IsClosed() {
		return errors.New("pool closed")
	}
	return nil
}

func (p *fakePool) Close() {
	p.closed.Add(1)
	if p.onClose != nil {
		p.onClose()
	}
}

func (p *fakePool) IsClosed() bool {
	return p.closed.Load() > 0
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("fake row: column count mismatch")
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = r.values[i].(string)
		case *int:
			*d = r.values[i].(int)
		default:
			return errors.New("fake row: unsupported destination")
		}
	}
	return nil
}

// fakeFactory builds a fakePool per call, named after the config's database.
type fakeFactory struct {
	calls atomic.Int32
	err   error

	mu    sync.Mutex
	built []*fakePool
}

func (f *fakeFactory) Build(_ context.Context, cfg tenant.ConnConfig) (tenant.Pool, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	p := newFakePool(cfg.Database)
	p.cfg = cfg

	f.mu.Lock()
	f.built = append(f.built, p)
	f.mu.Unlock()
	return p, nil
}

func (f *fakeFactory) Built() []*fakePool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakePool(nil), f.built...)
}

// fakeDirectory serves configs keyed by digits-only tax id.
type fakeDirectory struct {
	calls   atomic.Int32
	err     error
	mu      sync.Mutex
	entries map[string]tenant.ConnConfig
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{entries: make(map[string]tenant.ConnConfig)}
}

func (d *fakeDirectory) add(key string, cfg tenant.ConnConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = cfg
}

func (d *fakeDirectory) Lookup(_ context.Context, id tenant.Identity) (tenant.ConnConfig, error) {
	d.calls.Add(1)
	if d.err != nil {
		return tenant.ConnConfig{}, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range id.Candidates() {
		if cfg, ok := d.entries[c]; ok {
			return cfg, nil
		}
	}
	return tenant.ConnConfig{}, tenant.ErrTenantNotFound
}

func mustConfig(t *testing.T, database string) tenant.ConnConfig {
	t.Helper()
	cfg, err := tenant.NewConnConfig("db.internal", database, "public", "app", "secret", 5432)
	require.NoError(t, err)
	return cfg
}

func scanName(t *testing.T, row pgx.Row) string {
	t.Helper()
	var name string
	require.NoError(t, row.Scan(&name))
	return name
}
