package tenant

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is a Pool that forwards every call to the pool bound to the call's
// context, or to the master pool when no tenant is bound. The choice is made
// per call, so a single DB value can be shared by the whole process.
//
// Code that must not touch the master database on a missing tenant should
// use TenantPool instead.
type DB struct {
	master Pool
}

var _ Pool = (*DB)(nil)

func NewDB(master Pool) *DB {
	if master == nil {
		panic("tenant: nil master pool")
	}
	return &DB{master: master}
}

// Pool returns the pool a call with ctx would use.
func (db *DB) Pool(ctx context.Context) Pool {
	if p, ok := CurrentPool(ctx); ok {
		return p
	}
	return db.master
}

func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return db.Pool(ctx).Exec(ctx, sql, args...)
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.Pool(ctx).Query(ctx, sql, args...)
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.Pool(ctx).QueryRow(ctx, sql, args...)
}

func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	return db.Pool(ctx).Begin(ctx)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool(ctx).Ping(ctx)
}

// Close closes the master pool. Tenant pools belong to the Registry.
func (db *DB) Close() {
	db.master.Close()
}

// CloseContext closes whichever pool ctx resolves to.
func (db *DB) CloseContext(ctx context.Context) {
	db.Pool(ctx).Close()
}
