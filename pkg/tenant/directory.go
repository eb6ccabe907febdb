package tenant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantdb/pkg/pg"
)

// Directory maps a tenant identity to its connection settings.
// Lookup returns ErrTenantNotFound when the tenant is unknown.
type Directory interface {
	Lookup(ctx context.Context, id Identity) (ConnConfig, error)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(ctx context.Context, id Identity) (ConnConfig, error)

func (f DirectoryFunc) Lookup(ctx context.Context, id Identity) (ConnConfig, error) {
	return f(ctx, id)
}

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const lookupQuery = `SELECT db_host, db_name, COALESCE(db_schema, ''), db_user, COALESCE(db_password, ''), COALESCE(db_port, 0)
FROM companies
WHERE cnpj = ANY($1)
LIMIT 1`

// PgDirectory reads tenant credentials from the master companies table.
// The tax id is matched both as given and digits only.
type PgDirectory struct {
	db Querier
}

func NewPgDirectory(db Querier) *PgDirectory {
	return &PgDirectory{db: db}
}

func (d *PgDirectory) Lookup(ctx context.Context, id Identity) (ConnConfig, error) {
	if id.IsZero() {
		return ConnConfig{}, ErrInvalidIdentity
	}

	var (
		host, database, schema, user, password string
		port                                   int
	)
	err := d.db.QueryRow(ctx, lookupQuery, id.Candidates()).
		Scan(&host, &database, &schema, &user, &password, &port)
	if err != nil {
		switch {
		case pg.IsNotFoundError(err):
			return ConnConfig{}, ErrTenantNotFound
		case pg.IsUndefinedTableError(err):
			return ConnConfig{}, errors.Join(ErrDirectoryUnavailable, errors.New("companies table missing, master migrations not applied"), err)
		}
		return ConnConfig{}, errors.Join(ErrDirectoryUnavailable, err)
	}

	return NewConnConfig(host, database, schema, user, password, port)
}
