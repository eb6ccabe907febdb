package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func TestDB_FallsBackToMaster(t *testing.T) {
	t.Parallel()

	master := newFakePool("master")
	db := tenant.NewDB(master)
	ctx := context.Background()

	assert.Equal(t, "master", scanName(t, db.QueryRow(ctx, "SELECT 1")))
	_, err := db.Exec(ctx, "UPDATE x SET y = 1")
	require.NoError(t, err)
	require.NoError(t, db.Ping(ctx))
	assert.Len(t, master.Queries(), 2)
	assert.Same(t, master, db.Pool(ctx))
}

func TestDB_ResolvesPoolPerCall(t *testing.T) {
	t.Parallel()

	master, acme := newFakePool("master"), newFakePool("acme")
	db := tenant.NewDB(master)
	bound := tenant.WithBinding(context.Background(), bindingFor(t, "1", acme))

	assert.Equal(t, "acme", scanName(t, db.QueryRow(bound, "SELECT 1")))
	tag, err := db.Exec(bound, "UPDATE orders SET status = 'paid'")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tag.RowsAffected())

	_, err = db.Query(bound, "SELECT * FROM products")
	require.Error(t, err)

	assert.Equal(t, "master", scanName(t, db.QueryRow(context.Background(), "SELECT 1")))
	assert.Len(t, acme.Queries(), 3)
	assert.Len(t, master.Queries(), 1)
}

func TestDB_Close(t *testing.T) {
	t.Parallel()

	master, acme := newFakePool("master"), newFakePool("acme")
	db := tenant.NewDB(master)
	bound := tenant.WithBinding(context.Background(), bindingFor(t, "1", acme))

	db.CloseContext(bound)
	assert.True(t, acme.IsClosed())
	assert.False(t, master.IsClosed())

	db.Close()
	assert.True(t, master.IsClosed())
}

func TestNewDB_NilMaster(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { tenant.NewDB(nil) })
}
