package tenant_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func TestParseConnConfig(t *testing.T) {
	t.Parallel()

	t.Run("full object", func(t *testing.T) {
		t.Parallel()

		cfg, err := tenant.ParseConnConfig([]byte(`{"host":"db1","database":"acme","schema":"sales","user":"u","password":"p","port":6432}`))
		require.NoError(t, err)
		assert.Equal(t, tenant.ConnConfig{
			Host: "db1", Database: "acme", Schema: "sales", User: "u", Password: "p", Port: 6432,
		}, cfg)
	})

	t.Run("defaults for port and schema", func(t *testing.T) {
		t.Parallel()

		cfg, err := tenant.ParseConnConfig([]byte(`{"host":"db1","database":"acme","user":"u","password":""}`))
		require.NoError(t, err)
		assert.Equal(t, tenant.DefaultPort, cfg.Port)
		assert.Equal(t, tenant.DefaultSchema, cfg.Schema)
	})

	t.Run("port as string", func(t *testing.T) {
		t.Parallel()

		cfg, err := tenant.ParseConnConfig([]byte(`{"host":"db1","database":"acme","user":"u","password":"p","port":"5433"}`))
		require.NoError(t, err)
		assert.Equal(t, 5433, cfg.Port)
	})

	t.Run("schema is sanitized", func(t *testing.T) {
		t.Parallel()

		cfg, err := tenant.ParseConnConfig([]byte(`{"host":"db1","database":"acme","schema":"x; DROP TABLE y","user":"u","password":"p"}`))
		require.NoError(t, err)
		assert.Equal(t, "xDROPTABLEy", cfg.Schema)
	})

	invalid := map[string]string{
		"not json":         `{host: db1}`,
		"array":            `[1,2]`,
		"null":             `null`,
		"unknown field":    `{"host":"db1","database":"acme","user":"u","password":"p","ssl":true}`,
		"missing host":     `{"database":"acme","user":"u","password":"p"}`,
		"blank database":   `{"host":"db1","database":"  ","user":"u","password":"p"}`,
		"missing user":     `{"host":"db1","database":"acme","password":"p"}`,
		"missing password": `{"host":"db1","database":"acme","user":"u"}`,
		"port too big":     `{"host":"db1","database":"acme","user":"u","password":"p","port":70000}`,
		"port not numeric": `{"host":"db1","database":"acme","user":"u","password":"p","port":"abc"}`,
		"port wrong type":  `{"host":"db1","database":"acme","user":"u","password":"p","port":true}`,
		"trailing data":    `{"host":"db1","database":"acme","user":"u","password":"p"} {}`,
	}
	for name, input := range invalid {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := tenant.ParseConnConfig([]byte(input))
			require.ErrorIs(t, err, tenant.ErrInvalidConfig)
		})
	}
}

func TestConnConfig_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	cfg, err := tenant.NewConnConfig("db1", "acme", "sales", "u", `p"<&>'`, 6432)
	require.NoError(t, err)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `{"host":"db1","database":"acme","schema":"sales","user":"u","password":`))

	parsed, err := tenant.ParseConnConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestSanitizeSchema(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"public":              "public",
		"Tenant_01":           "Tenant_01",
		"":                    "public",
		"';--":                "public",
		"a b":                 "ab",
		"sales,public":        "salespublic",
		"esquema_são_paulo":   "esquema_so_paulo",
		"search_path=pg_temp": "search_pathpg_temp",
	}
	for in, want := range tests {
		assert.Equal(t, want, tenant.SanitizeSchema(in), in)
	}
}

func TestConnConfig_ConnString(t *testing.T) {
	t.Parallel()

	cfg, err := tenant.NewConnConfig("db.internal", "acme db", "sales", "app", `it's a \secret`, 6432)
	require.NoError(t, err)

	parsed, err := pgconn.ParseConfig(cfg.ConnString())
	require.NoError(t, err)
	assert.Equal(t, "db.internal", parsed.Host)
	assert.Equal(t, uint16(6432), parsed.Port)
	assert.Equal(t, "acme db", parsed.Database)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, `it's a \secret`, parsed.Password)
	assert.Equal(t, "-c search_path=sales", parsed.RuntimeParams["options"])
}

func TestConnConfig_NeverPrintsPassword(t *testing.T) {
	t.Parallel()

	cfg := mustConfig(t, "acme")

	assert.NotContains(t, cfg.String(), "secret")
	assert.NotContains(t, fmt.Sprintf("%v", cfg), "secret")
	assert.Equal(t, "[redacted]", cfg.Redacted().Password)
	assert.Equal(t, "secret", cfg.Password, "Redacted must not modify the receiver")

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("resolved", slog.Any("config", cfg))
	assert.NotContains(t, buf.String(), "secret")
	assert.Contains(t, buf.String(), `"database":"acme"`)
}
