package tenant_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/requestid"
	"github.com/dmitrymomot/tenantdb/pkg/secrets"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func TestForwarder_Apply(t *testing.T) {
	t.Parallel()

	cfg := mustConfig(t, "acme")
	b := bindingFor(t, punctuatedCNPJ, newFakePool("acme"))
	b.Config = cfg

	t.Run("identity and config", func(t *testing.T) {
		t.Parallel()

		in := http.Header{}
		in.Set(tenant.HeaderTenantID, punctuatedCNPJ)
		in.Set(tenant.HeaderDBConfig, `{"host":"attacker"}`)
		out := in.Clone()

		ctx := requestid.WithContext(tenant.WithBinding(context.Background(), b), "req-1")
		tenant.NewForwarder().Apply(ctx, in, out)

		assert.Equal(t, punctuatedCNPJ, out.Get(tenant.HeaderTenantID))
		want, err := json.Marshal(cfg)
		require.NoError(t, err)
		assert.Equal(t, string(want), out.Get(tenant.HeaderDBConfig))
		assert.Equal(t, "req-1", out.Get(requestid.Header))
	})

	t.Run("identity without binding", func(t *testing.T) {
		t.Parallel()

		in := http.Header{}
		in.Set(tenant.HeaderTenantID, punctuatedCNPJ)
		in.Set(tenant.HeaderDBConfig, `{"host":"db1"}`)
		in.Set(tenant.HeaderDBToken, "stale")
		out := in.Clone()

		tenant.NewForwarder().Apply(context.Background(), in, out)

		assert.Equal(t, punctuatedCNPJ, out.Get(tenant.HeaderTenantID))
		assert.Empty(t, out.Get(tenant.HeaderDBConfig))
		assert.Empty(t, out.Get(tenant.HeaderDBToken))
	})

	t.Run("no identity header", func(t *testing.T) {
		t.Parallel()

		out := http.Header{}
		out.Set(tenant.HeaderDBConfig, `{"host":"db1"}`)

		tenant.NewForwarder().Apply(tenant.WithBinding(context.Background(), b), http.Header{}, out)

		assert.Empty(t, out.Get(tenant.HeaderTenantID))
		assert.Empty(t, out.Get(tenant.HeaderDBConfig))
	})

	t.Run("sealed", func(t *testing.T) {
		t.Parallel()

		key, err := secrets.GenerateKey()
		require.NoError(t, err)

		in := http.Header{}
		in.Set(tenant.HeaderTenantID, punctuatedCNPJ)
		out := in.Clone()

		fwd := tenant.NewForwarder(tenant.WithForwardSealing(key, time.Minute))
		fwd.Apply(tenant.WithBinding(context.Background(), b), in, out)

		assert.Empty(t, out.Get(tenant.HeaderDBConfig))
		token := out.Get(tenant.HeaderDBToken)
		require.NotEmpty(t, token)

		// The receiving side resolves the same tenant from the token alone.
		f := newResolverFixture(t, tenant.WithSealingKey(key))
		got := f.resolver.Resolve(context.Background(), tenant.Request{
			TenantID:    out.Get(tenant.HeaderTenantID),
			SealedToken: token,
		})
		require.NotNil(t, got)
		assert.Equal(t, tenant.SourceHint, got.Source)
		assert.Equal(t, cfg, got.Config)
	})
}

func TestProxy_AttachesResolvedConfig(t *testing.T) {
	t.Parallel()

	type seen struct {
		path   string
		tenant string
		config string
		xff    string
	}
	received := make(chan seen, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- seen{
			path:   r.URL.Path,
			tenant: r.Header.Get(tenant.HeaderTenantID),
			config: r.Header.Get(tenant.HeaderDBConfig),
			xff:    r.Header.Get("X-Forwarded-For"),
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(upstream.Close)

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	f := newResolverFixture(t)
	cfg, err := tenant.NewConnConfig("db.internal", "acme", "sales", "report", `pa"ss`, 6543)
	require.NoError(t, err)
	f.directory.add(digitsCNPJ, cfg)

	handler := tenant.Middleware(f.resolver)(tenant.NewProxy(target, tenant.NewForwarder(), nil))

	req := httptest.NewRequest(http.MethodGet, "/reports/sales", nil)
	req.Header.Set(tenant.HeaderTenantID, punctuatedCNPJ)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	got := <-received
	assert.Equal(t, "/reports/sales", got.path)
	assert.Equal(t, punctuatedCNPJ, got.tenant)
	assert.NotEmpty(t, got.xff)

	want, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, string(want), got.config)

	rebuilt, err := tenant.ParseConnConfig([]byte(got.config))
	require.NoError(t, err)
	assert.Equal(t, cfg, rebuilt)
}

func TestProxy_UpstreamDown(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.NotFoundHandler())
	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	upstream.Close()

	w := httptest.NewRecorder()
	tenant.NewProxy(target, nil, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
