// Package tenant routes database work to the right tenant database.
//
// Each inbound request names its tenant with the X-Tenant-Cnpj header (a
// Brazilian tax id, punctuation optional). Middleware resolves the tenant
// through a Resolver, which tries three sources in order:
//
//  1. the Registry of live pools, keyed by the digits of the tax id;
//  2. an X-Tenant-Db-Config JSON hint (or a sealed X-Tenant-Db-Token);
//  3. the companies table in the master database, via a Directory.
//
// The result is bound to the request context. Handlers reach the database
// through a DB, which picks the bound pool per call and falls back to the
// master pool, or through TenantPool when a missing tenant must be an error:
//
//	r.Use(tenant.Middleware(resolver))
//	r.With(tenant.RequireTenant(nil)).Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
//		pool, err := tenant.TenantPool(r.Context())
//		...
//	})
//
// Resolution never fails a request. An unknown tenant, a malformed hint or
// an unreachable directory is logged and the request continues unbound.
//
// NewProxy forwards requests to the analytics service with the resolved
// tenant attached by a Forwarder.
package tenant
