package tenant

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithBinding returns a context carrying b. A nil b records that resolution
// ran and found no tenant, hiding any binding from an outer context.
func WithBinding(ctx context.Context, b *Binding) context.Context {
	return context.WithValue(ctx, contextKey{}, b)
}

// BindingFromContext returns the tenant bound to ctx.
func BindingFromContext(ctx context.Context) (*Binding, bool) {
	if ctx == nil {
		return nil, false
	}
	b, _ := ctx.Value(contextKey{}).(*Binding)
	return b, b != nil
}

// CurrentPool returns the pool bound to ctx, if any.
func CurrentPool(ctx context.Context) (Pool, bool) {
	b, ok := BindingFromContext(ctx)
	if !ok || b.Pool == nil {
		return nil, false
	}
	return b.Pool, true
}

// TenantPool is CurrentPool for code that must never fall back to the
// master database.
func TenantPool(ctx context.Context) (Pool, error) {
	p, ok := CurrentPool(ctx)
	if !ok {
		return nil, ErrCompanyNotIdentified
	}
	return p, nil
}

// MustTenantPool panics when no tenant is bound.
// Use it only behind RequireTenant.
func MustTenantPool(ctx context.Context) Pool {
	p, err := TenantPool(ctx)
	if err != nil {
		panic("tenant: " + err.Error())
	}
	return p
}

// Run calls fn with a context bound to b.
func Run(ctx context.Context, b *Binding, fn func(ctx context.Context) error) error {
	return fn(WithBinding(ctx, b))
}

// LoggerExtractor returns a logger.ContextExtractor adding "tenant".
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if b, ok := BindingFromContext(ctx); ok && !b.Identity.IsZero() {
			return slog.String("tenant", b.Identity.Key), true
		}
		return slog.Attr{}, false
	}
}
