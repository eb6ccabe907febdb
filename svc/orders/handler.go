package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/pg"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

type Handler struct {
	db  tenant.Pool
	log *slog.Logger
}

// NewHandler builds the handler. db is normally a *tenant.DB.
func NewHandler(db tenant.Pool, log *slog.Logger) *Handler {
	return &Handler{
		db:  db,
		log: logger.OrDiscard(log).With(logger.Component("orders")),
	}
}

// Routes mounts the handlers on r. Order lookups require a tenant; the
// product list runs against whatever pool the request is bound to.
func (h *Handler) Routes(r chi.Router) {
	r.With(tenant.RequireTenant(nil)).Get("/orders/{id}", h.GetOrder)
	r.Get("/products", h.ListProducts)
}

// GetOrder serves GET /orders/{id}. It never falls back to the master
// database: without a tenant it answers 403.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pool, err := tenant.TenantPool(ctx)
	if err != nil {
		tenant.DefaultErrorHandler(w, r, err)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_order_id")
		return
	}

	var o Order
	err = pool.QueryRow(ctx, getOrderQuery, id).
		Scan(&o.ID, &o.Number, &o.Customer, &o.Status, &o.TotalCents, &o.CreatedAt)
	switch {
	case pg.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, "order_not_found")
		return
	case pg.IsConnectionError(err):
		h.log.WarnContext(ctx, "tenant database unreachable", logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "tenant_database_unavailable")
		return
	case err != nil:
		h.log.ErrorContext(ctx, "failed to load order", slog.Int64("order_id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeData(w, o)
}

// ListProducts serves GET /products?limit=N.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultProductLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = min(n, maxProductLimit)
	}

	rows, err := h.db.Query(ctx, listProductsQuery, limit)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to list products", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	defer rows.Close()

	products := make([]Product, 0, limit)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents); err != nil {
			h.log.ErrorContext(ctx, "failed to scan product", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		h.log.ErrorContext(ctx, "failed to list products", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeData(w, products)
}
