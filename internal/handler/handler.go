// Package handler exposes the HTTP JSON API: cookie-session auth, user and
// debt administration, the brand/product catalog, and order flows.
package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/auth"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/brand"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/debt"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/order"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/imagestore"
)

// SummarySource provides the aggregate figures for the admin dashboard.
type SummarySource interface {
	Summary(ctx context.Context) (clients, orders int64, totalDebt decimal.Decimal, err error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// SecureCookies marks session cookies Secure + SameSite=None. Disable
	// only for plain-HTTP local development.
	SecureCookies bool
}

// Handler wires the domain services to their HTTP routes.
type Handler struct {
	cfg      Config
	users    user.Repository
	brands   brand.Repository
	products product.Repository
	orders   *order.Service
	debts    *debt.Service
	stats    SummarySource
	tokens   *auth.Tokens
	images   imagestore.Uploader
}

// New constructs a Handler with the required dependencies.
func New(
	cfg Config,
	users user.Repository,
	brands brand.Repository,
	products product.Repository,
	orders *order.Service,
	debts *debt.Service,
	stats SummarySource,
	tokens *auth.Tokens,
	images imagestore.Uploader,
) *Handler {
	return &Handler{
		cfg:      cfg,
		users:    users,
		brands:   brands,
		products: products,
		orders:   orders,
		debts:    debts,
		stats:    stats,
		tokens:   tokens,
		images:   images,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Auth + self-service.
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/logout", h.logout)
	mux.Handle("GET /api/auth/me", h.requireAuth(h.me))
	mux.Handle("PUT /api/auth/profile", h.requireAuth(h.updateProfile))

	// Admin user management.
	mux.Handle("POST /api/auth/users", h.requireAdmin(h.createUser))
	mux.Handle("GET /api/auth/users", h.requireAdmin(h.listUsers))
	mux.Handle("GET /api/auth/users/{id}", h.requireAdmin(h.getUser))
	mux.Handle("PUT /api/auth/users/{id}", h.requireAdmin(h.updateUser))
	mux.Handle("DELETE /api/auth/users/{id}", h.requireAdmin(h.deleteUser))
	mux.Handle("PUT /api/auth/users/{id}/settle-debt", h.requireAdmin(h.settleDebt))

	// Brands.
	mux.Handle("GET /api/brands", h.optionalAuth(h.listBrands))
	mux.Handle("POST /api/brands", h.requireAdmin(h.createBrand))
	mux.Handle("PUT /api/brands/{id}", h.requireAdmin(h.updateBrand))
	mux.Handle("DELETE /api/brands/{id}", h.requireAdmin(h.deleteBrand))

	// Products. Listing works anonymously with Retail pricing.
	mux.Handle("GET /api/products", h.optionalAuth(h.listProducts))
	mux.Handle("GET /api/products/{id}", h.optionalAuth(h.getProduct))
	mux.Handle("POST /api/products", h.requireAdmin(h.createProduct))
	mux.Handle("PUT /api/products/{id}", h.requireAdmin(h.updateProduct))
	mux.Handle("DELETE /api/products/{id}", h.requireAdmin(h.deleteProduct))

	// Orders.
	mux.Handle("POST /api/orders", h.requireAuth(h.checkout))
	mux.Handle("GET /api/orders/my", h.requireAuth(h.myOrders))
	mux.Handle("GET /api/orders", h.requireAdmin(h.listOrders))
	mux.Handle("PUT /api/orders/{id}/status", h.requireAdmin(h.updateOrderStatus))
	mux.Handle("PUT /api/orders/{id}", h.requireAdmin(h.updateOrder))
	mux.Handle("DELETE /api/orders/{id}", h.requireAdmin(h.deleteOrder))
	mux.Handle("GET /api/orders/{id}/receipt", h.requireAuth(h.viewReceipt))

	// Admin extras.
	mux.Handle("POST /api/admin/orders", h.requireAdmin(h.createOrderForClient))
	mux.Handle("GET /api/admin/summary", h.requireAdmin(h.adminSummary))

	return mux
}
