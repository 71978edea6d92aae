package tenant

import "github.com/go-chi/chi/v5"

// Router mounts the tenant HTTP surface.
//
//	GET  /tenant  — lock-free status query by tenant_id or user_id
//	POST /tenant  — idempotent create-or-upgrade under the lock registry
func Router(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/tenant", h.GetTenant)
	r.Post("/tenant", h.CreateTenant)
	return r
}
