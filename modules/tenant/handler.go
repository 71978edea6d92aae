package tenant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tenantkit/tenantd/pkg/logger"
	"github.com/tenantkit/tenantd/pkg/tenantid"
)

// maxBodySize caps create request bodies; the payload is three short fields.
const maxBodySize = 64 << 10

// Handler exposes the provisioner over HTTP.
type Handler struct {
	prov        *Provisioner
	ctxProvider ContextProvider
	diagnostics bool
	log         *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithContextProvider installs the ambient-context fallback used when a
// create request omits identity fields.
func WithContextProvider(cp ContextProvider) HandlerOption {
	return func(h *Handler) {
		if cp != nil {
			h.ctxProvider = cp
		}
	}
}

// WithDiagnostics includes error detail in 500 responses. Off in production.
func WithDiagnostics(enabled bool) HandlerOption {
	return func(h *Handler) { h.diagnostics = enabled }
}

// WithHandlerLogger sets the handler logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler wires the HTTP surface over a Provisioner.
func NewHandler(prov *Provisioner, opts ...HandlerOption) *Handler {
	h := &Handler{
		prov: prov,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetTenant answers GET /tenant?tenant_id=<id> and GET /tenant?user_id=<id>.
// A user_id is translated to its derived tenant id first, so status can be
// asked about a tenant that has never been provisioned.
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rawID := q.Get("tenant_id")
	if rawID == "" {
		if userID := q.Get("user_id"); userID != "" {
			derived, err := tenantid.Derive(userID)
			if err != nil {
				h.writeInvalidID(w, rawID, "Invalid tenant ID")
				return
			}
			rawID = derived.String()
		}
	}

	res, err := h.prov.Status(r.Context(), rawID)
	if err != nil {
		if errors.Is(err, tenantid.ErrInvalidTenantID) {
			h.writeInvalidID(w, rawID, "Invalid tenant ID")
			return
		}
		h.writeServerError(w, r, "failed to query tenant status", err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// CreateTenant answers POST /tenant. Missing body fields fall back to the
// ambient context provider, and a missing tenant id is derived from the
// user id. A locked result is a 200: the caller polls, it does not retry
// into an error handler.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	req, err := normalizeCreateRequest(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	if h.ctxProvider != nil {
		ambient := h.ctxProvider.TryGet(r)
		req.TenantID = firstNonEmpty(req.TenantID, ambient.TenantID)
		req.UserID = firstNonEmpty(req.UserID, ambient.UserID)
		req.BusinessName = firstNonEmpty(req.BusinessName, ambient.BusinessName)
	}

	if req.TenantID == "" && req.UserID != "" {
		derived, err := tenantid.Derive(req.UserID)
		if err == nil {
			req.TenantID = derived.String()
		}
	}

	res, err := h.prov.Ensure(r.Context(), req.TenantID, req.BusinessName, req.UserID)
	if err != nil {
		if errors.Is(err, tenantid.ErrInvalidTenantID) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"success":   false,
				"message":   "Invalid or missing tenant ID",
				"tenant_id": req.TenantID,
			})
			return
		}
		h.writeServerError(w, r, res.Message, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) writeInvalidID(w http.ResponseWriter, rawID, message string) {
	h.writeJSON(w, http.StatusBadRequest, map[string]any{
		"success":  false,
		"message":  message,
		"tenantId": rawID,
	})
}

func (h *Handler) writeServerError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.log.ErrorContext(r.Context(), "tenant request failed", logger.Error(err))

	if message == "" {
		message = "internal server error"
	}
	body := map[string]any{
		"success": false,
		"message": message,
	}
	if h.diagnostics {
		body["stack"] = err.Error()
	}
	h.writeJSON(w, http.StatusInternalServerError, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", logger.Error(err))
	}
}
