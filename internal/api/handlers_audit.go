package api

import (
	"net/http"

	respond "github.com/taxwise/taxwise-server/internal/api/respond"
	"github.com/taxwise/taxwise-server/internal/api/validate"
	"github.com/taxwise/taxwise-server/internal/audit"
)

// AuditHandler serves the admin audit log view.
type AuditHandler struct {
	store audit.Store
}

func NewAuditHandler(s audit.Store) *AuditHandler { return &AuditHandler{store: s} }

// ListAuditLogs GET /api/admin/audit-logs?limit=N
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.Limit(r.URL.Query().Get("limit"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	logs, err := h.store.List(r.Context(), limit)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": logs, "count": len(logs)})
}
