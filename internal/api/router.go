package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taxwise/taxwise-server/internal/api/recovery"
	"github.com/taxwise/taxwise-server/internal/audit"
)

// Deps are the collaborators behind the HTTP routes.
type Deps struct {
	Assembler PackageAssembler
	// Suggester is optional; the suggestions route is not registered without it.
	Suggester       Suggester
	AuditLog        audit.Store
	Healthy         func() bool
	MaxRequestBytes int64
}

// NewRouter wires HTTP routes to handlers.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Export
	export := NewExportHandler(d.Assembler, d.MaxRequestBytes)
	root.HandleFunc("/api/export-package", export.ExportPackage).Methods(http.MethodPost)

	// Deduction suggestions
	if d.Suggester != nil {
		sugg := NewDeductionsHandler(d.Suggester, d.MaxRequestBytes)
		root.HandleFunc("/api/deductions/suggestions", sugg.Suggest).Methods(http.MethodPost)
	}

	// Admin
	if d.AuditLog != nil {
		auditHandler := NewAuditHandler(d.AuditLog)
		root.HandleFunc("/api/admin/audit-logs", auditHandler.ListAuditLogs).Methods(http.MethodGet)
	}

	// Health
	healthHandler := NewHealthHandler(d.Healthy)
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods(http.MethodGet)
	return root
}
