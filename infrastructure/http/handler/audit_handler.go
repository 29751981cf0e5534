package handler

import (
	"net/http"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	audit inbound.AuditUseCase
}

func NewAuditHandler(audit inbound.AuditUseCase) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /audit-logs, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.List(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list audit entries")
		return
	}
	response.Success(w, http.StatusOK, "Audit entries retrieved", entries)
}
