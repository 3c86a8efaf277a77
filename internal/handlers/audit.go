package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
)

// AuditHandler exposes the audit trail to admins
type AuditHandler struct {
	audit Auditor
	log   logrus.FieldLogger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit Auditor, log logrus.FieldLogger) *AuditHandler {
	return &AuditHandler{audit: audit, log: log}
}

// ListAuditLogs handles GET /auditoria
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	p, err := pagination(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	userID, err := queryID(r, "usuarioId")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	targetID, err := queryID(r, "entidadId")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	q := r.URL.Query()
	logs, err := h.audit.GetAuditLogs(r.Context(), models.AuditLogFilters{
		UserID:     userID,
		Action:     q.Get("accion"),
		TargetType: q.Get("entidad"),
		TargetID:   targetID,
		Limit:      p.limit,
		Offset:     p.offset,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, logs)
}
