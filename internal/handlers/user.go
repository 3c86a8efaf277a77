package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
)

// UserHandler handles user administration
type UserHandler struct {
	users UserServiceInterface
	audit Auditor
	log   logrus.FieldLogger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserServiceInterface, audit Auditor, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{users: users, audit: audit, log: log}
}

// ListUsers handles GET /usuarios
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, err := pagination(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	role := models.UserRole(r.URL.Query().Get("rol"))
	if role != "" {
		if err := models.ValidateRole(role); err != nil {
			respondError(w, r, h.log, err)
			return
		}
	}

	users, err := h.users.ListUsers(r.Context(), role, p.limit, p.offset)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, users)
}

// GetUser handles GET /usuarios/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, user)
}

// ChangeRole handles PUT /usuarios/{id}/rol
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req models.RoleUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	actor := currentActor(r)
	user, err := h.users.ChangeRole(r.Context(), actor, id, req.Role)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.audit.LogAction(r.Context(), actor, models.AuditActionUserRoleChange, models.AuditTargetUser, id,
		map[string]models.UserRole{"rol": req.Role}, r)
	respondMessage(w, "role updated", user)
}
