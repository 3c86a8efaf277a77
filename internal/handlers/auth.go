package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/middleware"
	"boletera-api/internal/models"
	"boletera-api/internal/services"
)

// AuthHandler handles registration, login and the current user
type AuthHandler struct {
	auth  AuthServiceInterface
	users UserServiceInterface
	log   logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthServiceInterface, users UserServiceInterface, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, log: log}
}

// Register handles POST /auth/registro. Anonymous callers may only create
// USER accounts; an authenticated admin may create any role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var creator *services.Actor
	if actor, ok := middleware.GetActor(r.Context()); ok {
		creator = &actor
	}

	user, err := h.auth.Register(r.Context(), creator, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondCreated(w, "user registered", user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondMessage(w, "login successful", resp)
}

// Me handles GET /usuarios/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), currentActor(r).UserID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, user)
}
