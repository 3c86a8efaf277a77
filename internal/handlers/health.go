package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	db  Pinger
	log logrus.FieldLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.log.WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "database unavailable",
			Data:    map[string]string{"status": "degraded", "database": "down"},
		})
		return
	}

	respondOK(w, map[string]string{"status": "ok", "database": "up"})
}
