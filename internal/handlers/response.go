package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"boletera-api/internal/middleware"
	"boletera-api/internal/models"
	"boletera-api/internal/services"
)

// Response is the envelope of every API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func respondMessage(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// respondError maps the error kinds to status codes. Anything unclassified is
// logged and reported as a bare 500.
func respondError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	body := Response{Success: false, Error: err.Error()}
	var status int

	var conflict *models.ConflictError
	var transition *models.InvalidTransitionError

	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &transition):
		status = http.StatusConflict
		body.Data = map[string]models.OrderState{
			"estadoActual":     transition.From,
			"estadoSolicitado": transition.To,
		}
	case errors.As(err, &conflict):
		status = http.StatusConflict
		if len(conflict.TicketIDs) > 0 {
			body.Data = map[string][]int64{"boletos": conflict.TicketIDs}
		}
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		body.Error = "internal server error"
		log.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetRequestID(r.Context()),
		}).Error("request failed")
	}

	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("body", "request body is required")
		}
		return models.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// urlID parses a positive integer route parameter
func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// queryInt parses an optional non-negative integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, models.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}

// queryID parses an optional positive id query parameter
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

type page struct {
	limit  int
	offset int
}

func pagination(r *http.Request) (page, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return page{}, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return page{}, err
	}
	return page{limit: limit, offset: offset}, nil
}

// currentActor returns the authenticated actor. Routes that call it sit
// behind RequireAuth, so the zero Actor is never used for a decision.
func currentActor(r *http.Request) services.Actor {
	actor, _ := middleware.GetActor(r.Context())
	return actor
}
