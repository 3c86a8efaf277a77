package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"boletera-api/internal/services"
)

type contextKey string

const (
	actorContextKey     contextKey = "actor"
	requestIDContextKey contextKey = "request_id"
)

// WithActor stores the authenticated actor in the context
func WithActor(ctx context.Context, actor services.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// GetActor returns the authenticated actor, if any
func GetActor(ctx context.Context) (services.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(services.Actor)
	return actor, ok
}

// GetRequestID returns the id assigned to the request by RequestID
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Success: false, Error: message})
}
