package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(stubPinger{}, discard)
	rec := serve(t, http.MethodGet, "/health", "/health", nil, "", h.Health)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"up"`)

	h = NewHealthHandler(stubPinger{err: errors.New("dial tcp: connection refused")}, discard)
	rec = serve(t, http.MethodGet, "/health", "/health", nil, "", h.Health)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"down"`)
}
