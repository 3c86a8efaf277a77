package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boletera-api/internal/models"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantData   string
	}{
		{
			name:       "validation",
			err:        models.NewValidationError("boletos", "must not be empty"),
			wantStatus: http.StatusBadRequest,
			wantError:  "boletos: must not be empty",
		},
		{
			name:       "wrapped validation",
			err:        errors.Wrap(models.NewValidationError("precio", "must be positive"), "create ticket"),
			wantStatus: http.StatusBadRequest,
			wantError:  "create ticket: precio: must be positive",
		},
		{
			name:       "invalid credentials",
			err:        models.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid email or password",
		},
		{
			name:       "forbidden",
			err:        &models.ForbiddenError{Message: "not your order"},
			wantStatus: http.StatusForbidden,
			wantError:  "not your order",
		},
		{
			name:       "not found",
			err:        models.NewNotFoundError("orden", 9),
			wantStatus: http.StatusNotFound,
			wantError:  "orden with id 9 not found",
		},
		{
			name:       "conflict with tickets",
			err:        models.NewConflictError("tickets are not available", 4, 5),
			wantStatus: http.StatusConflict,
			wantError:  "tickets are not available (boletos: 4, 5)",
			wantData:   `{"boletos":[4,5]}`,
		},
		{
			name:       "invalid transition",
			err:        &models.InvalidTransitionError{From: models.OrderCancelado, To: models.OrderPagado},
			wantStatus: http.StatusConflict,
			wantError:  "invalid order state transition from CANCELADO to PAGADO",
			wantData:   `{"estadoActual":"CANCELADO","estadoSolicitado":"PAGADO"}`,
		},
		{
			name:       "unclassified",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), discard, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			if tt.wantData != "" {
				assert.JSONEq(t, tt.wantData, string(resp.Data))
			} else {
				assert.Empty(t, resp.Data)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var req models.OrderStateRequest

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	err := decodeJSON(r, &req)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)

	err = decodeJSON(newBodyRequest(`{"estado":"PAGADO","extra":1}`), &req)
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, decodeJSON(newBodyRequest(`{"estado":"PAGADO"}`), &req))
	assert.Equal(t, models.OrderPagado, req.State)
}

func TestQueryInt(t *testing.T) {
	n, err := queryInt(httptest.NewRequest(http.MethodGet, "/?limit=20", nil), "limit")
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = queryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit")
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, raw := range []string{"-1", "abc", "1.5"} {
		_, err = queryInt(httptest.NewRequest(http.MethodGet, "/?limit="+raw, nil), "limit")
		assert.ErrorIs(t, err, models.ErrValidation, raw)
	}
}
