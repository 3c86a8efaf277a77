package handlers

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"boletera-api/internal/models"
)

func freeTicket(id, eventID int64, price string) *models.Ticket {
	return &models.Ticket{
		ID:        id,
		Price:     decimal.RequireFromString(price),
		Type:      models.TicketGeneral,
		Available: true,
		EventID:   eventID,
	}
}

func TestTicketHandler_PurchaseTicket(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(*MockTicketService)
		wantStatus int
	}{
		{
			name:   "sold to the caller",
			target: "/boletos/5/comprar",
			setup: func(m *MockTicketService) {
				sold := freeTicket(5, 1, "400")
				sold.Available = false
				sold.UserID = &buyerActor.UserID
				m.On("Purchase", mock.Anything, int64(5), buyerActor.UserID).Return(sold, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "already sold",
			target: "/boletos/5/comprar",
			setup: func(m *MockTicketService) {
				m.On("Purchase", mock.Anything, int64(5), buyerActor.UserID).
					Return(nil, models.NewConflictError("ticket is not available", 5))
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "missing ticket",
			target: "/boletos/404/comprar",
			setup: func(m *MockTicketService) {
				m.On("Purchase", mock.Anything, int64(404), buyerActor.UserID).
					Return(nil, models.NewNotFoundError("boleto", 404))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad id",
			target:     "/boletos/0/comprar",
			setup:      func(m *MockTicketService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tickets := new(MockTicketService)
			tt.setup(tickets)
			h := NewTicketHandler(tickets, new(MockEventService), new(MockAuditor), discard)

			rec := serve(t, http.MethodPost, "/boletos/{id}/comprar", tt.target, &buyerActor, "", h.PurchaseTicket)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			tickets.AssertExpectations(t)
		})
	}
}

func TestTicketHandler_CreateTicket(t *testing.T) {
	t.Run("organizer of the event", func(t *testing.T) {
		tickets := new(MockTicketService)
		events := new(MockEventService)
		events.On("Authorize", mock.Anything, orgActor, int64(1)).Return(&models.Event{ID: 1, OrganizerID: orgActor.UserID}, nil)
		tickets.On("Create", mock.Anything, mock.MatchedBy(func(req models.TicketCreateRequest) bool {
			return req.EventID == 1 && req.Price.Equal(decimal.RequireFromString("350.50")) && req.Type == models.TicketVIP
		})).Return(freeTicket(9, 1, "350.50"), nil)
		h := NewTicketHandler(tickets, events, new(MockAuditor), discard)

		rec := serve(t, http.MethodPost, "/boletos", "/boletos", &orgActor, `{"precio":"350.50","tipo":"VIP","eventoId":1}`, h.CreateTicket)

		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		tickets.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("someone else's event", func(t *testing.T) {
		tickets := new(MockTicketService)
		events := new(MockEventService)
		events.On("Authorize", mock.Anything, orgActor, int64(2)).Return(nil, &models.ForbiddenError{Message: "not your event"})
		h := NewTicketHandler(tickets, events, new(MockAuditor), discard)

		rec := serve(t, http.MethodPost, "/boletos", "/boletos", &orgActor, `{"precio":"100","tipo":"GENERAL","eventoId":2}`, h.CreateTicket)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTicketHandler_ReleaseTicket(t *testing.T) {
	held := freeTicket(5, 1, "400")
	held.Available = false
	held.UserID = &buyerActor.UserID

	tickets := new(MockTicketService)
	tickets.On("GetTicket", mock.Anything, int64(5)).Return(held, nil)
	tickets.On("Release", mock.Anything, int64(5)).Return(freeTicket(5, 1, "400"), nil)
	events := new(MockEventService)
	events.On("Authorize", mock.Anything, adminActor, int64(1)).Return(&models.Event{ID: 1}, nil)
	audit := new(MockAuditor)
	audit.On("LogAction", adminActor, models.AuditActionTicketRelease, models.AuditTargetTicket, int64(5)).Return()
	h := NewTicketHandler(tickets, events, audit, discard)

	rec := serve(t, http.MethodPost, "/boletos/{id}/liberar", "/boletos/5/liberar", &adminActor, "", h.ReleaseTicket)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"disponible":true`)
	tickets.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestTicketHandler_UpdatePrice(t *testing.T) {
	tickets := new(MockTicketService)
	tickets.On("GetTicket", mock.Anything, int64(5)).Return(freeTicket(5, 1, "400"), nil)
	tickets.On("UpdatePrice", mock.Anything, int64(5), mock.Anything).
		Return(freeTicket(5, 1, "450.00"), nil)
	events := new(MockEventService)
	events.On("Authorize", mock.Anything, orgActor, int64(1)).Return(&models.Event{ID: 1}, nil)
	audit := new(MockAuditor)
	audit.On("LogAction", orgActor, models.AuditActionTicketPrice, models.AuditTargetTicket, int64(5)).Return()
	h := NewTicketHandler(tickets, events, audit, discard)

	rec := serve(t, http.MethodPut, "/boletos/{id}/precio", "/boletos/5/precio", &orgActor, `{"precio":"450.00"}`, h.UpdatePrice)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tickets.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestTicketHandler_DeleteTicket(t *testing.T) {
	tickets := new(MockTicketService)
	tickets.On("GetTicket", mock.Anything, int64(5)).Return(freeTicket(5, 1, "400"), nil)
	tickets.On("DeleteTicket", mock.Anything, int64(5)).
		Return(models.NewConflictError("only available tickets can be deleted", 5))
	events := new(MockEventService)
	events.On("Authorize", mock.Anything, orgActor, int64(1)).Return(&models.Event{ID: 1}, nil)
	h := NewTicketHandler(tickets, events, new(MockAuditor), discard)

	rec := serve(t, http.MethodDelete, "/boletos/{id}", "/boletos/5", &orgActor, "", h.DeleteTicket)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"boletos":[5]`)
}
