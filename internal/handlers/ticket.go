package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
)

// TicketHandler handles ticket endpoints
type TicketHandler struct {
	tickets TicketServiceInterface
	events  EventServiceInterface
	audit   Auditor
	log     logrus.FieldLogger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets TicketServiceInterface, events EventServiceInterface, audit Auditor, log logrus.FieldLogger) *TicketHandler {
	return &TicketHandler{tickets: tickets, events: events, audit: audit, log: log}
}

// CreateTicket handles POST /boletos
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req models.TicketCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if _, err := h.events.Authorize(r.Context(), currentActor(r), req.EventID); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	ticket, err := h.tickets.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondCreated(w, "ticket created", ticket)
}

// GetTicket handles GET /boletos/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	ticket, err := h.tickets.GetTicket(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, ticket)
}

// PurchaseTicket handles POST /boletos/{id}/comprar. The ticket is sold to
// the authenticated user.
func (h *TicketHandler) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	ticket, err := h.tickets.Purchase(r.Context(), id, currentActor(r).UserID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondMessage(w, "ticket purchased", ticket)
}

// ReleaseTicket handles POST /boletos/{id}/liberar
func (h *TicketHandler) ReleaseTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.authorizeTicket(w, r)
	if !ok {
		return
	}

	released, err := h.tickets.Release(r.Context(), ticket.ID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.audit.LogAction(r.Context(), currentActor(r), models.AuditActionTicketRelease, models.AuditTargetTicket, ticket.ID,
		map[string]interface{}{"eventoId": ticket.EventID, "usuarioId": ticket.UserID}, r)
	respondMessage(w, "ticket released", released)
}

// UpdatePrice handles PUT /boletos/{id}/precio
func (h *TicketHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.authorizeTicket(w, r)
	if !ok {
		return
	}

	var req models.TicketPriceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	updated, err := h.tickets.UpdatePrice(r.Context(), ticket.ID, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.audit.LogAction(r.Context(), currentActor(r), models.AuditActionTicketPrice, models.AuditTargetTicket, ticket.ID,
		map[string]string{"anterior": ticket.PriceLabel(), "nuevo": updated.PriceLabel()}, r)
	respondMessage(w, "ticket price updated", updated)
}

// DeleteTicket handles DELETE /boletos/{id}
func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.authorizeTicket(w, r)
	if !ok {
		return
	}

	if err := h.tickets.DeleteTicket(r.Context(), ticket.ID); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondMessage(w, "ticket deleted", nil)
}

// authorizeTicket loads the ticket in the URL and checks the actor manages its event
func (h *TicketHandler) authorizeTicket(w http.ResponseWriter, r *http.Request) (*models.Ticket, bool) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return nil, false
	}

	ticket, err := h.tickets.GetTicket(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return nil, false
	}

	if _, err := h.events.Authorize(r.Context(), currentActor(r), ticket.EventID); err != nil {
		respondError(w, r, h.log, err)
		return nil, false
	}
	return ticket, true
}
