package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
	"boletera-api/internal/repositories"
)

// EventHandler handles event endpoints and the per-event ticket views
type EventHandler struct {
	events  EventServiceInterface
	tickets TicketServiceInterface
	audit   Auditor
	log     logrus.FieldLogger
}

// NewEventHandler creates a new event handler
func NewEventHandler(events EventServiceInterface, tickets TicketServiceInterface, audit Auditor, log logrus.FieldLogger) *EventHandler {
	return &EventHandler{events: events, tickets: tickets, audit: audit, log: log}
}

// ListEvents handles GET /eventos
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	p, err := pagination(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	organizerID, err := queryID(r, "organizadorId")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	artistID, err := queryID(r, "artistaId")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	upcoming := false
	if raw := r.URL.Query().Get("proximos"); raw != "" {
		upcoming, err = strconv.ParseBool(raw)
		if err != nil {
			respondError(w, r, h.log, models.NewValidationError("proximos", "must be true or false"))
			return
		}
	}

	events, err := h.events.ListEvents(r.Context(), repositories.EventFilters{
		OrganizerID:  organizerID,
		ArtistID:     artistID,
		UpcomingOnly: upcoming,
		Limit:        p.limit,
		Offset:       p.offset,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, events)
}

// GetEvent handles GET /eventos/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	event, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, event)
}

// CreateEvent handles POST /eventos
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	event, err := h.events.CreateEvent(r.Context(), currentActor(r), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondCreated(w, "event created", event)
}

// UpdateEvent handles PUT /eventos/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req models.EventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), currentActor(r), id, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondMessage(w, "event updated", event)
}

// DeleteEvent handles DELETE /eventos/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	actor := currentActor(r)
	if err := h.events.DeleteEvent(r.Context(), actor, id); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.audit.LogAction(r.Context(), actor, models.AuditActionEventDelete, models.AuditTargetEvent, id, nil, r)
	respondMessage(w, "event deleted", nil)
}

// ListTickets handles GET /eventos/{id}/boletos
func (h *EventHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	tickets, err := h.tickets.ListByEvent(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, tickets)
}

// ListAvailableTickets handles GET /eventos/{id}/boletos/disponibles
func (h *EventHandler) ListAvailableTickets(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	tickets, err := h.tickets.ListAvailableByEvent(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, tickets)
}

type availabilityResponse struct {
	EventID   int64 `json:"eventoId"`
	Quantity  int   `json:"cantidad"`
	Available bool  `json:"disponible"`
}

// CheckAvailability handles GET /eventos/{id}/disponibilidad?cantidad=N
func (h *EventHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	quantity, err := strconv.Atoi(r.URL.Query().Get("cantidad"))
	if err != nil {
		respondError(w, r, h.log, models.NewValidationError("cantidad", "must be an integer"))
		return
	}

	available, err := h.tickets.CheckAvailability(r.Context(), id, quantity)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, availabilityResponse{EventID: id, Quantity: quantity, Available: available})
}

// TicketStatistics handles GET /eventos/{id}/boletos/estadisticas
func (h *EventHandler) TicketStatistics(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if _, err := h.events.Authorize(r.Context(), currentActor(r), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	stats, err := h.tickets.Statistics(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, stats)
}

// DeleteTickets handles DELETE /eventos/{id}/boletos
func (h *EventHandler) DeleteTickets(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	actor := currentActor(r)
	if _, err := h.events.Authorize(r.Context(), actor, id); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	deleted, err := h.tickets.DeleteAllForEvent(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.audit.LogAction(r.Context(), actor, models.AuditActionTicketsDeleteAll, models.AuditTargetEvent, id,
		map[string]int64{"eliminados": deleted}, r)
	respondMessage(w, "tickets deleted", map[string]int64{"eliminados": deleted})
}
