package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders OrderServiceInterface
	audit  Auditor
	log    logrus.FieldLogger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderServiceInterface, audit Auditor, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{orders: orders, audit: audit, log: log}
}

// CreateOrder handles POST /ordenes. Orders are placed for the
// authenticated user unless an admin names another one.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	actor := currentActor(r)
	userID := actor.UserID
	if req.UserID != 0 && req.UserID != actor.UserID {
		if !actor.IsAdmin() {
			respondError(w, r, h.log, &models.ForbiddenError{Message: "only admins can place orders for other users"})
			return
		}
		userID = req.UserID
	}

	order, err := h.orders.CreateOrder(r.Context(), userID, req.TicketIDs)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondCreated(w, "order created", order)
}

// ListOrders handles GET /ordenes
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p, err := pagination(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	userID, err := queryID(r, "usuarioId")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), currentActor(r), models.OrderFilters{
		UserID: userID,
		State:  models.OrderState(r.URL.Query().Get("estado")),
		Limit:  p.limit,
		Offset: p.offset,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, orders)
}

// GetOrder handles GET /ordenes/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}
	respondOK(w, order)
}

// Statistics handles GET /ordenes/estadisticas
func (h *OrderHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Statistics(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, stats)
}

// UpdateState handles PUT /ordenes/{id}/estado
func (h *OrderHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var req models.OrderStateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	order, err := h.orders.UpdateState(r.Context(), id, req.State)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.audit.LogAction(r.Context(), currentActor(r), models.AuditActionOrderState, models.AuditTargetOrder, id,
		map[string]models.OrderState{"estado": req.State}, r)
	respondMessage(w, "order state updated", order)
}

// PayOrder handles POST /ordenes/{id}/pagar
func (h *OrderHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}

	paid, err := h.orders.MarkPaid(r.Context(), order.ID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondMessage(w, "order paid", paid)
}

// CancelOrder handles POST /ordenes/{id}/cancelar
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}

	cancelled, err := h.orders.Cancel(r.Context(), order.ID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondMessage(w, "order cancelled", cancelled)
}

// RefundOrder handles POST /ordenes/{id}/reembolsar
func (h *OrderHandler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	order, err := h.orders.Refund(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.audit.LogAction(r.Context(), currentActor(r), models.AuditActionOrderRefund, models.AuditTargetOrder, id,
		map[string]string{"total": order.TotalLabel()}, r)
	respondMessage(w, "order refunded", order)
}

// DeleteOrder handles DELETE /ordenes/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.audit.LogAction(r.Context(), currentActor(r), models.AuditActionOrderDelete, models.AuditTargetOrder, id, nil, r)
	respondMessage(w, "order deleted", nil)
}

// ownedOrder loads the order in the URL on behalf of its owner or an admin
func (h *OrderHandler) ownedOrder(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return nil, false
	}

	order, err := h.orders.GetOrder(r.Context(), currentActor(r), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return nil, false
	}
	return order, true
}
