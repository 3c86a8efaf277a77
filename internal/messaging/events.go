package messaging

import (
	"time"

	"boletera-api/internal/models"
)

// OrderMessage is the payload of every orden.* event
type OrderMessage struct {
	OrderID    int64             `json:"ordenId"`
	UserID     int64             `json:"usuarioId"`
	State      models.OrderState `json:"estado"`
	Total      string            `json:"total"`
	TicketIDs  []int64           `json:"boletos"`
	OccurredAt time.Time         `json:"fecha"`
}

// NewOrderMessage snapshots an order for publishing
func NewOrderMessage(order models.Order) OrderMessage {
	return OrderMessage{
		OrderID:    order.ID,
		UserID:     order.UserID,
		State:      order.State,
		Total:      order.Total.StringFixed(2),
		TicketIDs:  order.TicketIDs,
		OccurredAt: time.Now().UTC(),
	}
}

// TicketMessage is the payload of every boleto.* event
type TicketMessage struct {
	TicketID   int64     `json:"boletoId"`
	EventID    int64     `json:"eventoId"`
	UserID     *int64    `json:"usuarioId,omitempty"`
	Price      string    `json:"precio"`
	OccurredAt time.Time `json:"fecha"`
}

// NewTicketMessage snapshots a ticket for publishing
func NewTicketMessage(ticket models.Ticket) TicketMessage {
	return TicketMessage{
		TicketID:   ticket.ID,
		EventID:    ticket.EventID,
		UserID:     ticket.UserID,
		Price:      ticket.Price.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}
}
