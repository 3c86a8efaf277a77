package models

import (
	"github.com/shopspring/decimal"
)

// TicketCreateRequest represents a request to create a new ticket
type TicketCreateRequest struct {
	Price     decimal.Decimal `json:"precio"`
	Type      TicketType      `json:"tipo"`
	Available *bool           `json:"disponible"`
	EventID   int64           `json:"eventoId"`
	UserID    *int64          `json:"usuarioId"`
}

// IsAvailable returns the requested availability; omitted means available
func (req TicketCreateRequest) IsAvailable() bool {
	return req.Available == nil || *req.Available
}

// TicketPriceRequest represents a request to change a ticket price
type TicketPriceRequest struct {
	Price decimal.Decimal `json:"precio"`
}

// Validate validates the new price
func (req TicketPriceRequest) Validate() error {
	return ValidateTicketPrice(req.Price)
}

// OrderCreateRequest represents a request to place an order.
// UserID is honoured only when an admin places the order on someone's behalf.
type OrderCreateRequest struct {
	UserID    int64   `json:"usuarioId"`
	TicketIDs []int64 `json:"boletos"`
}

// Validate validates the ticket list
func (req OrderCreateRequest) Validate() error {
	return ValidateTicketIDs(req.TicketIDs)
}

// OrderStateRequest represents a request to move an order to a new state
type OrderStateRequest struct {
	State OrderState `json:"estado"`
}

// Validate validates the requested state
func (req OrderStateRequest) Validate() error {
	return ValidateOrderState(req.State)
}
