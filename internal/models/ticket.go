package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TicketType represents the seating category of a ticket
type TicketType string

const (
	TicketVIP     TicketType = "VIP"
	TicketGeneral TicketType = "GENERAL"
	TicketPlatino TicketType = "PLATINO"
	TicketOro     TicketType = "ORO"
)

// TicketTypes lists every ticket type in display order
var TicketTypes = []TicketType{TicketGeneral, TicketOro, TicketPlatino, TicketVIP}

// maxTicketPrice caps a single ticket price. Prices and totals are stored as
// NUMERIC(12, 2), so prices also carry at most two decimal places.
var maxTicketPrice = decimal.NewFromInt(10000000)

// Ticket represents a single sellable admission to an event.
//
// A Ticket is a value: state changes go through Purchase, Reserve, AssignTo
// and Release, which return a new Ticket and never touch the receiver.
type Ticket struct {
	ID        int64           `json:"id" db:"id"`
	Price     decimal.Decimal `json:"precio" db:"precio"`
	Type      TicketType      `json:"tipo" db:"tipo"`
	Available bool            `json:"disponible" db:"disponible"`
	EventID   int64           `json:"eventoId" db:"evento_id"`
	UserID    *int64          `json:"usuarioId,omitempty" db:"usuario_id"`
	OrderID   *int64          `json:"ordenId,omitempty" db:"orden_id"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// NewTicket builds a validated ticket that has not been persisted yet
func NewTicket(price decimal.Decimal, ticketType TicketType, available bool, eventID int64, userID *int64) (Ticket, error) {
	t := Ticket{
		Price:     price,
		Type:      ticketType,
		Available: available,
		EventID:   eventID,
		UserID:    userID,
	}
	if err := t.Validate(); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// Validate checks every field invariant of the ticket
func (t Ticket) Validate() error {
	if err := ValidateTicketPrice(t.Price); err != nil {
		return err
	}

	if err := ValidateTicketType(t.Type); err != nil {
		return err
	}

	if t.EventID <= 0 {
		return NewValidationError("eventoId", "must be a positive integer")
	}

	return validateAssignment(t.Available, t.UserID, t.OrderID)
}

// validateAssignment is the single home of the availability rule: a ticket
// held by a user or an order is never available.
func validateAssignment(available bool, userID, orderID *int64) error {
	if userID != nil && *userID <= 0 {
		return NewValidationError("usuarioId", "must be a positive integer")
	}

	if orderID != nil && *orderID <= 0 {
		return NewValidationError("ordenId", "must be a positive integer")
	}

	if available && (userID != nil || orderID != nil) {
		return NewValidationError("disponible", "an assigned ticket cannot be available")
	}

	return nil
}

// ValidateTicketPrice validates a ticket price
func ValidateTicketPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return NewValidationError("precio", "must be greater than 0")
	}

	if price.GreaterThan(maxTicketPrice) {
		return NewValidationError("precio", "exceeds the maximum allowed price")
	}

	if !price.Equal(price.Round(2)) {
		return NewValidationError("precio", "must have at most two decimal places")
	}

	return nil
}

// ValidateTicketType validates a ticket type
func ValidateTicketType(ticketType TicketType) error {
	switch ticketType {
	case TicketVIP, TicketGeneral, TicketPlatino, TicketOro:
		return nil
	default:
		return NewValidationError("tipo", fmt.Sprintf("invalid ticket type %q", ticketType))
	}
}

// Purchase sells the ticket directly to a user
func (t Ticket) Purchase(userID int64) (Ticket, error) {
	if !t.IsAvailable() {
		return Ticket{}, NewConflictError("ticket is not available", t.ID)
	}
	next := t
	next.Available = false
	next.UserID = &userID
	return next, validateAssignment(next.Available, next.UserID, next.OrderID)
}

// Reserve tags the ticket with a pending order
func (t Ticket) Reserve(orderID int64) (Ticket, error) {
	if !t.IsAvailable() {
		return Ticket{}, NewConflictError("ticket is not available", t.ID)
	}
	next := t
	next.Available = false
	next.OrderID = &orderID
	return next, validateAssignment(next.Available, next.UserID, next.OrderID)
}

// AssignTo hands a reserved ticket over to the buyer once its order is paid
func (t Ticket) AssignTo(userID int64) (Ticket, error) {
	if t.OrderID == nil {
		return Ticket{}, NewConflictError("ticket is not reserved by an order", t.ID)
	}
	next := t
	next.UserID = &userID
	return next, validateAssignment(next.Available, next.UserID, next.OrderID)
}

// Release returns the ticket to the available pool. Releasing a free ticket is a no-op.
func (t Ticket) Release() Ticket {
	next := t
	next.Available = true
	next.UserID = nil
	next.OrderID = nil
	return next
}

// IsAvailable returns true if the ticket can be purchased or reserved
func (t Ticket) IsAvailable() bool {
	return t.Available && t.UserID == nil && t.OrderID == nil
}

// IsSold returns true if the ticket belongs to a user
func (t Ticket) IsSold() bool {
	return t.UserID != nil
}

// IsReserved returns true if the ticket is held by an order but not yet handed over
func (t Ticket) IsReserved() bool {
	return t.OrderID != nil && t.UserID == nil
}

// BelongsToEvent returns true if the ticket grants admission to the event
func (t Ticket) BelongsToEvent(eventID int64) bool {
	return t.EventID == eventID
}

// PriceLabel returns the price with two decimal places
func (t Ticket) PriceLabel() string {
	return "$" + t.Price.StringFixed(2)
}

// TypeDisplayName returns a human-readable ticket type
func (t Ticket) TypeDisplayName() string {
	switch t.Type {
	case TicketVIP:
		return "VIP"
	case TicketGeneral:
		return "General"
	case TicketPlatino:
		return "Platino"
	case TicketOro:
		return "Oro"
	default:
		return string(t.Type)
	}
}

// TicketStatistics summarizes the tickets of one event
type TicketStatistics struct {
	EventID   int64                      `json:"eventoId"`
	Total     int                        `json:"total"`
	Available int                        `json:"disponibles"`
	Sold      int                        `json:"vendidos"`
	Reserved  int                        `json:"reservados"`
	ByType    map[TicketType]TypeSummary `json:"porTipo"`
}

// TypeSummary is the per-type breakdown of TicketStatistics
type TypeSummary struct {
	Total     int `json:"total"`
	Available int `json:"disponibles"`
	Sold      int `json:"vendidos"`
}
