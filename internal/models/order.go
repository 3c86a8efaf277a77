package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderState represents the lifecycle state of an order
type OrderState string

const (
	OrderPendiente   OrderState = "PENDIENTE"
	OrderPagado      OrderState = "PAGADO"
	OrderCancelado   OrderState = "CANCELADO"
	OrderReembolsado OrderState = "REEMBOLSADO"
)

// OrderStates lists every state in lifecycle order
var OrderStates = []OrderState{OrderPendiente, OrderPagado, OrderCancelado, OrderReembolsado}

// orderTransitions is the complete state machine. States without an entry are terminal.
var orderTransitions = map[OrderState][]OrderState{
	OrderPendiente: {OrderPagado, OrderCancelado},
	OrderPagado:    {OrderReembolsado},
}

// maxOrderTickets caps how many tickets fit in one order
const maxOrderTickets = 100

// Order groups the tickets bought together by one user.
type Order struct {
	ID          int64           `json:"id" db:"id"`
	UserID      int64           `json:"usuarioId" db:"usuario_id"`
	Total       decimal.Decimal `json:"total" db:"total"`
	PurchasedAt time.Time       `json:"fechaCompra" db:"fecha_compra"`
	State       OrderState      `json:"estado" db:"estado"`
	TicketIDs   []int64         `json:"boletoIds" db:"-"`
	Tickets     []Ticket        `json:"boletos,omitempty" db:"-"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// NewOrder builds a validated PENDIENTE order that has not been persisted yet
func NewOrder(userID int64, ticketIDs []int64, total decimal.Decimal) (Order, error) {
	o := Order{
		UserID:    userID,
		Total:     total,
		State:     OrderPendiente,
		TicketIDs: append([]int64(nil), ticketIDs...),
	}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Validate checks every field invariant of the order
func (o Order) Validate() error {
	if o.UserID <= 0 {
		return NewValidationError("usuarioId", "must be a positive integer")
	}

	if err := ValidateTicketIDs(o.TicketIDs); err != nil {
		return err
	}

	if o.Total.IsNegative() {
		return NewValidationError("total", "cannot be negative")
	}

	return ValidateOrderState(o.State)
}

// ValidateTicketIDs validates the ticket list of an order request
func ValidateTicketIDs(ids []int64) error {
	if len(ids) == 0 {
		return NewValidationError("boletos", "at least one ticket is required")
	}

	if len(ids) > maxOrderTickets {
		return NewValidationError("boletos", fmt.Sprintf("an order cannot hold more than %d tickets", maxOrderTickets))
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return NewValidationError("boletos", "ticket ids must be positive integers")
		}
		if seen[id] {
			return NewValidationError("boletos", fmt.Sprintf("ticket %d is listed more than once", id))
		}
		seen[id] = true
	}

	return nil
}

// ValidateOrderState validates an order state value
func ValidateOrderState(state OrderState) error {
	switch state {
	case OrderPendiente, OrderPagado, OrderCancelado, OrderReembolsado:
		return nil
	default:
		return NewValidationError("estado", fmt.Sprintf("invalid order state %q", state))
	}
}

// ValidateTransition returns an InvalidTransitionError unless from → to is an edge of the state machine
func ValidateTransition(from, to OrderState) error {
	if err := ValidateOrderState(to); err != nil {
		return err
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// ComputeTotal sums ticket prices, rounded to cents
func ComputeTotal(tickets []Ticket) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tickets {
		total = total.Add(t.Price)
	}
	return total.Round(2)
}

// CanTransitionTo returns true if the order may move to state
func (o Order) CanTransitionTo(state OrderState) bool {
	return ValidateTransition(o.State, state) == nil
}

// IsTerminal returns true if no transition leaves the current state
func (o Order) IsTerminal() bool {
	return len(orderTransitions[o.State]) == 0
}

// IsPending returns true if the order awaits payment
func (o Order) IsPending() bool {
	return o.State == OrderPendiente
}

// IsPaid returns true if the order is paid
func (o Order) IsPaid() bool {
	return o.State == OrderPagado
}

// IsDeletable returns true if the order record may be removed
func (o Order) IsDeletable() bool {
	return o.State == OrderPendiente || o.State == OrderCancelado
}

// BelongsTo returns true if the order was placed by the user
func (o Order) BelongsTo(userID int64) bool {
	return o.UserID == userID
}

// TotalLabel returns the total with two decimal places
func (o Order) TotalLabel() string {
	return "$" + o.Total.StringFixed(2)
}

// StateDisplayName returns a human-readable state name
func (o Order) StateDisplayName() string {
	switch o.State {
	case OrderPendiente:
		return "Pendiente de pago"
	case OrderPagado:
		return "Pagado"
	case OrderCancelado:
		return "Cancelado"
	case OrderReembolsado:
		return "Reembolsado"
	default:
		return string(o.State)
	}
}

// OrderStatistics summarizes all orders
type OrderStatistics struct {
	Total   int                `json:"total"`
	ByState map[OrderState]int `json:"porEstado"`
	Revenue decimal.Decimal    `json:"ingresos"`
}

// OrderFilters narrows an order listing
type OrderFilters struct {
	UserID int64
	State  OrderState
	Limit  int
	Offset int
}
