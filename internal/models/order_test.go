package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewOrder(t *testing.T) {
	tooMany := make([]int64, maxOrderTickets+1)
	for i := range tooMany {
		tooMany[i] = int64(i + 1)
	}

	tests := []struct {
		name      string
		userID    int64
		ticketIDs []int64
		total     decimal.Decimal
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid order",
			userID:    7,
			ticketIDs: []int64{1, 2},
			total:     decimal.NewFromInt(800),
		},
		{
			name:      "invalid user",
			userID:    0,
			ticketIDs: []int64{1},
			total:     decimal.Zero,
			wantErr:   true,
			errMsg:    "usuarioId: must be a positive integer",
		},
		{
			name:      "empty ticket list",
			userID:    7,
			ticketIDs: nil,
			total:     decimal.Zero,
			wantErr:   true,
			errMsg:    "boletos: at least one ticket is required",
		},
		{
			name:      "non-positive ticket id",
			userID:    7,
			ticketIDs: []int64{1, -2},
			total:     decimal.Zero,
			wantErr:   true,
			errMsg:    "boletos: ticket ids must be positive integers",
		},
		{
			name:      "duplicate ticket id",
			userID:    7,
			ticketIDs: []int64{1, 1},
			total:     decimal.Zero,
			wantErr:   true,
			errMsg:    "boletos: ticket 1 is listed more than once",
		},
		{
			name:      "too many tickets",
			userID:    7,
			ticketIDs: tooMany,
			total:     decimal.Zero,
			wantErr:   true,
			errMsg:    "boletos: an order cannot hold more than 100 tickets",
		},
		{
			name:      "negative total",
			userID:    7,
			ticketIDs: []int64{1},
			total:     decimal.NewFromInt(-1),
			wantErr:   true,
			errMsg:    "total: cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder(tt.userID, tt.ticketIDs, tt.total)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewOrder() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if err.Error() != tt.errMsg {
					t.Errorf("NewOrder() error = %v, want %v", err.Error(), tt.errMsg)
				}
				return
			}
			if order.State != OrderPendiente {
				t.Errorf("NewOrder() state = %v, want PENDIENTE", order.State)
			}
		})
	}
}

func TestValidateTransition(t *testing.T) {
	allowed := map[[2]OrderState]bool{
		{OrderPendiente, OrderPagado}:    true,
		{OrderPendiente, OrderCancelado}: true,
		{OrderPagado, OrderReembolsado}:  true,
	}

	for _, from := range OrderStates {
		for _, to := range OrderStates {
			err := ValidateTransition(from, to)
			if allowed[[2]OrderState{from, to}] {
				if err != nil {
					t.Errorf("ValidateTransition(%s, %s) error = %v, want nil", from, to, err)
				}
				continue
			}

			var transitionErr *InvalidTransitionError
			if !errors.As(err, &transitionErr) {
				t.Errorf("ValidateTransition(%s, %s) error = %v, want InvalidTransitionError", from, to, err)
				continue
			}
			if transitionErr.From != from || transitionErr.To != to {
				t.Errorf("InvalidTransitionError = %+v, want %s -> %s", transitionErr, from, to)
			}
			if !errors.Is(err, ErrConflict) {
				t.Errorf("ValidateTransition(%s, %s) is not a conflict", from, to)
			}
		}
	}
}

func TestValidateTransition_UnknownState(t *testing.T) {
	err := ValidateTransition(OrderPendiente, OrderState("ENVIADO"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("ValidateTransition() error = %v, want validation", err)
	}
}

func TestOrder_StateQueries(t *testing.T) {
	tests := []struct {
		state     OrderState
		terminal  bool
		deletable bool
	}{
		{OrderPendiente, false, true},
		{OrderPagado, false, false},
		{OrderCancelado, true, true},
		{OrderReembolsado, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			o := Order{State: tt.state}
			if got := o.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
			if got := o.IsDeletable(); got != tt.deletable {
				t.Errorf("IsDeletable() = %v, want %v", got, tt.deletable)
			}
		})
	}
}

func TestComputeTotal(t *testing.T) {
	tickets := []Ticket{
		{Price: decimal.RequireFromString("0.10")},
		{Price: decimal.RequireFromString("0.20")},
		{Price: decimal.RequireFromString("499.70")},
	}

	got := ComputeTotal(tickets)
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("ComputeTotal() = %v, want 500", got)
	}
	if got := (Order{Total: got}).TotalLabel(); got != "$500.00" {
		t.Errorf("TotalLabel() = %v, want $500.00", got)
	}
}
