package services

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"boletera-api/internal/messaging"
	"boletera-api/internal/metrics"
	"boletera-api/internal/models"
	"boletera-api/internal/repositories"
)

// OrderRepository interface for order data operations
type OrderRepository interface {
	CreateWithReservation(ctx context.Context, userID int64, ticketIDs []int64) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, filters models.OrderFilters) ([]models.Order, error)
	Transition(ctx context.Context, id int64, from, to models.OrderState, effect repositories.TicketEffect) (*models.Order, error)
	Delete(ctx context.Context, id int64) (*models.Order, error)
	Statistics(ctx context.Context) (*models.OrderStatistics, error)
}

// TicketLookup loads tickets by id, reporting missing ids together
type TicketLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Ticket, error)
}

// OrderService drives the order lifecycle. Every state change and its effect
// on the order's tickets is applied by the repository in one transaction.
type OrderService struct {
	orders    OrderRepository
	tickets   TicketLookup
	users     UserChecker
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders OrderRepository,
	tickets TicketLookup,
	users UserChecker,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		tickets:   tickets,
		users:     users,
		publisher: publisher,
		metrics:   m,
		log:       log.WithField("service", "orders"),
	}
}

// CreateOrder reserves the tickets for the user and creates a PENDIENTE order
// whose total is the sum of their prices.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, ticketIDs []int64) (*models.Order, error) {
	if _, err := models.NewOrder(userID, ticketIDs, decimal.Zero); err != nil {
		return nil, err
	}

	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("usuario", userID)
	}

	tickets, err := s.tickets.GetByIDs(ctx, ticketIDs)
	if err != nil {
		return nil, err
	}

	var unavailable []int64
	for _, t := range tickets {
		if !t.IsAvailable() {
			unavailable = append(unavailable, t.ID)
		}
	}
	if len(unavailable) > 0 {
		s.metrics.ReservationConflict()
		return nil, models.NewConflictError("tickets are not available", unavailable...)
	}

	// The tickets were free a moment ago; the reservation re-checks under
	// the conditional update and fails as a whole if any was taken since.
	order, err := s.orders.CreateWithReservation(ctx, userID, ticketIDs)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.metrics.ReservationConflict()
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"user_id":    userID,
		"ticket_ids": order.TicketIDs,
		"total":      order.TotalLabel(),
	}).Info("order created")
	publish(ctx, s.publisher, s.log, messaging.KeyOrderCreated, messaging.NewOrderMessage(*order))

	return order, nil
}

// GetOrder returns an order to its owner or an administrator
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id int64) (*models.Order, error) {
	if id <= 0 {
		return nil, models.NewValidationError("id", "must be a positive integer")
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(order.UserID) {
		return nil, &models.ForbiddenError{Message: "order belongs to another user"}
	}
	return order, nil
}

// ListOrders lists the actor's own orders. Administrators may list anyone's.
func (s *OrderService) ListOrders(ctx context.Context, actor Actor, filters models.OrderFilters) ([]models.Order, error) {
	if filters.State != "" {
		if err := models.ValidateOrderState(filters.State); err != nil {
			return nil, err
		}
	}
	if !actor.IsAdmin() {
		filters.UserID = actor.UserID
	}
	return s.orders.List(ctx, filters)
}

// UpdateState moves an order to a new state through the same path as the
// dedicated operation for that state, so ticket effects always apply.
func (s *OrderService) UpdateState(ctx context.Context, id int64, state models.OrderState) (*models.Order, error) {
	if err := models.ValidateOrderState(state); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTransition(order.State, state); err != nil {
		return nil, err
	}

	switch state {
	case models.OrderPagado:
		return s.transition(ctx, order, state, repositories.EffectAssign, messaging.KeyOrderPaid)
	case models.OrderCancelado:
		return s.transition(ctx, order, state, repositories.EffectRelease, messaging.KeyOrderCancelled)
	case models.OrderReembolsado:
		return s.transition(ctx, order, state, repositories.EffectRelease, messaging.KeyOrderRefunded)
	}
	return nil, &models.InvalidTransitionError{From: order.State, To: state}
}

// MarkPaid moves a PENDIENTE order to PAGADO and hands its tickets to the buyer
func (s *OrderService) MarkPaid(ctx context.Context, id int64) (*models.Order, error) {
	return s.UpdateState(ctx, id, models.OrderPagado)
}

// Cancel moves a PENDIENTE order to CANCELADO and frees its tickets.
// Paid orders have to be refunded instead.
func (s *OrderService) Cancel(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		return nil, models.NewConflictError(fmt.Sprintf("order %d is already paid; refund it instead", id))
	}
	if err := models.ValidateTransition(order.State, models.OrderCancelado); err != nil {
		return nil, err
	}

	return s.transition(ctx, order, models.OrderCancelado, repositories.EffectRelease, messaging.KeyOrderCancelled)
}

// Refund moves a PAGADO order to REEMBOLSADO and frees its tickets
func (s *OrderService) Refund(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsPaid() {
		return nil, models.NewConflictError(fmt.Sprintf("order %d is %s; only paid orders can be refunded", id, order.State))
	}

	return s.transition(ctx, order, models.OrderReembolsado, repositories.EffectRelease, messaging.KeyOrderRefunded)
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.OrderState, effect repositories.TicketEffect, key string) (*models.Order, error) {
	updated, err := s.orders.Transition(ctx, order.ID, order.State, to, effect)
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransition(string(order.State), string(to))
	s.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"from":       order.State,
		"to":         to,
		"ticket_ids": order.TicketIDs,
	}).Info("order state changed")
	publish(ctx, s.publisher, s.log, key, messaging.NewOrderMessage(*updated))

	return updated, nil
}

// Delete removes a PENDIENTE or CANCELADO order and frees any ticket still
// attached to it. Paid and refunded orders are kept for the record.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return models.NewValidationError("id", "must be a positive integer")
	}

	order, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   id,
		"state":      order.State,
		"ticket_ids": order.TicketIDs,
	}).Info("order deleted")
	publish(ctx, s.publisher, s.log, messaging.KeyOrderDeleted, messaging.NewOrderMessage(*order))

	return nil
}

// Statistics counts orders per state and sums the revenue of paid orders
func (s *OrderService) Statistics(ctx context.Context) (*models.OrderStatistics, error) {
	return s.orders.Statistics(ctx)
}
