package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"boletera-api/internal/messaging"
	"boletera-api/internal/metrics"
	"boletera-api/internal/models"
)

// TicketRepository interface for ticket data operations
type TicketRepository interface {
	Create(ctx context.Context, ticket models.Ticket) (*models.Ticket, error)
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
	ListAvailableByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
	CountAvailableByEvent(ctx context.Context, eventID int64) (int, error)
	Purchase(ctx context.Context, id, userID int64) (*models.Ticket, error)
	Release(ctx context.Context, id int64) (*models.Ticket, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*models.Ticket, error)
	Delete(ctx context.Context, id int64) error
	DeleteAllForEvent(ctx context.Context, eventID int64) (int64, error)
	StatisticsByEvent(ctx context.Context, eventID int64) (*models.TicketStatistics, error)
}

// EventChecker reports whether an event exists
type EventChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// UserChecker reports whether a user exists
type UserChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// TicketService handles ticket business logic outside of orders
type TicketService struct {
	tickets   TicketRepository
	events    EventChecker
	users     UserChecker
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
}

// NewTicketService creates a new ticket service
func NewTicketService(
	tickets TicketRepository,
	events EventChecker,
	users UserChecker,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *TicketService {
	return &TicketService{
		tickets:   tickets,
		events:    events,
		users:     users,
		publisher: publisher,
		metrics:   m,
		log:       log.WithField("service", "tickets"),
	}
}

// Create validates and stores a new ticket for an existing event
func (s *TicketService) Create(ctx context.Context, req models.TicketCreateRequest) (*models.Ticket, error) {
	ticket, err := models.NewTicket(req.Price, req.Type, req.IsAvailable(), req.EventID, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.requireEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	if req.UserID != nil {
		if err := s.requireUser(ctx, *req.UserID); err != nil {
			return nil, err
		}
	}

	created, err := s.tickets.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"ticket_id": created.ID,
		"event_id":  created.EventID,
		"tipo":      created.Type,
		"precio":    created.PriceLabel(),
	}).Info("ticket created")
	return created, nil
}

// GetTicket returns a ticket by id
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	if id <= 0 {
		return nil, models.NewValidationError("id", "must be a positive integer")
	}
	return s.tickets.GetByID(ctx, id)
}

// Purchase sells a ticket to a user. The repository update is conditional on
// the ticket still being free, so of two concurrent buyers exactly one wins.
func (s *TicketService) Purchase(ctx context.Context, ticketID, userID int64) (*models.Ticket, error) {
	if ticketID <= 0 {
		return nil, models.NewValidationError("boletoId", "must be a positive integer")
	}
	if userID <= 0 {
		return nil, models.NewValidationError("usuarioId", "must be a positive integer")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.Purchase(ctx, ticketID, userID)
	if err != nil {
		s.metrics.TicketPurchase(purchaseResult(err))
		return nil, err
	}
	s.metrics.TicketPurchase("ok")

	s.log.WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"user_id":   userID,
	}).Info("ticket purchased")
	publish(ctx, s.publisher, s.log, messaging.KeyTicketBought, messaging.NewTicketMessage(*ticket))

	return ticket, nil
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// Release returns a directly purchased ticket to the pool. Releasing a ticket
// that is already free changes nothing.
func (s *TicketService) Release(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	if ticketID <= 0 {
		return nil, models.NewValidationError("boletoId", "must be a positive integer")
	}

	ticket, err := s.tickets.Release(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	s.log.WithField("ticket_id", ticket.ID).Info("ticket released")
	publish(ctx, s.publisher, s.log, messaging.KeyTicketReleased, messaging.NewTicketMessage(*ticket))

	return ticket, nil
}

// ListByEvent returns every ticket of an event
func (s *TicketService) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.tickets.ListByEvent(ctx, eventID)
}

// ListAvailableByEvent returns the tickets of an event that can still be bought
func (s *TicketService) ListAvailableByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.tickets.ListAvailableByEvent(ctx, eventID)
}

// CheckAvailability reports whether at least quantity tickets of the event are free
func (s *TicketService) CheckAvailability(ctx context.Context, eventID int64, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, models.NewValidationError("cantidad", "must be a positive integer")
	}
	if err := s.requireEvent(ctx, eventID); err != nil {
		return false, err
	}

	available, err := s.tickets.CountAvailableByEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}

// DeleteAllForEvent removes the free tickets of an event and returns how many were removed
func (s *TicketService) DeleteAllForEvent(ctx context.Context, eventID int64) (int64, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return 0, err
	}

	n, err := s.tickets.DeleteAllForEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"event_id": eventID, "deleted": n}).Info("event tickets deleted")
	return n, nil
}

// Statistics summarizes the tickets of an event
func (s *TicketService) Statistics(ctx context.Context, eventID int64) (*models.TicketStatistics, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.tickets.StatisticsByEvent(ctx, eventID)
}

// UpdatePrice reprices a ticket that has not been sold or reserved
func (s *TicketService) UpdatePrice(ctx context.Context, ticketID int64, req models.TicketPriceRequest) (*models.Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.UpdatePrice(ctx, ticketID, req.Price)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"ticket_id": ticketID, "precio": ticket.PriceLabel()}).Info("ticket repriced")
	return ticket, nil
}

// DeleteTicket removes a ticket that has not been sold or reserved
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID int64) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return err
	}

	s.log.WithField("ticket_id", ticketID).Info("ticket deleted")
	return nil
}

func (s *TicketService) requireEvent(ctx context.Context, eventID int64) error {
	if eventID <= 0 {
		return models.NewValidationError("eventoId", "must be a positive integer")
	}
	ok, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("evento", eventID)
	}
	return nil
}

func (s *TicketService) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("usuario", userID)
	}
	return nil
}
