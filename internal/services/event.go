package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
	"boletera-api/internal/repositories"
)

// EventRepository interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, filters repositories.EventFilters) ([]models.Event, error)
	Update(ctx context.Context, event models.Event) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// UserGetter loads a user by id
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// EventService handles event business logic
type EventService struct {
	events EventRepository
	users  UserGetter
	log    logrus.FieldLogger
}

// NewEventService creates a new event service
func NewEventService(events EventRepository, users UserGetter, log logrus.FieldLogger) *EventService {
	return &EventService{
		events: events,
		users:  users,
		log:    log.WithField("service", "events"),
	}
}

// CreateEvent creates an event organized by the actor
func (s *EventService) CreateEvent(ctx context.Context, actor Actor, req models.EventRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The role in the token may be stale; the stored one decides
	organizer, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !organizer.CanCreateEvents() {
		return nil, &models.ForbiddenError{Message: "only organizers can create events"}
	}

	event, err := s.events.Create(ctx, models.Event{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		Date:        req.Date,
		OrganizerID: organizer.ID,
		ArtistID:    req.ArtistID,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"event_id": event.ID, "organizer_id": organizer.ID}).Info("event created")
	return event, nil
}

// GetEvent returns an event by id
func (s *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	if id <= 0 {
		return nil, models.NewValidationError("id", "must be a positive integer")
	}
	return s.events.GetByID(ctx, id)
}

// ListEvents lists events ordered by date
func (s *EventService) ListEvents(ctx context.Context, filters repositories.EventFilters) ([]models.Event, error) {
	return s.events.List(ctx, filters)
}

// Authorize loads an event the actor may manage: its organizer or an administrator
func (s *EventService) Authorize(ctx context.Context, actor Actor, eventID int64) (*models.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !event.IsOwnedBy(actor.UserID) {
		return nil, &models.ForbiddenError{Message: "event is managed by another organizer"}
	}
	return event, nil
}

// UpdateEvent replaces the editable fields of an event
func (s *EventService) UpdateEvent(ctx context.Context, actor Actor, id int64, req models.EventRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.Authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	event.Name = req.Name
	event.Description = req.Description
	event.Venue = req.Venue
	event.Date = req.Date
	event.ArtistID = req.ArtistID

	updated, err := s.events.Update(ctx, *event)
	if err != nil {
		return nil, err
	}

	s.log.WithField("event_id", id).Info("event updated")
	return updated, nil
}

// DeleteEvent deletes an event and its free tickets. It fails with a conflict
// while any of its tickets is sold or reserved.
func (s *EventService) DeleteEvent(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.Authorize(ctx, actor, id); err != nil {
		return err
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithField("event_id", id).Info("event deleted")
	return nil
}
