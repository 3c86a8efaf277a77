package models

import (
	"strings"
	"time"
)

// Event represents an event tickets grant admission to
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"nombre" db:"nombre"`
	Description string    `json:"descripcion" db:"descripcion"`
	Venue       string    `json:"lugar" db:"lugar"`
	Date        time.Time `json:"fecha" db:"fecha"`
	OrganizerID int64     `json:"organizadorId" db:"organizador_id"`
	ArtistID    *int64    `json:"artistaId,omitempty" db:"artista_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// EventRequest carries the editable fields of an event
type EventRequest struct {
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Venue       string    `json:"lugar"`
	Date        time.Time `json:"fecha"`
	ArtistID    *int64    `json:"artistaId"`
}

// Validate validates the event data
func (e *Event) Validate() error {
	if err := validateEventFields(e.Name, e.Description, e.Venue, e.Date, e.ArtistID); err != nil {
		return err
	}

	if e.OrganizerID <= 0 {
		return NewValidationError("organizadorId", "must be a positive integer")
	}

	return nil
}

// Validate validates event create/update data
func (req *EventRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Venue = strings.TrimSpace(req.Venue)
	return validateEventFields(req.Name, req.Description, req.Venue, req.Date, req.ArtistID)
}

func validateEventFields(name, description, venue string, date time.Time, artistID *int64) error {
	if name == "" {
		return NewValidationError("nombre", "is required")
	}

	if len(name) > 200 {
		return NewValidationError("nombre", "must be less than 200 characters")
	}

	if len(description) > 5000 {
		return NewValidationError("descripcion", "must be less than 5000 characters")
	}

	if venue == "" {
		return NewValidationError("lugar", "is required")
	}

	if date.IsZero() {
		return NewValidationError("fecha", "is required")
	}

	if artistID != nil && *artistID <= 0 {
		return NewValidationError("artistaId", "must be a positive integer")
	}

	return nil
}

// IsOwnedBy returns true if the user organizes the event
func (e *Event) IsOwnedBy(userID int64) bool {
	return e.OrganizerID == userID
}

// HasStarted returns true once the event date has passed
func (e *Event) HasStarted() bool {
	return time.Now().After(e.Date)
}
