package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"boletera-api/internal/database"
	"boletera-api/internal/models"
)

const eventColumns = `id, nombre, descripcion, lugar, fecha, organizador_id, artista_id, created_at, updated_at`

// EventRepository handles event data operations
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventFilters narrows an event listing
type EventFilters struct {
	OrganizerID  int64
	ArtistID     int64
	UpcomingOnly bool
	Limit        int
	Offset       int
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO eventos (nombre, descripcion, lugar, fecha, organizador_id, artista_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		event.Name,
		event.Description,
		event.Venue,
		event.Date.UTC(),
		event.OrganizerID,
		event.ArtistID,
		now,
		now,
	).Scan(&event.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, models.NewValidationError("artistaId", "artist does not exist")
		}
		return nil, errors.Wrap(err, "failed to create event")
	}

	event.CreatedAt = now
	event.UpdatedAt = now
	return &event, nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.GetContext(ctx, event, r.db.Rebind(`SELECT `+eventColumns+` FROM eventos WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("evento", id)
		}
		return nil, errors.Wrap(err, "failed to get event")
	}
	return event, nil
}

// List returns events ordered by date
func (r *EventRepository) List(ctx context.Context, filters EventFilters) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM eventos WHERE 1 = 1`
	var args []interface{}

	if filters.OrganizerID > 0 {
		query += " AND organizador_id = ?"
		args = append(args, filters.OrganizerID)
	}
	if filters.ArtistID > 0 {
		query += " AND artista_id = ?"
		args = append(args, filters.ArtistID)
	}
	if filters.UpcomingOnly {
		query += " AND fecha >= ?"
		args = append(args, time.Now().UTC())
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += " ORDER BY fecha, id LIMIT ? OFFSET ?"
	args = append(args, limit, max(filters.Offset, 0))

	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	return events, nil
}

// Update replaces the editable fields of an event
func (r *EventRepository) Update(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE eventos
		SET nombre = ?, descripcion = ?, lugar = ?, fecha = ?, artista_id = ?, updated_at = ?
		WHERE id = ?`),
		event.Name, event.Description, event.Venue, event.Date.UTC(), event.ArtistID, time.Now().UTC(), event.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, models.NewValidationError("artistaId", "artist does not exist")
		}
		return nil, errors.Wrap(err, "failed to update event")
	}
	if err := expectRow(res, models.NewNotFoundError("evento", event.ID)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, event.ID)
}

// Delete removes an event together with its free tickets. Events with sold,
// reserved or order-listed tickets cannot be deleted.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var held int
		err := tx.GetContext(ctx, &held, tx.Rebind(`
			SELECT COUNT(*) FROM boletos
			WHERE evento_id = ? AND (NOT (`+freeTicket+`) OR NOT `+unlistedTicket+`)`), id)
		if err != nil {
			return errors.Wrap(err, "failed to check event tickets")
		}
		if held > 0 {
			return models.NewConflictError("event has sold, reserved or ordered tickets")
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM boletos WHERE evento_id = ? AND `+freeTicket), id); err != nil {
			if isForeignKeyViolation(err) {
				return models.NewConflictError("event has sold, reserved or ordered tickets")
			}
			return errors.Wrap(err, "failed to delete event tickets")
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM eventos WHERE id = ?`), id)
		if err != nil {
			// A ticket was taken after the check above
			if isForeignKeyViolation(err) {
				return models.NewConflictError("event has sold, reserved or ordered tickets")
			}
			return errors.Wrap(err, "failed to delete event")
		}
		return expectRow(res, models.NewNotFoundError("evento", id))
	})
}

// Exists reports whether an event with the given id exists
func (r *EventRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM eventos WHERE id = ?)`), id)
	if err != nil {
		return false, errors.Wrap(err, "failed to check event")
	}
	return exists, nil
}
