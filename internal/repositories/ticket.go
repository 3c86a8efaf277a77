package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"boletera-api/internal/models"
)

const ticketColumns = `id, precio, tipo, disponible, evento_id, usuario_id, orden_id, created_at, updated_at`

// freeTicket matches tickets that nobody holds
const freeTicket = `disponible = TRUE AND usuario_id IS NULL AND orden_id IS NULL`

// unlistedTicket matches tickets that no order lists, past or present.
// Orders keep their ticket list after cancel or refund.
const unlistedTicket = `NOT EXISTS (SELECT 1 FROM orden_boletos ob WHERE ob.boleto_id = boletos.id)`

// TicketRepository handles ticket data operations.
//
// Every statement that flips availability is a conditional update whose
// WHERE clause restates the precondition, so two concurrent writers can
// never both succeed on the same ticket.
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create inserts a validated ticket
func (r *TicketRepository) Create(ctx context.Context, ticket models.Ticket) (*models.Ticket, error) {
	if err := ticket.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO boletos (precio, tipo, disponible, evento_id, usuario_id, orden_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		ticket.Price,
		ticket.Type,
		ticket.Available,
		ticket.EventID,
		ticket.UserID,
		ticket.OrderID,
		now,
		now,
	).Scan(&ticket.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ticket")
	}

	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	return &ticket, nil
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := r.db.GetContext(ctx, ticket, r.db.Rebind(`SELECT `+ticketColumns+` FROM boletos WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("boleto", id)
		}
		return nil, errors.Wrap(err, "failed to get ticket")
	}
	return ticket, nil
}

// GetByIDs retrieves tickets in the order of ids. Missing ids are reported
// together in a single NotFoundError.
func (r *TicketRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+ticketColumns+` FROM boletos WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build ticket query")
	}

	var found []models.Ticket
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to get tickets")
	}

	byID := make(map[int64]models.Ticket, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	tickets := make([]models.Ticket, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		tickets = append(tickets, t)
	}

	if len(missing) > 0 {
		return nil, &models.NotFoundError{Resource: "boletos", IDs: missing}
	}
	return tickets, nil
}

// ListByEvent returns every ticket of an event
func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	err := r.db.SelectContext(ctx, &tickets,
		r.db.Rebind(`SELECT `+ticketColumns+` FROM boletos WHERE evento_id = ? ORDER BY id`), eventID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tickets")
	}
	return tickets, nil
}

// ListAvailableByEvent returns the tickets of an event nobody holds
func (r *TicketRepository) ListAvailableByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	err := r.db.SelectContext(ctx, &tickets,
		r.db.Rebind(`SELECT `+ticketColumns+` FROM boletos WHERE evento_id = ? AND `+freeTicket+` ORDER BY id`), eventID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list available tickets")
	}
	return tickets, nil
}

// CountAvailableByEvent counts the free tickets of an event
func (r *TicketRepository) CountAvailableByEvent(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		r.db.Rebind(`SELECT COUNT(*) FROM boletos WHERE evento_id = ? AND `+freeTicket), eventID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count available tickets")
	}
	return count, nil
}

// Purchase sells a free ticket to a user
func (r *TicketRepository) Purchase(ctx context.Context, id, userID int64) (*models.Ticket, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE boletos
		SET disponible = FALSE, usuario_id = ?, updated_at = ?
		WHERE id = ? AND `+freeTicket),
		userID, time.Now().UTC(), id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to purchase ticket")
	}

	if err := r.expectOne(ctx, res, id, "ticket is not available"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Release returns a ticket to the pool. Tickets held by an order can only be
// released through the order, so they are rejected here. Releasing a free
// ticket succeeds without changing it.
func (r *TicketRepository) Release(ctx context.Context, id int64) (*models.Ticket, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE boletos
		SET disponible = TRUE, usuario_id = NULL, updated_at = ?
		WHERE id = ? AND orden_id IS NULL`),
		time.Now().UTC(), id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to release ticket")
	}

	if err := r.expectOne(ctx, res, id, "ticket belongs to an order; cancel or refund the order instead"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePrice changes the price of a free ticket
func (r *TicketRepository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*models.Ticket, error) {
	if err := models.ValidateTicketPrice(price); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE boletos
		SET precio = ?, updated_at = ?
		WHERE id = ? AND `+freeTicket),
		price, time.Now().UTC(), id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update ticket price")
	}

	if err := r.expectOne(ctx, res, id, "only available tickets can be repriced"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a free ticket that no order lists
func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM boletos WHERE id = ? AND `+freeTicket+` AND `+unlistedTicket), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.NewConflictError("ticket is listed by an order", id)
		}
		return errors.Wrap(err, "failed to delete ticket")
	}
	return r.expectOne(ctx, res, id, "only available tickets outside any order can be deleted")
}

// DeleteAllForEvent removes the free tickets of an event and returns how many were removed.
// Sold and reserved tickets are kept, and so are tickets an order lists.
func (r *TicketRepository) DeleteAllForEvent(ctx context.Context, eventID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM boletos WHERE evento_id = ? AND `+freeTicket+` AND `+unlistedTicket), eventID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, models.NewConflictError("an order took one of the event tickets")
		}
		return 0, errors.Wrap(err, "failed to delete tickets")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted tickets")
	}
	return n, nil
}

type ticketTypeRow struct {
	Type      models.TicketType `db:"tipo"`
	Total     int               `db:"total"`
	Available int               `db:"disponibles"`
	Reserved  int               `db:"reservados"`
}

// StatisticsByEvent counts the tickets of an event by state and type
func (r *TicketRepository) StatisticsByEvent(ctx context.Context, eventID int64) (*models.TicketStatistics, error) {
	var rows []ticketTypeRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT tipo,
		       COUNT(*) AS total,
		       SUM(CASE WHEN `+freeTicket+` THEN 1 ELSE 0 END) AS disponibles,
		       SUM(CASE WHEN usuario_id IS NULL AND orden_id IS NOT NULL THEN 1 ELSE 0 END) AS reservados
		FROM boletos
		WHERE evento_id = ?
		GROUP BY tipo`), eventID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ticket statistics")
	}

	stats := &models.TicketStatistics{
		EventID: eventID,
		ByType:  make(map[models.TicketType]models.TypeSummary, len(rows)),
	}
	for _, row := range rows {
		sold := row.Total - row.Available
		stats.Total += row.Total
		stats.Available += row.Available
		stats.Sold += sold
		stats.Reserved += row.Reserved
		stats.ByType[row.Type] = models.TypeSummary{
			Total:     row.Total,
			Available: row.Available,
			Sold:      sold,
		}
	}

	return stats, nil
}

// expectOne turns a conditional statement that matched no row into a
// NotFoundError when the ticket is missing, or a ConflictError otherwise.
func (r *TicketRepository) expectOne(ctx context.Context, res sql.Result, id int64, conflict string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return models.NewConflictError(conflict, id)
}
