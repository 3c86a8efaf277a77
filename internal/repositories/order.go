package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"boletera-api/internal/database"
	"boletera-api/internal/models"
)

const orderColumns = `id, usuario_id, total, fecha_compra, estado, created_at, updated_at`

const orderTicketColumns = `b.id, b.precio, b.tipo, b.disponible, b.evento_id, b.usuario_id, b.orden_id, b.created_at, b.updated_at`

// TicketEffect is what a state transition does to the tickets of the order
type TicketEffect int

const (
	// EffectNone leaves the tickets untouched
	EffectNone TicketEffect = iota
	// EffectAssign hands reserved tickets over to the buyer
	EffectAssign
	// EffectRelease returns the tickets to the pool
	EffectRelease
)

// OrderRepository handles order data operations
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithReservation creates a PENDIENTE order and reserves every ticket
// for it in one transaction. If any ticket cannot be reserved nothing is
// written: the error is a NotFoundError listing missing tickets or a
// ConflictError listing unavailable ones.
func (r *OrderRepository) CreateWithReservation(ctx context.Context, userID int64, ticketIDs []int64) (*models.Order, error) {
	if _, err := models.NewOrder(userID, ticketIDs, decimal.Zero); err != nil {
		return nil, err
	}

	var orderID int64
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		err := tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO ordenes (usuario_id, total, fecha_compra, estado, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id`),
			userID, decimal.Zero, now, models.OrderPendiente, now, now,
		).Scan(&orderID)
		if err != nil {
			return errors.Wrap(err, "failed to create order")
		}

		reserve := tx.Rebind(`
			UPDATE boletos
			SET disponible = FALSE, orden_id = ?, updated_at = ?
			WHERE id = ? AND ` + freeTicket + `
			RETURNING precio`)
		link := tx.Rebind(`INSERT INTO orden_boletos (orden_id, boleto_id, posicion) VALUES (?, ?, ?)`)

		total := decimal.Zero
		var unavailable []int64
		for i, id := range ticketIDs {
			var price decimal.Decimal
			err := tx.QueryRowxContext(ctx, reserve, orderID, now, id).Scan(&price)
			if errors.Is(err, sql.ErrNoRows) {
				unavailable = append(unavailable, id)
				continue
			}
			if err != nil {
				return errors.Wrapf(err, "failed to reserve ticket %d", id)
			}
			total = total.Add(price)

			if _, err := tx.ExecContext(ctx, link, orderID, id, i); err != nil {
				return errors.Wrapf(err, "failed to link ticket %d", id)
			}
		}

		if len(unavailable) > 0 {
			return unreservable(ctx, tx, unavailable)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE ordenes SET total = ? WHERE id = ?`), total.Round(2), orderID)
		if err != nil {
			return errors.Wrap(err, "failed to set order total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, orderID)
}

// unreservable classifies tickets whose reservation matched no row
func unreservable(ctx context.Context, tx *sqlx.Tx, ids []int64) error {
	query, args, err := sqlx.In(`SELECT id FROM boletos WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "failed to build ticket query")
	}

	var existing []int64
	if err := tx.SelectContext(ctx, &existing, tx.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "failed to check tickets")
	}

	found := make(map[int64]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		return &models.NotFoundError{Resource: "boletos", IDs: missing}
	}
	return models.NewConflictError("tickets are not available", ids...)
}

// GetByID retrieves an order with its ticket list and tickets
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	err := r.db.GetContext(ctx, order, r.db.Rebind(`SELECT `+orderColumns+` FROM ordenes WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("orden", id)
		}
		return nil, errors.Wrap(err, "failed to get order")
	}

	tickets := []models.Ticket{}
	err = r.db.SelectContext(ctx, &tickets, r.db.Rebind(`
		SELECT `+orderTicketColumns+`
		FROM orden_boletos ob
		JOIN boletos b ON b.id = ob.boleto_id
		WHERE ob.orden_id = ?
		ORDER BY ob.posicion`), id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order tickets")
	}

	order.Tickets = tickets
	order.TicketIDs = make([]int64, len(tickets))
	for i, t := range tickets {
		order.TicketIDs[i] = t.ID
	}

	return order, nil
}

// List returns orders matching the filters, newest first, with their ticket ids
func (r *OrderRepository) List(ctx context.Context, filters models.OrderFilters) ([]models.Order, error) {
	var conditions []string
	var args []interface{}

	if filters.UserID > 0 {
		conditions = append(conditions, "usuario_id = ?")
		args = append(args, filters.UserID)
	}
	if filters.State != "" {
		conditions = append(conditions, "estado = ?")
		args = append(args, filters.State)
	}

	query := `SELECT ` + orderColumns + ` FROM ordenes`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, max(filters.Offset, 0))

	orders := []models.Order{}
	if err := r.db.SelectContext(ctx, &orders, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	if err := r.attachTicketIDs(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type orderTicketLink struct {
	OrderID  int64 `db:"orden_id"`
	TicketID int64 `db:"boleto_id"`
}

func (r *OrderRepository) attachTicketIDs(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].TicketIDs = []int64{}
	}

	query, args, err := sqlx.In(`
		SELECT orden_id, boleto_id
		FROM orden_boletos
		WHERE orden_id IN (?)
		ORDER BY orden_id, posicion`, ids)
	if err != nil {
		return errors.Wrap(err, "failed to build order tickets query")
	}

	var links []orderTicketLink
	if err := r.db.SelectContext(ctx, &links, r.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "failed to list order tickets")
	}

	for _, l := range links {
		i := index[l.OrderID]
		orders[i].TicketIDs = append(orders[i].TicketIDs, l.TicketID)
	}
	return nil
}

// Transition moves an order from one state to another and applies the ticket
// effect in the same transaction. The state update is conditional on the
// order still being in from, so a concurrent transition makes this one fail
// instead of overwriting it.
func (r *OrderRepository) Transition(ctx context.Context, id int64, from, to models.OrderState, effect TicketEffect) (*models.Order, error) {
	if err := models.ValidateTransition(from, to); err != nil {
		return nil, err
	}

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE ordenes SET estado = ?, updated_at = ?
			WHERE id = ? AND estado = ?`),
			to, now, id, from)
		if err != nil {
			return errors.Wrap(err, "failed to update order state")
		}
		if err := expectOrderState(ctx, tx, res, id, to); err != nil {
			return err
		}

		switch effect {
		case EffectAssign:
			_, err = tx.ExecContext(ctx, tx.Rebind(`
				UPDATE boletos
				SET usuario_id = (SELECT usuario_id FROM ordenes WHERE id = ?), updated_at = ?
				WHERE orden_id = ?`),
				id, now, id)
			if err != nil {
				return errors.Wrap(err, "failed to assign tickets")
			}
		case EffectRelease:
			if err := releaseOrderTickets(ctx, tx, id, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// expectOrderState explains a conditional order update that matched no row
func expectOrderState(ctx context.Context, tx *sqlx.Tx, res sql.Result, id int64, to models.OrderState) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 1 {
		return nil
	}

	var current models.OrderState
	err = tx.GetContext(ctx, &current, tx.Rebind(`SELECT estado FROM ordenes WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewNotFoundError("orden", id)
	}
	if err != nil {
		return errors.Wrap(err, "failed to get order state")
	}

	if err := models.ValidateTransition(current, to); err != nil {
		return err
	}
	return models.NewConflictError(fmt.Sprintf("order %d changed state concurrently (now %s)", id, current))
}

func releaseOrderTickets(ctx context.Context, tx *sqlx.Tx, orderID int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE boletos
		SET disponible = TRUE, usuario_id = NULL, orden_id = NULL, updated_at = ?
		WHERE orden_id = ?`),
		now, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to release tickets")
	}
	return nil
}

// Delete removes a PENDIENTE or CANCELADO order, releasing any ticket still
// attached to it. It returns the order as it was before deletion.
func (r *OrderRepository) Delete(ctx context.Context, id int64) (*models.Order, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		// Claim the row first so a concurrent transition cannot slip in between
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE ordenes SET updated_at = ?
			WHERE id = ? AND estado IN (?, ?)`),
			now, id, models.OrderPendiente, models.OrderCancelado)
		if err != nil {
			return errors.Wrap(err, "failed to lock order")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "failed to read affected rows")
		}
		if n != 1 {
			var current models.OrderState
			err := tx.GetContext(ctx, &current, tx.Rebind(`SELECT estado FROM ordenes WHERE id = ?`), id)
			if errors.Is(err, sql.ErrNoRows) {
				return models.NewNotFoundError("orden", id)
			}
			if err != nil {
				return errors.Wrap(err, "failed to get order state")
			}
			return models.NewConflictError(fmt.Sprintf("order in state %s cannot be deleted; cancel or refund it first", current))
		}

		if err := releaseOrderTickets(ctx, tx, id, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM orden_boletos WHERE orden_id = ?`), id); err != nil {
			return errors.Wrap(err, "failed to unlink tickets")
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM ordenes WHERE id = ?`), id); err != nil {
			return errors.Wrap(err, "failed to delete order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

type orderStateCount struct {
	State models.OrderState `db:"estado"`
	Count int               `db:"total"`
}

// Statistics counts orders per state and sums the totals of PAGADO orders
func (r *OrderRepository) Statistics(ctx context.Context) (*models.OrderStatistics, error) {
	var counts []orderStateCount
	err := r.db.SelectContext(ctx, &counts, `SELECT estado, COUNT(*) AS total FROM ordenes GROUP BY estado`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count orders")
	}

	stats := &models.OrderStatistics{
		ByState: make(map[models.OrderState]int, len(models.OrderStates)),
		Revenue: decimal.Zero,
	}
	for _, state := range models.OrderStates {
		stats.ByState[state] = 0
	}
	for _, c := range counts {
		stats.ByState[c.State] = c.Count
		stats.Total += c.Count
	}

	// Summed here rather than in SQL: SQLite stores money as text.
	var totals []decimal.Decimal
	err = r.db.SelectContext(ctx, &totals, r.db.Rebind(`SELECT total FROM ordenes WHERE estado = ?`), models.OrderPagado)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum revenue")
	}
	for _, t := range totals {
		stats.Revenue = stats.Revenue.Add(t)
	}
	stats.Revenue = stats.Revenue.Round(2)

	return stats, nil
}
