package repositories

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boletera-api/internal/models"
	"boletera-api/internal/testutil"
)

func TestTicketRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db)
	repo := NewTicketRepository(db.DB)
	ctx := context.Background()

	ticket, err := models.NewTicket(decimal.NewFromInt(500), models.TicketGeneral, true, fx.EventID, nil)
	require.NoError(t, err)

	created, err := repo.Create(ctx, ticket)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.Available)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, models.TicketGeneral, got.Type)
	assert.Equal(t, fx.EventID, got.EventID)
	assert.Nil(t, got.UserID)
	assert.Nil(t, got.OrderID)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTicketRepository_CreateInvalid(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTicketRepository(db.DB)

	_, err := repo.Create(context.Background(), models.Ticket{Price: decimal.Zero, Type: models.TicketVIP, EventID: 1})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTicketRepository_GetByIDs(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db)
	repo := NewTicketRepository(db.DB)
	ctx := context.Background()

	a := testutil.CreateTicket(t, db, fx.EventID, "100", models.TicketGeneral)
	b := testutil.CreateTicket(t, db, fx.EventID, "200", models.TicketVIP)

	tickets, err := repo.GetByIDs(ctx, []int64{b, a})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, b, tickets[0].ID)
	assert.Equal(t, a, tickets[1].ID)

	_, err = repo.GetByIDs(ctx, []int64{a, 404, 405})
	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []int64{404, 405}, notFound.IDs)
}

func TestTicketRepository_Purchase(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db)
	repo := NewTicketRepository(db.DB)
	ctx := context.Background()

	id := testutil.CreateTicket(t, db, fx.EventID, "500", models.TicketGeneral)

	sold, err := repo.Purchase(ctx, id, fx.BuyerID)
	require.NoError(t, err)
	assert.False(t, sold.Available)
	require.NotNil(t, sold.UserID)
	assert.Equal(t, fx.BuyerID, *sold.UserID)

	_, err = repo.Purchase(ctx, id, fx.OrganizerID)
	var conflict *models.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int64{id}, conflict.TicketIDs)

	_, err = repo.Purchase(ctx, 999, fx.BuyerID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTicketRepository_Release(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db)
	repo := NewTicketRepository(db.DB)
	orders := NewOrderRepository(db.DB)
	ctx := context.Background()

	id := testutil.CreateTicket(t, db, fx.EventID, "500", models.TicketGeneral)
	_, err := repo.Purchase(ctx, id, fx.BuyerID)
	require.NoError(t, err)

	released, err := repo.Release(ctx, id)
	require.NoError(t, err)
	assert.True(t, released.IsAvailable())

	// Releasing a free ticket is a no-op
	again, err := repo.Release(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.IsAvailable())

	reserved := testutil.CreateTicket(t, db, fx.EventID, "300", models.TicketVIP)
	_, err = orders.CreateWithReservation(ctx, fx.BuyerID, []int64{reserved})
	require.NoError(t, err)

	_, err = repo.Release(ctx, reserved)
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = repo.Release(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTicketRepository_UpdatePriceAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db)
	repo := NewTicketRepository(db.DB)
	ctx := context.Background()

	free := testutil.CreateTicket(t, db, fx.EventID, "500", models.TicketGeneral)
	sold := testutil.CreateTicket(t, db, fx.EventID, "500", models.TicketGeneral)
	_, err := repo.Purchase(ctx, sold, fx.BuyerID)
	require.NoError(t, err)

	updated, err := repo.UpdatePrice(ctx, free, decimal.RequireFromString("650.50"))
	require.NoError(t, err)
	assert.Equal(t, "650.5", updated.Price.String())

	_, err = repo.UpdatePrice(ctx, sold, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = repo.UpdatePrice(ctx, free, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.ErrorIs(t, repo.Delete(ctx, sold), models.ErrConflict)
	require.NoError(t, repo.Delete(ctx, free))
	assert.ErrorIs(t, repo.Delete(ctx, free), models.ErrNotFound)
}

func TestTicketRepository_EventQueries(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db)
	repo := NewTicketRepository(db.DB)
	orders := NewOrderRepository(db.DB)
	ctx := context.Background()

	g1 := testutil.CreateTicket(t, db, fx.EventID, "100", models.TicketGeneral)
	testutil.CreateTicket(t, db, fx.EventID, "100", models.TicketGeneral)
	v1 := testutil.CreateTicket(t, db, fx.EventID, "900", models.TicketVIP)
	testutil.CreateTicket(t, db, fx.EventID, "900", models.TicketVIP)

	_, err := repo.Purchase(ctx, g1, fx.BuyerID)
	require.NoError(t, err)
	_, err = orders.CreateWithReservation(ctx, fx.BuyerID, []int64{v1})
	require.NoError(t, err)

	all, err := repo.ListByEvent(ctx, fx.EventID)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	available, err := repo.ListAvailableByEvent(ctx, fx.EventID)
	require.NoError(t, err)
	assert.Len(t, available, 2)
	for _, ticket := range available {
		assert.True(t, ticket.IsAvailable())
	}

	count, err := repo.CountAvailableByEvent(ctx, fx.EventID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stats, err := repo.StatisticsByEvent(ctx, fx.EventID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Available)
	assert.Equal(t, 2, stats.Sold)
	assert.Equal(t, 1, stats.Reserved)
	assert.Equal(t, models.TypeSummary{Total: 2, Available: 1, Sold: 1}, stats.ByType[models.TicketGeneral])
	assert.Equal(t, models.TypeSummary{Total: 2, Available: 1, Sold: 1}, stats.ByType[models.TicketVIP])

	removed, err := repo.DeleteAllForEvent(ctx, fx.EventID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := repo.ListByEvent(ctx, fx.EventID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestTicketRepository_DeleteKeepsOrderHistory(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixture(t, db)
	repo := NewTicketRepository(db.DB)
	orders := NewOrderRepository(db.DB)
	ctx := context.Background()

	listed := testutil.CreateTicket(t, db, fx.EventID, "50", models.TicketGeneral)
	order, err := orders.CreateWithReservation(ctx, fx.BuyerID, []int64{listed})
	require.NoError(t, err)
	_, err = orders.Transition(ctx, order.ID, models.OrderPendiente, models.OrderCancelado, EffectRelease)
	require.NoError(t, err)

	ticket, err := repo.GetByID(ctx, listed)
	require.NoError(t, err)
	require.True(t, ticket.IsAvailable(), "cancel frees the ticket")

	assert.ErrorIs(t, repo.Delete(ctx, listed), models.ErrConflict)
	removed, err := repo.DeleteAllForEvent(ctx, fx.EventID)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = db.ExecContext(ctx, db.Rebind(`DELETE FROM boletos WHERE id = ?`), listed)
	assert.Error(t, err, "the schema refuses to drop a listed ticket")

	cancelled, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{listed}, cancelled.TicketIDs)
}
