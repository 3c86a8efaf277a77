// Package testutil provides a migrated in-memory database and row fixtures.
package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"boletera-api/internal/database"
	"boletera-api/internal/models"
)

// NewDB opens a fresh in-memory SQLite database with every migration applied
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.NewConnection(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations())
	return db
}

// CreateUser inserts a user row and returns its id
func CreateUser(t testing.TB, db *database.DB, email string, role models.UserRole) int64 {
	t.Helper()

	now := time.Now().UTC()
	var id int64
	err := db.QueryRowx(db.Rebind(`
		INSERT INTO usuarios (nombre, email, password_hash, rol, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		"Usuario "+email, email, "x", role, now, now,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateEvent inserts an event organized by organizerID and returns its id
func CreateEvent(t testing.TB, db *database.DB, organizerID int64) int64 {
	t.Helper()

	now := time.Now().UTC()
	var id int64
	err := db.QueryRowx(db.Rebind(`
		INSERT INTO eventos (nombre, descripcion, lugar, fecha, organizador_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		"Concierto", "", "Auditorio Nacional", now.Add(30*24*time.Hour), organizerID, now, now,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTicket inserts an available ticket and returns its id
func CreateTicket(t testing.TB, db *database.DB, eventID int64, price string, ticketType models.TicketType) int64 {
	t.Helper()

	now := time.Now().UTC()
	var id int64
	err := db.QueryRowx(db.Rebind(`
		INSERT INTO boletos (precio, tipo, disponible, evento_id, created_at, updated_at)
		VALUES (?, ?, TRUE, ?, ?, ?)
		RETURNING id`),
		decimal.RequireFromString(price), ticketType, eventID, now, now,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// Fixture is a ready-made organizer, buyer and event
type Fixture struct {
	OrganizerID int64
	BuyerID     int64
	EventID     int64
}

// NewFixture seeds an organizer, a buyer and one event
func NewFixture(t testing.TB, db *database.DB) Fixture {
	t.Helper()

	organizer := CreateUser(t, db, "organizador@example.com", models.RoleOrganizador)
	buyer := CreateUser(t, db, "comprador@example.com", models.RoleUser)
	return Fixture{
		OrganizerID: organizer,
		BuyerID:     buyer,
		EventID:     CreateEvent(t, db, organizer),
	}
}
