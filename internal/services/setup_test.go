package services

import (
	"testing"
	"time"

	"boletera-api/internal/database"
	"boletera-api/internal/logging"
	"boletera-api/internal/messaging"
	"boletera-api/internal/metrics"
	"boletera-api/internal/models"
	"boletera-api/internal/repositories"
	"boletera-api/internal/testutil"
	"boletera-api/internal/utils"
)

// testEnv wires every service to one migrated in-memory database
type testEnv struct {
	db        *database.DB
	fx        testutil.Fixture
	publisher *messaging.MemoryPublisher
	metrics   *metrics.Metrics

	ticketRepo *repositories.TicketRepository
	orderRepo  *repositories.OrderRepository

	tickets *TicketService
	orders  *OrderService
	events  *EventService
	auth    *AuthService
	users   *UserService
	catalog *CatalogService
	audit   *AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := logging.Discard()
	pub := &messaging.MemoryPublisher{}
	m := metrics.New()

	ticketRepo := repositories.NewTicketRepository(db.DB)
	orderRepo := repositories.NewOrderRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	userRepo := repositories.NewUserRepository(db.DB)

	hasher := utils.NewPasswordHasher(utils.PasswordHashConfig{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	tokens := utils.NewTokenManager("secreto-de-pruebas-suficientemente-largo", time.Hour, "boletera-api")

	return &testEnv{
		db:         db,
		fx:         testutil.NewFixture(t, db),
		publisher:  pub,
		metrics:    m,
		ticketRepo: ticketRepo,
		orderRepo:  orderRepo,
		tickets:    NewTicketService(ticketRepo, eventRepo, userRepo, pub, m, log),
		orders:     NewOrderService(orderRepo, ticketRepo, userRepo, pub, m, log),
		events:     NewEventService(eventRepo, userRepo, log),
		auth:       NewAuthService(userRepo, hasher, tokens, log),
		users:      NewUserService(userRepo, log),
		catalog:    NewCatalogService(repositories.NewCatalogRepository(db.DB), log),
		audit:      NewAuditService(repositories.NewAuditLogRepository(db.DB), log),
	}
}

func (e *testEnv) ticket(t *testing.T, price string) int64 {
	t.Helper()
	return testutil.CreateTicket(t, e.db, e.fx.EventID, price, models.TicketGeneral)
}

func (e *testEnv) buyer() Actor {
	return Actor{UserID: e.fx.BuyerID, Role: models.RoleUser}
}

func (e *testEnv) organizer() Actor {
	return Actor{UserID: e.fx.OrganizerID, Role: models.RoleOrganizador}
}
