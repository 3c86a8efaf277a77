package server

import (
	"github.com/sirupsen/logrus"

	"boletera-api/internal/database"
	"boletera-api/internal/messaging"
	"boletera-api/internal/metrics"
	"boletera-api/internal/repositories"
	"boletera-api/internal/services"
	"boletera-api/internal/utils"
)

// Services holds every service the API is built from
type Services struct {
	Auth    *services.AuthService
	Users   *services.UserService
	Events  *services.EventService
	Tickets *services.TicketService
	Orders  *services.OrderService
	Catalog *services.CatalogService
	Audit   *services.AuditService
}

// NewServices wires repositories and services over one database
func NewServices(
	db *database.DB,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	hasher *utils.PasswordHasher,
	tokens *utils.TokenManager,
	log logrus.FieldLogger,
) *Services {
	userRepo := repositories.NewUserRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	orderRepo := repositories.NewOrderRepository(db.DB)
	catalogRepo := repositories.NewCatalogRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)

	return &Services{
		Auth:    services.NewAuthService(userRepo, hasher, tokens, log),
		Users:   services.NewUserService(userRepo, log),
		Events:  services.NewEventService(eventRepo, userRepo, log),
		Tickets: services.NewTicketService(ticketRepo, eventRepo, userRepo, publisher, m, log),
		Orders:  services.NewOrderService(orderRepo, ticketRepo, userRepo, publisher, m, log),
		Catalog: services.NewCatalogService(catalogRepo, log),
		Audit:   services.NewAuditService(auditRepo, log),
	}
}
