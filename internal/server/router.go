package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"boletera-api/internal/handlers"
	"boletera-api/internal/metrics"
	"boletera-api/internal/middleware"
	"boletera-api/internal/models"
)

// RouterConfig carries everything the HTTP layer needs
type RouterConfig struct {
	Services    *Services
	DB          handlers.Pinger
	Log         logrus.FieldLogger
	Metrics     *metrics.Metrics
	Limiter     *middleware.RateLimiter // nil disables rate limiting
	CORSOrigins []string
	// ServeMetrics mounts /metrics on the API router instead of a separate listener
	ServeMetrics bool
}

// NewRouter builds the API router
func NewRouter(cfg RouterConfig) http.Handler {
	svc := cfg.Services

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Log)
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Users, cfg.Log)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Audit, cfg.Log)
	eventHandler := handlers.NewEventHandler(svc.Events, svc.Tickets, svc.Audit, cfg.Log)
	ticketHandler := handlers.NewTicketHandler(svc.Tickets, svc.Events, svc.Audit, cfg.Log)
	orderHandler := handlers.NewOrderHandler(svc.Orders, svc.Audit, cfg.Log)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog, cfg.Log)
	auditHandler := handlers.NewAuditHandler(svc.Audit, cfg.Log)

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.Limiter == nil {
			return h
		}
		return cfg.Limiter.Middleware(h)
	}

	staff := middleware.RequireRole(models.RoleOrganizador, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)
	creators := middleware.RequireRole(models.RoleArtista, models.RoleAdmin)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Log, cfg.Metrics))
	r.Use(middleware.Recoverer(cfg.Log))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Authenticate(svc.Auth))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", healthHandler.Health)
	if cfg.ServeMetrics {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/registro", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/usuarios", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", authHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/", userHandler.ListUsers)
			r.Get("/{id}", userHandler.GetUser)
			r.Put("/{id}/rol", userHandler.ChangeRole)
		})
	})

	r.Route("/eventos", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{id}", eventHandler.GetEvent)
		r.Get("/{id}/boletos", eventHandler.ListTickets)
		r.Get("/{id}/boletos/disponibles", eventHandler.ListAvailableTickets)
		r.Get("/{id}/disponibilidad", eventHandler.CheckAvailability)

		r.Group(func(r chi.Router) {
			r.Use(staff)
			r.Post("/", eventHandler.CreateEvent)
			r.Put("/{id}", eventHandler.UpdateEvent)
			r.Delete("/{id}", eventHandler.DeleteEvent)
			r.Get("/{id}/boletos/estadisticas", eventHandler.TicketStatistics)
			r.Delete("/{id}/boletos", eventHandler.DeleteTickets)
		})
	})

	r.Route("/boletos", func(r chi.Router) {
		r.Get("/{id}", ticketHandler.GetTicket)
		r.With(middleware.RequireAuth).Method(http.MethodPost, "/{id}/comprar", limited(ticketHandler.PurchaseTicket))

		r.Group(func(r chi.Router) {
			r.Use(staff)
			r.Post("/", ticketHandler.CreateTicket)
			r.Put("/{id}/precio", ticketHandler.UpdatePrice)
			r.Delete("/{id}", ticketHandler.DeleteTicket)
			r.Post("/{id}/liberar", ticketHandler.ReleaseTicket)
		})
	})

	r.Route("/ordenes", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Method(http.MethodPost, "/", limited(orderHandler.CreateOrder))
		r.Get("/", orderHandler.ListOrders)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Post("/{id}/pagar", orderHandler.PayOrder)
		r.Post("/{id}/cancelar", orderHandler.CancelOrder)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/estadisticas", orderHandler.Statistics)
			r.Put("/{id}/estado", orderHandler.UpdateState)
			r.Post("/{id}/reembolsar", orderHandler.RefundOrder)
			r.Delete("/{id}", orderHandler.DeleteOrder)
		})
	})

	r.Route("/artistas", func(r chi.Router) {
		r.Get("/", catalogHandler.ListArtists)
		r.Get("/{id}", catalogHandler.GetArtist)
		r.Get("/{id}/albumes", catalogHandler.ListAlbums)
		r.With(creators).Post("/", catalogHandler.CreateArtist)
		r.With(creators).Post("/{id}/albumes", catalogHandler.CreateAlbum)
		r.With(admin).Delete("/{id}", catalogHandler.DeleteArtist)
	})

	r.Route("/albumes/{id}/canciones", func(r chi.Router) {
		r.Get("/", catalogHandler.ListSongs)
		r.With(creators).Post("/", catalogHandler.CreateSong)
	})

	r.With(admin).Get("/auditoria", auditHandler.ListAuditLogs)

	return r
}
