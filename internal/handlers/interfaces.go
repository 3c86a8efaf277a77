package handlers

import (
	"context"
	"net/http"

	"boletera-api/internal/models"
	"boletera-api/internal/repositories"
	"boletera-api/internal/services"
)

// TicketServiceInterface defines the ticket operations the API exposes
type TicketServiceInterface interface {
	Create(ctx context.Context, req models.TicketCreateRequest) (*models.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*models.Ticket, error)
	Purchase(ctx context.Context, ticketID, userID int64) (*models.Ticket, error)
	Release(ctx context.Context, ticketID int64) (*models.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
	ListAvailableByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
	CheckAvailability(ctx context.Context, eventID int64, quantity int) (bool, error)
	DeleteAllForEvent(ctx context.Context, eventID int64) (int64, error)
	Statistics(ctx context.Context, eventID int64) (*models.TicketStatistics, error)
	UpdatePrice(ctx context.Context, ticketID int64, req models.TicketPriceRequest) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, ticketID int64) error
}

// OrderServiceInterface defines the order operations the API exposes
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, userID int64, ticketIDs []int64) (*models.Order, error)
	GetOrder(ctx context.Context, actor services.Actor, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, actor services.Actor, filters models.OrderFilters) ([]models.Order, error)
	UpdateState(ctx context.Context, id int64, state models.OrderState) (*models.Order, error)
	MarkPaid(ctx context.Context, id int64) (*models.Order, error)
	Cancel(ctx context.Context, id int64) (*models.Order, error)
	Refund(ctx context.Context, id int64) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*models.OrderStatistics, error)
}

// EventServiceInterface defines the event operations the API exposes
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, actor services.Actor, req models.EventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	ListEvents(ctx context.Context, filters repositories.EventFilters) ([]models.Event, error)
	Authorize(ctx context.Context, actor services.Actor, eventID int64) (*models.Event, error)
	UpdateEvent(ctx context.Context, actor services.Actor, id int64, req models.EventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, actor services.Actor, id int64) error
}

// AuthServiceInterface defines registration and login
type AuthServiceInterface interface {
	Register(ctx context.Context, creator *services.Actor, req models.UserCreateRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*services.AuthResponse, error)
}

// UserServiceInterface defines user administration
type UserServiceInterface interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, role models.UserRole, limit, offset int) ([]models.User, error)
	ChangeRole(ctx context.Context, actor services.Actor, id int64, role models.UserRole) (*models.User, error)
}

// CatalogServiceInterface defines the artist catalog operations
type CatalogServiceInterface interface {
	CreateArtist(ctx context.Context, actor services.Actor, artist models.Artist) (*models.Artist, error)
	GetArtist(ctx context.Context, id int64) (*models.Artist, error)
	ListArtists(ctx context.Context) ([]models.Artist, error)
	DeleteArtist(ctx context.Context, actor services.Actor, id int64) error
	CreateAlbum(ctx context.Context, actor services.Actor, album models.Album) (*models.Album, error)
	ListAlbums(ctx context.Context, artistID int64) ([]models.Album, error)
	CreateSong(ctx context.Context, actor services.Actor, song models.Song) (*models.Song, error)
	ListSongs(ctx context.Context, albumID int64) ([]models.Song, error)
}

// Auditor records privileged actions
type Auditor interface {
	LogAction(ctx context.Context, actor services.Actor, action, targetType string, targetID int64, details interface{}, r *http.Request)
	GetAuditLogs(ctx context.Context, filters models.AuditLogFilters) ([]models.AuditLog, error)
}
