package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"boletera-api/internal/logging"
	"boletera-api/internal/middleware"
	"boletera-api/internal/models"
	"boletera-api/internal/repositories"
	"boletera-api/internal/services"
)

// MockTicketService for testing
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Create(ctx context.Context, req models.TicketCreateRequest) (*models.Ticket, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) Purchase(ctx context.Context, ticketID, userID int64) (*models.Ticket, error) {
	args := m.Called(ctx, ticketID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) Release(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketService) ListAvailableByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketService) CheckAvailability(ctx context.Context, eventID int64, quantity int) (bool, error) {
	args := m.Called(ctx, eventID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketService) DeleteAllForEvent(ctx context.Context, eventID int64) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketService) Statistics(ctx context.Context, eventID int64) (*models.TicketStatistics, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketStatistics), args.Error(1)
}

func (m *MockTicketService) UpdatePrice(ctx context.Context, ticketID int64, req models.TicketPriceRequest) (*models.Ticket, error) {
	args := m.Called(ctx, ticketID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) DeleteTicket(ctx context.Context, ticketID int64) error {
	return m.Called(ctx, ticketID).Error(0)
}

// MockOrderService for testing
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*models.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID int64, ticketIDs []int64) (*models.Order, error) {
	return m.order(m.Called(ctx, userID, ticketIDs))
}

func (m *MockOrderService) GetOrder(ctx context.Context, actor services.Actor, id int64) (*models.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *MockOrderService) ListOrders(ctx context.Context, actor services.Actor, filters models.OrderFilters) ([]models.Order, error) {
	args := m.Called(ctx, actor, filters)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateState(ctx context.Context, id int64, state models.OrderState) (*models.Order, error) {
	return m.order(m.Called(ctx, id, state))
}

func (m *MockOrderService) MarkPaid(ctx context.Context, id int64) (*models.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) Cancel(ctx context.Context, id int64) (*models.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) Refund(ctx context.Context, id int64) (*models.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderService) Statistics(ctx context.Context) (*models.OrderStatistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderStatistics), args.Error(1)
}

// MockEventService for testing
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) event(args mock.Arguments) (*models.Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) CreateEvent(ctx context.Context, actor services.Actor, req models.EventRequest) (*models.Event, error) {
	return m.event(m.Called(ctx, actor, req))
}

func (m *MockEventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return m.event(m.Called(ctx, id))
}

func (m *MockEventService) ListEvents(ctx context.Context, filters repositories.EventFilters) ([]models.Event, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventService) Authorize(ctx context.Context, actor services.Actor, eventID int64) (*models.Event, error) {
	return m.event(m.Called(ctx, actor, eventID))
}

func (m *MockEventService) UpdateEvent(ctx context.Context, actor services.Actor, id int64, req models.EventRequest) (*models.Event, error) {
	return m.event(m.Called(ctx, actor, id, req))
}

func (m *MockEventService) DeleteEvent(ctx context.Context, actor services.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

// MockAuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, creator *services.Actor, req models.UserCreateRequest) (*models.User, error) {
	args := m.Called(ctx, creator, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req models.LoginRequest) (*services.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResponse), args.Error(1)
}

// MockUserService for testing
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, role models.UserRole, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, role, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) ChangeRole(ctx context.Context, actor services.Actor, id int64, role models.UserRole) (*models.User, error) {
	args := m.Called(ctx, actor, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockAuditor for testing
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) LogAction(ctx context.Context, actor services.Actor, action, targetType string, targetID int64, details interface{}, r *http.Request) {
	m.Called(actor, action, targetType, targetID)
}

func (m *MockAuditor) GetAuditLogs(ctx context.Context, filters models.AuditLogFilters) ([]models.AuditLog, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]models.AuditLog), args.Error(1)
}

var (
	adminActor = services.Actor{UserID: 1, Role: models.RoleAdmin}
	buyerActor = services.Actor{UserID: 7, Role: models.RoleUser}
	orgActor   = services.Actor{UserID: 3, Role: models.RoleOrganizador}
)

var discard = logging.Discard()

// serve routes a single request through a chi router so URL params resolve.
// A nil actor sends the request anonymously.
func serve(t *testing.T, method, pattern, target string, actor *services.Actor, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type decodedResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) decodedResponse {
	t.Helper()
	var resp decodedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
