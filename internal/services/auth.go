package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
	"boletera-api/internal/utils"
)

// UserRepository interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role models.UserRole, limit, offset int) ([]models.User, error)
	UpdateRole(ctx context.Context, id int64, role models.UserRole) (*models.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiraEn"`
	User      *models.User `json:"usuario"`
}

// AuthService handles registration, login and token verification
type AuthService struct {
	users  UserRepository
	hasher *utils.PasswordHasher
	tokens *utils.TokenManager
	log    logrus.FieldLogger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserRepository, hasher *utils.PasswordHasher, tokens *utils.TokenManager, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log.WithField("service", "auth"),
	}
}

// Register creates a user account. Only administrators may create accounts
// with a role other than USER; creator is nil for anonymous sign-ups.
func (s *AuthService) Register(ctx context.Context, creator *Actor, req models.UserCreateRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Role != models.RoleUser && (creator == nil || !creator.IsAdmin()) {
		return nil, &models.ForbiddenError{Message: "only administrators can assign roles"}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user, err := s.users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "rol": user.Role}).Info("user registered")
	return user, nil
}

// Login checks credentials and issues a bearer token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	valid, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify password")
	}
	if !valid {
		s.log.WithField("user_id", user.ID).Warn("failed login attempt")
		return nil, models.ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, ExpiresAt: expires, User: user}, nil
}

// ParseToken verifies a bearer token and returns the identity it carries
func (s *AuthService) ParseToken(token string) (Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Actor{}, errors.WithMessage(models.ErrInvalidToken, err.Error())
	}

	userID, err := claims.UserID()
	if err != nil {
		return Actor{}, models.ErrInvalidToken
	}
	return Actor{UserID: userID, Role: models.UserRole(claims.Role)}, nil
}
