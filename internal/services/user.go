package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
)

// UserService handles user administration
type UserService struct {
	users UserRepository
	log   logrus.FieldLogger
}

// NewUserService creates a new user service
func NewUserService(users UserRepository, log logrus.FieldLogger) *UserService {
	return &UserService{users: users, log: log.WithField("service", "users")}
}

// GetUser returns a user by id
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, models.NewValidationError("id", "must be a positive integer")
	}
	return s.users.GetByID(ctx, id)
}

// ListUsers lists users, optionally only those with the given role
func (s *UserService) ListUsers(ctx context.Context, role models.UserRole, limit, offset int) ([]models.User, error) {
	if role != "" {
		if err := models.ValidateRole(role); err != nil {
			return nil, err
		}
	}
	return s.users.List(ctx, role, limit, offset)
}

// ChangeRole sets the role of a user. Administrators cannot change their own
// role, so the last administrator can never lock everyone out.
func (s *UserService) ChangeRole(ctx context.Context, actor Actor, id int64, role models.UserRole) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, &models.ForbiddenError{Message: "only administrators can change roles"}
	}
	if err := models.ValidateRole(role); err != nil {
		return nil, err
	}
	if actor.UserID == id {
		return nil, models.NewConflictError("administrators cannot change their own role")
	}

	user, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "rol": role, "admin_id": actor.UserID}).Info("user role changed")
	return user, nil
}
