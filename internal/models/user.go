package models

import (
	"regexp"
	"strings"
	"time"
)

// UserRole represents the role of a user in the system
type UserRole string

const (
	RoleUser        UserRole = "USER"
	RoleArtista     UserRole = "ARTISTA"
	RoleOrganizador UserRole = "ORGANIZADOR"
	RoleAdmin       UserRole = "ADMIN"
)

// User represents a user in the system
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"nombre" db:"nombre"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"rol" db:"rol"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserCreateRequest represents the data needed to register a user
type UserCreateRequest struct {
	Name     string   `json:"nombre"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"rol"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RoleUpdateRequest changes a user's role
type RoleUpdateRequest struct {
	Role UserRole `json:"rol"`
}

var (
	// Email validation regex
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Validate validates the user data
func (u *User) Validate() error {
	if err := validateEmail(u.Email); err != nil {
		return err
	}

	if err := validateUserName(u.Name); err != nil {
		return err
	}

	return ValidateRole(u.Role)
}

// Validate validates registration data. An empty role defaults to USER.
func (req *UserCreateRequest) Validate() error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = RoleUser
	}

	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if err := validatePassword(req.Password); err != nil {
		return err
	}

	if err := validateUserName(req.Name); err != nil {
		return err
	}

	return ValidateRole(req.Role)
}

// Validate validates login data
func (req *LoginRequest) Validate() error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return NewValidationError("email", "is required")
	}
	if req.Password == "" {
		return NewValidationError("password", "is required")
	}
	return nil
}

// validateEmail validates an email address
func validateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "is required")
	}

	if len(email) > 255 {
		return NewValidationError("email", "must be less than 255 characters")
	}

	if !emailRegex.MatchString(email) {
		return NewValidationError("email", "format is invalid")
	}

	return nil
}

// validatePassword validates a password
func validatePassword(password string) error {
	if password == "" {
		return NewValidationError("password", "is required")
	}

	if len(password) < 8 {
		return NewValidationError("password", "must be at least 8 characters long")
	}

	if len(password) > 128 {
		return NewValidationError("password", "must be less than 128 characters")
	}

	return nil
}

func validateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("nombre", "is required")
	}

	if len(name) > 150 {
		return NewValidationError("nombre", "must be less than 150 characters")
	}

	return nil
}

// ValidateRole validates a user role
func ValidateRole(role UserRole) error {
	switch role {
	case RoleUser, RoleArtista, RoleOrganizador, RoleAdmin:
		return nil
	default:
		return NewValidationError("rol", "invalid user role")
	}
}

// IsAdmin returns true if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanCreateEvents returns true if the user can organize events
func (u *User) CanCreateEvents() bool {
	return u.Role == RoleOrganizador || u.Role == RoleAdmin
}
