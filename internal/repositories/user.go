package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"boletera-api/internal/models"
)

const userColumns = `id, nombre, email, password_hash, rol, created_at, updated_at`

// UserRepository handles user data operations
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. The password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO usuarios (nombre, email, password_hash, rol, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		now,
		now,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewConflictError("user with email " + user.Email + " already exists")
		}
		return nil, errors.Wrap(err, "failed to create user")
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, r.db.Rebind(`SELECT `+userColumns+` FROM usuarios WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("usuario", id)
		}
		return nil, errors.Wrap(err, "failed to get user")
	}
	return user, nil
}

// GetByEmail retrieves a user by email (for authentication)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, r.db.Rebind(`SELECT `+userColumns+` FROM usuarios WHERE email = ?`), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(models.ErrNotFound, "user with email %s", email)
		}
		return nil, errors.Wrap(err, "failed to get user by email")
	}
	return user, nil
}

// List returns users, optionally filtered by role
func (r *UserRepository) List(ctx context.Context, role models.UserRole, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	users := []models.User{}
	var err error
	if role != "" {
		err = r.db.SelectContext(ctx, &users, r.db.Rebind(`
			SELECT `+userColumns+` FROM usuarios WHERE rol = ? ORDER BY id LIMIT ? OFFSET ?`), role, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &users, r.db.Rebind(`
			SELECT `+userColumns+` FROM usuarios ORDER BY id LIMIT ? OFFSET ?`), limit, offset)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

// UpdateRole changes the role of a user
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.UserRole) (*models.User, error) {
	if err := models.ValidateRole(role); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE usuarios SET rol = ?, updated_at = ? WHERE id = ?`),
		role, time.Now().UTC(), id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update user role")
	}
	if err := expectRow(res, models.NewNotFoundError("usuario", id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Exists reports whether a user with the given id exists
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM usuarios WHERE id = ?)`), id)
	if err != nil {
		return false, errors.Wrap(err, "failed to check user")
	}
	return exists, nil
}
