package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"boletera-api/internal/models"
)

// AuditLogRepository handles audit log data operations
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create creates a new audit log entry
func (r *AuditLogRepository) Create(ctx context.Context, entry models.AuditLog) (*models.AuditLog, error) {
	entry.CreatedAt = time.Now().UTC()

	var details interface{}
	if len(entry.Details) > 0 {
		details = string(entry.Details)
	}

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO auditoria (usuario_id, accion, entidad, entidad_id, detalles, ip, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		entry.UserID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		details,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create audit log")
	}

	return &entry, nil
}

type auditLogRow struct {
	models.AuditLog
	RawDetails *string `db:"detalles"`
}

// List retrieves audit logs matching the filters, newest first
func (r *AuditLogRepository) List(ctx context.Context, filters models.AuditLogFilters) ([]models.AuditLog, error) {
	query := `SELECT id, usuario_id, accion, entidad, entidad_id, detalles, ip, user_agent, created_at FROM auditoria WHERE 1 = 1`
	var args []interface{}

	if filters.UserID > 0 {
		query += " AND usuario_id = ?"
		args = append(args, filters.UserID)
	}
	if filters.Action != "" {
		query += " AND accion = ?"
		args = append(args, filters.Action)
	}
	if filters.TargetType != "" {
		query += " AND entidad = ?"
		args = append(args, filters.TargetType)
		if filters.TargetID > 0 {
			query += " AND entidad_id = ?"
			args = append(args, filters.TargetID)
		}
	}

	limit := filters.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, max(filters.Offset, 0))

	var rows []auditLogRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list audit logs")
	}

	logs := make([]models.AuditLog, len(rows))
	for i, row := range rows {
		logs[i] = row.AuditLog
		if row.RawDetails != nil {
			logs[i].Details = []byte(*row.RawDetails)
		}
	}
	return logs, nil
}
