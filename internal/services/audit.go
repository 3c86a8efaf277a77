package services

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
)

// AuditLogRepository interface for audit log data operations
type AuditLogRepository interface {
	Create(ctx context.Context, entry models.AuditLog) (*models.AuditLog, error)
	List(ctx context.Context, filters models.AuditLogFilters) ([]models.AuditLog, error)
}

// AuditService handles audit logging operations
type AuditService struct {
	auditRepo AuditLogRepository
	log       logrus.FieldLogger
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditLogRepository, log logrus.FieldLogger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		log:       log.WithField("service", "audit"),
	}
}

// LogAction records a privileged action. A failure to record is logged and
// never fails the action itself, which has already happened.
func (s *AuditService) LogAction(ctx context.Context, actor Actor, action, targetType string, targetID int64, details interface{}, r *http.Request) {
	if err := s.record(ctx, actor, action, targetType, targetID, details, r); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action":    action,
			"target":    targetType,
			"target_id": targetID,
		}).Error("failed to write audit log")
	}
}

func (s *AuditService) record(ctx context.Context, actor Actor, action, targetType string, targetID int64, details interface{}, r *http.Request) error {
	var detailsJSON json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return errors.Wrap(err, "failed to encode audit details")
		}
		detailsJSON = b
	}

	entry := models.AuditLog{
		UserID:     actor.UserID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    detailsJSON,
	}
	if r != nil {
		entry.IPAddress = getClientIP(r)
		entry.UserAgent = r.UserAgent()
	}

	_, err := s.auditRepo.Create(ctx, entry)
	return err
}

// GetAuditLogs lists audit entries, newest first
func (s *AuditService) GetAuditLogs(ctx context.Context, filters models.AuditLogFilters) ([]models.AuditLog, error) {
	return s.auditRepo.List(ctx, filters)
}

// getClientIP prefers proxy headers over the socket address
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
