package models

import (
	"encoding/json"
	"time"
)

// AuditLog represents an administrative action log entry
type AuditLog struct {
	ID         int64           `json:"id" db:"id"`
	UserID     int64           `json:"usuarioId" db:"usuario_id"`
	Action     string          `json:"accion" db:"accion"`
	TargetType string          `json:"entidad" db:"entidad"`
	TargetID   int64           `json:"entidadId" db:"entidad_id"`
	Details    json.RawMessage `json:"detalles,omitempty" db:"-"`
	IPAddress  string          `json:"ip" db:"ip"`
	UserAgent  string          `json:"userAgent" db:"user_agent"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// AuditLogFilters narrows an audit log listing
type AuditLogFilters struct {
	UserID     int64
	Action     string
	TargetType string
	TargetID   int64
	Limit      int
	Offset     int
}

// Audit actions
const (
	AuditActionUserRoleChange   = "usuario.rol"
	AuditActionEventDelete      = "evento.eliminar"
	AuditActionTicketRelease    = "boleto.liberar"
	AuditActionTicketPrice      = "boleto.precio"
	AuditActionTicketsDeleteAll = "boletos.eliminar"
	AuditActionOrderState       = "orden.estado"
	AuditActionOrderRefund      = "orden.reembolsar"
	AuditActionOrderDelete      = "orden.eliminar"
)

// Audit target types
const (
	AuditTargetUser   = "usuario"
	AuditTargetEvent  = "evento"
	AuditTargetTicket = "boleto"
	AuditTargetOrder  = "orden"
)
