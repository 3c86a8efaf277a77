package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/messaging"
	"boletera-api/internal/models"
)

// Actor is the authenticated identity a request runs as
type Actor struct {
	UserID int64
	Role   models.UserRole
}

// IsAdmin reports whether the actor is an administrator
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// HasRole reports whether the actor has any of the given roles
func (a Actor) HasRole(roles ...models.UserRole) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

// Owns reports whether the actor is the given user or an administrator
func (a Actor) Owns(userID int64) bool {
	return a.IsAdmin() || a.UserID == userID
}

// publish sends an event once the change behind it has committed. A broker
// failure never undoes the change, so it is only logged.
func publish(ctx context.Context, publisher messaging.Publisher, log logrus.FieldLogger, key string, payload interface{}) {
	if err := publisher.Publish(ctx, key, payload); err != nil {
		log.WithError(err).WithField("routing_key", key).Warn("failed to publish event")
	}
}
