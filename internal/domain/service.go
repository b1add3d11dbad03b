// Package domain defines the business objects and orchestration for the
// coach insight engine.
package domain

import (
	"context"
	"errors"
)

var (
	// ErrAlertNotFound is returned when an alert cannot be located for the tenant.
	ErrAlertNotFound = errors.New("alert not found")
)

// AlertRepository captures alert persistence operations.
type AlertRepository interface {
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]Alert, error)
	MarkRead(ctx context.Context, tenantID, alertID string) error
}

// Service orchestrates notification workflows for the API layer.
type Service struct {
	alerts AlertRepository
}

// NewService constructs a Service.
func NewService(alerts AlertRepository) *Service {
	return &Service{alerts: alerts}
}

// ListNotifications returns the tenant's alerts, unread first, newest first.
func (s *Service) ListNotifications(ctx context.Context, tenantID string, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.alerts.ListByTenant(ctx, tenantID, limit)
}

// MarkNotificationRead flags a single alert as read.
func (s *Service) MarkNotificationRead(ctx context.Context, tenantID, alertID string) error {
	return s.alerts.MarkRead(ctx, tenantID, alertID)
}
