package service

import (
	"context"

	"tidepool/internal/models"
	"tidepool/internal/observability"
	"tidepool/internal/repository"
)

// NotificationService records and serves in-app notifications. It runs
// after core mutations succeed and never inside their transactions; a
// failed notification write is logged and dropped rather than failing the
// mutation that triggered it.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// Notify records a notification, skipping self-notifications.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if n.RecipientID == n.ActorID {
		return
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		observability.GlobalLogger.WithRequest(ctx).Warn("failed to record notification",
			"type", string(n.Type),
			"recipient_id", n.RecipientID,
			"error", err.Error(),
		)
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, recipientID, limit, offset)
}

func (s *NotificationService) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID uint) error {
	return s.notificationRepo.MarkRead(ctx, recipientID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, recipientID)
}
