package service

import (
	"context"

	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/alexanderramin/buildtrack/internal/repository"
)

type notificationService struct {
	notifications repository.NotificationRepo
}

func NewNotificationService(notifications repository.NotificationRepo) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) ListForUser(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	if userID <= 0 {
		return nil, invalid("user id must be > 0")
	}
	list, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, classify(err, ErrStoreUnavailable)
	}
	return list, nil
}
