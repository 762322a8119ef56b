package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedYossry552/examination-system/internal/model"
	"github.com/AhmedYossry552/examination-system/internal/repository"
)

const notificationPageSize = 50

// NotificationService serves the student's stored notification feed.
type NotificationService struct {
	repo *repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the student's latest notifications.
func (s *NotificationService) List(ctx context.Context, studentID int) ([]model.Notification, error) {
	notifications, err := s.repo.ListByStudent(ctx, studentID, notificationPageSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead stamps one of the student's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, studentID int, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, notificationID, studentID, time.Now()); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
