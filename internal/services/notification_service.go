// internal/services/notification_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/models"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

// NotificationService persists user-facing notification rows for domain
// events. It never fails on business grounds; only storage errors propagate.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify creates one unread notification row.
func (s *NotificationService) Notify(userID uuid.UUID, title, message string, relatedProductID, relatedBidID *uuid.UUID) (*models.Notification, error) {
	return s.NotifyTx(s.db, userID, title, message, relatedProductID, relatedBidID)
}

// NotifyTx is Notify scoped to a caller-owned transaction, so bid placement
// and settlement can make the notification write part of their atomic unit.
func (s *NotificationService) NotifyTx(tx *gorm.DB, userID uuid.UUID, title, message string, relatedProductID, relatedBidID *uuid.UUID) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		RelatedProductID: relatedProductID,
		RelatedBidID:     relatedBidID,
	}

	if err := tx.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}

// List returns the user's notifications, newest first. Read notifications are
// excluded unless includeRead is set.
func (s *NotificationService) List(userID uuid.UUID, includeRead bool, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	if !includeRead {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

// MarkRead flips is_read on one notification owned by the user.
func (s *NotificationService) MarkRead(notificationID, userID uuid.UUID) error {
	var notification models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotificationNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&notification).Update("is_read", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

// MarkAllRead flips is_read on every unread notification owned by the user
// and reports how many rows changed.
func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CountUnread returns the user's unread notification count.
func (s *NotificationService) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
