// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/models"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

// AdminService backs the moderation surface: user activation, listing
// takedowns and platform stats. Dispute administration lives on
// DisputeService.
type AdminService struct {
	db            *gorm.DB
	notifications *NotificationService
	logger        *logrus.Logger
}

func NewAdminService(db *gorm.DB, notifications *NotificationService, logger *logrus.Logger) *AdminService {
	return &AdminService{
		db:            db,
		notifications: notifications,
		logger:        logger,
	}
}

// PlatformStats is the admin dashboard read model.
type PlatformStats struct {
	TotalUsers      int64 `json:"total_users"`
	ActiveUsers     int64 `json:"active_users"`
	TotalProducts   int64 `json:"total_products"`
	ActiveAuctions  int64 `json:"active_auctions"`
	TotalPurchases  int64 `json:"total_purchases"`
	OpenDisputes    int64 `json:"open_disputes"`
	TotalBids       int64 `json:"total_bids"`
	TotalCategories int64 `json:"total_categories"`
}

// ListUsers returns all accounts, newest first, optionally matching username
// or email.
func (s *AdminService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})
	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// SetUserActive flips an account's active flag. Deactivated users cannot log
// in; their listings stay visible until moderated separately.
func (s *AdminService) SetUserActive(userID uuid.UUID, active bool) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&user).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"active":  active,
	}).Info("User activation changed")

	return &user, nil
}

// RemoveProduct deactivates any listing and tells the seller why.
func (s *AdminService) RemoveProduct(productID uuid.UUID, reason string) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProductNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&product).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate product: %w", err)
		}

		message := fmt.Sprintf("Your listing '%s' was removed by a moderator.", product.Title)
		if reason != "" {
			message = fmt.Sprintf("%s Reason: %s", message, reason)
		}
		_, err := s.notifications.NotifyTx(tx, product.SellerID,
			"Listing removed", message, &product.ID, nil)
		return err
	})
}

// GetStats aggregates the platform counters.
func (s *AdminService) GetStats() (*PlatformStats, error) {
	stats := &PlatformStats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.db.Model(&models.User{})},
		{&stats.ActiveUsers, s.db.Model(&models.User{}).Where("is_active = ?", true)},
		{&stats.TotalProducts, s.db.Model(&models.Product{}).Where("is_active = ?", true)},
		{&stats.ActiveAuctions, s.db.Model(&models.Product{}).
			Where("is_auction = ? AND is_sold = ? AND auction_end_time > ?", true, false, time.Now().UTC())},
		{&stats.TotalPurchases, s.db.Model(&models.Purchase{})},
		{&stats.OpenDisputes, s.db.Model(&models.Dispute{}).Where("status = ?", models.DisputeStatusOpen)},
		{&stats.TotalBids, s.db.Model(&models.Bid{})},
		{&stats.TotalCategories, s.db.Model(&models.Category{})},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate stats: %w", err)
		}
	}

	return stats, nil
}
