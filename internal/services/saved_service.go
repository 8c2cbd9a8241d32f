// internal/services/saved_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/models"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

// SavedService covers the buyer-side watch features: bookmarked listings,
// reusable searches and price alerts.
type SavedService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewSavedService(db *gorm.DB, notifications *NotificationService) *SavedService {
	return &SavedService{
		db:            db,
		notifications: notifications,
	}
}

// SaveItem bookmarks a listing for the user.
func (s *SavedService) SaveItem(userID, productID uuid.UUID) (*models.SavedItem, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.SavedItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return nil, apperrors.ErrAlreadySaved
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	item := &models.SavedItem{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	return item, nil
}

// ListSavedItems returns the user's bookmarks, newest first. Sold and
// deactivated listings stay in the list so the client can show their state.
func (s *SavedService) ListSavedItems(userID uuid.UUID, params utils.PaginationParams) ([]models.SavedItem, int64, error) {
	query := s.db.Model(&models.SavedItem{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count saved items: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var items []models.SavedItem
	if err := query.Preload("Product").Preload("Product.Seller").
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch saved items: %w", err)
	}

	return items, total, nil
}

// RemoveSavedItem deletes one bookmark owned by the user.
func (s *SavedService) RemoveSavedItem(userID, itemID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.SavedItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove saved item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSavedItemNotFound
	}
	return nil
}

type SaveSearchRequest struct {
	Name    string       `json:"name" validate:"omitempty,max=100"`
	Query   string       `json:"query" validate:"omitempty,max=200"`
	Filters models.JSONB `json:"filters"`
}

// SaveSearch stores a named search. An empty name gets a timestamped default.
func (s *SavedService) SaveSearch(userID uuid.UUID, req *SaveSearchRequest) (*models.SavedSearch, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	name := req.Name
	if name == "" {
		name = "Search " + time.Now().UTC().Format("2006-01-02 15:04")
	}

	search := &models.SavedSearch{
		UserID:  userID,
		Name:    name,
		Query:   req.Query,
		Filters: req.Filters,
	}
	if err := s.db.Create(search).Error; err != nil {
		return nil, fmt.Errorf("failed to save search: %w", err)
	}

	return search, nil
}

// ListSavedSearches returns the user's saved searches, newest first.
func (s *SavedService) ListSavedSearches(userID uuid.UUID) ([]models.SavedSearch, error) {
	var searches []models.SavedSearch
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&searches).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch saved searches: %w", err)
	}
	return searches, nil
}

// DeleteSavedSearch deletes one saved search owned by the user.
func (s *SavedService) DeleteSavedSearch(userID, searchID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", searchID, userID).
		Delete(&models.SavedSearch{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete saved search: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSavedSearchNotFound
	}
	return nil
}

// CreatePriceAlert registers an alert that fires when the listing's price
// drops to or below the target.
func (s *SavedService) CreatePriceAlert(userID, productID uuid.UUID, targetPrice float64) (*models.PriceAlert, error) {
	if targetPrice <= 0 {
		return nil, apperrors.ErrInvalidInput
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.PriceAlert
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return nil, apperrors.ErrAlertExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	alert := &models.PriceAlert{
		UserID:      userID,
		ProductID:   productID,
		TargetPrice: targetPrice,
		Status:      models.AlertStatusActive,
	}
	if err := s.db.Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create price alert: %w", err)
	}

	return alert, nil
}

// ListPriceAlerts returns the user's alerts, newest first.
func (s *SavedService) ListPriceAlerts(userID uuid.UUID, params utils.PaginationParams) ([]models.PriceAlert, int64, error) {
	query := s.db.Model(&models.PriceAlert{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count price alerts: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var alerts []models.PriceAlert
	if err := query.Preload("Product").Find(&alerts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch price alerts: %w", err)
	}

	return alerts, total, nil
}

// DeletePriceAlert deletes one alert owned by the user.
func (s *SavedService) DeletePriceAlert(userID, alertID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", alertID, userID).
		Delete(&models.PriceAlert{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete price alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAlertNotFound
	}
	return nil
}

// TriggerPriceAlerts fires every active alert whose target the new price
// meets. Called after a listing's price is lowered; each fired alert moves to
// triggered so it notifies once.
func (s *SavedService) TriggerPriceAlerts(product *models.Product, newPrice float64) error {
	var alerts []models.PriceAlert
	if err := s.db.Where("product_id = ? AND status = ? AND target_price >= ?",
		product.ID, models.AlertStatusActive, newPrice).
		Find(&alerts).Error; err != nil {
		return fmt.Errorf("failed to fetch price alerts: %w", err)
	}

	for _, alert := range alerts {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.PriceAlert{}).
				Where("id = ? AND status = ?", alert.ID, models.AlertStatusActive).
				Update("status", models.AlertStatusTriggered).Error; err != nil {
				return err
			}
			_, err := s.notifications.NotifyTx(tx, alert.UserID,
				"Price drop alert",
				fmt.Sprintf("'%s' is now $%.2f, at or below your target of $%.2f.",
					product.Title, newPrice, alert.TargetPrice),
				&product.ID, nil)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to trigger price alert: %w", err)
		}
	}

	return nil
}
