// internal/services/cart_service.go
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

// CartService manages the fixed-price purchase path. Auction items never
// enter a cart; they settle through the seller's sale confirmation.
type CartService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewCartService(db *gorm.DB, notifications *NotificationService) *CartService {
	return &CartService{
		db:            db,
		notifications: notifications,
	}
}

// CartSummary is the cart read model.
type CartSummary struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

// AddItem puts a fixed-price listing in the user's cart. Re-adding an item
// already present is a no-op that returns the existing row.
func (s *CartService) AddItem(userID, productID uuid.UUID) (*models.CartItem, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.IsAuction {
		return nil, apperrors.ErrNotAnAuction
	}
	if product.SellerID == userID {
		return nil, apperrors.ErrSelfPurchase
	}
	if product.IsSold || !product.IsActive {
		return nil, apperrors.ErrProductUnavailable
	}

	var existing models.CartItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return item, nil
}

// UpdateItemQuantity sets the quantity on one cart row owned by the user.
func (s *CartService) UpdateItemQuantity(userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}

	var item models.CartItem
	if err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&item).Update("quantity", quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Quantity = quantity

	return &item, nil
}

// GetCart returns the user's cart with per-item products and the running
// total.
func (s *CartService) GetCart(userID uuid.UUID) (*CartSummary, error) {
	var items []models.CartItem
	if err := s.db.Preload("Product").Preload("Product.Seller").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	summary := &CartSummary{Items: items, Count: len(items)}
	for _, item := range items {
		summary.Total += item.Product.Price * float64(item.Quantity)
	}

	return summary, nil
}

// RemoveItem deletes one cart row owned by the user.
func (s *CartService) RemoveItem(userID, productID uuid.UUID) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCartItemNotFound
	}
	return nil
}

// ClearCart empties the user's cart.
func (s *CartService) ClearCart(userID uuid.UUID) error {
	if err := s.db.Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Checkout converts every available cart item into a completed purchase in
// one transaction. Items that became sold or inactive since being added make
// the whole checkout fail so the user can review the cart.
func (s *CartService) Checkout(userID uuid.UUID, deliveryAddress string) ([]models.Purchase, error) {
	var purchases []models.Purchase

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Preload("Product").
			Where("user_id = ?", userID).
			Find(&items).Error; err != nil {
			return fmt.Errorf("failed to fetch cart: %w", err)
		}
		if len(items) == 0 {
			return apperrors.ErrCartEmpty
		}

		now := time.Now().UTC()
		for _, item := range items {
			var product models.Product
			if err := lockForUpdate(tx).First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrProductUnavailable
				}
				return fmt.Errorf("database error: %w", err)
			}

			if product.IsSold || !product.IsActive {
				return apperrors.ErrProductUnavailable
			}

			if err := tx.Model(&product).Update("is_sold", true).Error; err != nil {
				return fmt.Errorf("failed to mark product sold: %w", err)
			}

			purchase := models.Purchase{
				BuyerID:         userID,
				SellerID:        product.SellerID,
				ProductID:       product.ID,
				Amount:          product.Price * float64(item.Quantity),
				Status:          models.PurchaseStatusCompleted,
				DeliveryAddress: deliveryAddress,
				PurchaseDate:    now,
			}
			if err := tx.Create(&purchase).Error; err != nil {
				return fmt.Errorf("failed to create purchase: %w", err)
			}
			purchases = append(purchases, purchase)

			if _, err := s.notifications.NotifyTx(tx, product.SellerID,
				"Your item sold",
				fmt.Sprintf("'%s' was purchased for $%.2f.", product.Title, purchase.Amount),
				&product.ID, nil); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).
			Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// GetPurchases returns the user's purchase history, newest first.
func (s *CartService) GetPurchases(userID uuid.UUID, params utils.PaginationParams) ([]models.Purchase, int64, error) {
	return s.purchaseHistory("buyer_id", userID, params)
}

// GetSales returns the user's sales history, newest first.
func (s *CartService) GetSales(userID uuid.UUID, params utils.PaginationParams) ([]models.Purchase, int64, error) {
	return s.purchaseHistory("seller_id", userID, params)
}

func (s *CartService) purchaseHistory(column string, userID uuid.UUID, params utils.PaginationParams) ([]models.Purchase, int64, error) {
	query := s.db.Model(&models.Purchase{}).Where(column+" = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	query = query.Order("purchase_date DESC")
	query = utils.ApplyPagination(query, params)

	var purchases []models.Purchase
	if err := query.Preload("Product").Preload("Buyer").Preload("Seller").
		Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	return purchases, total, nil
}
