// internal/services/settlement_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/models"
)

// SettlementService converts an ended auction into a completed purchase.
// Settlement is always seller-initiated; the sweeps never settle on their own.
type SettlementService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewSettlementService(db *gorm.DB, notifications *NotificationService) *SettlementService {
	return &SettlementService{
		db:            db,
		notifications: notifications,
	}
}

// ConfirmSale settles an ended auction: marks the product sold, records a
// completed purchase for the winning bidder at the final bid amount, and
// notifies both parties. A second call on the same product fails because the
// product is already sold.
func (s *SettlementService) ConfirmSale(productID, sellerID uuid.UUID) (*models.Purchase, error) {
	var purchase *models.Purchase

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := lockForUpdate(tx).First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !product.IsAuction {
			return apperrors.ErrNotAnAuction
		}
		if product.SellerID != sellerID {
			return apperrors.ErrUnauthorized
		}
		if product.IsSold {
			return apperrors.ErrAlreadySold
		}

		now := time.Now().UTC()
		if product.AuctionEndTime != nil && now.Before(*product.AuctionEndTime) {
			return apperrors.ErrAuctionStillActive
		}
		if product.CurrentBid <= 0 || product.WinningBidID == nil {
			return apperrors.ErrNoBids
		}
		if product.ReservePrice != nil && product.CurrentBid < *product.ReservePrice {
			return apperrors.ErrReserveNotMet
		}

		var winningBid models.Bid
		if err := tx.First(&winningBid, "id = ?", *product.WinningBidID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBidNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Model(&product).Update("is_sold", true).Error; err != nil {
			return fmt.Errorf("failed to mark product sold: %w", err)
		}

		purchase = &models.Purchase{
			BuyerID:      winningBid.BidderID,
			SellerID:     product.SellerID,
			ProductID:    product.ID,
			Amount:       product.CurrentBid,
			Status:       models.PurchaseStatusCompleted,
			PurchaseDate: now,
		}
		if err := tx.Create(purchase).Error; err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}

		if _, err := s.notifications.NotifyTx(tx, winningBid.BidderID,
			"You won the auction!",
			fmt.Sprintf("Congratulations! You won '%s' with a bid of $%.2f. The seller has confirmed the sale.", product.Title, product.CurrentBid),
			&product.ID, &winningBid.ID); err != nil {
			return err
		}

		if _, err := s.notifications.NotifyTx(tx, product.SellerID,
			"Auction sale confirmed",
			fmt.Sprintf("Your auction '%s' sold for $%.2f.", product.Title, product.CurrentBid),
			&product.ID, &winningBid.ID); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return purchase, nil
}
