// internal/services/auction_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecofinds/ecofinds-backend/internal/apperrors"
	"github.com/ecofinds/ecofinds-backend/internal/models"
	"github.com/ecofinds/ecofinds-backend/internal/utils"
)

// AuctionService owns bid placement and auction reads. All writes that touch
// the product's bid state run inside a single transaction with the product
// row locked, so concurrent bids serialize and current_bid never regresses.
type AuctionService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewAuctionService(db *gorm.DB, notifications *NotificationService) *AuctionService {
	return &AuctionService{
		db:            db,
		notifications: notifications,
	}
}

// AuctionDetail is the read model for a single auction. Status is derived
// from auction_end_time at read time, never stored.
type AuctionDetail struct {
	Product    models.Product       `json:"product"`
	Bids       []models.Bid         `json:"bids"`
	WinningBid *models.Bid          `json:"winning_bid,omitempty"`
	BidCount   int64                `json:"bid_count"`
	Status     models.AuctionStatus `json:"status"`
}

// UserBid pairs one of the user's bids with the product it was placed on and
// whether it is currently the winning bid.
type UserBid struct {
	Bid       models.Bid     `json:"bid"`
	Product   models.Product `json:"product"`
	IsWinning bool           `json:"is_winning"`
}

// lockForUpdate takes a row lock on dialects that support it. SQLite, used by
// the test suite, serializes writers at the database level instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// PlaceBid appends a bid to an active auction. The bid row, the product's
// current_bid and winning_bid_id, and the resulting notifications commit
// together or not at all.
func (s *AuctionService) PlaceBid(productID, bidderID uuid.UUID, amount float64) (*models.Bid, error) {
	var bid *models.Bid

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
		if product.SellerID == bidderID {
			return apperrors.ErrSelfBid
		}

		now := time.Now().UTC()
		if product.AuctionEndTime == nil || !now.Before(*product.AuctionEndTime) {
			return apperrors.ErrAuctionEnded
		}
		if amount <= product.CurrentBid || amount <= product.MinimumBid {
			return apperrors.ErrBidTooLow
		}

		previousWinningBidID := product.WinningBidID

		bid = &models.Bid{
			ProductID: product.ID,
			BidderID:  bidderID,
			Amount:    amount,
		}
		if err := tx.Create(bid).Error; err != nil {
			return fmt.Errorf("failed to create bid: %w", err)
		}

		updates := map[string]interface{}{
			"current_bid":    amount,
			"winning_bid_id": bid.ID,
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update auction state: %w", err)
		}

		if _, err := s.notifications.NotifyTx(tx, product.SellerID,
			"New bid on your auction",
			fmt.Sprintf("A new bid of $%.2f was placed on '%s'.", amount, product.Title),
			&product.ID, &bid.ID); err != nil {
			return err
		}

		if previousWinningBidID != nil {
			var previous models.Bid
			if err := tx.First(&previous, "id = ?", *previousWinningBidID).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("database error: %w", err)
				}
			} else if previous.BidderID != bidderID {
				if _, err := s.notifications.NotifyTx(tx, previous.BidderID,
					"You have been outbid",
					fmt.Sprintf("Your bid on '%s' was outbid. The highest bid is now $%.2f.", product.Title, amount),
					&product.ID, &bid.ID); err != nil {
					return err
				}
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return bid, nil
}

// GetAuction returns the auction read model with its full bid history,
// highest first.
func (s *AuctionService) GetAuction(productID uuid.UUID) (*AuctionDetail, error) {
	var product models.Product
	if err := s.db.Preload("Seller").Preload("Category").
		First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !product.IsAuction {
		return nil, apperrors.ErrNotAnAuction
	}

	var bids []models.Bid
	if err := s.db.Preload("Bidder").
		Where("product_id = ?", product.ID).
		Order("amount DESC").
		Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch bids: %w", err)
	}

	detail := &AuctionDetail{
		Product:  product,
		Bids:     bids,
		BidCount: int64(len(bids)),
		Status:   product.AuctionStatus(time.Now().UTC()),
	}

	if product.WinningBidID != nil {
		for i := range bids {
			if bids[i].ID == *product.WinningBidID {
				detail.WinningBid = &bids[i]
				break
			}
		}
	}

	return detail, nil
}

// GetProductBids returns the bid history for a product, newest first.
func (s *AuctionService) GetProductBids(productID uuid.UUID, params utils.PaginationParams) ([]models.Bid, int64, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.ErrProductNotFound
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	query := s.db.Model(&models.Bid{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bids: %w", err)
	}

	var bids []models.Bid
	if err := query.Preload("Bidder").
		Order("created_at DESC").
		Scopes(func(db *gorm.DB) *gorm.DB { return utils.ApplyPagination(db, params) }).
		Find(&bids).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bids: %w", err)
	}

	return bids, total, nil
}

// GetUserBids returns every bid the user has placed, newest first, each
// flagged with whether it still leads its auction.
func (s *AuctionService) GetUserBids(bidderID uuid.UUID, params utils.PaginationParams) ([]UserBid, int64, error) {
	query := s.db.Model(&models.Bid{}).Where("bidder_id = ?", bidderID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bids: %w", err)
	}

	var bids []models.Bid
	if err := query.Preload("Product").
		Order("created_at DESC").
		Scopes(func(db *gorm.DB) *gorm.DB { return utils.ApplyPagination(db, params) }).
		Find(&bids).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bids: %w", err)
	}

	userBids := make([]UserBid, 0, len(bids))
	for _, b := range bids {
		winning := b.Product.WinningBidID != nil && *b.Product.WinningBidID == b.ID
		userBids = append(userBids, UserBid{
			Bid:       b,
			Product:   b.Product,
			IsWinning: winning,
		})
	}

	return userBids, total, nil
}
