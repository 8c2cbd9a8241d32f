// internal/services/sweep_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/config"
	"github.com/ecofinds/ecofinds-backend/internal/models"
)

// SweepService runs the periodic auction sweeps: one warns bidders of
// auctions closing within the next window, the other announces outcomes of
// auctions that just ended. Sweeps only write notifications; settlement stays
// a seller action.
type SweepService struct {
	db            *gorm.DB
	notifications *NotificationService
	cfg           config.SweepConfig
	logger        *logrus.Logger
}

func NewSweepService(db *gorm.DB, notifications *NotificationService, cfg config.SweepConfig, logger *logrus.Logger) *SweepService {
	return &SweepService{
		db:            db,
		notifications: notifications,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start launches both sweep loops. They stop when ctx is cancelled.
func (s *SweepService) Start(ctx context.Context) {
	go s.run(ctx, "ending_soon", time.Duration(s.cfg.EndingSoonInterval)*time.Minute, func(now time.Time) (int, error) {
		return s.SweepEndingSoon(now)
	})
	go s.run(ctx, "ended", time.Duration(s.cfg.EndedInterval)*time.Minute, func(now time.Time) (int, error) {
		return s.SweepEnded(now)
	})
}

func (s *SweepService) run(ctx context.Context, name string, interval time.Duration, sweep func(time.Time) (int, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.WithFields(logrus.Fields{
		"sweep":    name,
		"interval": interval.String(),
	}).Info("Auction sweep started")

	for {
		select {
		case <-ctx.Done():
			s.logger.WithField("sweep", name).Info("Auction sweep stopped")
			return
		case now := <-ticker.C:
			notified, err := sweep(now.UTC())
			if err != nil {
				s.logger.WithError(err).WithField("sweep", name).Error("Auction sweep failed")
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"sweep":    name,
				"notified": notified,
			}).Info("Auction sweep completed")
		}
	}
}

// SweepEndingSoon notifies every bidder on auctions that end within the
// configured window. Each run notifies again; there is no dedup across runs.
// Returns the number of notifications written.
func (s *SweepService) SweepEndingSoon(now time.Time) (int, error) {
	window := time.Duration(s.cfg.EndingSoonWindow) * time.Hour

	var auctions []models.Product
	if err := s.db.
		Where("is_auction = ? AND auction_end_time > ? AND auction_end_time <= ?", true, now, now.Add(window)).
		Find(&auctions).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch ending auctions: %w", err)
	}

	notified := 0
	for i := range auctions {
		product := &auctions[i]

		var bidderIDs []string
		if err := s.db.Model(&models.Bid{}).
			Where("product_id = ?", product.ID).
			Distinct("bidder_id").
			Pluck("bidder_id", &bidderIDs).Error; err != nil {
			s.logger.WithError(err).WithField("product_id", product.ID).
				Error("Failed to fetch bidders for ending auction")
			continue
		}

		remaining := product.AuctionEndTime.Sub(now).Round(time.Minute)
		for _, raw := range bidderIDs {
			bidderID, err := uuid.Parse(raw)
			if err != nil {
				s.logger.WithError(err).WithField("bidder_id", raw).Warn("Skipping malformed bidder id")
				continue
			}
			if _, err := s.notifications.Notify(bidderID,
				"Auction ending soon",
				fmt.Sprintf("The auction for '%s' ends in %s. Current highest bid: $%.2f.", product.Title, remaining, product.CurrentBid),
				&product.ID, nil); err != nil {
				s.logger.WithError(err).WithField("product_id", product.ID).
					Error("Failed to notify bidder of ending auction")
				continue
			}
			notified++
		}
	}

	return notified, nil
}

// SweepEnded announces outcomes for auctions whose end time fell inside the
// lookback window: the seller always hears, the winning bidder is
// congratulated, and every other bidder learns they lost.
func (s *SweepService) SweepEnded(now time.Time) (int, error) {
	lookback := time.Duration(s.cfg.EndedLookback) * time.Minute

	var auctions []models.Product
	if err := s.db.
		Where("is_auction = ? AND auction_end_time <= ? AND auction_end_time > ?", true, now, now.Add(-lookback)).
		Find(&auctions).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch ended auctions: %w", err)
	}

	notified := 0
	for i := range auctions {
		n, err := s.announceOutcome(&auctions[i])
		if err != nil {
			s.logger.WithError(err).WithField("product_id", auctions[i].ID).
				Error("Failed to announce auction outcome")
			continue
		}
		notified += n
	}

	return notified, nil
}

func (s *SweepService) announceOutcome(product *models.Product) (int, error) {
	notified := 0

	sellerMsg := fmt.Sprintf("Your auction for '%s' has ended with no bids.", product.Title)
	if product.CurrentBid > 0 {
		sellerMsg = fmt.Sprintf("Your auction for '%s' has ended. Final bid: $%.2f. Confirm the sale to complete it.", product.Title, product.CurrentBid)
	}
	if _, err := s.notifications.Notify(product.SellerID,
		"Your auction has ended", sellerMsg, &product.ID, nil); err != nil {
		return notified, err
	}
	notified++

	if product.WinningBidID == nil {
		return notified, nil
	}

	var winningBid models.Bid
	if err := s.db.First(&winningBid, "id = ?", *product.WinningBidID).Error; err != nil {
		return notified, fmt.Errorf("failed to fetch winning bid: %w", err)
	}

	if _, err := s.notifications.Notify(winningBid.BidderID,
		"You won the auction!",
		fmt.Sprintf("Your bid of $%.2f on '%s' was the highest when the auction ended. Await the seller's confirmation.", winningBid.Amount, product.Title),
		&product.ID, &winningBid.ID); err != nil {
		return notified, err
	}
	notified++

	var loserIDs []string
	if err := s.db.Model(&models.Bid{}).
		Where("product_id = ? AND bidder_id != ?", product.ID, winningBid.BidderID).
		Distinct("bidder_id").
		Pluck("bidder_id", &loserIDs).Error; err != nil {
		return notified, fmt.Errorf("failed to fetch losing bidders: %w", err)
	}

	for _, raw := range loserIDs {
		loserID, err := uuid.Parse(raw)
		if err != nil {
			s.logger.WithError(err).WithField("bidder_id", raw).Warn("Skipping malformed bidder id")
			continue
		}
		if _, err := s.notifications.Notify(loserID,
			"Auction ended",
			fmt.Sprintf("The auction for '%s' has ended. Your bid was not the highest.", product.Title),
			&product.ID, nil); err != nil {
			s.logger.WithError(err).WithField("product_id", product.ID).
				Error("Failed to notify losing bidder")
			continue
		}
		notified++
	}

	return notified, nil
}
