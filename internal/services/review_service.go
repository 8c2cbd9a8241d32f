// internal/services/review_service.go
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

// ReviewService gates reviews behind a completed purchase between the two
// parties and keeps the reviewee's rating aggregate in step with the rows.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

type CreateReviewRequest struct {
	RevieweeID string `json:"reviewee_id" validate:"required,uuid"`
	ProductID  string `json:"product_id" validate:"omitempty,uuid"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

// Create stores a review and recomputes the reviewee's aggregate inside one
// transaction. A reviewer gets one review per counterparty per product.
func (s *ReviewService) Create(reviewerID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	revieweeID, err := uuid.Parse(req.RevieweeID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	if revieweeID == reviewerID {
		return nil, apperrors.ErrInvalidInput
	}

	var productID *uuid.UUID
	if req.ProductID != "" {
		parsed, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, apperrors.ErrInvalidInput
		}
		productID = &parsed
	}

	var review *models.Review
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		completed := tx.Model(&models.Purchase{}).
			Where("status = ?", models.PurchaseStatusCompleted).
			Where("(buyer_id = ? AND seller_id = ?) OR (buyer_id = ? AND seller_id = ?)",
				reviewerID, revieweeID, revieweeID, reviewerID)
		if productID != nil {
			completed = completed.Where("product_id = ?", *productID)
		}

		var count int64
		if err := completed.Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			return apperrors.ErrNoCompletedOrder
		}

		duplicate := tx.Model(&models.Review{}).
			Where("reviewer_id = ? AND reviewee_id = ?", reviewerID, revieweeID)
		if productID != nil {
			duplicate = duplicate.Where("product_id = ?", *productID)
		} else {
			duplicate = duplicate.Where("product_id IS NULL")
		}
		if err := duplicate.Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateReview
		}

		review = &models.Review{
			ReviewerID: reviewerID,
			RevieweeID: revieweeID,
			ProductID:  productID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		return s.recomputeAggregate(tx, revieweeID)
	})

	if txErr != nil {
		return nil, txErr
	}
	return review, nil
}

// ListForUser returns reviews received by a user, newest first.
func (s *ReviewService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Where("reviewee_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Preload("Reviewer").Preload("Product").
		Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

// Delete removes the reviewer's own review and recomputes the aggregate.
func (s *ReviewService) Delete(reviewID, reviewerID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Where("id = ? AND reviewer_id = ?", reviewID, reviewerID).
			First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrReviewNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		revieweeID := review.RevieweeID
		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		return s.recomputeAggregate(tx, revieweeID)
	})
}

func (s *ReviewService) recomputeAggregate(tx *gorm.DB, userID uuid.UUID) error {
	type aggregate struct {
		Avg   float64
		Total int64
	}
	var agg aggregate
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Where("reviewee_id = ?", userID).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"rating":        agg.Avg,
			"total_reviews": agg.Total,
		}).Error; err != nil {
		return fmt.Errorf("failed to update rating aggregate: %w", err)
	}

	return nil
}
