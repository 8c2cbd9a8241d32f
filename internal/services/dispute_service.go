// internal/services/dispute_service.go
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

// DisputeService manages disputes between users. Status never changes on its
// own; participants and admins move it explicitly.
type DisputeService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewDisputeService(db *gorm.DB, notifications *NotificationService) *DisputeService {
	return &DisputeService{
		db:            db,
		notifications: notifications,
	}
}

type CreateDisputeRequest struct {
	RespondentID string `json:"respondent_id" validate:"required,uuid"`
	ProductID    string `json:"product_id" validate:"omitempty,uuid"`
	Title        string `json:"title" validate:"required,min=3,max=255"`
	Description  string `json:"description" validate:"required,min=10"`
}

type UpdateDisputeRequest struct {
	Status      *string `json:"status"`
	Description *string `json:"description" validate:"omitempty,min=10"`
	AdminNotes  *string `json:"admin_notes"`
}

// Create opens a dispute and notifies the respondent.
func (s *DisputeService) Create(complainantID uuid.UUID, req *CreateDisputeRequest) (*models.Dispute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	respondentID, err := uuid.Parse(req.RespondentID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	if respondentID == complainantID {
		return nil, apperrors.ErrSelfDispute
	}

	var respondent models.User
	if err := s.db.First(&respondent, "id = ?", respondentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	dispute := &models.Dispute{
		ComplainantID: complainantID,
		RespondentID:  respondentID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        models.DisputeStatusOpen,
	}

	if req.ProductID != "" {
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, apperrors.ErrInvalidInput
		}
		var product models.Product
		if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrProductNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		dispute.ProductID = &productID
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dispute).Error; err != nil {
			return fmt.Errorf("failed to create dispute: %w", err)
		}
		_, err := s.notifications.NotifyTx(tx, respondentID,
			"Dispute filed against you",
			fmt.Sprintf("A dispute was filed against you: %s", req.Title),
			dispute.ProductID, nil)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	return dispute, nil
}

// ListForUser returns disputes the user participates in, either side, newest
// first.
func (s *DisputeService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Dispute, int64, error) {
	query := s.db.Model(&models.Dispute{}).
		Where("complainant_id = ? OR respondent_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count disputes: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var disputes []models.Dispute
	if err := query.Preload("Complainant").Preload("Respondent").Preload("Product").
		Find(&disputes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch disputes: %w", err)
	}

	return disputes, total, nil
}

// GetByID returns one dispute, restricted to its participants.
func (s *DisputeService) GetByID(disputeID, userID uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := s.db.Preload("Complainant").Preload("Respondent").Preload("Product").
		First(&dispute, "id = ?", disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDisputeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if dispute.ComplainantID != userID && dispute.RespondentID != userID {
		return nil, apperrors.ErrUnauthorized
	}

	return &dispute, nil
}

// Update lets a participant amend the description or move the status.
// Admin notes are rejected here; only the admin surface writes those.
func (s *DisputeService) Update(disputeID, userID uuid.UUID, req *UpdateDisputeRequest) (*models.Dispute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	if req.AdminNotes != nil {
		return nil, apperrors.ErrUnauthorized
	}

	var dispute models.Dispute
	if err := s.db.First(&dispute, "id = ?", disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDisputeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if dispute.ComplainantID != userID && dispute.RespondentID != userID {
		return nil, apperrors.ErrUnauthorized
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		status := models.DisputeStatus(*req.Status)
		if !status.Valid() {
			return nil, apperrors.ErrInvalidInput
		}
		updates["status"] = status
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(&dispute).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update dispute: %w", err)
		}
	}

	return &dispute, nil
}

// AdminList returns all disputes, optionally filtered by status.
func (s *DisputeService) AdminList(status string, params utils.PaginationParams) ([]models.Dispute, int64, error) {
	query := s.db.Model(&models.Dispute{})
	if status != "" {
		if !models.DisputeStatus(status).Valid() {
			return nil, 0, apperrors.ErrInvalidInput
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count disputes: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var disputes []models.Dispute
	if err := query.Preload("Complainant").Preload("Respondent").Preload("Product").
		Find(&disputes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch disputes: %w", err)
	}

	return disputes, total, nil
}

// AdminUpdate moves status and records admin notes, notifying both parties
// on resolution.
func (s *DisputeService) AdminUpdate(disputeID uuid.UUID, req *UpdateDisputeRequest) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := s.db.First(&dispute, "id = ?", disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDisputeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{}
	var resolved bool
	if req.Status != nil {
		status := models.DisputeStatus(*req.Status)
		if !status.Valid() {
			return nil, apperrors.ErrInvalidInput
		}
		updates["status"] = status
		resolved = status == models.DisputeStatusResolved || status == models.DisputeStatusClosed
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}

	if len(updates) == 0 {
		return &dispute, nil
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&dispute).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update dispute: %w", err)
		}
		if !resolved {
			return nil
		}
		for _, userID := range []uuid.UUID{dispute.ComplainantID, dispute.RespondentID} {
			if _, err := s.notifications.NotifyTx(tx, userID,
				"Dispute updated",
				fmt.Sprintf("The dispute '%s' has been %s.", dispute.Title, *req.Status),
				dispute.ProductID, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dispute, nil
}
