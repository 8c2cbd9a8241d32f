// internal/services/message_service.go
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

// MessageService handles direct buyer/seller messaging, optionally anchored
// to a product listing.
type MessageService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewMessageService(db *gorm.DB, notifications *NotificationService) *MessageService {
	return &MessageService{
		db:            db,
		notifications: notifications,
	}
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	ProductID  string `json:"product_id" validate:"omitempty,uuid"`
	Body       string `json:"body" validate:"required,min=1,max=5000"`
}

// ConversationSummary is one row of the user's inbox: the counterparty, the
// latest message, and the unread count from them.
type ConversationSummary struct {
	Partner     models.User    `json:"partner"`
	LastMessage models.Message `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
}

// Send delivers a message and notifies the receiver.
func (s *MessageService) Send(senderID uuid.UUID, req *SendMessageRequest) (*models.Message, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	if receiverID == senderID {
		return nil, apperrors.ErrInvalidInput
	}

	var receiver models.User
	if err := s.db.First(&receiver, "id = ?", receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       req.Body,
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
		message.ProductID = &productID
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		var sender models.User
		if err := tx.First(&sender, "id = ?", senderID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		_, err := s.notifications.NotifyTx(tx, receiverID,
			"New message",
			fmt.Sprintf("You have a new message from %s.", sender.Username),
			message.ProductID, nil)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	return message, nil
}

// GetConversation returns the full thread between the user and a partner,
// oldest first, and marks the partner's messages read.
func (s *MessageService) GetConversation(userID, partnerID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	if err := s.db.Preload("Sender").Preload("Receiver").Preload("Product").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}

	if err := s.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
		Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("failed to mark conversation read: %w", err)
	}

	return messages, nil
}

// ListConversations returns the user's inbox, most recently active first.
func (s *MessageService) ListConversations(userID uuid.UUID) ([]ConversationSummary, error) {
	var messages []models.Message
	if err := s.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	// First message per partner is the latest, thanks to the ordering above.
	latest := make(map[uuid.UUID]models.Message)
	order := make([]uuid.UUID, 0)
	for _, m := range messages {
		partnerID := m.SenderID
		if partnerID == userID {
			partnerID = m.ReceiverID
		}
		if _, seen := latest[partnerID]; !seen {
			latest[partnerID] = m
			order = append(order, partnerID)
		}
	}

	summaries := make([]ConversationSummary, 0, len(order))
	for _, partnerID := range order {
		var partner models.User
		if err := s.db.First(&partner, "id = ?", partnerID).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}

		var unread int64
		if err := s.db.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
			Count(&unread).Error; err != nil {
			return nil, fmt.Errorf("failed to count unread messages: %w", err)
		}

		summaries = append(summaries, ConversationSummary{
			Partner:     partner,
			LastMessage: latest[partnerID],
			UnreadCount: unread,
		})
	}

	return summaries, nil
}
