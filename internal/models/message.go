// internal/models/message.go
package models

import "github.com/google/uuid"

type Message struct {
	BaseModel
	SenderID   uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null;index"`
	ReceiverID uuid.UUID  `json:"receiver_id" gorm:"type:uuid;not null;index"`
	ProductID  *uuid.UUID `json:"product_id" gorm:"type:uuid;index"`
	Body       string     `json:"body" gorm:"type:text;not null"`
	IsRead     bool       `json:"is_read" gorm:"default:false;index"`

	// Relationships
	Sender   User     `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver User     `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	Product  *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
