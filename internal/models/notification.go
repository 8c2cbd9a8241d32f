// internal/models/notification.go
package models

import "github.com/google/uuid"

// Notification rows are created by domain events and mutated only to flip
// IsRead.
type Notification struct {
	BaseModel
	UserID           uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title            string     `json:"title" gorm:"size:255;not null"`
	Message          string     `json:"message" gorm:"type:text;not null"`
	RelatedProductID *uuid.UUID `json:"related_product_id" gorm:"type:uuid;index"`
	RelatedBidID     *uuid.UUID `json:"related_bid_id" gorm:"type:uuid"`
	IsRead           bool       `json:"is_read" gorm:"default:false;index"`

	// Relationships
	User           User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	RelatedProduct *Product `json:"related_product,omitempty" gorm:"foreignKey:RelatedProductID"`
	RelatedBid     *Bid     `json:"related_bid,omitempty" gorm:"foreignKey:RelatedBidID"`
}
