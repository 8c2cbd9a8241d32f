// internal/models/bid.go
package models

import "github.com/google/uuid"

// Bid is append-only: rows are created on placement and never edited. They are
// removed only by cascade when the product is deleted.
type Bid struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	BidderID  uuid.UUID `json:"bidder_id" gorm:"type:uuid;not null;index"`
	Amount    float64   `json:"amount" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Bidder  User    `json:"bidder,omitempty" gorm:"foreignKey:BidderID"`
}
