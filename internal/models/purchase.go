// internal/models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is created exactly once per settled auction or checked-out cart
// item; only its status advances afterwards.
type Purchase struct {
	BaseModel
	BuyerID         uuid.UUID      `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID        uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID      `json:"product_id" gorm:"type:uuid;not null;index"`
	Amount          float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status          PurchaseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	DeliveryAddress string         `json:"delivery_address" gorm:"size:255"`
	PurchaseDate    time.Time      `json:"purchase_date"`

	// Relationships
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller  User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
