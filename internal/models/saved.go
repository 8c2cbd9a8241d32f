// internal/models/saved.go
package models

import "github.com/google/uuid"

// SavedItem is a bookmark on a listing. One row per user and product.
type SavedItem struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_saved_items_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_saved_items_user_product"`

	// Relationships
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// SavedSearch keeps a named search query with its filter set for re-running
// from the client.
type SavedSearch struct {
	BaseModel
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name    string    `json:"name" gorm:"size:100;not null"`
	Query   string    `json:"query" gorm:"size:200"`
	Filters JSONB     `json:"filters" gorm:"type:jsonb"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// PriceAlert fires a notification when a listing's price drops to or below
// the target. One alert per user and product.
type PriceAlert struct {
	BaseModel
	UserID      uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_price_alerts_user_product"`
	ProductID   uuid.UUID   `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_price_alerts_user_product"`
	TargetPrice float64     `json:"target_price" gorm:"not null"`
	Status      AlertStatus `json:"status" gorm:"size:20;default:'active'"`

	// Relationships
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
