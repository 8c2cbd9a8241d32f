// internal/models/review.go
package models

import "github.com/google/uuid"

type Review struct {
	BaseModel
	ReviewerID uuid.UUID  `json:"reviewer_id" gorm:"type:uuid;not null;index"`
	RevieweeID uuid.UUID  `json:"reviewee_id" gorm:"type:uuid;not null;index"`
	ProductID  *uuid.UUID `json:"product_id" gorm:"type:uuid;index"`
	Rating     int        `json:"rating" gorm:"not null"`
	Comment    string     `json:"comment" gorm:"type:text"`

	// Relationships
	Reviewer User     `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Reviewee User     `json:"reviewee,omitempty" gorm:"foreignKey:RevieweeID"`
	Product  *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
