// internal/models/category.go
package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string     `json:"name" gorm:"uniqueIndex;size:50;not null"`
	Description string     `json:"description" gorm:"size:200"`
	ParentID    *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`

	// Relationships
	Parent        *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Subcategories []Category `json:"subcategories,omitempty" gorm:"foreignKey:ParentID"`
	Products      []Product  `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}
