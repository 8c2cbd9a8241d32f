// internal/models/dispute.go
package models

import "github.com/google/uuid"

// Dispute status only moves through explicit user or admin action; there are
// no automatic transitions.
type Dispute struct {
	BaseModel
	ComplainantID uuid.UUID     `json:"complainant_id" gorm:"type:uuid;not null;index"`
	RespondentID  uuid.UUID     `json:"respondent_id" gorm:"type:uuid;not null;index"`
	ProductID     *uuid.UUID    `json:"product_id" gorm:"type:uuid;index"`
	Title         string        `json:"title" gorm:"size:255;not null"`
	Description   string        `json:"description" gorm:"type:text;not null"`
	Status        DisputeStatus `json:"status" gorm:"type:varchar(20);default:'open';index"`
	AdminNotes    string        `json:"admin_notes,omitempty" gorm:"type:text"`

	// Relationships
	Complainant User     `json:"complainant,omitempty" gorm:"foreignKey:ComplainantID"`
	Respondent  User     `json:"respondent,omitempty" gorm:"foreignKey:RespondentID"`
	Product     *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
