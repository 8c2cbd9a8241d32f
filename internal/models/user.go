// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'user'"`
	FirstName    string     `json:"first_name" gorm:"size:50"`
	LastName     string     `json:"last_name" gorm:"size:50"`
	PhoneNumber  string     `json:"phone_number" gorm:"size:20"`
	Address      string     `json:"address" gorm:"size:255"`
	Rating       float64    `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalReviews int64      `json:"total_reviews" gorm:"default:0"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Products      []Product      `json:"products,omitempty" gorm:"foreignKey:SellerID"`
	Bids          []Bid          `json:"bids,omitempty" gorm:"foreignKey:BidderID"`
	Purchases     []Purchase     `json:"purchases,omitempty" gorm:"foreignKey:BuyerID"`
	Notifications []Notification `json:"notifications,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
