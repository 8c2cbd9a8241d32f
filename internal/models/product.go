// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	SellerID    uuid.UUID        `json:"seller_id" gorm:"type:uuid;not null;index"`
	CategoryID  uuid.UUID        `json:"category_id" gorm:"type:uuid;not null;index"`
	Title       string           `json:"title" gorm:"size:255;not null"`
	Description string           `json:"description" gorm:"type:text;not null"`
	Condition   ProductCondition `json:"condition" gorm:"type:varchar(20);not null"`
	Price       float64          `json:"price" gorm:"type:decimal(10,2);not null"`
	Images      pq.StringArray   `json:"images" gorm:"type:text[]"`
	Location    string           `json:"location" gorm:"size:100"`
	Brand       string           `json:"brand" gorm:"size:100"`
	Model       string           `json:"model" gorm:"size:100"`
	Material    string           `json:"material" gorm:"size:100"`
	Views       int64            `json:"views" gorm:"default:0"`
	IsSold      bool             `json:"is_sold" gorm:"default:false;index"`
	IsActive    bool             `json:"is_active" gorm:"default:true;index"`

	// Auction fields. For an auction listing Price is the starting price.
	// CurrentBid is 0 until the first accepted bid, after which it always
	// equals the amount of the bid referenced by WinningBidID.
	IsAuction      bool       `json:"is_auction" gorm:"default:false;index"`
	MinimumBid     float64    `json:"minimum_bid" gorm:"type:decimal(10,2);default:0"`
	ReservePrice   *float64   `json:"reserve_price" gorm:"type:decimal(10,2)"`
	CurrentBid     float64    `json:"current_bid" gorm:"type:decimal(10,2);default:0"`
	AuctionEndTime *time.Time `json:"auction_end_time" gorm:"index"`
	WinningBidID   *uuid.UUID `json:"winning_bid_id" gorm:"type:uuid"`

	// Relationships
	Seller     User      `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Category   Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Bids       []Bid     `json:"bids,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	WinningBid *Bid      `json:"winning_bid,omitempty" gorm:"foreignKey:WinningBidID"`
}

// AuctionStatus derives the lifecycle state from the end time.
func (p *Product) AuctionStatus(now time.Time) AuctionStatus {
	if p.AuctionEndTime != nil && now.Before(*p.AuctionEndTime) {
		return AuctionStatusActive
	}
	return AuctionStatusEnded
}
