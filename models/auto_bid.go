package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AutoBid 代表一條「代替我出價到MaxAmount為止」的常駐指示
// MaxAmount對其他競標者永遠不可見；CurrentBidAmount <= MaxAmount為資料完整性不變式
type AutoBid struct {
	gorm.Model

	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;<-:create"`
	AuctionID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_auto_bids_auction_user,where:deleted_at IS NULL;<-:create"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_auto_bids_auction_user,where:deleted_at IS NULL;<-:create"`
	UserName         string     `gorm:"type:varchar(255);not null;<-:create"`
	MaxAmount        int64      `gorm:"type:bigint;not null"`
	CurrentBidAmount int64      `gorm:"type:bigint;not null"`
	IsActive         bool       `gorm:"type:boolean;not null"`
	LastBidAt        *time.Time

	// 外鍵關聯
	Auction *Auction `gorm:"foreignKey:AuctionID"`
}
