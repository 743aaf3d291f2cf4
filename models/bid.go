package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BidOrigin 區分出價的來源
type BidOrigin string

const (
	// BidOriginManual 使用者親自送出的出價
	BidOriginManual BidOrigin = "manual"
	// BidOriginProxy 系統代替自動出價指示合成的出價
	BidOriginProxy BidOrigin = "proxy"
)

// BidStatus 代表出價的最終狀態，一旦寫入就不再變動
// 唯一的例外是 Accepted -> Retracted (管理性撤回)
type BidStatus string

const (
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusRetracted BidStatus = "retracted"
)

// Bid 代表拍賣商品的出價紀錄
// 帳本是append-only的：被拒絕或撤回的出價會留下稽核紀錄，不做實體刪除
type Bid struct {
	*gorm.Model

	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;<-:create"`
	AuctionID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_bids_auction_bid_time;<-:create"`
	BidderID   uuid.UUID  `gorm:"type:uuid;not null;<-:create"`
	BidderName string     `gorm:"type:varchar(255);not null;<-:create"`
	Amount     int64      `gorm:"type:bigint;not null;<-:create"`
	Origin     BidOrigin  `gorm:"type:text;not null;<-:create"`
	Status     BidStatus  `gorm:"type:text;not null"`
	Reason     string     `gorm:"type:text;not null;default:''"`
	BidTime    time.Time  `gorm:"not null;index:idx_bids_auction_bid_time;<-:create"`
	RequestID  *string    `gorm:"type:text;uniqueIndex:idx_bids_request_id,where:request_id IS NOT NULL;<-:create"`
	AutoBidID  *uuid.UUID `gorm:"type:uuid;<-:create"`

	// 外鍵關聯
	Auction *Auction `gorm:"foreignKey:AuctionID"`
	AutoBid *AutoBid `gorm:"foreignKey:AutoBidID"`
}
