package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuctionStatus 代表拍賣的生命週期狀態
// 狀態來自拍賣列表服務的生命週期事件，核心只做投影不做管理
type AuctionStatus string

const (
	AuctionStatusLive     AuctionStatus = "live"
	AuctionStatusFinished AuctionStatus = "finished"
)

// Auction 代表競價核心所需的拍賣投影
// 只保留判斷出價合法性所需的欄位：賣家、底價、狀態
// 完整的拍賣資訊(標題、描述、圖片等)由拍賣列表服務持有
type Auction struct {
	gorm.Model

	ID           uuid.UUID     `gorm:"type:uuid;primaryKey;<-:create"`
	SellerID     uuid.UUID     `gorm:"type:uuid;not null;<-:create"`
	ReservePrice int64         `gorm:"type:bigint;not null;<-:create"`
	Status       AuctionStatus `gorm:"type:text;not null"`
	LiveAt       time.Time     `gorm:"not null;<-:create"`

	// 外鍵關聯
	BidRecords []Bid     `gorm:"foreignKey:AuctionID"`
	AutoBids   []AutoBid `gorm:"foreignKey:AuctionID"`
}
