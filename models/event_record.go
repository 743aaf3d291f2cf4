package models

import (
	"time"

	"github.com/google/uuid"
)

// EventRecord 是冪等性帳本的一筆紀錄
// 以事件ID為主鍵做write-once插入，主鍵衝突即代表重複投遞
// 在上游重送窗口內不可刪除，超過窗口後由清理工作修剪
type EventRecord struct {
	EventID    string    `gorm:"type:text;primaryKey;<-:create"`
	AuctionID  uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	ConsumedAt time.Time `gorm:"not null;index;<-:create"`
}
