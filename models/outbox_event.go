package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OutboxEvent 代表一筆待發布的對外事件
// 與觸發它的出價交易一起寫入，保證「帳本異動」與「事件排隊」的原子性
// relay worker之後以at-least-once語義發布到Redis stream並標記PublishedAt
type OutboxEvent struct {
	gorm.Model

	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;<-:create"`
	EventID     string     `gorm:"type:text;not null;unique;<-:create"`
	AuctionID   uuid.UUID  `gorm:"type:uuid;not null;<-:create"`
	Kind        string     `gorm:"type:text;not null;<-:create"`
	Payload     []byte     `gorm:"type:bytea;not null;<-:create"`
	PublishedAt *time.Time `gorm:"index"`
}
