package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bidcore/models"
)

// Admission 是冪等檢查的結果
type Admission int

const (
	// AdmissionFresh 第一次看到這個事件，可以繼續處理
	AdmissionFresh Admission = iota
	// AdmissionDuplicate 重複投遞，應跳過處理並照常ack
	AdmissionDuplicate
)

// IdempotencyGuard 在任何狀態異動前攔下重複投遞的事件
// 依靠EventRecord主鍵的write-once插入做原子的check-and-insert，
// 即使多個consumer同時收到同一個事件，也只有一個會看到Fresh
type IdempotencyGuard struct {
	db *gorm.DB
}

func NewIdempotencyGuard(db *gorm.DB) *IdempotencyGuard {
	return &IdempotencyGuard{db: db}
}

// TryAdmit 原子性地檢查並登記事件ID
// 插入成功返回Fresh；主鍵衝突代表事件已處理過，返回Duplicate
func (g *IdempotencyGuard) TryAdmit(ctx context.Context, eventID string, auctionID uuid.UUID) (Admission, error) {
	const op = "IdempotencyGuard.TryAdmit"
	record := models.EventRecord{
		EventID:    eventID,
		AuctionID:  auctionID,
		ConsumedAt: time.Now(),
	}
	if result := g.db.WithContext(ctx).Create(&record); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return AdmissionDuplicate, nil
		}
		return AdmissionDuplicate, fmt.Errorf("[%s] Fail to insert event record, err=%w", op, result.Error)
	}
	return AdmissionFresh, nil
}

// WithTx 返回一個綁定指定交易的guard，讓check-and-insert與帳本異動同交易提交
func (g *IdempotencyGuard) WithTx(tx *gorm.DB) *IdempotencyGuard {
	return &IdempotencyGuard{db: tx}
}

// Prune 修剪超過重送窗口的事件紀錄
// 窗口內的紀錄絕不能刪，否則重送會被當成新事件
func (g *IdempotencyGuard) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	const op = "IdempotencyGuard.Prune"
	result := g.db.WithContext(ctx).Where("consumed_at < ?", olderThan).Delete(&models.EventRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("[%s] Fail to prune event records, err=%w", op, result.Error)
	}
	return result.RowsAffected, nil
}
