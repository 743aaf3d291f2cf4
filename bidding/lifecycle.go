package bidding

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bidcore/events"
	"bidcore/models"
)

// ApplyLifecycle 將上游拍賣列表服務的生命週期事件套用到本地投影
//
// 去重登記與投影異動在同一個交易內提交，所以at-least-once的stream
// 投遞在這裡收斂成exactly-once的狀態變化。重複投遞會被guard攔下，
// 呼叫端照常ack即可
func (l *Ledger) ApplyLifecycle(ctx context.Context, event events.LifecycleEvent) error {
	const op = "Ledger.ApplyLifecycle"

	if err := event.Validate(); err != nil {
		return fmt.Errorf("[%s] Invalid lifecycle event, err=%w", op, err)
	}

	var duplicated bool
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admission, err := l.guard.WithTx(tx).TryAdmit(ctx, event.EventID, event.AuctionID)
		if err != nil {
			return err
		}
		if admission == AdmissionDuplicate {
			duplicated = true
			return nil
		}

		switch event.Kind {
		case events.LifecycleAuctionLive:
			auction := models.Auction{
				ID:           event.AuctionID,
				SellerID:     event.SellerID,
				ReservePrice: event.ReservePrice,
				Status:       models.AuctionStatusLive,
				LiveAt:       l.options.now(),
			}
			// 上游重開同一場拍賣時以最新的事件內容為準
			if result := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&auction); result.Error != nil {
				return fmt.Errorf("fail to upsert auction projection, err=%w", result.Error)
			}
		case events.LifecycleAuctionFinished:
			result := tx.Model(&models.Auction{}).
				Where("id = ?", event.AuctionID).
				Update("status", models.AuctionStatusFinished)
			if result.Error != nil {
				return fmt.Errorf("fail to finish auction projection, err=%w", result.Error)
			}
			// 沒見過AuctionLive就收到Finished：僅留下紀錄，之後的出價自然被拒
			if result.RowsAffected == 0 {
				l.logger.Warn("Finished event for unknown auction", slog.String("auctionID", event.AuctionID.String()))
			}
			// 剩餘的自動出價指示一併停用，結束後不再有任何反應
			if result := tx.Model(&models.AutoBid{}).
				Where("auction_id = ? AND is_active = ?", event.AuctionID, true).
				Update("is_active", false); result.Error != nil {
				return fmt.Errorf("fail to deactivate auto bids, err=%w", result.Error)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to apply lifecycle event, err=%w", op, err)
	}

	if duplicated {
		l.logger.Info("Skip duplicated lifecycle event", slog.String("eventID", event.EventID))
		return nil
	}
	l.logger.Info("Lifecycle event applied",
		slog.String("eventID", event.EventID),
		slog.String("kind", string(event.Kind)),
		slog.String("auctionID", event.AuctionID.String()),
	)
	return nil
}
