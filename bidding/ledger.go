package bidding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bidcore/events"
	"bidcore/models"
)

// RejectReason 是出價被拒絕時記錄在稽核列與事件中的原因代碼
type RejectReason string

const (
	RejectAuctionNotLive  RejectReason = "AuctionNotLive"
	RejectBidTooLow       RejectReason = "BidTooLow"
	RejectSellerCannotBid RejectReason = "SellerCannotBid"
)

// BidResult 是一次出價admission的最終結果
// 重送同一個requestID會得到與第一次完全相同的結果(Replayed=true)
type BidResult struct {
	BidID    uuid.UUID
	Accepted bool
	Amount   int64
	BidTime  time.Time
	// Reason 拒絕原因，接受時為空
	Reason RejectReason
	// MinimumNext 被以BidTooLow拒絕時，取得領先所需的最低出價
	MinimumNext int64
	// LeaderID / CurrentPrice 連鎖反應靜止後的領先者與目前價格
	LeaderID     uuid.UUID
	LeaderAmount int64
	// Replayed 此結果是否為冪等重放
	Replayed bool
}

// AutoBidResult 是註冊或調高自動出價上限的結果
type AutoBidResult struct {
	AutoBidID uuid.UUID
	MaxAmount int64
	IsActive  bool
	// LeaderID / LeaderAmount 註冊後連鎖反應靜止的領先狀態
	LeaderID     uuid.UUID
	LeaderAmount int64
}

type ledgerOptions struct {
	logger *slog.Logger
	now    func() time.Time
}

type LedgerOption func(*ledgerOptions)

// WithLedgerLogger 設置日誌記錄器
func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(o *ledgerOptions) {
		o.logger = logger
	}
}

// WithLedgerClock 注入時鐘 (主要用於測試)
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(o *ledgerOptions) {
		o.now = now
	}
}

// Ledger 是單一拍賣出價歷史的唯一真相來源，也是admission的交易邊界
//
// 同一拍賣的所有異動都經過locker序列化後在單一交易內完成：
// 出價列、整條連鎖反應的代理出價、自動出價狀態與結果事件的outbox列
// 要嘛全部落地，要嘛全部不落地，不存在半途而廢的連鎖
type Ledger struct {
	db      *gorm.DB
	locker  IAuctionLocker
	guard   *IdempotencyGuard
	logger  *slog.Logger
	options ledgerOptions
}

func NewLedger(db *gorm.DB, locker IAuctionLocker, opts ...LedgerOption) (*Ledger, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if locker == nil {
		return nil, errors.New("locker cannot be nil")
	}

	// 默認選項
	options := ledgerOptions{
		logger: slog.Default(),
		now:    time.Now,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &Ledger{
		db:      db,
		locker:  locker,
		guard:   NewIdempotencyGuard(db),
		logger:  options.logger.With(slog.String("caller", "Ledger")),
		options: options,
	}, nil
}

// Guard 返回帳本使用的冪等防護，供生命週期consumer共用
func (l *Ledger) Guard() *IdempotencyGuard {
	return l.guard
}

// PlaceBid 處理一筆手動出價的admission
//
// 驗證失敗(拍賣非進行中、賣家出價、金額不足)不是error：會留下Rejected
// 稽核列、排入BidRejected事件，並在結果中攜帶原因。只有基礎設施問題
// (鎖逾時、資料庫異常)才以error返回
func (l *Ledger) PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, bidderName string, amount int64, requestID string) (BidResult, error) {
	const op = "Ledger.PlaceBid"

	// 取得該拍賣的排他區段，限時內拿不到就回報ErrBusy讓呼叫端退避重試
	lockCtx, release, err := l.locker.Acquire(ctx, auctionID)
	if err != nil {
		return BidResult{}, fmt.Errorf("[%s] Fail to acquire auction lock, err=%w", op, err)
	}
	defer release()

	// 冪等重放：同一個requestID直接回放第一次的結果，不再驗證也不再記帳
	if replayed, ok, err := l.replayResult(lockCtx, requestID); err != nil {
		return BidResult{}, fmt.Errorf("[%s] Fail to look up request, err=%w", op, err)
	} else if ok {
		l.logger.Info("Replay duplicate bid request", slog.String("requestID", requestID))
		return replayed, nil
	}

	auction, err := l.loadAuction(lockCtx, auctionID)
	if err != nil {
		return BidResult{}, fmt.Errorf("[%s] Fail to load auction, err=%w", op, err)
	}

	now := l.options.now()
	attempt := models.Bid{
		ID:         uuid.New(),
		AuctionID:  auctionID,
		BidderID:   bidderID,
		BidderName: bidderName,
		Amount:     amount,
		Origin:     models.BidOriginManual,
		BidTime:    now,
		RequestID:  &requestID,
	}

	// 驗證：拍賣進行中、非賣家、金額達到最低加價
	var reason RejectReason
	var standing Standing
	switch {
	case auction == nil || auction.Status != models.AuctionStatusLive:
		reason = RejectAuctionNotLive
	case auction.SellerID == bidderID:
		reason = RejectSellerCannotBid
	default:
		acceptedBids, err := l.loadAcceptedBids(lockCtx, auctionID)
		if err != nil {
			return BidResult{}, fmt.Errorf("[%s] Fail to load bids, err=%w", op, err)
		}
		standing = ResolveStanding(acceptedBids, auction.ReservePrice)
		if amount < standing.MinimumNext {
			reason = RejectBidTooLow
		}
	}

	if reason != "" {
		if auction == nil {
			// 連拍賣投影都不存在時沒有可掛載稽核列的對象，只發事件
			return l.rejectWithoutAudit(lockCtx, attempt, reason)
		}
		return l.reject(lockCtx, attempt, reason, standing.MinimumNext)
	}

	// admission成立：寫入出價並讓連鎖反應跑到靜止
	attempt.Status = models.BidStatusAccepted
	autoBids, err := l.loadAutoBids(lockCtx, auctionID)
	if err != nil {
		return BidResult{}, fmt.Errorf("[%s] Fail to load auto bids, err=%w", op, err)
	}
	cascade := RunCascade(CascadeInput{
		AuctionID:    auctionID,
		ReservePrice: auction.ReservePrice,
		Trigger:      &attempt,
		AutoBids:     autoBids,
		Now:          now,
	})

	batch := l.outcomeBatch(auctionID, &attempt, standing.Leader, cascade)
	if err := l.commitCascade(lockCtx, []models.Bid{attempt}, cascade, batch); err != nil {
		return BidResult{}, fmt.Errorf("[%s] Fail to commit bid, err=%w", op, err)
	}

	l.logger.Info("Bid accepted",
		slog.String("auctionID", auctionID.String()),
		slog.String("bidderID", bidderID.String()),
		slog.Int64("amount", amount),
		slog.Int("proxyBids", len(cascade.ProxyBids)),
	)
	return BidResult{
		BidID:        attempt.ID,
		Accepted:     true,
		Amount:       amount,
		BidTime:      now,
		LeaderID:     cascade.Leader.ID,
		LeaderAmount: cascade.Leader.Amount,
	}, nil
}

// RegisterAutoBid 登錄新的自動出價指示，或調高既有指示的上限
// 上限只允許調高；調高已停用的指示會重新啟用它
// 登錄後立刻以既有領先出價為觸發跑連鎖反應，落後的指示當場反應
func (l *Ledger) RegisterAutoBid(ctx context.Context, auctionID, userID uuid.UUID, userName string, maxAmount int64) (AutoBidResult, error) {
	const op = "Ledger.RegisterAutoBid"

	lockCtx, release, err := l.locker.Acquire(ctx, auctionID)
	if err != nil {
		return AutoBidResult{}, fmt.Errorf("[%s] Fail to acquire auction lock, err=%w", op, err)
	}
	defer release()

	auction, err := l.loadAuction(lockCtx, auctionID)
	if err != nil {
		return AutoBidResult{}, fmt.Errorf("[%s] Fail to load auction, err=%w", op, err)
	}
	if auction == nil || auction.Status != models.AuctionStatusLive {
		return AutoBidResult{}, ErrAuctionNotLive
	}
	if auction.SellerID == userID {
		return AutoBidResult{}, ErrSellerCannotBid
	}

	now := l.options.now()
	autoBids, err := l.loadAutoBids(lockCtx, auctionID)
	if err != nil {
		return AutoBidResult{}, fmt.Errorf("[%s] Fail to load auto bids, err=%w", op, err)
	}

	var target *models.AutoBid
	for i := range autoBids {
		if autoBids[i].UserID == userID {
			target = &autoBids[i]
			break
		}
	}
	if target != nil {
		if maxAmount < target.MaxAmount {
			return AutoBidResult{}, ErrCeilingNotRaised
		}
		target.MaxAmount = maxAmount
		target.IsActive = true
	} else {
		autoBids = append(autoBids, models.AutoBid{
			Model:     gorm.Model{CreatedAt: now},
			ID:        uuid.New(),
			AuctionID: auctionID,
			UserID:    userID,
			UserName:  userName,
			MaxAmount: maxAmount,
			IsActive:  true,
		})
		target = &autoBids[len(autoBids)-1]
	}
	targetID := target.ID

	acceptedBids, err := l.loadAcceptedBids(lockCtx, auctionID)
	if err != nil {
		return AutoBidResult{}, fmt.Errorf("[%s] Fail to load bids, err=%w", op, err)
	}
	standing := ResolveStanding(acceptedBids, auction.ReservePrice)

	cascade := RunCascade(CascadeInput{
		AuctionID:    auctionID,
		ReservePrice: auction.ReservePrice,
		Trigger:      standing.Leader,
		AutoBids:     autoBids,
		Now:          now,
	})

	batch := l.outcomeBatch(auctionID, nil, standing.Leader, cascade)
	if err := l.commitCascade(lockCtx, nil, cascade, batch); err != nil {
		return AutoBidResult{}, fmt.Errorf("[%s] Fail to commit auto bid, err=%w", op, err)
	}

	result := AutoBidResult{AutoBidID: targetID}
	for _, ab := range cascade.AutoBids {
		if ab.ID == targetID {
			result.MaxAmount = ab.MaxAmount
			result.IsActive = ab.IsActive
		}
	}
	if cascade.Leader != nil {
		result.LeaderID = cascade.Leader.ID
		result.LeaderAmount = cascade.Leader.Amount
	}
	l.logger.Info("Auto bid registered",
		slog.String("auctionID", auctionID.String()),
		slog.String("userID", userID.String()),
		slog.Int("proxyBids", len(cascade.ProxyBids)),
	)
	return result, nil
}

// CancelAutoBid 由持有者停用自動出價指示
// 歷史上已合成的代理出價維持不動，只是不再有後續反應
func (l *Ledger) CancelAutoBid(ctx context.Context, autoBidID, userID uuid.UUID) error {
	const op = "Ledger.CancelAutoBid"

	var autoBid models.AutoBid
	if result := l.db.WithContext(ctx).First(&autoBid, "id = ?", autoBidID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrAutoBidNotFound
		}
		return fmt.Errorf("[%s] Fail to load auto bid, err=%w", op, result.Error)
	}
	if autoBid.UserID != userID {
		return ErrAutoBidNotFound
	}

	lockCtx, release, err := l.locker.Acquire(ctx, autoBid.AuctionID)
	if err != nil {
		return fmt.Errorf("[%s] Fail to acquire auction lock, err=%w", op, err)
	}
	defer release()

	if result := l.db.WithContext(lockCtx).Model(&autoBid).Update("is_active", false); result.Error != nil {
		return fmt.Errorf("[%s] Fail to cancel auto bid, err=%w", op, result.Error)
	}
	l.logger.Info("Auto bid cancelled", slog.String("autoBidID", autoBidID.String()))
	return nil
}

// RetractBid 管理/合規路徑：將Accepted出價標記為Retracted並重算領先者
// 被拒絕的出價永遠不會因此復活，帳本列也不做實體刪除
func (l *Ledger) RetractBid(ctx context.Context, bidID uuid.UUID, reason string) error {
	const op = "Ledger.RetractBid"

	var bid models.Bid
	if result := l.db.WithContext(ctx).First(&bid, "id = ?", bidID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrBidNotFound
		}
		return fmt.Errorf("[%s] Fail to load bid, err=%w", op, result.Error)
	}
	if bid.Status != models.BidStatusAccepted {
		return ErrBidNotFound
	}

	lockCtx, release, err := l.locker.Acquire(ctx, bid.AuctionID)
	if err != nil {
		return fmt.Errorf("[%s] Fail to acquire auction lock, err=%w", op, err)
	}
	defer release()

	auction, err := l.loadAuction(lockCtx, bid.AuctionID)
	if err != nil {
		return fmt.Errorf("[%s] Fail to load auction, err=%w", op, err)
	}

	return l.db.WithContext(lockCtx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Model(&models.Bid{}).Where("id = ?", bidID).
			Updates(map[string]any{"status": models.BidStatusRetracted, "reason": reason}); result.Error != nil {
			return fmt.Errorf("fail to retract bid, err=%w", result.Error)
		}

		// 從剩餘歷史確定性地重算領先者
		var remaining []models.Bid
		if result := tx.Where("auction_id = ? AND status = ?", bid.AuctionID, models.BidStatusAccepted).
			Find(&remaining); result.Error != nil {
			return fmt.Errorf("fail to load remaining bids, err=%w", result.Error)
		}
		var reserve int64
		if auction != nil {
			reserve = auction.ReservePrice
		}
		standing := ResolveStanding(remaining, reserve)
		if standing.Leader == nil {
			return nil
		}
		event := events.OutcomeEvent{
			EventID:     events.NewEventID(),
			Kind:        events.OutcomeHighestBidUpdated,
			AuctionID:   bid.AuctionID,
			NewLeaderID: standing.Leader.BidderID,
			NewAmount:   standing.Leader.Amount,
			BidTime:     standing.Leader.BidTime,
		}
		return appendOutbox(tx, []events.OutcomeEvent{event})
	})
}

// Standing 計算拍賣目前的競價情勢(讀取模型)
func (l *Ledger) Standing(ctx context.Context, auctionID uuid.UUID) (Standing, error) {
	const op = "Ledger.Standing"

	auction, err := l.loadAuction(ctx, auctionID)
	if err != nil {
		return Standing{}, fmt.Errorf("[%s] Fail to load auction, err=%w", op, err)
	}
	if auction == nil {
		return Standing{}, ErrAuctionNotLive
	}
	bids, err := l.loadAcceptedBids(ctx, auctionID)
	if err != nil {
		return Standing{}, fmt.Errorf("[%s] Fail to load bids, err=%w", op, err)
	}
	return ResolveStanding(bids, auction.ReservePrice), nil
}

// reject 落下Rejected稽核列並排入BidRejected事件
func (l *Ledger) reject(ctx context.Context, attempt models.Bid, reason RejectReason, minimumNext int64) (BidResult, error) {
	attempt.Status = models.BidStatusRejected
	attempt.Reason = string(reason)
	event := rejectedEvent(attempt, reason)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&attempt); result.Error != nil {
			return fmt.Errorf("fail to record rejected bid, err=%w", result.Error)
		}
		return appendOutbox(tx, []events.OutcomeEvent{event})
	})
	if err != nil {
		return BidResult{}, err
	}
	l.logger.Info("Bid rejected",
		slog.String("auctionID", attempt.AuctionID.String()),
		slog.String("reason", string(reason)),
		slog.Int64("amount", attempt.Amount),
	)
	return BidResult{
		BidID:       attempt.ID,
		Accepted:    false,
		Amount:      attempt.Amount,
		BidTime:     attempt.BidTime,
		Reason:      reason,
		MinimumNext: minimumNext,
	}, nil
}

// rejectWithoutAudit 拍賣投影不存在時的拒絕路徑：沒有稽核列可寫，只發事件
func (l *Ledger) rejectWithoutAudit(ctx context.Context, attempt models.Bid, reason RejectReason) (BidResult, error) {
	event := rejectedEvent(attempt, reason)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return appendOutbox(tx, []events.OutcomeEvent{event})
	})
	if err != nil {
		return BidResult{}, err
	}
	return BidResult{
		BidID:    attempt.ID,
		Accepted: false,
		Amount:   attempt.Amount,
		BidTime:  attempt.BidTime,
		Reason:   reason,
	}, nil
}

// replayResult 以requestID重建第一次admission的結果
func (l *Ledger) replayResult(ctx context.Context, requestID string) (BidResult, bool, error) {
	if requestID == "" {
		return BidResult{}, false, nil
	}
	var prior models.Bid
	result := l.db.WithContext(ctx).Where("request_id = ?", requestID).First(&prior)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return BidResult{}, false, nil
		}
		return BidResult{}, false, result.Error
	}

	replayed := BidResult{
		BidID:    prior.ID,
		Accepted: prior.Status == models.BidStatusAccepted,
		Amount:   prior.Amount,
		BidTime:  prior.BidTime,
		Reason:   RejectReason(prior.Reason),
		Replayed: true,
	}
	// 回放時一併帶回目前的領先狀態，讓呼叫端看到與第一次一致的視角
	auction, err := l.loadAuction(ctx, prior.AuctionID)
	if err != nil {
		return BidResult{}, false, err
	}
	var reserve int64
	if auction != nil {
		reserve = auction.ReservePrice
	}
	bids, err := l.loadAcceptedBids(ctx, prior.AuctionID)
	if err != nil {
		return BidResult{}, false, err
	}
	standing := ResolveStanding(bids, reserve)
	if standing.Leader != nil {
		replayed.LeaderID = standing.Leader.ID
		replayed.LeaderAmount = standing.Leader.Amount
	}
	if replayed.Reason == RejectBidTooLow {
		replayed.MinimumNext = standing.MinimumNext
	}
	return replayed, true, nil
}

// commitCascade 在單一交易內提交本次admission的全部效果
func (l *Ledger) commitCascade(ctx context.Context, admitted []models.Bid, cascade CascadeResult, batch []events.OutcomeEvent) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range admitted {
			if result := tx.Create(&admitted[i]); result.Error != nil {
				return fmt.Errorf("fail to record admitted bid, err=%w", result.Error)
			}
		}
		for i := range cascade.ProxyBids {
			if result := tx.Create(&cascade.ProxyBids[i]); result.Error != nil {
				return fmt.Errorf("fail to record proxy bid, err=%w", result.Error)
			}
		}
		for i := range cascade.AutoBids {
			// 新登錄與既有指示走同一條upsert路徑
			if result := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&cascade.AutoBids[i]); result.Error != nil {
				return fmt.Errorf("fail to save auto bid state, err=%w", result.Error)
			}
		}
		return appendOutbox(tx, batch)
	})
}

// outcomeBatch 將靜止後的狀態轉換成一批對外事件
// 只描述淨效果：連鎖中間的代理出價不各自發Outbid，避免通知風暴
func (l *Ledger) outcomeBatch(auctionID uuid.UUID, admitted *models.Bid, prevLeader *models.Bid, cascade CascadeResult) []events.OutcomeEvent {
	var batch []events.OutcomeEvent
	if admitted != nil {
		batch = append(batch, events.OutcomeEvent{
			EventID:   events.NewEventID(),
			Kind:      events.OutcomeBidAccepted,
			AuctionID: auctionID,
			BidID:     admitted.ID,
			BidderID:  admitted.BidderID,
			Amount:    admitted.Amount,
			BidTime:   admitted.BidTime,
		})
	}

	finalLeader := cascade.Leader
	leaderChanged := finalLeader != nil && (prevLeader == nil || prevLeader.ID != finalLeader.ID)
	if leaderChanged {
		batch = append(batch, events.OutcomeEvent{
			EventID:     events.NewEventID(),
			Kind:        events.OutcomeHighestBidUpdated,
			AuctionID:   auctionID,
			NewLeaderID: finalLeader.BidderID,
			NewAmount:   finalLeader.Amount,
			BidTime:     finalLeader.BidTime,
		})
		// 批次內曾經領先而最終未領先的真人出價者各收到一則Outbid：
		// 入場前的領先者，以及剛入場短暫領先又被連鎖擠下的出價者。
		// 連鎖中間的代理領先權轉移只是過程，不另行通知。
		// 事件不攜帶新領先者的身份，隱私政策由下游決定
		notified := map[uuid.UUID]bool{finalLeader.BidderID: true}
		for _, displaced := range []*models.Bid{prevLeader, admitted} {
			if displaced == nil || displaced.Origin != models.BidOriginManual || notified[displaced.BidderID] {
				continue
			}
			notified[displaced.BidderID] = true
			batch = append(batch, events.OutcomeEvent{
				EventID:           events.NewEventID(),
				Kind:              events.OutcomeOutbid,
				AuctionID:         auctionID,
				DisplacedBidderID: displaced.BidderID,
				NewAmount:         finalLeader.Amount,
			})
		}
	}

	for _, exhausted := range cascade.Exhausted {
		batch = append(batch, events.OutcomeEvent{
			EventID:   events.NewEventID(),
			Kind:      events.OutcomeAutoBidExhausted,
			AuctionID: auctionID,
			AutoBidID: exhausted.ID,
			MaxAmount: exhausted.MaxAmount,
		})
	}
	return batch
}

func rejectedEvent(attempt models.Bid, reason RejectReason) events.OutcomeEvent {
	return events.OutcomeEvent{
		EventID:   events.NewEventID(),
		Kind:      events.OutcomeBidRejected,
		AuctionID: attempt.AuctionID,
		BidderID:  attempt.BidderID,
		Amount:    attempt.Amount,
		Reason:    string(reason),
	}
}

// appendOutbox 將事件批次寫入outbox，與帳本異動同交易提交
func appendOutbox(tx *gorm.DB, batch []events.OutcomeEvent) error {
	for _, event := range batch {
		payload, err := msgpack.Marshal(event)
		if err != nil {
			return fmt.Errorf("fail to marshal outcome event, err=%w", err)
		}
		row := models.OutboxEvent{
			ID:        uuid.New(),
			EventID:   event.EventID,
			AuctionID: event.AuctionID,
			Kind:      string(event.Kind),
			Payload:   payload,
		}
		if result := tx.Create(&row); result.Error != nil {
			return fmt.Errorf("fail to append outbox event, err=%w", result.Error)
		}
	}
	return nil
}

func (l *Ledger) loadAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	var auction models.Auction
	if result := l.db.WithContext(ctx).First(&auction, "id = ?", auctionID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &auction, nil
}

func (l *Ledger) loadAcceptedBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	result := l.db.WithContext(ctx).
		Where("auction_id = ? AND status = ?", auctionID, models.BidStatusAccepted).
		Order("bid_time").
		Find(&bids)
	if result.Error != nil {
		return nil, result.Error
	}
	return bids, nil
}

func (l *Ledger) loadAutoBids(ctx context.Context, auctionID uuid.UUID) ([]models.AutoBid, error) {
	var autoBids []models.AutoBid
	result := l.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at").
		Find(&autoBids)
	if result.Error != nil {
		return nil, result.Error
	}
	for i := range autoBids {
		// 正常運作下不可能發生，出現代表資料完整性已受損，發警報但不擅自修正
		if autoBids[i].CurrentBidAmount > autoBids[i].MaxAmount {
			l.logger.Error("Data integrity alarm: auto bid exceeds its ceiling",
				slog.String("autoBidID", autoBids[i].ID.String()),
				slog.Int64("currentBidAmount", autoBids[i].CurrentBidAmount),
				slog.Int64("maxAmount", autoBids[i].MaxAmount),
			)
		}
	}
	return autoBids, nil
}
