package events

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LifecycleKind 是上游拍賣列表服務生命週期事件的種類
// 設計成封閉的tagged union，新種類必須在這裡註冊
type LifecycleKind string

const (
	LifecycleAuctionLive     LifecycleKind = "AuctionLive"
	LifecycleAuctionFinished LifecycleKind = "AuctionFinished"
)

var ErrUnknownLifecycleKind = errors.New("unknown lifecycle event kind")

// LifecycleEvent 代表一筆從生命週期stream消費的事件
// EventID由上游指定，是冪等去重的依據
type LifecycleEvent struct {
	EventID   string        `msgpack:"event_id"`
	Kind      LifecycleKind `msgpack:"kind"`
	AuctionID uuid.UUID     `msgpack:"auction_id"`

	// AuctionLive 專用欄位
	SellerID     uuid.UUID `msgpack:"seller_id"`
	ReservePrice int64     `msgpack:"reserve_price"`
}

// Validate 檢查事件是否屬於已知種類且帶有必要欄位
func (e LifecycleEvent) Validate() error {
	if e.EventID == "" {
		return errors.New("lifecycle event without event id")
	}
	if e.AuctionID == uuid.Nil {
		return errors.New("lifecycle event without auction id")
	}
	switch e.Kind {
	case LifecycleAuctionLive, LifecycleAuctionFinished:
		return nil
	default:
		return ErrUnknownLifecycleKind
	}
}

// OutcomeKind 是核心對外發布的結果事件種類
type OutcomeKind string

const (
	OutcomeBidAccepted       OutcomeKind = "BidAccepted"
	OutcomeBidRejected       OutcomeKind = "BidRejected"
	OutcomeHighestBidUpdated OutcomeKind = "HighestBidUpdated"
	OutcomeOutbid            OutcomeKind = "Outbid"
	OutcomeAutoBidExhausted  OutcomeKind = "AutoBidExhausted"
)

// OutcomeEvent 代表一筆對外的結果事件
// 每筆事件都帶有唯一的EventID，讓下游(通知、分析)能自行去重
// 欄位依Kind取用：未使用的欄位維持零值
type OutcomeEvent struct {
	EventID   string      `msgpack:"event_id"`
	Kind      OutcomeKind `msgpack:"kind"`
	AuctionID uuid.UUID   `msgpack:"auction_id"`

	BidID             uuid.UUID `msgpack:"bid_id"`
	BidderID          uuid.UUID `msgpack:"bidder_id"`
	Amount            int64     `msgpack:"amount"`
	BidTime           time.Time `msgpack:"bid_time"`
	Reason            string    `msgpack:"reason"`
	NewLeaderID       uuid.UUID `msgpack:"new_leader_id"`
	NewAmount         int64     `msgpack:"new_amount"`
	DisplacedBidderID uuid.UUID `msgpack:"displaced_bidder_id"`
	AutoBidID         uuid.UUID `msgpack:"auto_bid_id"`
	MaxAmount         int64     `msgpack:"max_amount"`
}

// NewEventID 產生事件的唯一識別
func NewEventID() string {
	return uuid.NewString()
}
