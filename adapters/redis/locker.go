package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bidcore/bidding"
)

type auctionLockerOptions struct {
	keyPrefix   string
	waitTimeout time.Duration
	expiry      time.Duration
	retryDelay  time.Duration
}

type AuctionLockerOption func(*auctionLockerOptions)

// WithAuctionLockerKeyPrefix 設置鎖key的前綴
func WithAuctionLockerKeyPrefix(prefix string) AuctionLockerOption {
	return func(o *auctionLockerOptions) {
		o.keyPrefix = prefix
	}
}

// WithAuctionLockerWaitTimeout 設置等待鎖的時間上限
// 超時代表該拍賣正處於出價高峰，返回ErrBusy讓呼叫端退避而不是無限排隊
func WithAuctionLockerWaitTimeout(d time.Duration) AuctionLockerOption {
	return func(o *auctionLockerOptions) {
		o.waitTimeout = d
	}
}

// WithAuctionLockerExpiry 設置鎖的過期時間
func WithAuctionLockerExpiry(d time.Duration) AuctionLockerOption {
	return func(o *auctionLockerOptions) {
		o.expiry = d
	}
}

// WithAuctionLockerRetryDelay 設置搶鎖失敗後的重試間隔
func WithAuctionLockerRetryDelay(d time.Duration) AuctionLockerOption {
	return func(o *auctionLockerOptions) {
		o.retryDelay = d
	}
}

// AuctionLocker 以每場拍賣一把分散式鎖的方式序列化出價admission
// 鎖帶自動續期，持有期間長於expiry的連鎖反應不會讓鎖中途失效
type AuctionLocker struct {
	client  *redis.Client
	options auctionLockerOptions
}

func NewAuctionLocker(client *redis.Client, opts ...AuctionLockerOption) (*AuctionLocker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}

	// 默認選項
	options := auctionLockerOptions{
		keyPrefix:   "lock:auction:",
		waitTimeout: 3 * time.Second,
		expiry:      8 * time.Second,
		retryDelay:  50 * time.Millisecond,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &AuctionLocker{
		client:  client,
		options: options,
	}, nil
}

// Acquire 取得指定拍賣的排他區段
// 在waitTimeout內拿不到鎖返回bidding.ErrBusy；成功時返回的context會在
// 鎖失效時被取消，release釋放鎖並停止續期
func (l *AuctionLocker) Acquire(ctx context.Context, auctionID uuid.UUID) (context.Context, func(), error) {
	mutex := NewAutoRenewMutex(
		l.client,
		l.options.keyPrefix+auctionID.String(),
		WithAutoRenewMutexExpiry(l.options.expiry),
		WithAutoRenewMutexRetryDelay(l.options.retryDelay),
		WithAutoRenewMutexSkipLockError(true),
	)

	// 等待上限用cancel-only的child context實現：直接用WithTimeout的話，
	// 取得的lock context會繼承deadline，鎖拿到之後也會被時限取消
	acquireCtx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(l.options.waitTimeout, cancel)

	lockCtx, err := mutex.Lock(acquireCtx)
	if !timer.Stop() && err == nil {
		// 計時器在成功與停止之間搶先觸發，鎖已不可靠，放掉重來
		_, _ = mutex.Unlock()
		err = context.Canceled
	}
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, bidding.ErrBusy
	}

	release := func() {
		_, _ = mutex.Unlock()
		cancel()
	}
	return lockCtx, release, nil
}
