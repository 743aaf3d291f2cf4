package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StandingSnapshot 是一場拍賣目前競價情勢的扁平快照
// 每次admission靜止後覆寫，SSE訂閱者連上時先讀它再聽增量事件
type StandingSnapshot struct {
	LeaderBidderID uuid.UUID
	CurrentPrice   int64
	MinimumNext    int64
	UpdatedAt      time.Time
}

// StandingStore 將最新快照存在Redis hash，key為 <prefix><auctionID>
type StandingStore struct {
	client  *redis.Client
	options standingStoreOptions
}

type standingStoreOptions struct {
	prefix string
	ttl    time.Duration
}

type StandingStoreOption func(*standingStoreOptions)

// WithStandingStorePrefix 設定key前綴
func WithStandingStorePrefix(prefix string) StandingStoreOption {
	return func(o *standingStoreOptions) {
		o.prefix = prefix
	}
}

// WithStandingStoreTTL 設定快照的存活時間，拍賣結束後自然過期
func WithStandingStoreTTL(ttl time.Duration) StandingStoreOption {
	return func(o *standingStoreOptions) {
		o.ttl = ttl
	}
}

func NewStandingStore(client *redis.Client, opts ...StandingStoreOption) IStandingStore {
	options := standingStoreOptions{
		prefix: "standing:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &StandingStore{
		client:  client,
		options: options,
	}
}

// saveScript 原子性地替換hash內容並更新TTL
// 先DEL再HSET，避免舊快照的殘留欄位跟新快照混在一起
var saveScript = redis.NewScript(`
local key = KEYS[1]
local ttl = tonumber(ARGV[1])
redis.call('DEL', key)
if #ARGV > 1 then
    redis.call('HSET', key, unpack(ARGV, 2))
end
if ttl > 0 then
    redis.call('PEXPIRE', key, ttl)
end
return 1
`)

// Save 覆寫指定拍賣的快照
func (s *StandingStore) Save(ctx context.Context, auctionID uuid.UUID, snapshot StandingSnapshot) error {
	const op = "redis.StandingStore.Save"
	key := s.options.prefix + auctionID.String()

	args := []any{
		s.options.ttl.Milliseconds(),
		"leader_bidder_id", snapshot.LeaderBidderID.String(),
		"current_price", strconv.FormatInt(snapshot.CurrentPrice, 10),
		"minimum_next", strconv.FormatInt(snapshot.MinimumNext, 10),
		"updated_at", strconv.FormatInt(snapshot.UpdatedAt.UnixMilli(), 10),
	}
	err := saveScript.Run(ctx, s.client, []string{key}, args...).Err()
	if err != nil {
		return fmt.Errorf("%s: failed to execute save script: %w", op, err)
	}

	return nil
}

// Load 讀取指定拍賣的快照，不存在時ok為false
func (s *StandingStore) Load(ctx context.Context, auctionID uuid.UUID) (StandingSnapshot, bool, error) {
	const op = "redis.StandingStore.Load"
	key := s.options.prefix + auctionID.String()

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return StandingSnapshot{}, false, fmt.Errorf("%s: failed to get hash: %w", op, err)
	}
	if len(fields) == 0 {
		return StandingSnapshot{}, false, nil
	}

	var snapshot StandingSnapshot
	if raw, ok := fields["leader_bidder_id"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			snapshot.LeaderBidderID = id
		}
	}
	snapshot.CurrentPrice, _ = strconv.ParseInt(fields["current_price"], 10, 64)
	snapshot.MinimumNext, _ = strconv.ParseInt(fields["minimum_next"], 10, 64)
	if ms, err := strconv.ParseInt(fields["updated_at"], 10, 64); err == nil {
		snapshot.UpdatedAt = time.UnixMilli(ms)
	}
	return snapshot, true, nil
}
