package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gorm.io/gorm"

	"bidcore/models"
)

// IOutcomePublisher 是relay對stream producer的最小依賴
type IOutcomePublisher interface {
	Publish(event OutcomeEvent) error
}

type relayOptions struct {
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
}

type RelayOption func(*relayOptions)

// WithRelayLogger 設置日誌記錄器
func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(o *relayOptions) {
		o.logger = logger
	}
}

// WithRelayPollInterval 設置輪詢outbox的間隔
func WithRelayPollInterval(d time.Duration) RelayOption {
	return func(o *relayOptions) {
		o.pollInterval = d
	}
}

// WithRelayBatchSize 設置單次輪詢處理的上限
func WithRelayBatchSize(size int) RelayOption {
	return func(o *relayOptions) {
		o.batchSize = size
	}
}

// OutboxRelay 把與帳本交易一起提交的outbox事件搬運到對外stream
//
// 發布成功才標記PublishedAt，中途當機會讓同一批事件被重新發布，
// 所以對外語義是at-least-once：下游靠事件上的EventID去重。
// 同一批內依建立順序發布，維持單一拍賣內的事件順序
type OutboxRelay struct {
	db         *gorm.DB
	publisher  IOutcomePublisher
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	logger     *slog.Logger
	options    relayOptions
}

func NewOutboxRelay(db *gorm.DB, publisher IOutcomePublisher, opts ...RelayOption) (*OutboxRelay, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if publisher == nil {
		return nil, errors.New("publisher cannot be nil")
	}

	// 默認選項
	options := relayOptions{
		logger:       slog.Default(),
		pollInterval: 200 * time.Millisecond,
		batchSize:    100,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &OutboxRelay{
		db:        db,
		publisher: publisher,
		closed:    true,
		logger:    options.logger.With(slog.String("caller", "OutboxRelay")),
		options:   options,
	}, nil
}

func (r *OutboxRelay) Start() {
	if !r.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancelFunc = cancel
	r.closed = false
	r.logger.Info("starting outbox relay")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.logger.Info("outbox relay goroutine stopped")

		ticker := time.NewTicker(r.options.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.drainOnce(ctx); err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					r.logger.Error("drain outbox error", slog.Any("error", err))
				}
			}
		}
	}()
}

func (r *OutboxRelay) Close() {
	if r.closed {
		return
	}
	r.logger.Info("closing outbox relay")
	r.closed = true
	r.cancelFunc()
	r.wg.Wait()
	r.logger.Info("outbox relay closed")
}

// drainOnce 發布一批尚未發布的事件並標記完成
func (r *OutboxRelay) drainOnce(ctx context.Context) error {
	var rows []models.OutboxEvent
	result := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at").
		Limit(r.options.batchSize).
		Find(&rows)
	if result.Error != nil {
		return result.Error
	}

	for i := range rows {
		var event OutcomeEvent
		if err := msgpack.Unmarshal(rows[i].Payload, &event); err != nil {
			// 壞掉的payload不可能靠重試修好，標記成已發布避免卡住整條隊伍
			r.logger.Error("skip malformed outbox payload",
				slog.String("eventID", rows[i].EventID),
				slog.Any("error", err),
			)
			if err := r.markPublished(ctx, &rows[i]); err != nil {
				return err
			}
			continue
		}
		if err := r.publisher.Publish(event); err != nil {
			return err
		}
		if err := r.markPublished(ctx, &rows[i]); err != nil {
			return err
		}
		r.logger.Debug("outbox event published",
			slog.String("eventID", rows[i].EventID),
			slog.String("kind", rows[i].Kind),
		)
	}
	return nil
}

func (r *OutboxRelay) markPublished(ctx context.Context, row *models.OutboxEvent) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(row).
		Update("published_at", now)
	return result.Error
}
