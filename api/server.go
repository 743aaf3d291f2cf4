package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	redisAdapter "bidcore/adapters/redis"
	"bidcore/adapters/sse"
	"bidcore/bidding"
	"bidcore/events"
	"bidcore/models"
)

type ServerImpl struct {
	db                *gorm.DB
	redisClient       *redis.Client
	ledger            *bidding.Ledger
	producer          redisAdapter.IProducer[events.OutcomeEvent]
	relay             *events.OutboxRelay
	sseManager        sse.IConnectionManager[events.OutcomeEvent]
	lifecycleConsumer redisAdapter.IGroupConsumer[events.LifecycleEvent]
	standingStore     redisAdapter.IStandingStore
	wg                sync.WaitGroup
	cancelFunc        context.CancelFunc

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	if err := db.AutoMigrate(
		&models.Auction{},
		&models.Bid{},
		&models.AutoBid{},
		&models.EventRecord{},
		&models.OutboxEvent{},
	); err != nil {
		return nil, fmt.Errorf("[%s] Fail to migrate schema, err=%w", op, err)
	}

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	// 初始化拍賣鎖與帳本
	locker, err := redisAdapter.NewAuctionLocker(
		redisClient,
		redisAdapter.WithAuctionLockerKeyPrefix(config.Redis.KeyPrefix+"lock:auction:"),
		redisAdapter.WithAuctionLockerWaitTimeout(config.Lock.WaitTimeout),
		redisAdapter.WithAuctionLockerExpiry(config.Lock.Expiry),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create auction locker, err=%w", op, err)
	}
	ledger, err := bidding.NewLedger(db, locker, bidding.WithLedgerLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create ledger, err=%w", op, err)
	}

	// 初始化outbox relay與對外stream producer
	producer, err := redisAdapter.NewProducer[events.OutcomeEvent](
		redisClient,
		config.Redis.StreamKeys.Outcome,
		redisAdapter.WithProducerMaxLen[events.OutcomeEvent](100000),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create outcome producer, err=%w", op, err)
	}
	relay, err := events.NewOutboxRelay(db, producer)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create outbox relay, err=%w", op, err)
	}

	// 初始化SSE管理器，以廣播消費對外stream餵給各拍賣的訂閱者
	outcomeConsumer, err := redisAdapter.NewConsumer[events.OutcomeEvent](
		redisClient,
		config.Redis.StreamKeys.Outcome,
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create outcome consumer, err=%w", op, err)
	}
	sseManager := sse.NewConnectionManager[events.OutcomeEvent](
		outcomeConsumer,
		func(event events.OutcomeEvent) string { return event.AuctionID.String() },
		sse.WithManagerLogger(slog.Default()),
	)

	// 初始化生命週期stream的group consumer
	// 嚴格順序模式：AuctionLive必須先於該拍賣的AuctionFinished被套用
	lifecycleConsumer, err := redisAdapter.NewGroupConsumer[events.LifecycleEvent](
		redisClient,
		config.Redis.StreamKeys.Lifecycle,
		config.Redis.ConsumerGroup,
		config.ID,
		redisAdapter.WithGroupConsumerLogger[events.LifecycleEvent](slog.Default()),
		redisAdapter.WithGroupConsumerStrictOrdering[events.LifecycleEvent](true),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create lifecycle consumer, err=%w", op, err)
	}

	standingStore := redisAdapter.NewStandingStore(
		redisClient,
		redisAdapter.WithStandingStorePrefix(config.Redis.KeyPrefix+"standing:"),
	)

	return &ServerImpl{
		db:                db,
		redisClient:       redisClient,
		ledger:            ledger,
		producer:          producer,
		relay:             relay,
		sseManager:        sseManager,
		lifecycleConsumer: lifecycleConsumer,
		standingStore:     standingStore,
		config:            config,
	}, nil
}

func (impl *ServerImpl) Start() error {
	// 啟動對外發布鏈
	impl.producer.Start()
	impl.relay.Start()
	// 啟動SSE推播
	impl.sseManager.Start()
	// 啟動生命週期consumer
	if err := impl.lifecycleConsumer.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	impl.cancelFunc = cancel

	// 生命週期事件套用worker
	slog.Info("Start lifecycle worker")
	impl.wg.Add(1)
	go func() {
		logger := slog.Default().With(slog.String("caller", "LifecycleWorker"))
		defer impl.wg.Done()
		defer slog.Info("Lifecycle worker stopped")
		ch := impl.lifecycleConsumer.Subscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := impl.ledger.ApplyLifecycle(ctx, msg.Data); err != nil {
					logger.Error("Fail to apply lifecycle event", slog.Any("error", err))
					if failErr := msg.Fail(ctx, err); failErr != nil {
						logger.Error("Fail to dead-letter message", slog.Any("error", failErr))
					}
					continue
				}
				if err := msg.Done(ctx); err != nil {
					logger.Error("Applied but fail to ack message", slog.Any("error", err))
				}
			}
		}
	}()

	// 冪等紀錄修剪worker
	slog.Info("Start event record pruning worker")
	impl.wg.Add(1)
	go func() {
		logger := slog.Default().With(slog.String("caller", "PruneWorker"))
		defer impl.wg.Done()
		defer slog.Info("Event record pruning worker stopped")
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pruned, err := impl.ledger.Guard().Prune(ctx, time.Now().Add(-impl.config.RetentionWindow))
				if err != nil {
					logger.Error("Fail to prune event records", slog.Any("error", err))
					continue
				}
				if pruned > 0 {
					logger.Info("Pruned event records", slog.Int64("count", pruned))
				}
			}
		}
	}()

	return nil
}

func (impl *ServerImpl) Close() {
	// 關閉生命週期consumer，讓worker的channel收斂
	impl.lifecycleConsumer.Close()
	// 關閉worker
	if impl.cancelFunc != nil {
		impl.cancelFunc()
	}
	impl.wg.Wait()
	// 排空並關閉發布鏈
	impl.relay.Close()
	impl.producer.Close()
	// 關閉SSE推播
	impl.sseManager.Done()
}
