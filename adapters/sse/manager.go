package sse

import (
	"context"
	"log/slog"
	"sync"

	adapters "bidcore/adapters/redis"
)

// connectionManager 把stream上的事件依路由鍵分發給各主題的訂閱者。
// 事件來源是Redis stream的廣播消費，所以多個服務實例各自推播
// 自己的SSE連線，彼此不需要協調。
type connectionManager[T any] struct {
	logger *slog.Logger

	mu     sync.RWMutex   // 保護 active 和 channels 的讀寫
	wg     sync.WaitGroup // 用於等待所有 goroutine 完成
	active bool           // 標記 manager 是否正在運作中

	consumer adapters.IConsumer[T]  // stream消費者，事件的唯一來源
	routeKey func(T) string         // 從事件取出路由鍵(拍賣ID)
	channels map[string]IChannel[T] // 儲存所有活躍的頻道

	options managerOptions
}

type managerOptions struct {
	logger           *slog.Logger
	subscriberBuffer int
}

type ManagerOption func(*managerOptions)

// WithManagerLogger 設置日誌記錄器
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithManagerSubscriberBuffer 設置每個訂閱者的緩衝大小
func WithManagerSubscriberBuffer(size int) ManagerOption {
	return func(o *managerOptions) {
		o.subscriberBuffer = size
	}
}

// NewConnectionManager 建立一個新的連線管理器
// consumer提供事件來源，routeKey決定事件屬於哪個頻道
func NewConnectionManager[T any](consumer adapters.IConsumer[T], routeKey func(T) string, opts ...ManagerOption) IConnectionManager[T] {
	options := managerOptions{
		logger:           slog.Default(),
		subscriberBuffer: 16,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &connectionManager[T]{
		logger:   options.logger.With(slog.String("caller", "ConnectionManager")),
		channels: make(map[string]IChannel[T]),
		consumer: consumer,
		routeKey: routeKey,
		options:  options,
	}
}

// Start 啟動連線管理器，開始處理事件的接收與廣播。
// 應在呼叫其他方法前先呼叫此方法。
func (cm *connectionManager[T]) Start() {
	cm.mu.Lock()
	if cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = true
	cm.mu.Unlock()

	cm.consumer.Start()

	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		for msg := range cm.consumer.Subscribe() {
			key := cm.routeKey(msg)
			cm.mu.RLock()
			if channel, ok := cm.channels[key]; ok {
				channel.Broadcast(msg)
			}
			cm.mu.RUnlock()
		}
	}()
}

// Done 停止連線管理器的運作。
func (cm *connectionManager[T]) Done() {
	cm.mu.Lock()
	if !cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = false
	cm.mu.Unlock()

	// consumer關閉後下游channel也會關閉，廣播goroutine自然退出
	cm.consumer.Close()
	cm.wg.Wait()

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, channel := range cm.channels {
		channel.UnsubscribeAll()
	}
	clear(cm.channels)
}

// Subscribe 訂閱指定的頻道。
// 返回: 用於接收事件的唯讀通道，以及可能的錯誤
func (cm *connectionManager[T]) Subscribe(channelName string) (<-chan T, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.active {
		return nil, context.Canceled
	}

	c, ok := cm.channels[channelName]
	if !ok {
		c = NewChannel[T](cm.options.subscriberBuffer)
		cm.channels[channelName] = c
	}
	return c.Subscribe(), nil
}

// Unsubscribe 取消訂閱指定的頻道。
func (cm *connectionManager[T]) Unsubscribe(channelName string, ch <-chan T) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, ok := cm.channels[channelName]
	if !ok {
		return
	}

	c.Unsubscribe(ch)
	if c.IsIdle() {
		delete(cm.channels, channelName)
	}
}
