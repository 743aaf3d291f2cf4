package sse_test

import (
	"io"
	"log"
	"sync"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
}

// Message 表示一個推播事件，帶有用於路由的頻道名稱。
type Message struct {
	Channel string `json:"channel"`
	Data    string `json:"data"`
}

// stubConsumer 以本地channel模擬stream消費者
type stubConsumer struct {
	downstream chan Message
	once       sync.Once
}

func newStubConsumer() *stubConsumer {
	return &stubConsumer{downstream: make(chan Message, 16)}
}

func (s *stubConsumer) Start() {}

func (s *stubConsumer) Subscribe() <-chan Message {
	return s.downstream
}

func (s *stubConsumer) Close() {
	s.once.Do(func() { close(s.downstream) })
}

func (s *stubConsumer) emit(msg Message) {
	s.downstream <- msg
}
