package sse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bidcore/adapters/sse"
)

func TestChannel(t *testing.T) {
	ch := sse.NewChannel[Message](4)

	// 測試訂閱
	sub := ch.Subscribe()
	assert.NotNil(t, sub)

	// 測試廣播訊息
	msg := Message{Data: "test message"}
	ch.Broadcast(msg)

	select {
	case received := <-sub:
		assert.Equal(t, msg, received)
	case <-time.After(time.Second):
		t.Fatal("did not receive message in time")
	}

	// 測試取消訂閱
	ch.Unsubscribe(sub)
	_, ok := <-sub
	assert.False(t, ok, "channel should be closed")

	// 測試 IsIdle
	assert.True(t, ch.IsIdle(), "channel should be idle")
}

func TestChannel_SlowSubscriberDoesNotBlock(t *testing.T) {
	ch := sse.NewChannel[Message](1)

	slow := ch.Subscribe()
	fast := ch.Subscribe()

	// 第一則訊息填滿slow的緩衝，第二則對slow丟棄，但fast必須都收到
	done := make(chan struct{})
	go func() {
		defer close(done)
		ch.Broadcast(Message{Data: "first"})
		// fast騰出緩衝，slow維持滿載
		assert.Equal(t, Message{Data: "first"}, <-fast)
		ch.Broadcast(Message{Data: "second"})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on slow subscriber")
	}

	assert.Equal(t, Message{Data: "second"}, <-fast)
	assert.Equal(t, Message{Data: "first"}, <-slow)
	ch.UnsubscribeAll()
}
