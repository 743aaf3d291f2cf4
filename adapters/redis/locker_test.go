package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"bidcore/bidding"
)

func TestNewAuctionLocker(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		client, _, cleanup := setupTest(t)
		defer cleanup()

		locker, err := NewAuctionLocker(client)
		require.NoError(t, err)
		require.NotNil(t, locker)
	})

	t.Run("nil client", func(t *testing.T) {
		locker, err := NewAuctionLocker(nil)
		assert.Error(t, err)
		assert.Nil(t, locker)
	})
}

func TestAuctionLocker_Acquire(t *testing.T) {
	auctionID := uuid.MustParse("f47ac10b-58cc-0372-8567-0e02b2c3d479")

	t.Run("acquire and release", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX("lock:auction:"+auctionID.String(), ".*", 8*time.Second).SetVal(true)
		mock.Regexp().ExpectEvalSha(".*", []string{"lock:auction:" + auctionID.String()}, []string{".*"}).SetVal(int64(1))

		locker, err := NewAuctionLocker(client)
		require.NoError(t, err)

		lockCtx, release, err := locker.Acquire(context.Background(), auctionID)
		require.NoError(t, err)
		require.NotNil(t, lockCtx)
		assert.NoError(t, lockCtx.Err())

		release()
		select {
		case <-lockCtx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Error("lock context was not cancelled after release")
		}
	})

	t.Run("held lock reports busy after wait timeout", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		// 只允許一次嘗試：retry delay遠大於wait timeout
		mock.Regexp().ExpectSetNX("lock:auction:"+auctionID.String(), ".*", 8*time.Second).SetVal(false)

		locker, err := NewAuctionLocker(client,
			WithAuctionLockerWaitTimeout(100*time.Millisecond),
			WithAuctionLockerRetryDelay(time.Second),
		)
		require.NoError(t, err)

		lockCtx, release, err := locker.Acquire(context.Background(), auctionID)
		assert.ErrorIs(t, err, bidding.ErrBusy)
		assert.Nil(t, lockCtx)
		assert.Nil(t, release)
	})

	t.Run("cancelled caller context is reported as is", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, _, cleanup := setupTest(t)
		defer cleanup()

		locker, err := NewAuctionLocker(client)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err = locker.Acquire(ctx, auctionID)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
