package bidding

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidcore/models"
)

func acceptedBid(bidderID uuid.UUID, amount int64, bidTime time.Time) models.Bid {
	return models.Bid{
		ID:       uuid.New(),
		BidderID: bidderID,
		Amount:   amount,
		Origin:   models.BidOriginManual,
		Status:   models.BidStatusAccepted,
		BidTime:  bidTime,
	}
}

func TestResolveStanding(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alice := uuid.New()
	bob := uuid.New()

	t.Run("empty ledger", func(t *testing.T) {
		standing := ResolveStanding(nil, 100)

		assert.Nil(t, standing.Leader)
		assert.Equal(t, int64(0), standing.CurrentPrice)
		assert.Equal(t, int64(100), standing.MinimumNext)
	})

	t.Run("highest amount wins", func(t *testing.T) {
		bids := []models.Bid{
			acceptedBid(alice, 100, base),
			acceptedBid(bob, 150, base.Add(time.Second)),
		}

		standing := ResolveStanding(bids, 0)

		require.NotNil(t, standing.Leader)
		assert.Equal(t, bob, standing.Leader.BidderID)
		assert.Equal(t, int64(150), standing.CurrentPrice)
		assert.Equal(t, int64(100), standing.SecondHighest)
		assert.Equal(t, int64(160), standing.MinimumNext)
	})

	t.Run("tie resolved by earlier bid time", func(t *testing.T) {
		early := acceptedBid(alice, 200, base)
		late := acceptedBid(bob, 200, base.Add(time.Second))

		standing := ResolveStanding([]models.Bid{late, early}, 0)

		require.NotNil(t, standing.Leader)
		assert.Equal(t, alice, standing.Leader.BidderID)
	})

	t.Run("rejected and retracted bids are invisible", func(t *testing.T) {
		rejected := acceptedBid(bob, 500, base)
		rejected.Status = models.BidStatusRejected
		retracted := acceptedBid(bob, 400, base)
		retracted.Status = models.BidStatusRetracted
		bids := []models.Bid{
			rejected,
			retracted,
			acceptedBid(alice, 100, base.Add(time.Second)),
		}

		standing := ResolveStanding(bids, 0)

		require.NotNil(t, standing.Leader)
		assert.Equal(t, alice, standing.Leader.BidderID)
		assert.Equal(t, int64(100), standing.CurrentPrice)
		assert.Equal(t, int64(0), standing.SecondHighest)
	})

	// 撤回領先出價後重算，次高的有效出價遞補，結果是確定性的
	t.Run("recomputation after retraction is deterministic", func(t *testing.T) {
		first := acceptedBid(alice, 100, base)
		second := acceptedBid(bob, 150, base.Add(time.Second))

		before := ResolveStanding([]models.Bid{first, second}, 0)
		require.Equal(t, bob, before.Leader.BidderID)

		second.Status = models.BidStatusRetracted
		after := ResolveStanding([]models.Bid{first, second}, 0)

		require.NotNil(t, after.Leader)
		assert.Equal(t, alice, after.Leader.BidderID)
		assert.Equal(t, int64(100), after.CurrentPrice)
	})
}
