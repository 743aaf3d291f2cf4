package bidding

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"bidcore/models"
)

// CascadeInput 是一次連鎖反應的輸入狀態
type CascadeInput struct {
	AuctionID    uuid.UUID
	ReservePrice int64
	// Trigger 引發連鎖的既有領先出價
	// 自動出價註冊在完全沒有出價的拍賣上時為nil，此時最低出價回落到底價
	Trigger *models.Bid
	// AutoBids 該拍賣所有自動出價指示，引擎只對IsActive的反應
	AutoBids []models.AutoBid
	// Now 入場時線性化賦予的基準時間，合成出價依序遞增1奈秒
	Now time.Time
}

// CascadeResult 是連鎖反應靜止(quiescence)後的最終狀態
type CascadeResult struct {
	// ProxyBids 依時間序合成的代理出價鏈
	ProxyBids []models.Bid
	// AutoBids 所有自動出價指示的最終狀態(IsActive、CurrentBidAmount、LastBidAt已更新)
	AutoBids []models.AutoBid
	// Exhausted 本次連鎖中因上限不足而停用的自動出價，各需發出一筆AutoBidExhausted
	Exhausted []models.AutoBid
	// Leader 靜止後的領先出價；沒有任何出價時為nil
	Leader *models.Bid
}

// RunCascade 執行代理出價演算法直到靜止
//
// 每一輪針對目前領先出價計算最低加價，停用所有上限不足的挑戰者，
// 然後在「上限最高、同上限時最早建立」的挑戰者與領先方的防守指示之間
// 直接解算對決，而不是逐級距模擬喊價：敗方以它的上限做最後表態，
// 勝方以「敗方上限再加一個級距」回應(超過自身上限時以上限封頂)。
// 因此勝方永遠不需要暴露超出擊敗對手所需的額度，這正是密封上限
// 代理競價與公開喊價的差異。上限完全相同時，較早建立的指示以上限
// 出價，較晚者連追平都不允許，會在下一輪被停用。
//
// 只有決定性的出價會被寫入鏈中，中間的試探性加價不具資訊量也不落帳，
// 所以迴圈的上界是自動出價的數量，不會隨價差無限增長。
func RunCascade(in CascadeInput) CascadeResult {
	autoBids := make([]models.AutoBid, len(in.AutoBids))
	copy(autoBids, in.AutoBids)

	result := CascadeResult{Leader: in.Trigger}
	trigger := in.Trigger
	seq := 0
	nextBidTime := func() time.Time {
		seq++
		return in.Now.Add(time.Duration(seq) * time.Nanosecond)
	}
	exhaust := func(ab *models.AutoBid) {
		ab.IsActive = false
		result.Exhausted = append(result.Exhausted, *ab)
	}
	record := func(bid models.Bid) {
		result.ProxyBids = append(result.ProxyBids, bid)
		trigger = &result.ProxyBids[len(result.ProxyBids)-1]
	}

	for round := 0; round <= len(autoBids)+1; round++ {
		var currentAmount int64
		if trigger != nil {
			currentAmount = trigger.Amount
		}
		required := MinimumNextBid(currentAmount, in.ReservePrice)

		// 防守方：領先者本人的自動出價指示(若有)，它的上限是檯面下的天花板
		// 沒有指示時領先方的手動出價就停在原額，天花板即目前價格
		var defender *models.AutoBid
		if trigger != nil {
			for i := range autoBids {
				if autoBids[i].IsActive && autoBids[i].UserID == trigger.BidderID {
					defender = &autoBids[i]
					break
				}
			}
		}

		// 挑戰者：啟用中且不屬於領先者本人的指示
		// 上限連最低加價都構不上的直接停用
		var eligible []int
		for i := range autoBids {
			ab := &autoBids[i]
			if !ab.IsActive || (defender != nil && ab.ID == defender.ID) {
				continue
			}
			if trigger != nil && ab.UserID == trigger.BidderID {
				continue
			}
			if ab.MaxAmount < required {
				exhaust(ab)
				continue
			}
			eligible = append(eligible, i)
		}
		if len(eligible) == 0 {
			break
		}
		sort.SliceStable(eligible, func(a, b int) bool {
			left, right := &autoBids[eligible[a]], &autoBids[eligible[b]]
			if left.MaxAmount != right.MaxAmount {
				return left.MaxAmount > right.MaxAmount
			}
			return left.CreatedAt.Before(right.CreatedAt)
		})
		best := &autoBids[eligible[0]]

		// 對手天花板：防守方上限(或手動出價原額)與次佳挑戰者上限取大者
		opponentCeil := currentAmount
		var opponent *models.AutoBid
		if defender != nil {
			opponentCeil, opponent = defender.MaxAmount, defender
		}
		if len(eligible) > 1 {
			runner := &autoBids[eligible[1]]
			if runner.MaxAmount > opponentCeil {
				opponentCeil, opponent = runner.MaxAmount, runner
			}
		}

		switch {
		case best.MaxAmount > opponentCeil:
			// 挑戰成功：對手先被逼到天花板表態，贏家壓過一個級距
			if opponent != nil && opponent.MaxAmount >= required {
				record(synthesizeBid(in.AuctionID, opponent, opponent.MaxAmount, nextBidTime()))
			}
			response := min(best.MaxAmount, MinimumNextBid(opponentCeil, in.ReservePrice))
			record(synthesizeBid(in.AuctionID, best, response, nextBidTime()))

		case best.MaxAmount == opponentCeil:
			// 上限持平：最早建立的指示以上限出價，追平不足以搶得領先
			winner := best
			if opponent != nil && opponent.CreatedAt.Before(winner.CreatedAt) {
				winner = opponent
			}
			if len(eligible) > 1 {
				if runner := &autoBids[eligible[1]]; runner.MaxAmount == opponentCeil && runner.CreatedAt.Before(winner.CreatedAt) {
					winner = runner
				}
			}
			record(synthesizeBid(in.AuctionID, winner, opponentCeil, nextBidTime()))

		default:
			// 挑戰失敗：挑戰者以上限做最後表態，防守方壓回一個級距
			record(synthesizeBid(in.AuctionID, best, best.MaxAmount, nextBidTime()))
			response := min(opponent.MaxAmount, MinimumNextBid(best.MaxAmount, in.ReservePrice))
			record(synthesizeBid(in.AuctionID, opponent, response, nextBidTime()))
		}
	}

	result.AutoBids = autoBids
	result.Leader = trigger
	return result
}

// synthesizeBid 以自動出價指示為名義合成一筆代理出價，並更新指示的狀態
func synthesizeBid(auctionID uuid.UUID, ab *models.AutoBid, amount int64, bidTime time.Time) models.Bid {
	ab.CurrentBidAmount = amount
	ab.LastBidAt = &bidTime
	autoBidID := ab.ID
	return models.Bid{
		ID:         uuid.New(),
		AuctionID:  auctionID,
		BidderID:   ab.UserID,
		BidderName: ab.UserName,
		Amount:     amount,
		Origin:     models.BidOriginProxy,
		Status:     models.BidStatusAccepted,
		BidTime:    bidTime,
		AutoBidID:  &autoBidID,
	}
}
