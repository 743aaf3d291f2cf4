package bidding

import (
	"bytes"

	"github.com/samber/lo"

	"bidcore/models"
)

// Standing 是由出價帳本推導出來的讀取模型
// 它不是獨立的儲存，撤回出價後重新計算必須得到一致的結果
type Standing struct {
	// Leader 目前領先的出價，無人出價時為nil
	Leader *models.Bid
	// CurrentPrice 目前價格，即領先出價的金額，無人出價時為0
	CurrentPrice int64
	// SecondHighest 其餘有效出價中的最高金額，用於計算代理出價的實際成交價
	SecondHighest int64
	// MinimumNext 要取得領先所需的最低出價
	MinimumNext int64
}

// ResolveStanding 從帳本狀態計算目前的競價情勢
// 只考慮Accepted且未撤回的出價；同額出價由較早的BidTime勝出，
// 避免代理出價僅僅追平就搶走領先權
func ResolveStanding(bids []models.Bid, reservePrice int64) Standing {
	accepted := lo.Filter(bids, func(bid models.Bid, _ int) bool {
		return bid.Status == models.BidStatusAccepted
	})

	standing := Standing{}
	for i := range accepted {
		bid := &accepted[i]
		if standing.Leader == nil || beats(bid, standing.Leader) {
			standing.Leader = bid
		}
	}
	if standing.Leader != nil {
		standing.CurrentPrice = standing.Leader.Amount
		for i := range accepted {
			bid := &accepted[i]
			if bid.ID == standing.Leader.ID {
				continue
			}
			if bid.Amount > standing.SecondHighest {
				standing.SecondHighest = bid.Amount
			}
		}
	}
	standing.MinimumNext = MinimumNextBid(standing.CurrentPrice, reservePrice)
	return standing
}

// beats 判斷a是否優先於b：金額高者勝，同額時較早出價者勝
func beats(a, b *models.Bid) bool {
	if a.Amount != b.Amount {
		return a.Amount > b.Amount
	}
	if !a.BidTime.Equal(b.BidTime) {
		return a.BidTime.Before(b.BidTime)
	}
	// BidTime在同一拍賣內由鎖內線性化賦值，理論上不會相等
	// 仍以ID做最後的確定性比較，保證重算結果穩定
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
