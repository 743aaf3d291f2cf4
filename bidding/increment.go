package bidding

// incrementTier 定義一個價格區間的最小加價幅度
type incrementTier struct {
	From      int64
	Increment int64
}

// incrementSchedule 是唯一權威的加價表，由低到高排序
// 前端顯示用的加價表必須以這份為準，不允許各自維護副本
var incrementSchedule = []incrementTier{
	{From: 0, Increment: 5},
	{From: 100, Increment: 10},
	{From: 500, Increment: 25},
	{From: 1000, Increment: 50},
	{From: 5000, Increment: 100},
	{From: 10000, Increment: 250},
	{From: 25000, Increment: 500},
	{From: 50000, Increment: 1000},
	{From: 100000, Increment: 2500},
	{From: 250000, Increment: 5000},
	{From: 500000, Increment: 10000},
}

// IncrementFor 返回目前價格對應的最小加價幅度
// 對所有非負輸入都有定義；負數視為0處理
func IncrementFor(amount int64) int64 {
	increment := incrementSchedule[0].Increment
	for _, tier := range incrementSchedule {
		if amount < tier.From {
			break
		}
		increment = tier.Increment
	}
	return increment
}

// MinimumNextBid 計算要取得領先所需的最低出價
// 尚無人出價時，最低出價是底價(無底價則為1)；否則是目前價格加上對應級距
func MinimumNextBid(currentPrice, reservePrice int64) int64 {
	if currentPrice <= 0 {
		if reservePrice > 0 {
			return reservePrice
		}
		return 1
	}
	return currentPrice + IncrementFor(currentPrice)
}
