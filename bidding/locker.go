//go:generate mockgen -package=bidding -destination=locker_mock.go -source=locker.go

package bidding

import (
	"context"

	"github.com/google/uuid"
)

// IAuctionLocker 定義了同一個拍賣的出價序列化進出的介面
// 同一拍賣的admission必須一次一個，不同拍賣之間完全平行
// 拿不到鎖必須在限時內回報ErrBusy，不允許無限期阻塞呼叫端
type IAuctionLocker interface {
	// Acquire 取得指定拍賣的排他區段
	// 成功時返回帶鎖狀態的context與釋放函式；限時內拿不到鎖返回ErrBusy
	Acquire(ctx context.Context, auctionID uuid.UUID) (context.Context, func(), error)
}
