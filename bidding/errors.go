package bidding

import (
	"errors"
)

var (
	// ErrAuctionNotLive 拍賣不存在或不在可出價狀態
	ErrAuctionNotLive = errors.New("auction is not live")
	// ErrSellerCannotBid 賣家不得對自己的拍賣出價
	ErrSellerCannotBid = errors.New("seller cannot bid on own auction")
	// ErrBusy 在限時內拿不到該拍賣的出價鎖，呼叫端應退避後重試
	ErrBusy = errors.New("auction is busy, retry later")
	// ErrAutoBidNotFound 自動出價指示不存在
	ErrAutoBidNotFound = errors.New("auto bid not found")
	// ErrBidNotFound 出價紀錄不存在
	ErrBidNotFound = errors.New("bid not found")
	// ErrCeilingNotRaised 自動出價上限只允許調高，不允許調低
	ErrCeilingNotRaised = errors.New("auto bid ceiling can only be raised")
)
