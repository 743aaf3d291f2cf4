package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	redisAdapter "bidcore/adapters/redis"
	"bidcore/bidding"
	"bidcore/models"
)

// RegisterRoutes 將所有端點掛載到router
func (impl *ServerImpl) RegisterRoutes(router gin.IRouter) {
	router.POST("/auction/:auctionID/bids", impl.PostAuctionBid)
	router.POST("/auction/:auctionID/autobids", impl.PostAuctionAutoBid)
	router.DELETE("/autobids/:autoBidID", impl.DeleteAutoBid)
	router.GET("/auction/:auctionID/standing", impl.GetAuctionStanding)
	router.GET("/auction/:auctionID/events", impl.GetAuctionEvents)
	router.POST("/auction/:auctionID/bids/:bidID/retraction", impl.PostBidRetraction)
}

type placeBidRequest struct {
	BidderID   uuid.UUID `json:"bidder_id" binding:"required"`
	BidderName string    `json:"bidder_name" binding:"required"`
	Amount     int64     `json:"amount" binding:"required,gt=0"`
}

type placeBidResponse struct {
	BidID        uuid.UUID `json:"bid_id"`
	Accepted     bool      `json:"accepted"`
	Amount       int64     `json:"amount"`
	BidTime      time.Time `json:"bid_time"`
	Reason       *string   `json:"reason,omitempty"`
	MinimumNext  *int64    `json:"minimum_next,omitempty"`
	LeaderAmount int64     `json:"leader_amount"`
	Replayed     bool      `json:"replayed"`
}

// Place a bid on an auction
// (POST /auction/{auctionID}/bids)
func (impl *ServerImpl) PostAuctionBid(c *gin.Context) {
	const op = "PostAuctionBid"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}
	var request placeBidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	// 呼叫端沒給requestID就當場生成一個，重試時必須自帶同一個ID才有冪等保障
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	result, err := impl.ledger.PlaceBid(c.Request.Context(), auctionID, request.BidderID, request.BidderName, request.Amount, requestID)
	if err != nil {
		if errors.Is(err, bidding.ErrBusy) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "auction is busy, retry later"})
			return
		}
		slog.Error("Fail to place bid", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	response := placeBidResponse{
		BidID:        result.BidID,
		Accepted:     result.Accepted,
		Amount:       result.Amount,
		BidTime:      result.BidTime,
		LeaderAmount: result.LeaderAmount,
		Replayed:     result.Replayed,
	}
	if !result.Accepted {
		response.Reason = lo.ToPtr(string(result.Reason))
		if result.Reason == bidding.RejectBidTooLow {
			response.MinimumNext = lo.ToPtr(result.MinimumNext)
		}
		c.JSON(statusForRejection(result.Reason), response)
		return
	}

	impl.refreshStanding(c, auctionID)
	if result.Replayed {
		c.JSON(http.StatusOK, response)
		return
	}
	c.JSON(http.StatusCreated, response)
}

type registerAutoBidRequest struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	UserName  string    `json:"user_name" binding:"required"`
	MaxAmount int64     `json:"max_amount" binding:"required,gt=0"`
}

type registerAutoBidResponse struct {
	AutoBidID    uuid.UUID `json:"auto_bid_id"`
	MaxAmount    int64     `json:"max_amount"`
	IsActive     bool      `json:"is_active"`
	LeaderAmount int64     `json:"leader_amount"`
}

// Register or raise an auto-bid instruction
// (POST /auction/{auctionID}/autobids)
func (impl *ServerImpl) PostAuctionAutoBid(c *gin.Context) {
	const op = "PostAuctionAutoBid"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}
	var request registerAutoBidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := impl.ledger.RegisterAutoBid(c.Request.Context(), auctionID, request.UserID, request.UserName, request.MaxAmount)
	if err != nil {
		switch {
		case errors.Is(err, bidding.ErrAuctionNotLive):
			c.JSON(http.StatusGone, gin.H{"message": "auction is not live"})
		case errors.Is(err, bidding.ErrSellerCannotBid):
			c.JSON(http.StatusForbidden, gin.H{"message": "seller cannot bid on own auction"})
		case errors.Is(err, bidding.ErrCeilingNotRaised):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "ceiling can only be raised"})
		case errors.Is(err, bidding.ErrBusy):
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "auction is busy, retry later"})
		default:
			slog.Error("Fail to register auto bid", slog.String("op", op), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	impl.refreshStanding(c, auctionID)
	c.JSON(http.StatusCreated, registerAutoBidResponse{
		AutoBidID:    result.AutoBidID,
		MaxAmount:    result.MaxAmount,
		IsActive:     result.IsActive,
		LeaderAmount: result.LeaderAmount,
	})
}

// Cancel an auto-bid instruction
// (DELETE /autobids/{autoBidID})
func (impl *ServerImpl) DeleteAutoBid(c *gin.Context) {
	const op = "DeleteAutoBid"
	autoBidID, err := uuid.Parse(c.Param("autoBidID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auto bid id"})
		return
	}
	userID, err := uuid.Parse(c.GetHeader("X-User-ID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing or invalid X-User-ID header"})
		return
	}

	if err := impl.ledger.CancelAutoBid(c.Request.Context(), autoBidID, userID); err != nil {
		switch {
		case errors.Is(err, bidding.ErrAutoBidNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "auto bid not found"})
		case errors.Is(err, bidding.ErrBusy):
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "auction is busy, retry later"})
		default:
			slog.Error("Fail to cancel auto bid", slog.String("op", op), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

type standingResponse struct {
	LeaderBidderID *uuid.UUID `json:"leader_bidder_id,omitempty"`
	CurrentPrice   int64      `json:"current_price"`
	MinimumNext    int64      `json:"minimum_next"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Get the current standing of an auction
// (GET /auction/{auctionID}/standing)
func (impl *ServerImpl) GetAuctionStanding(c *gin.Context) {
	const op = "GetAuctionStanding"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}

	// 快照命中就不碰資料庫
	if snapshot, ok, err := impl.standingStore.Load(c.Request.Context(), auctionID); err == nil && ok {
		response := standingResponse{
			CurrentPrice: snapshot.CurrentPrice,
			MinimumNext:  snapshot.MinimumNext,
			UpdatedAt:    snapshot.UpdatedAt,
		}
		if snapshot.LeaderBidderID != uuid.Nil {
			response.LeaderBidderID = lo.ToPtr(snapshot.LeaderBidderID)
		}
		c.JSON(http.StatusOK, response)
		return
	}

	standing, err := impl.ledger.Standing(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, bidding.ErrAuctionNotLive) {
			c.JSON(http.StatusNotFound, gin.H{"message": "auction not found"})
			return
		}
		slog.Error("Fail to resolve standing", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	response := standingResponse{
		CurrentPrice: standing.CurrentPrice,
		MinimumNext:  standing.MinimumNext,
		UpdatedAt:    time.Now(),
	}
	if standing.Leader != nil {
		response.LeaderBidderID = lo.ToPtr(standing.Leader.BidderID)
	}
	impl.saveSnapshot(c, auctionID, standing)
	c.JSON(http.StatusOK, response)
}

// Subscribe to the live outcome event feed of an auction
// (GET /auction/{auctionID}/events)
func (impl *ServerImpl) GetAuctionEvents(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}

	ch, err := impl.sseManager.Subscribe(auctionID.String())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "event feed unavailable"})
		return
	}
	defer impl.sseManager.Unsubscribe(auctionID.String(), ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Kind), event)
			return true
		}
	})
}

type retractionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Administratively retract an accepted bid
// (POST /auction/{auctionID}/bids/{bidID}/retraction)
func (impl *ServerImpl) PostBidRetraction(c *gin.Context) {
	const op = "PostBidRetraction"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}
	bidID, err := uuid.Parse(c.Param("bidID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid bid id"})
		return
	}
	var request retractionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	// 確認出價屬於路徑上的拍賣，避免跨拍賣誤撤
	var bid models.Bid
	if result := impl.db.WithContext(c.Request.Context()).First(&bid, "id = ? AND auction_id = ?", bidID, auctionID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "bid not found"})
			return
		}
		slog.Error("Fail to find bid", slog.String("op", op), slog.Any("error", result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	if err := impl.ledger.RetractBid(c.Request.Context(), bidID, request.Reason); err != nil {
		switch {
		case errors.Is(err, bidding.ErrBidNotFound):
			c.JSON(http.StatusConflict, gin.H{"message": "bid is not retractable"})
		case errors.Is(err, bidding.ErrBusy):
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "auction is busy, retry later"})
		default:
			slog.Error("Fail to retract bid", slog.String("op", op), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	impl.refreshStanding(c, auctionID)
	c.Status(http.StatusNoContent)
}

func statusForRejection(reason bidding.RejectReason) int {
	switch reason {
	case bidding.RejectAuctionNotLive:
		return http.StatusGone
	case bidding.RejectSellerCannotBid:
		return http.StatusForbidden
	case bidding.RejectBidTooLow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// refreshStanding 在成功的異動後重算並覆寫快照
// 快照只是讀取加速，失敗不影響主流程
func (impl *ServerImpl) refreshStanding(c *gin.Context, auctionID uuid.UUID) {
	standing, err := impl.ledger.Standing(c.Request.Context(), auctionID)
	if err != nil {
		slog.Warn("Fail to refresh standing snapshot", slog.Any("error", err))
		return
	}
	impl.saveSnapshot(c, auctionID, standing)
}

func (impl *ServerImpl) saveSnapshot(c *gin.Context, auctionID uuid.UUID, standing bidding.Standing) {
	snapshot := redisAdapter.StandingSnapshot{
		CurrentPrice: standing.CurrentPrice,
		MinimumNext:  standing.MinimumNext,
		UpdatedAt:    time.Now(),
	}
	if standing.Leader != nil {
		snapshot.LeaderBidderID = standing.Leader.BidderID
	}
	if err := impl.standingStore.Save(c.Request.Context(), auctionID, snapshot); err != nil {
		slog.Warn("Fail to save standing snapshot", slog.Any("error", err))
	}
}
