package admin

import (
	"strings"

	"github.com/kingmidas-next/internal/http/handlers/shared"
	"github.com/kingmidas-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// DistributeRequest 分池触发请求
type DistributeRequest struct {
	Date string `json:"date"`
}

// DistributeKingMidasPool 触发指定日期的日榜分池，日期缺省为当天。
// 由定时任务通过共享密钥调用，也可由管理端手工触发。
func (h *Handler) DistributeKingMidasPool(c *gin.Context) {
	var req DistributeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			shared.RespondError(c, response.CodeBadRequest, "invalid request payload", err)
			return
		}
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = strings.TrimSpace(c.Query("date"))
	}

	result, err := h.KingMidasService.DistributePool(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// GetKingMidasStats 查询指定日期的日榜明细。
func (h *Handler) GetKingMidasStats(c *gin.Context) {
	stats, err := h.KingMidasService.StatsByDate(strings.TrimSpace(c.Query("date")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"stats": stats,
		"count": len(stats),
	})
}

// GetKingMidasPayouts 查询指定日期的奖池发放记录。
func (h *Handler) GetKingMidasPayouts(c *gin.Context) {
	payouts, err := h.KingMidasService.PayoutsByDate(strings.TrimSpace(c.Query("date")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"payouts": payouts,
		"count":   len(payouts),
	})
}
