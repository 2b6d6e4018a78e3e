package admin

import (
	"strconv"
	"strings"

	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/http/handlers/shared"
	"github.com/kingmidas-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListPayoutRequests 查询提现申请列表。
func (h *Handler) ListPayoutRequests(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondError(c, response.CodeBadRequest, "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	requests, err := h.PayoutService.List(status, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// PayoutActionRequest 批量提现操作请求
type PayoutActionRequest struct {
	RequestIDs []uint `json:"request_ids" binding:"required"`
	Action     string `json:"action" binding:"required"`
	Note       string `json:"note"`
}

// BatchPayoutAction 批量执行提现申请操作。
func (h *Handler) BatchPayoutAction(c *gin.Context) {
	var req PayoutActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	action := strings.TrimSpace(req.Action)
	switch action {
	case constants.PayoutActionApprove,
		constants.PayoutActionMarkPaid,
		constants.PayoutActionReject,
		constants.PayoutActionCancel:
		result, err := h.PayoutService.UpdateStatus(req.RequestIDs, action, req.Note)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.Success(c, result)
	case constants.PayoutActionPayPaypal:
		result, err := h.PayoutService.PayViaPaypal(c.Request.Context(), req.RequestIDs)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.Success(c, result)
	case constants.PayoutActionCheckPaypal:
		statuses, err := h.PayoutService.CheckPaypalStatus(c.Request.Context(), req.RequestIDs)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.Success(c, gin.H{"batches": statuses})
	default:
		shared.RespondError(c, response.CodeBadRequest, "unknown action", nil)
	}
}
