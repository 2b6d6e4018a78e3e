package public

import (
	"errors"
	"strings"

	"github.com/kingmidas-next/internal/http/handlers/shared"
	"github.com/kingmidas-next/internal/http/response"
	"github.com/kingmidas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TrackClickRequest 推广点击上报请求
type TrackClickRequest struct {
	Code        string `json:"code" binding:"required"`
	VisitorKey  string `json:"visitor_key"`
	LandingPath string `json:"landing_path"`
	Referrer    string `json:"referrer"`
}

// TrackAffiliateClick 记录推广点击。
// 归因为尽力而为，除载荷格式错误外一律返回成功。
func (h *Handler) TrackAffiliateClick(c *gin.Context) {
	var req TrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	referrer := strings.TrimSpace(req.Referrer)
	if referrer == "" {
		referrer = c.Request.Referer()
	}
	h.AttributionService.TrackClick(service.TrackClickInput{
		AffiliateCode: req.Code,
		VisitorKey:    req.VisitorKey,
		LandingPath:   req.LandingPath,
		Referrer:      referrer,
		ClientIP:      c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})
	response.Success(c, gin.H{"tracked": true})
}

// ResolveAffiliate 按推广码查询启用中的推广者概要。
func (h *Handler) ResolveAffiliate(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	affiliate, err := h.AttributionService.ResolveByCode(code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			shared.RespondError(c, response.CodeBadRequest, "code is required", nil)
		case errors.Is(err, service.ErrNotFound):
			shared.RespondError(c, response.CodeNotFound, "affiliate not found", nil)
		default:
			shared.RespondError(c, response.CodeInternal, "resolve affiliate failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"id":              affiliate.ID,
		"code":            affiliate.Code,
		"status":          affiliate.Status,
		"commission_rate": affiliate.CommissionRate,
	})
}
