package public

import (
	"errors"
	"strings"
	"time"

	"github.com/kingmidas-next/internal/http/handlers/shared"
	"github.com/kingmidas-next/internal/http/response"
	"github.com/kingmidas-next/internal/service"
	"github.com/shopspring/decimal"

	"github.com/gin-gonic/gin"
)

// OrderPaidRequest 订单支付成功回调载荷
type OrderPaidRequest struct {
	OrderID       string `json:"order_id" binding:"required"`
	AffiliateCode string `json:"affiliate_code"`
	GrossAmount   string `json:"gross_amount" binding:"required"`
	ProductCost   string `json:"product_cost"`
	Source        string `json:"source"`
	PaidAt        string `json:"paid_at"`
}

// OrderPaid 订单支付成功钩子：累计佣金与当日利润。
// 归因失败只记日志不拦截结算，载荷格式错误除外。
func (h *Handler) OrderPaid(c *gin.Context) {
	var req OrderPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	grossAmount, err := decimal.NewFromString(strings.TrimSpace(req.GrossAmount))
	if err != nil || grossAmount.Sign() <= 0 {
		shared.RespondError(c, response.CodeBadRequest, "gross_amount must be a positive decimal", err)
		return
	}
	productCost := decimal.Zero
	if trimmed := strings.TrimSpace(req.ProductCost); trimmed != "" {
		productCost, err = decimal.NewFromString(trimmed)
		if err != nil {
			shared.RespondError(c, response.CodeBadRequest, "product_cost must be a decimal", err)
			return
		}
	}
	var paidAt time.Time
	if trimmed := strings.TrimSpace(req.PaidAt); trimmed != "" {
		paidAt, err = time.Parse(time.RFC3339, trimmed)
		if err != nil {
			shared.RespondError(c, response.CodeBadRequest, "paid_at must be RFC3339", err)
			return
		}
	}

	result, err := h.CommissionService.AccrueCommission(service.AccrueCommissionInput{
		OrderID:       req.OrderID,
		AffiliateCode: req.AffiliateCode,
		GrossAmount:   grossAmount,
		ProductCost:   productCost,
		Source:        req.Source,
		PaidAt:        paidAt,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			shared.RespondError(c, response.CodeBadRequest, "invalid accrual input", nil)
			return
		}
		// 佣金累计失败不反馈给结算方，记录后按未累计返回
		shared.RequestLog(c).Errorw("order_paid_accrual_failed", "order_id", req.OrderID, "error", err)
		response.Success(c, gin.H{"accrued": false})
		return
	}
	response.Success(c, result)
}
