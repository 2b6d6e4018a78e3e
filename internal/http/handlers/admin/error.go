package admin

import (
	"errors"

	"github.com/kingmidas-next/internal/http/handlers/shared"
	"github.com/kingmidas-next/internal/http/response"
	"github.com/kingmidas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError 将业务错误映射为统一错误响应。
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		shared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
	case errors.Is(err, service.ErrNotFound):
		shared.RespondError(c, response.CodeNotFound, "record not found", nil)
	case errors.Is(err, service.ErrNotConfigured):
		shared.RespondError(c, response.CodeBadRequest, "payouts are not configured", nil)
	case errors.Is(err, service.ErrPayoutStateInvalid):
		shared.RespondError(c, response.CodeBadRequest, "invalid payout state transition", nil)
	case errors.Is(err, service.ErrDistributionLocked):
		shared.RespondError(c, response.CodeTooManyRequests, "distribution already running", nil)
	case errors.Is(err, service.ErrGatewayUnavailable):
		shared.RespondError(c, response.CodeInternal, "payout gateway unavailable", err)
	default:
		shared.RespondError(c, response.CodeInternal, "internal error", err)
	}
}
