package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/kingmidas-next/internal/http/handlers/shared"
	"github.com/kingmidas-next/internal/http/response"
	"github.com/kingmidas-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAffiliateCommissions 分页查询佣金流水。
func (h *Handler) ListAffiliateCommissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	filter := repository.CommissionListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: strings.TrimSpace(c.Query("affiliate_id")),
		Status:      strings.TrimSpace(c.Query("status")),
		Source:      strings.TrimSpace(c.Query("source")),
	}

	if raw := strings.TrimSpace(c.Query("created_from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			shared.RespondError(c, response.CodeBadRequest, "created_from must be formatted as YYYY-MM-DD", err)
			return
		}
		filter.CreatedFrom = &parsed
	}
	if raw := strings.TrimSpace(c.Query("created_to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			shared.RespondError(c, response.CodeBadRequest, "created_to must be formatted as YYYY-MM-DD", err)
			return
		}
		// 截止日期取当天结束
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		filter.CreatedTo = &end
	}

	commissions, total, err := h.CommissionService.ListCommissions(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, commissions, response.BuildPagination(page, pageSize, total))
}
