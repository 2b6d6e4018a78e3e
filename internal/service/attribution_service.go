package service

import (
	"errors"
	"strings"

	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/models"
	"github.com/kingmidas-next/internal/repository"
)

// AttributionService 推广归因业务服务
type AttributionService struct {
	repo repository.AffiliateRepository
}

// NewAttributionService 创建推广归因服务
func NewAttributionService(repo repository.AffiliateRepository) *AttributionService {
	return &AttributionService{repo: repo}
}

// TrackClickInput 推广点击记录输入
type TrackClickInput struct {
	AffiliateCode string
	VisitorKey    string
	LandingPath   string
	Referrer      string
	ClientIP      string
	UserAgent     string
}

// ResolveByCode 按推广码解析启用中的推广者。
// 推广码大小写不敏感；未命中或数据表未迁移时返回 ErrNotFound。
func (s *AttributionService) ResolveByCode(code string) (*models.Affiliate, error) {
	normalized := strings.TrimSpace(code)
	if normalized == "" {
		return nil, ErrValidation
	}
	affiliate, err := s.repo.GetActiveByCode(normalized)
	if err != nil {
		if errors.Is(err, repository.ErrTableMissing) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrNotFound
	}
	return affiliate, nil
}

// TrackClick 记录推广点击并自增计数。
// 归因为尽力而为：推广码无效时静默忽略，计数失败不阻断访问。
func (s *AttributionService) TrackClick(input TrackClickInput) {
	affiliate, err := s.ResolveByCode(input.AffiliateCode)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrValidation) {
			logger.Warnw("affiliate_click_resolve_failed", "code", input.AffiliateCode, "error", err)
		}
		return
	}

	if err := s.repo.IncrementClickCount(affiliate.ID); err != nil {
		logger.Warnw("affiliate_click_count_failed", "affiliate_id", affiliate.ID, "error", err)
	}

	click := &models.AffiliateClick{
		AffiliateID: affiliate.ID,
		VisitorKey:  strings.TrimSpace(input.VisitorKey),
		LandingPath: strings.TrimSpace(input.LandingPath),
		Referrer:    strings.TrimSpace(input.Referrer),
		ClientIP:    strings.TrimSpace(input.ClientIP),
		UserAgent:   strings.TrimSpace(input.UserAgent),
	}
	if err := s.repo.CreateClick(click); err != nil {
		logger.Warnw("affiliate_click_record_failed", "affiliate_id", affiliate.ID, "error", err)
	}
}
