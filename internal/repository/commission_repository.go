package repository

import (
	"errors"
	"strings"

	"github.com/kingmidas-next/internal/models"
	"gorm.io/gorm"
)

// CommissionRepository 佣金流水数据访问接口
type CommissionRepository interface {
	WithTx(tx *gorm.DB) CommissionRepository

	GetByOrderAndAffiliate(orderID, affiliateID, commissionType string) (*models.AffiliateCommission, error)
	Create(commission *models.AffiliateCommission) error
	List(filter CommissionListFilter) ([]models.AffiliateCommission, int64, error)
}

// GormCommissionRepository GORM 佣金流水仓储
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金流水仓储
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// GetByOrderAndAffiliate 按订单与推广者获取佣金记录，用于幂等判断。
func (r *GormCommissionRepository) GetByOrderAndAffiliate(orderID, affiliateID, commissionType string) (*models.AffiliateCommission, error) {
	if strings.TrimSpace(orderID) == "" || strings.TrimSpace(affiliateID) == "" {
		return nil, nil
	}
	var commission models.AffiliateCommission
	if err := r.db.Where("order_id = ? AND affiliate_id = ? AND commission_type = ?",
		orderID, affiliateID, commissionType).
		First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, normalizeSchemaErr(err)
	}
	return &commission, nil
}

// Create 创建佣金记录
func (r *GormCommissionRepository) Create(commission *models.AffiliateCommission) error {
	if commission == nil {
		return nil
	}
	return normalizeSchemaErr(r.db.Create(commission).Error)
}

// List 分页查询佣金流水
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.AffiliateCommission, int64, error) {
	query := r.db.Model(&models.AffiliateCommission{})
	if strings.TrimSpace(filter.AffiliateID) != "" {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if strings.TrimSpace(filter.Status) != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if strings.TrimSpace(filter.Source) != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, normalizeSchemaErr(err)
	}

	var commissions []models.AffiliateCommission
	if err := applyPagination(query.Order("created_at DESC"), filter.Page, filter.PageSize).
		Find(&commissions).Error; err != nil {
		return nil, 0, normalizeSchemaErr(err)
	}
	return commissions, total, nil
}
