package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AffiliateRepository 推广者数据访问接口
type AffiliateRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AffiliateRepository

	GetByID(id string) (*models.Affiliate, error)
	GetByIDForUpdate(id string) (*models.Affiliate, error)
	GetActiveByCode(code string) (*models.Affiliate, error)
	Create(affiliate *models.Affiliate) error
	Update(affiliate *models.Affiliate) error
	ListActive() ([]models.Affiliate, error)

	IncrementClickCount(id string) error
	CreateClick(click *models.AffiliateClick) error

	AddEarnings(id string, amount decimal.Decimal) error
	DeductEarningsClamped(id string, amount decimal.Decimal) error
}

// GormAffiliateRepository GORM 推广者仓储
type GormAffiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository 创建推广者仓储
func NewAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAffiliateRepository) WithTx(tx *gorm.DB) AffiliateRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAffiliateRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取推广者
func (r *GormAffiliateRepository) GetByID(id string) (*models.Affiliate, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("id = ?", id).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, normalizeSchemaErr(err)
	}
	return &affiliate, nil
}

// GetByIDForUpdate 按ID获取推广者并加行锁
func (r *GormAffiliateRepository) GetByIDForUpdate(id string) (*models.Affiliate, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, normalizeSchemaErr(err)
	}
	return &affiliate, nil
}

// GetActiveByCode 按推广码获取启用中的推广者，大小写不敏感，兼容历史列。
func (r *GormAffiliateRepository) GetActiveByCode(code string) (*models.Affiliate, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("LOWER(code) = ? OR LOWER(affiliate_code) = ?", normalized, normalized).
		Where("status = ?", constants.AffiliateStatusActive).
		First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, normalizeSchemaErr(err)
	}
	return &affiliate, nil
}

// Create 创建推广者
func (r *GormAffiliateRepository) Create(affiliate *models.Affiliate) error {
	if affiliate == nil {
		return nil
	}
	return normalizeSchemaErr(r.db.Create(affiliate).Error)
}

// Update 保存推广者全量字段
func (r *GormAffiliateRepository) Update(affiliate *models.Affiliate) error {
	if affiliate == nil || strings.TrimSpace(affiliate.ID) == "" {
		return nil
	}
	return normalizeSchemaErr(r.db.Save(affiliate).Error)
}

// ListActive 列出全部启用中的推广者
func (r *GormAffiliateRepository) ListActive() ([]models.Affiliate, error) {
	var affiliates []models.Affiliate
	if err := r.db.Where("status = ?", constants.AffiliateStatusActive).
		Order("created_at ASC").
		Find(&affiliates).Error; err != nil {
		return nil, normalizeSchemaErr(err)
	}
	return affiliates, nil
}

// IncrementClickCount 点击计数自增，单条 UPDATE 保证原子。
func (r *GormAffiliateRepository) IncrementClickCount(id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return normalizeSchemaErr(r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"click_count": gorm.Expr("click_count + 1"),
			"updated_at":  time.Now(),
		}).Error)
}

// CreateClick 记录点击事件
func (r *GormAffiliateRepository) CreateClick(click *models.AffiliateClick) error {
	if click == nil {
		return nil
	}
	return normalizeSchemaErr(r.db.Create(click).Error)
}

// AddEarnings 增加累计收益
func (r *GormAffiliateRepository) AddEarnings(id string, amount decimal.Decimal) error {
	if strings.TrimSpace(id) == "" || amount.IsZero() {
		return nil
	}
	return normalizeSchemaErr(r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
			"updated_at":     time.Now(),
		}).Error)
}

// DeductEarningsClamped 扣减累计收益，单条 UPDATE 钳制下限为 0。
func (r *GormAffiliateRepository) DeductEarningsClamped(id string, amount decimal.Decimal) error {
	if strings.TrimSpace(id) == "" || amount.Sign() <= 0 {
		return nil
	}
	expr := greatestExpr(r.db, "total_earnings - ?", "0")
	return normalizeSchemaErr(r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_earnings": gorm.Expr(expr, amount),
			"updated_at":     time.Now(),
		}).Error)
}
