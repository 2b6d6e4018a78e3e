package repository

import (
	"errors"
	"strings"

	"github.com/kingmidas-next/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutRequestRepository 提现申请数据访问接口
type PayoutRequestRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) PayoutRequestRepository

	GetByID(id uint) (*models.PayoutRequest, error)
	GetByIDForUpdate(id uint) (*models.PayoutRequest, error)
	ListByIDs(ids []uint) ([]models.PayoutRequest, error)
	ListByIDsForUpdate(ids []uint) ([]models.PayoutRequest, error)
	Create(request *models.PayoutRequest) error
	Update(request *models.PayoutRequest) error
	List(filter PayoutRequestListFilter) ([]models.PayoutRequest, error)
}

// GormPayoutRequestRepository GORM 提现申请仓储
type GormPayoutRequestRepository struct {
	db *gorm.DB
}

// NewPayoutRequestRepository 创建提现申请仓储
func NewPayoutRequestRepository(db *gorm.DB) *GormPayoutRequestRepository {
	return &GormPayoutRequestRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPayoutRequestRepository) WithTx(tx *gorm.DB) PayoutRequestRepository {
	if tx == nil {
		return r
	}
	return &GormPayoutRequestRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPayoutRequestRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取提现申请
func (r *GormPayoutRequestRepository) GetByID(id uint) (*models.PayoutRequest, error) {
	return r.getByID(id, false)
}

// GetByIDForUpdate 按ID获取提现申请并加行锁
func (r *GormPayoutRequestRepository) GetByIDForUpdate(id uint) (*models.PayoutRequest, error) {
	return r.getByID(id, true)
}

func (r *GormPayoutRequestRepository) getByID(id uint, forUpdate bool) (*models.PayoutRequest, error) {
	if id == 0 {
		return nil, nil
	}
	query := r.db.Preload("Affiliate")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var request models.PayoutRequest
	if err := query.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, normalizeSchemaErr(err)
	}
	return &request, nil
}

// ListByIDs 批量获取提现申请，保持请求传入顺序。
func (r *GormPayoutRequestRepository) ListByIDs(ids []uint) ([]models.PayoutRequest, error) {
	return r.listByIDs(ids, false)
}

// ListByIDsForUpdate 批量获取提现申请并加行锁，保持请求传入顺序。
func (r *GormPayoutRequestRepository) ListByIDsForUpdate(ids []uint) ([]models.PayoutRequest, error) {
	return r.listByIDs(ids, true)
}

func (r *GormPayoutRequestRepository) listByIDs(ids []uint, forUpdate bool) ([]models.PayoutRequest, error) {
	cleaned := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			cleaned = append(cleaned, id)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}
	query := r.db.Preload("Affiliate")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var requests []models.PayoutRequest
	if err := query.Where("id IN ?", cleaned).Find(&requests).Error; err != nil {
		return nil, normalizeSchemaErr(err)
	}
	byID := make(map[uint]models.PayoutRequest, len(requests))
	for _, request := range requests {
		byID[request.ID] = request
	}
	ordered := make([]models.PayoutRequest, 0, len(requests))
	for _, id := range cleaned {
		if request, ok := byID[id]; ok {
			ordered = append(ordered, request)
		}
	}
	return ordered, nil
}

// Create 创建提现申请
func (r *GormPayoutRequestRepository) Create(request *models.PayoutRequest) error {
	if request == nil {
		return nil
	}
	return normalizeSchemaErr(r.db.Create(request).Error)
}

// Update 保存提现申请全量字段
func (r *GormPayoutRequestRepository) Update(request *models.PayoutRequest) error {
	if request == nil || request.ID == 0 {
		return nil
	}
	return normalizeSchemaErr(r.db.Save(request).Error)
}

// List 按状态查询提现申请，最新优先。
func (r *GormPayoutRequestRepository) List(filter PayoutRequestListFilter) ([]models.PayoutRequest, error) {
	query := r.db.Model(&models.PayoutRequest{})
	if strings.TrimSpace(filter.Status) != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if strings.TrimSpace(filter.AffiliateCode) != "" {
		query = query.Where("affiliate_code = ?", strings.TrimSpace(filter.AffiliateCode))
	}
	if filter.WithAffiliate {
		query = query.Preload("Affiliate")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var requests []models.PayoutRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, normalizeSchemaErr(err)
	}
	return requests, nil
}
