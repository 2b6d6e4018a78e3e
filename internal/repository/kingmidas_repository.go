package repository

import (
	"strings"
	"time"

	"github.com/kingmidas-next/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KingMidasRepository 点石成金日榜与分池数据访问接口
type KingMidasRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) KingMidasRepository

	AccumulateDailyProfit(stat *models.DailyStat) error
	ListStatsByDate(statDate string) ([]models.DailyStat, error)
	ResetRankings(statDate string) error
	UpdateStatRanking(id uint, rank int, poolShare decimal.Decimal) error

	UpsertPoolPayout(payout *models.PoolPayout) error
	ListPayoutsByDate(statDate string) ([]models.PoolPayout, error)
}

// GormKingMidasRepository GORM 点石成金仓储
type GormKingMidasRepository struct {
	db *gorm.DB
}

// NewKingMidasRepository 创建点石成金仓储
func NewKingMidasRepository(db *gorm.DB) *GormKingMidasRepository {
	return &GormKingMidasRepository{db: db}
}

// WithTx 绑定事务
func (r *GormKingMidasRepository) WithTx(tx *gorm.DB) KingMidasRepository {
	if tx == nil {
		return r
	}
	return &GormKingMidasRepository{db: tx}
}

// Transaction 执行事务
func (r *GormKingMidasRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// AccumulateDailyProfit 按 (推广者, 日期) 累加当日利润，冲突时走累加更新。
func (r *GormKingMidasRepository) AccumulateDailyProfit(stat *models.DailyStat) error {
	if stat == nil || strings.TrimSpace(stat.AffiliateID) == "" || strings.TrimSpace(stat.StatDate) == "" {
		return nil
	}
	return normalizeSchemaErr(r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "affiliate_id"}, {Name: "stat_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"profit_generated": gorm.Expr("profit_generated + ?", stat.ProfitGenerated),
			"updated_at":       time.Now(),
		}),
	}).Create(stat).Error)
}

// ListStatsByDate 按日期列出日榜记录，保持写入顺序供稳定排序使用。
func (r *GormKingMidasRepository) ListStatsByDate(statDate string) ([]models.DailyStat, error) {
	if strings.TrimSpace(statDate) == "" {
		return nil, nil
	}
	var stats []models.DailyStat
	if err := r.db.Where("stat_date = ?", statDate).
		Order("created_at ASC, id ASC").
		Find(&stats).Error; err != nil {
		return nil, normalizeSchemaErr(err)
	}
	return stats, nil
}

// ResetRankings 清空指定日期的名次与分成，便于重算时保持幂等。
func (r *GormKingMidasRepository) ResetRankings(statDate string) error {
	if strings.TrimSpace(statDate) == "" {
		return nil
	}
	return normalizeSchemaErr(r.db.Model(&models.DailyStat{}).
		Where("stat_date = ?", statDate).
		Updates(map[string]interface{}{
			"rank":       nil,
			"pool_share": decimal.Zero,
			"updated_at": time.Now(),
		}).Error)
}

// UpdateStatRanking 写入名次与分成金额
func (r *GormKingMidasRepository) UpdateStatRanking(id uint, rank int, poolShare decimal.Decimal) error {
	if id == 0 {
		return nil
	}
	return normalizeSchemaErr(r.db.Model(&models.DailyStat{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rank":       rank,
			"pool_share": poolShare,
			"updated_at": time.Now(),
		}).Error)
}

// UpsertPoolPayout 写入分池发放记录，重算时仅更新名次与金额，不回退已发放状态。
func (r *GormKingMidasRepository) UpsertPoolPayout(payout *models.PoolPayout) error {
	if payout == nil || strings.TrimSpace(payout.AffiliateID) == "" || strings.TrimSpace(payout.StatDate) == "" {
		return nil
	}
	return normalizeSchemaErr(r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "affiliate_id"}, {Name: "stat_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rank":        payout.Rank,
			"pool_amount": payout.PoolAmount,
			"updated_at":  time.Now(),
		}),
	}).Create(payout).Error)
}

// ListPayoutsByDate 按日期列出分池发放记录
func (r *GormKingMidasRepository) ListPayoutsByDate(statDate string) ([]models.PoolPayout, error) {
	if strings.TrimSpace(statDate) == "" {
		return nil, nil
	}
	var payouts []models.PoolPayout
	if err := r.db.Where("stat_date = ?", statDate).
		Order("rank ASC").
		Find(&payouts).Error; err != nil {
		return nil, normalizeSchemaErr(err)
	}
	return payouts, nil
}
