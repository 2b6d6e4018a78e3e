package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/models"
	"github.com/kingmidas-next/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 分池比例：奖池取当日总利润 8%，前三名分走 50%/30%/10%，剩余 10% 由第 4 名起均分。
var (
	defaultPoolRatePercent = decimal.NewFromInt(8)
	tierTopFractions       = []decimal.Decimal{
		decimal.NewFromFloat(0.5),
		decimal.NewFromFloat(0.3),
		decimal.NewFromFloat(0.1),
	}
	tierRemainderFraction = decimal.NewFromFloat(0.1)
	percentDivisor        = decimal.NewFromInt(100)
)

// DistributionLocker 分配任务的日期互斥锁
type DistributionLocker interface {
	Acquire(ctx context.Context, statDate string) (bool, error)
	Release(ctx context.Context, statDate string)
}

// KingMidasService 点石成金日榜分池业务服务
type KingMidasService struct {
	repo            repository.KingMidasRepository
	locker          DistributionLocker
	poolRatePercent decimal.Decimal
}

// NewKingMidasService 创建点石成金服务，poolRatePercent<=0 时使用默认 8%。
func NewKingMidasService(repo repository.KingMidasRepository, locker DistributionLocker, poolRatePercent int64) *KingMidasService {
	rate := defaultPoolRatePercent
	if poolRatePercent > 0 {
		rate = decimal.NewFromInt(poolRatePercent)
	}
	return &KingMidasService{
		repo:            repo,
		locker:          locker,
		poolRatePercent: rate,
	}
}

// DistributeResult 分池执行结果
type DistributeResult struct {
	StatDate    string                `json:"stat_date"`
	Distributed int                   `json:"distributed"`
	TotalProfit models.Money          `json:"total_profit"`
	TotalPool   models.Money          `json:"total_pool"`
	Rankings    []DistributeRankEntry `json:"rankings"`
}

// DistributeRankEntry 单个伙伴的名次与分成
type DistributeRankEntry struct {
	AffiliateID string       `json:"affiliate_id"`
	Rank        int          `json:"rank"`
	Profit      models.Money `json:"profit"`
	PoolShare   models.Money `json:"pool_share"`
}

// DistributePool 执行指定日期的日榜排名与奖池分配。
// 同日重复执行会重算名次并按 (affiliate_id, stat_date) 覆盖发放记录，不产生重复行。
func (s *KingMidasService) DistributePool(ctx context.Context, statDate string) (*DistributeResult, error) {
	date, err := normalizeStatDate(statDate)
	if err != nil {
		return nil, ErrValidation
	}

	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, date)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrDistributionLocked
		}
		defer s.locker.Release(ctx, date)
	}

	stats, err := s.repo.ListStatsByDate(date)
	if err != nil {
		// 读路径容忍表未迁移，视作当日无数据
		if errors.Is(err, repository.ErrTableMissing) {
			return &DistributeResult{StatDate: date, Distributed: 0}, nil
		}
		return nil, err
	}
	if len(stats) == 0 {
		logger.Infow("king_midas_distribute_empty", "stat_date", date)
		return &DistributeResult{StatDate: date, Distributed: 0}, nil
	}

	// 稳定排序：利润相同的保持写入先后顺序
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].ProfitGenerated.Decimal.GreaterThan(stats[j].ProfitGenerated.Decimal)
	})

	totalProfit := decimal.Zero
	for _, stat := range stats {
		totalProfit = totalProfit.Add(stat.ProfitGenerated.Decimal)
	}
	totalPool := totalProfit.Mul(s.poolRatePercent).Div(percentDivisor)

	shares := computePoolShares(totalPool, len(stats))

	result := &DistributeResult{
		StatDate:    date,
		TotalProfit: models.NewMoneyFromDecimal(totalProfit),
		TotalPool:   models.NewMoneyFromDecimal(totalPool),
		Rankings:    make([]DistributeRankEntry, 0, len(stats)),
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ResetRankings(date); err != nil {
			return err
		}
		for i, stat := range stats {
			rank := i + 1
			share := shares[i]
			if err := repo.UpdateStatRanking(stat.ID, rank, share); err != nil {
				return err
			}
			result.Rankings = append(result.Rankings, DistributeRankEntry{
				AffiliateID: stat.AffiliateID,
				Rank:        rank,
				Profit:      stat.ProfitGenerated,
				PoolShare:   models.NewMoneyFromDecimal(share),
			})
			if share.Sign() <= 0 {
				continue
			}
			payout := &models.PoolPayout{
				AffiliateID: stat.AffiliateID,
				StatDate:    date,
				Rank:        rank,
				PoolAmount:  models.NewMoneyFromDecimal(share),
				Status:      constants.PoolPayoutStatusPending,
			}
			if err := repo.UpsertPoolPayout(payout); err != nil {
				return err
			}
			result.Distributed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("king_midas_distributed",
		"stat_date", date,
		"participants", len(stats),
		"distributed", result.Distributed,
		"total_profit", totalProfit.String(),
		"total_pool", totalPool.String(),
	)
	return result, nil
}

// computePoolShares 计算各名次的分成金额，四舍五入到分（远离零方向）。
func computePoolShares(totalPool decimal.Decimal, count int) []decimal.Decimal {
	shares := make([]decimal.Decimal, count)
	for i := range shares {
		shares[i] = decimal.Zero
	}
	for i, fraction := range tierTopFractions {
		if i >= count {
			break
		}
		shares[i] = totalPool.Mul(fraction).Round(2)
	}
	remainderCount := count - len(tierTopFractions)
	if remainderCount <= 0 {
		// 第 4 名之后无人时剩余 10% 不分配，也不回滚给前三名
		return shares
	}
	each := totalPool.Mul(tierRemainderFraction).
		Div(decimal.NewFromInt(int64(remainderCount))).
		Round(2)
	for i := len(tierTopFractions); i < count; i++ {
		shares[i] = each
	}
	return shares
}

// normalizeStatDate 校验统计日期，空值取当天。
func normalizeStatDate(statDate string) (string, error) {
	trimmed := strings.TrimSpace(statDate)
	if trimmed == "" {
		return time.Now().Format(constants.StatDateLayout), nil
	}
	if _, err := time.Parse(constants.StatDateLayout, trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// StatsByDate 查询指定日期的日榜明细，供管理端展示。
func (s *KingMidasService) StatsByDate(statDate string) ([]models.DailyStat, error) {
	date, err := normalizeStatDate(statDate)
	if err != nil {
		return nil, ErrValidation
	}
	stats, err := s.repo.ListStatsByDate(date)
	if err != nil {
		if errors.Is(err, repository.ErrTableMissing) {
			return nil, nil
		}
		return nil, err
	}
	return stats, nil
}

// PayoutsByDate 查询指定日期的奖池发放记录，供管理端展示。
func (s *KingMidasService) PayoutsByDate(statDate string) ([]models.PoolPayout, error) {
	date, err := normalizeStatDate(statDate)
	if err != nil {
		return nil, ErrValidation
	}
	payouts, err := s.repo.ListPayoutsByDate(date)
	if err != nil {
		if errors.Is(err, repository.ErrTableMissing) {
			return nil, nil
		}
		return nil, err
	}
	return payouts, nil
}
