package service

import (
	"errors"
	"strings"
	"time"

	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/models"
	"github.com/kingmidas-next/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var commissionRateDivisor = decimal.NewFromInt(100)

// CommissionService 佣金累计业务服务
type CommissionService struct {
	affiliateRepo  repository.AffiliateRepository
	commissionRepo repository.CommissionRepository
	kingMidasRepo  repository.KingMidasRepository
}

// NewCommissionService 创建佣金累计服务
func NewCommissionService(
	affiliateRepo repository.AffiliateRepository,
	commissionRepo repository.CommissionRepository,
	kingMidasRepo repository.KingMidasRepository,
) *CommissionService {
	return &CommissionService{
		affiliateRepo:  affiliateRepo,
		commissionRepo: commissionRepo,
		kingMidasRepo:  kingMidasRepo,
	}
}

// AccrueCommissionInput 订单成交佣金累计输入
type AccrueCommissionInput struct {
	OrderID       string
	AffiliateCode string
	GrossAmount   decimal.Decimal
	ProductCost   decimal.Decimal
	Source        string
	PaidAt        time.Time
}

// AccrueCommissionResult 佣金累计结果
type AccrueCommissionResult struct {
	Accrued     bool            `json:"accrued"`
	AffiliateID string          `json:"affiliate_id,omitempty"`
	Commission  decimal.Decimal `json:"commission,omitempty"`
	Profit      decimal.Decimal `json:"profit,omitempty"`
}

// AccrueCommission 订单支付成功后累计佣金与当日利润。
// 推广码缺失或无法解析时静默跳过，绝不让结算流程因归因失败而中断。
func (s *CommissionService) AccrueCommission(input AccrueCommissionInput) (*AccrueCommissionResult, error) {
	if strings.TrimSpace(input.OrderID) == "" {
		return nil, ErrValidation
	}
	if input.GrossAmount.Sign() <= 0 {
		return nil, ErrValidation
	}

	code := strings.TrimSpace(input.AffiliateCode)
	if code == "" {
		return &AccrueCommissionResult{Accrued: false}, nil
	}

	affiliate, err := s.affiliateRepo.GetActiveByCode(code)
	if err != nil {
		if errors.Is(err, repository.ErrTableMissing) {
			logger.Warnw("affiliate_commission_schema_missing", "order_id", input.OrderID)
			return &AccrueCommissionResult{Accrued: false}, nil
		}
		return nil, err
	}
	if affiliate == nil {
		logger.Infow("affiliate_commission_skipped", "order_id", input.OrderID, "code", code, "reason", "affiliate_not_found")
		return &AccrueCommissionResult{Accrued: false}, nil
	}

	existing, err := s.commissionRepo.GetByOrderAndAffiliate(input.OrderID, affiliate.ID, constants.CommissionTypeOrder)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Infow("affiliate_commission_duplicate", "order_id", input.OrderID, "affiliate_id", affiliate.ID)
		return &AccrueCommissionResult{Accrued: false, AffiliateID: affiliate.ID}, nil
	}

	// 利润允许为负：成本高于实收时记录负佣金，累计口径与正向一致。
	profit := input.GrossAmount.Sub(input.ProductCost)
	commissionAmount := profit.Mul(affiliate.CommissionRate.Decimal).Div(commissionRateDivisor)

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = constants.CommissionSourcePaypal
	}
	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	statDate := paidAt.Format(constants.StatDateLayout)

	err = s.affiliateRepo.Transaction(func(tx *gorm.DB) error {
		commission := &models.AffiliateCommission{
			AffiliateID:     affiliate.ID,
			OrderID:         input.OrderID,
			CommissionType:  constants.CommissionTypeOrder,
			Source:          source,
			Amount:          models.NewMoneyFromDecimal(commissionAmount),
			ProfitGenerated: models.NewMoneyFromDecimal(profit),
			ProductCost:     models.NewMoneyFromDecimal(input.ProductCost),
			Status:          constants.CommissionStatusPending,
		}
		if err := s.commissionRepo.WithTx(tx).Create(commission); err != nil {
			return err
		}

		stat := &models.DailyStat{
			AffiliateID:     affiliate.ID,
			StatDate:        statDate,
			ProfitGenerated: models.NewMoneyFromDecimal(profit),
		}
		return s.kingMidasRepo.WithTx(tx).AccumulateDailyProfit(stat)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("affiliate_commission_accrued",
		"order_id", input.OrderID,
		"affiliate_id", affiliate.ID,
		"commission", commissionAmount.String(),
		"profit", profit.String(),
		"stat_date", statDate,
	)
	return &AccrueCommissionResult{
		Accrued:     true,
		AffiliateID: affiliate.ID,
		Commission:  commissionAmount,
		Profit:      profit,
	}, nil
}

// ListCommissions 分页查询佣金流水，供管理端展示。
func (s *CommissionService) ListCommissions(filter repository.CommissionListFilter) ([]models.AffiliateCommission, int64, error) {
	commissions, total, err := s.commissionRepo.List(filter)
	if err != nil {
		if errors.Is(err, repository.ErrTableMissing) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return commissions, total, nil
}
