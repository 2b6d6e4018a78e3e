package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/models"
	"github.com/kingmidas-next/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	payoutListDefaultLimit = 50
	payoutListMaxLimit     = 200
)

// PayoutGatewayItem 批量打款单项
type PayoutGatewayItem struct {
	RequestID     uint
	AffiliateCode string
	Amount        decimal.Decimal
	Currency      string
	Destination   string
	Note          string
}

// PayoutGateway 外部批量打款网关
type PayoutGateway interface {
	CreatePayoutBatch(ctx context.Context, items []PayoutGatewayItem) (batchID, batchStatus string, err error)
	GetPayoutBatchStatus(ctx context.Context, batchID string) (status string, err error)
}

// PayoutOptions 提现业务配置
type PayoutOptions struct {
	Enabled         bool
	DefaultCurrency string
}

// PayoutService 提现申请业务服务
type PayoutService struct {
	repo          repository.PayoutRequestRepository
	affiliateRepo repository.AffiliateRepository
	gateway       PayoutGateway
	options       PayoutOptions
}

// NewPayoutService 创建提现申请服务
func NewPayoutService(
	repo repository.PayoutRequestRepository,
	affiliateRepo repository.AffiliateRepository,
	gateway PayoutGateway,
	options PayoutOptions,
) *PayoutService {
	if strings.TrimSpace(options.DefaultCurrency) == "" {
		options.DefaultCurrency = "USD"
	}
	return &PayoutService{
		repo:          repo,
		affiliateRepo: affiliateRepo,
		gateway:       gateway,
		options:       options,
	}
}

// List 按状态查询提现申请，限制单次最多 200 条。
func (s *PayoutService) List(status string, limit int) ([]models.PayoutRequest, error) {
	if limit <= 0 {
		limit = payoutListDefaultLimit
	}
	if limit > payoutListMaxLimit {
		limit = payoutListMaxLimit
	}
	return s.repo.List(repository.PayoutRequestListFilter{
		Status:        strings.TrimSpace(status),
		Limit:         limit,
		WithAffiliate: true,
	})
}

// payoutTransitions 各动作允许的起始状态与目标状态
var payoutTransitions = map[string]struct {
	from []string
	to   string
}{
	constants.PayoutActionApprove:  {from: []string{constants.PayoutRequestStatusPending}, to: constants.PayoutRequestStatusApproved},
	constants.PayoutActionMarkPaid: {from: []string{constants.PayoutRequestStatusApproved}, to: constants.PayoutRequestStatusPaid},
	constants.PayoutActionReject:   {from: []string{constants.PayoutRequestStatusPending, constants.PayoutRequestStatusApproved}, to: constants.PayoutRequestStatusRejected},
	constants.PayoutActionCancel:   {from: []string{constants.PayoutRequestStatusPending, constants.PayoutRequestStatusApproved}, to: constants.PayoutRequestStatusCancelled},
}

// PayoutSkipped 批量操作中被跳过的申请
type PayoutSkipped struct {
	RequestID uint   `json:"request_id"`
	Reason    string `json:"reason"`
}

// PayoutBatchResult 批量状态流转结果
type PayoutBatchResult struct {
	Updated  int                    `json:"updated"`
	Requests []models.PayoutRequest `json:"requests"`
	Skipped  []PayoutSkipped        `json:"skipped,omitempty"`
}

// UpdateStatus 批量执行简单状态流转（approve/mark-paid/reject/cancel）。
// 起始状态不满足的申请记入 skipped 并保持原状，不整体失败。
func (s *PayoutService) UpdateStatus(requestIDs []uint, action, note string) (*PayoutBatchResult, error) {
	transition, ok := payoutTransitions[strings.TrimSpace(action)]
	if !ok {
		return nil, ErrValidation
	}
	ids := cleanIDs(requestIDs)
	if len(ids) == 0 {
		return nil, ErrValidation
	}

	result := &PayoutBatchResult{}
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		requests, err := repo.ListByIDsForUpdate(ids)
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			return ErrNotFound
		}
		now := time.Now()
		for i := range requests {
			request := &requests[i]
			if !containsStatus(transition.from, request.Status) {
				result.Skipped = append(result.Skipped, PayoutSkipped{
					RequestID: request.ID,
					Reason:    fmt.Sprintf("invalid transition %s -> %s", request.Status, transition.to),
				})
				continue
			}
			request.Status = transition.to
			if transition.to == constants.PayoutRequestStatusApproved {
				request.ProcessedAt = nil
			} else {
				processedAt := now
				request.ProcessedAt = &processedAt
			}
			if trimmed := strings.TrimSpace(note); trimmed != "" {
				request.Notes = appendNote(request.Notes, trimmed)
			}
			if err := repo.Update(request); err != nil {
				return err
			}
			result.Updated++
			result.Requests = append(result.Requests, *request)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payout_requests_updated",
		"action", action,
		"requested", len(ids),
		"updated", result.Updated,
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// PayViaPaypalResult 批量打款结果
type PayViaPaypalResult struct {
	BatchID     string                 `json:"batch_id"`
	BatchStatus string                 `json:"batch_status"`
	Paid        int                    `json:"paid"`
	Requests    []models.PayoutRequest `json:"requests"`
	Skipped     []PayoutSkipped        `json:"skipped,omitempty"`
}

// PayViaPaypal 将处于 approved 的申请打包为一个批次提交给打款网关。
// 网关失败时申请保持 approved 并写入 error_message，可安全重试；
// 成功后置为 paid、记录批次号，并按打款金额钳制扣减推广者累计收益。
func (s *PayoutService) PayViaPaypal(ctx context.Context, requestIDs []uint) (*PayViaPaypalResult, error) {
	if !s.options.Enabled || s.gateway == nil {
		return nil, ErrNotConfigured
	}
	ids := cleanIDs(requestIDs)
	if len(ids) == 0 {
		return nil, ErrValidation
	}

	// 第一阶段：装配批次，仅接受 approved 且有收款地址的申请
	var (
		eligible []models.PayoutRequest
		items    []PayoutGatewayItem
		skipped  []PayoutSkipped
	)
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		requests, err := s.repo.WithTx(tx).ListByIDsForUpdate(ids)
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			return ErrNotFound
		}
		for i := range requests {
			request := requests[i]
			if request.Status != constants.PayoutRequestStatusApproved {
				skipped = append(skipped, PayoutSkipped{RequestID: request.ID, Reason: "not approved"})
				continue
			}
			if request.Amount.Sign() <= 0 {
				skipped = append(skipped, PayoutSkipped{RequestID: request.ID, Reason: "non-positive amount"})
				continue
			}
			destination := strings.TrimSpace(request.PaypalEmail)
			if destination == "" {
				destination = strings.TrimSpace(request.Affiliate.PaypalEmail)
			}
			if destination == "" {
				skipped = append(skipped, PayoutSkipped{RequestID: request.ID, Reason: "missing paypal email"})
				continue
			}
			currency := strings.TrimSpace(request.Currency)
			if currency == "" {
				currency = s.options.DefaultCurrency
			}
			eligible = append(eligible, request)
			items = append(items, PayoutGatewayItem{
				RequestID:     request.ID,
				AffiliateCode: request.AffiliateCode,
				Amount:        request.Amount.Decimal,
				Currency:      currency,
				Destination:   destination,
				Note:          strings.TrimSpace(request.Notes),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, ErrNotFound
	}

	// 第二阶段：调用网关，数据库事务之外执行
	batchID, batchStatus, gatewayErr := s.gateway.CreatePayoutBatch(ctx, items)
	if gatewayErr != nil {
		if err := s.repo.Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			for i := range eligible {
				request := eligible[i]
				request.Status = constants.PayoutRequestStatusApproved
				request.ErrorMessage = gatewayErr.Error()
				if err := repo.Update(&request); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			logger.Errorw("payout_gateway_failure_record_failed", "error", err)
		}
		logger.Errorw("payout_paypal_batch_failed", "requests", len(eligible), "error", gatewayErr)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, gatewayErr)
	}

	// 第三阶段：批次提交成功，落盘 paid 状态并扣减收益
	result := &PayViaPaypalResult{BatchID: batchID, BatchStatus: batchStatus, Skipped: skipped}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affiliateRepo := s.affiliateRepo.WithTx(tx)
		now := time.Now()
		for i := range eligible {
			request := eligible[i]
			request.Status = constants.PayoutRequestStatusPaid
			request.PaypalPayoutBatchID = &batchID
			request.ErrorMessage = ""
			processedAt := now
			request.ProcessedAt = &processedAt
			if err := repo.Update(&request); err != nil {
				return err
			}
			if err := affiliateRepo.DeductEarningsClamped(request.AffiliateID, request.Amount.Decimal); err != nil {
				return err
			}
			result.Paid++
			result.Requests = append(result.Requests, request)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payout_paypal_batch_submitted",
		"batch_id", batchID,
		"batch_status", batchStatus,
		"paid", result.Paid,
		"skipped", len(skipped),
	)
	return result, nil
}

// BatchStatusEntry 单个批次的状态查询结果
type BatchStatusEntry struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CheckPaypalStatus 查询申请所属批次的打款状态。
// 多个申请共享同一批次号时只查询一次；单个批次失败不影响其他批次的结果。
func (s *PayoutService) CheckPaypalStatus(ctx context.Context, requestIDs []uint) (map[string]BatchStatusEntry, error) {
	if !s.options.Enabled || s.gateway == nil {
		return nil, ErrNotConfigured
	}
	ids := cleanIDs(requestIDs)
	if len(ids) == 0 {
		return nil, ErrValidation
	}

	requests, err := s.repo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrNotFound
	}

	batchIDs := make([]string, 0, len(requests))
	seen := make(map[string]struct{}, len(requests))
	for _, request := range requests {
		if request.PaypalPayoutBatchID == nil {
			continue
		}
		batchID := strings.TrimSpace(*request.PaypalPayoutBatchID)
		if batchID == "" {
			continue
		}
		if _, ok := seen[batchID]; ok {
			continue
		}
		seen[batchID] = struct{}{}
		batchIDs = append(batchIDs, batchID)
	}

	statuses := make(map[string]BatchStatusEntry, len(batchIDs))
	for _, batchID := range batchIDs {
		status, err := s.gateway.GetPayoutBatchStatus(ctx, batchID)
		if err != nil {
			statuses[batchID] = BatchStatusEntry{Error: err.Error()}
			continue
		}
		statuses[batchID] = BatchStatusEntry{Status: status}
	}
	return statuses, nil
}

func cleanIDs(ids []uint) []uint {
	cleaned := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		cleaned = append(cleaned, id)
	}
	return cleaned
}

func containsStatus(statuses []string, status string) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func appendNote(existing, note string) string {
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + "\n" + note
}
