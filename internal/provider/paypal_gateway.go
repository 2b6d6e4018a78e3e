package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kingmidas-next/internal/config"
	"github.com/kingmidas-next/internal/payment/paypalpayouts"
	"github.com/kingmidas-next/internal/service"
)

// PaypalPayoutGateway 将 PayPal 批量打款渠道适配为业务层网关接口。
type PaypalPayoutGateway struct {
	cfg *paypalpayouts.Config
}

// NewPaypalPayoutGateway 创建 PayPal 打款网关
func NewPaypalPayoutGateway(cfg *config.PayoutsConfig) *PaypalPayoutGateway {
	channelCfg := &paypalpayouts.Config{
		ClientID:     cfg.Paypal.ClientID,
		ClientSecret: cfg.Paypal.ClientSecret,
		BaseURL:      cfg.Paypal.BaseURL,
		EmailSubject: cfg.Paypal.EmailSubject,
		EmailMessage: cfg.Paypal.EmailMessage,
	}
	channelCfg.Normalize()
	return &PaypalPayoutGateway{cfg: channelCfg}
}

// CreatePayoutBatch 提交批量打款批次。
func (g *PaypalPayoutGateway) CreatePayoutBatch(ctx context.Context, items []service.PayoutGatewayItem) (string, string, error) {
	channelItems := make([]paypalpayouts.PayoutItem, 0, len(items))
	for _, item := range items {
		channelItems = append(channelItems, paypalpayouts.PayoutItem{
			SenderItemID: fmt.Sprintf("payout-%d", item.RequestID),
			Receiver:     item.Destination,
			Amount:       item.Amount.Round(2).StringFixed(2),
			Currency:     item.Currency,
			Note:         item.Note,
		})
	}
	result, err := paypalpayouts.CreatePayoutBatch(ctx, g.cfg, uuid.NewString(), channelItems)
	if err != nil {
		return "", "", err
	}
	return result.BatchID, result.BatchStatus, nil
}

// GetPayoutBatchStatus 查询批次状态。
func (g *PaypalPayoutGateway) GetPayoutBatchStatus(ctx context.Context, batchID string) (string, error) {
	result, err := paypalpayouts.GetPayoutBatchStatus(ctx, g.cfg, batchID)
	if err != nil {
		return "", err
	}
	return result.BatchStatus, nil
}
