package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/provider"
	"github.com/kingmidas-next/internal/queue"
	"github.com/kingmidas-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskKingMidasDistribute, c.handleKingMidasDistribute)
}

func (c *Consumer) handleKingMidasDistribute(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_king_midas_distribute_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.KingMidasDistributePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_king_midas_distribute_unmarshal_failed", "error", err)
		return err
	}
	if c.KingMidasService == nil {
		logger.Warnw("worker_king_midas_distribute_skip_service_nil", "stat_date", payload.StatDate)
		return nil
	}

	result, err := c.KingMidasService.DistributePool(ctx, payload.StatDate)
	if err != nil {
		// 另一实例正在分配同一日期，无需重试
		if errors.Is(err, service.ErrDistributionLocked) {
			logger.Infow("worker_king_midas_distribute_locked", "stat_date", payload.StatDate)
			return nil
		}
		logger.Warnw("worker_king_midas_distribute_failed", "stat_date", payload.StatDate, "error", err)
		return err
	}
	logger.Infow("worker_king_midas_distribute_done",
		"stat_date", result.StatDate,
		"distributed", result.Distributed,
	)
	return nil
}
