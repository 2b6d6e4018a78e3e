package worker

import (
	"context"
	"errors"
	"time"

	"github.com/kingmidas-next/internal/config"
	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	distributeScheduleInterval = time.Minute
)

// Service 异步队列服务
type Service struct {
	name           string
	server         *asynq.Server
	mux            *asynq.ServeMux
	consumer       *Consumer
	distributeHour int
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, affiliateCfg *config.AffiliateConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	distributeHour := 0
	if affiliateCfg != nil && affiliateCfg.DistributeHour >= 0 && affiliateCfg.DistributeHour <= 23 {
		distributeHour = affiliateCfg.DistributeHour
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:           "worker",
		server:         server,
		mux:            mux,
		consumer:       consumer,
		distributeHour: distributeHour,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.QueueClient.Enabled() {
		go s.runDistributeScheduleLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runDistributeScheduleLoop 每日到点入队分池任务。
// TaskID 按日期去重，多实例同时到点只会入队一次。
func (s *Service) runDistributeScheduleLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || !s.consumer.QueueClient.Enabled() {
		return
	}
	var lastEnqueued string
	runOnce := func() {
		now := time.Now()
		if now.Hour() != s.distributeHour {
			return
		}
		statDate := now.Format(constants.StatDateLayout)
		if statDate == lastEnqueued {
			return
		}
		err := s.consumer.QueueClient.EnqueueKingMidasDistribute(queue.KingMidasDistributePayload{
			StatDate: statDate,
		})
		if err != nil {
			logger.Warnw("worker_distribute_enqueue_failed", "stat_date", statDate, "error", err)
			return
		}
		lastEnqueued = statDate
		logger.Infow("worker_distribute_enqueued", "stat_date", statDate)
	}
	runOnce()

	ticker := time.NewTicker(distributeScheduleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
