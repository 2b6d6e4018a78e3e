package provider

import (
	"github.com/kingmidas-next/internal/cache"
	"github.com/kingmidas-next/internal/config"
	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/models"
	"github.com/kingmidas-next/internal/queue"
	"github.com/kingmidas-next/internal/repository"
	"github.com/kingmidas-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AffiliateRepo     repository.AffiliateRepository
	CommissionRepo    repository.CommissionRepository
	KingMidasRepo     repository.KingMidasRepository
	PayoutRequestRepo repository.PayoutRequestRepository

	// Services
	AttributionService *service.AttributionService
	CommissionService  *service.CommissionService
	KingMidasService   *service.KingMidasService
	PayoutService      *service.PayoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AffiliateRepo = repository.NewAffiliateRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.KingMidasRepo = repository.NewKingMidasRepository(db)
	c.PayoutRequestRepo = repository.NewPayoutRequestRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.AttributionService = service.NewAttributionService(c.AffiliateRepo)
	c.CommissionService = service.NewCommissionService(c.AffiliateRepo, c.CommissionRepo, c.KingMidasRepo)
	c.KingMidasService = service.NewKingMidasService(
		c.KingMidasRepo,
		cache.NewDistributionLock(),
		cfg.Affiliate.PoolRatePercent,
	)

	var gateway service.PayoutGateway
	if cfg.Payouts.Enabled {
		gateway = NewPaypalPayoutGateway(&cfg.Payouts)
	}
	c.PayoutService = service.NewPayoutService(
		c.PayoutRequestRepo,
		c.AffiliateRepo,
		gateway,
		service.PayoutOptions{
			Enabled:         cfg.Payouts.Enabled,
			DefaultCurrency: cfg.Payouts.Currency,
		},
	)
}
