package router

import (
	"github.com/kingmidas-next/internal/cache"
	"github.com/kingmidas-next/internal/config"
	adminhandlers "github.com/kingmidas-next/internal/http/handlers/admin"
	publichandlers "github.com/kingmidas-next/internal/http/handlers/public"
	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	redisClient := cache.Client()
	clickRule := RateLimitRule{
		Prefix:        "ratelimit:affiliate_click",
		WindowSeconds: cfg.Affiliate.ClickRateLimit.WindowSeconds,
		MaxRequests:   cfg.Affiliate.ClickRateLimit.MaxRequests,
	}

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.POST("/affiliate/track", RateLimitMiddleware(redisClient, clickRule, KeyByIP), publicHandler.TrackAffiliateClick)
			public.GET("/affiliate/resolve", publicHandler.ResolveAffiliate)
		}

		// 上游结算回调
		hooks := apiV1.Group("/hooks")
		{
			hooks.POST("/orders/paid", publicHandler.OrderPaid)
		}

		// 定时任务触发接口（共享密钥）
		cron := apiV1.Group("/cron")
		cron.Use(CronSecretMiddleware(cfg.Cron.Secret, cfg.Server.Mode))
		{
			cron.POST("/king-midas/distribute", adminHandler.DistributeKingMidasPool)
		}

		// 管理接口（机器令牌）
		admin := apiV1.Group("/admin")
		admin.Use(AdminJWTMiddleware(cfg.JWT.SecretKey))
		{
			admin.GET("/commissions", adminHandler.ListAffiliateCommissions)
			admin.GET("/payout-requests", adminHandler.ListPayoutRequests)
			admin.POST("/payout-requests/actions", adminHandler.BatchPayoutAction)
			admin.GET("/king-midas/stats", adminHandler.GetKingMidasStats)
			admin.GET("/king-midas/payouts", adminHandler.GetKingMidasPayouts)
			admin.POST("/king-midas/distribute", adminHandler.DistributeKingMidasPool)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
