package main

import (
	"time"

	"github.com/kingmidas-next/internal/config"
	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/logger"
	"github.com/kingmidas-next/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加联盟伙伴
	affiliates := []models.Affiliate{
		{
			Code:           "GOLDHAND",
			Status:         constants.AffiliateStatusActive,
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			PaypalEmail:    "goldhand@example.com",
		},
		{
			Code:           "SUNRIVER",
			Status:         constants.AffiliateStatusActive,
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
			PaypalEmail:    "sunriver@example.com",
		},
		{
			Code:           "NIGHTOWL",
			Status:         constants.AffiliateStatusActive,
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.5)),
			PaypalEmail:    "nightowl@example.com",
		},
		{
			Code:           "OLDCROWN",
			Status:         constants.AffiliateStatusDisabled,
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
			PaypalEmail:    "",
		},
	}

	affiliateIDs := map[string]string{}
	for _, aff := range affiliates {
		var existing models.Affiliate
		if err := models.DB.Where("code = ?", aff.Code).First(&existing).Error; err != nil {
			// 不存在则创建
			aff.ID = uuid.NewString()
			if err := models.DB.Create(&aff).Error; err != nil {
				stdLog.Printf("Failed to create affiliate %s: %v", aff.Code, err)
			} else {
				stdLog.Printf("Created affiliate: %s", aff.Code)
				affiliateIDs[aff.Code] = aff.ID
			}
		} else {
			stdLog.Printf("Affiliate already exists: %s", aff.Code)
			affiliateIDs[existing.Code] = existing.ID
		}
	}

	// 添加当日利润统计，方便本地验证分池流程
	statDate := time.Now().Format(constants.StatDateLayout)
	profits := map[string]decimal.Decimal{
		"GOLDHAND": decimal.NewFromFloat(320.50),
		"SUNRIVER": decimal.NewFromFloat(180.00),
		"NIGHTOWL": decimal.NewFromFloat(75.25),
	}
	for code, profit := range profits {
		affiliateID, ok := affiliateIDs[code]
		if !ok {
			continue
		}
		var existing models.DailyStat
		if err := models.DB.Where("affiliate_id = ? AND stat_date = ?", affiliateID, statDate).First(&existing).Error; err != nil {
			stat := models.DailyStat{
				AffiliateID:     affiliateID,
				StatDate:        statDate,
				ProfitGenerated: models.NewMoneyFromDecimal(profit),
			}
			if err := models.DB.Create(&stat).Error; err != nil {
				stdLog.Printf("Failed to create daily stat for %s: %v", code, err)
			} else {
				stdLog.Printf("Created daily stat: %s %s", code, statDate)
			}
		} else {
			stdLog.Printf("Daily stat already exists: %s %s", code, statDate)
		}
	}

	stdLog.Printf("Seed data created successfully!")
}
