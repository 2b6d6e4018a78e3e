package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupKingMidasRepoTest(t *testing.T) (*GormKingMidasRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:king_midas_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Affiliate{}, &models.DailyStat{}, &models.PoolPayout{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewKingMidasRepository(db), db
}

func TestAccumulateDailyProfitUpsert(t *testing.T) {
	repo, db := setupKingMidasRepoTest(t)
	affiliateID := uuid.NewString()

	first := &models.DailyStat{
		AffiliateID:     affiliateID,
		StatDate:        "2026-06-01",
		ProfitGenerated: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
	}
	if err := repo.AccumulateDailyProfit(first); err != nil {
		t.Fatalf("first accumulate failed: %v", err)
	}
	second := &models.DailyStat{
		AffiliateID:     affiliateID,
		StatDate:        "2026-06-01",
		ProfitGenerated: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.5)),
	}
	if err := repo.AccumulateDailyProfit(second); err != nil {
		t.Fatalf("second accumulate failed: %v", err)
	}

	var stats []models.DailyStat
	if err := db.Where("affiliate_id = ?", affiliateID).Find(&stats).Error; err != nil {
		t.Fatalf("load stats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected single accumulated row, got %d", len(stats))
	}
	if stats[0].ProfitGenerated.String() != "42.50" {
		t.Fatalf("profit want 42.50 got %s", stats[0].ProfitGenerated)
	}
}

func TestResetRankingsClearsRankAndShare(t *testing.T) {
	repo, db := setupKingMidasRepoTest(t)
	affiliateID := uuid.NewString()

	stat := models.DailyStat{
		AffiliateID:     affiliateID,
		StatDate:        "2026-06-02",
		ProfitGenerated: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	}
	if err := db.Create(&stat).Error; err != nil {
		t.Fatalf("create stat failed: %v", err)
	}
	if err := repo.UpdateStatRanking(stat.ID, 1, decimal.NewFromInt(4)); err != nil {
		t.Fatalf("update ranking failed: %v", err)
	}

	if err := repo.ResetRankings("2026-06-02"); err != nil {
		t.Fatalf("reset rankings failed: %v", err)
	}

	var reloaded models.DailyStat
	if err := db.First(&reloaded, stat.ID).Error; err != nil {
		t.Fatalf("load stat failed: %v", err)
	}
	if reloaded.Rank != nil {
		t.Fatalf("rank should be cleared, got %d", *reloaded.Rank)
	}
	if reloaded.PoolShare.String() != "0.00" {
		t.Fatalf("pool share should be zeroed, got %s", reloaded.PoolShare)
	}
}

func TestUpsertPoolPayoutKeepsStatus(t *testing.T) {
	repo, db := setupKingMidasRepoTest(t)
	affiliateID := uuid.NewString()

	payout := &models.PoolPayout{
		AffiliateID: affiliateID,
		StatDate:    "2026-06-03",
		Rank:        1,
		PoolAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Status:      constants.PoolPayoutStatusPending,
	}
	if err := repo.UpsertPoolPayout(payout); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// 标记为已发放后重算，名次与金额可变但状态不回退
	if err := db.Model(&models.PoolPayout{}).
		Where("affiliate_id = ? AND stat_date = ?", affiliateID, "2026-06-03").
		Update("status", constants.PoolPayoutStatusPaid).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	rerun := &models.PoolPayout{
		AffiliateID: affiliateID,
		StatDate:    "2026-06-03",
		Rank:        2,
		PoolAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(6)),
		Status:      constants.PoolPayoutStatusPending,
	}
	if err := repo.UpsertPoolPayout(rerun); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var rows []models.PoolPayout
	if err := db.Where("affiliate_id = ? AND stat_date = ?", affiliateID, "2026-06-03").Find(&rows).Error; err != nil {
		t.Fatalf("load payouts failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected single payout row, got %d", len(rows))
	}
	if rows[0].Rank != 2 || rows[0].PoolAmount.String() != "6.00" {
		t.Fatalf("rank and amount should be updated, got %+v", rows[0])
	}
	if rows[0].Status != constants.PoolPayoutStatusPaid {
		t.Fatalf("status should not be reset by rerun, got %s", rows[0].Status)
	}
}

func TestListStatsByDateKeepsInsertOrder(t *testing.T) {
	repo, db := setupKingMidasRepoTest(t)

	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	for _, id := range ids {
		stat := models.DailyStat{
			AffiliateID:     id,
			StatDate:        "2026-06-04",
			ProfitGenerated: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		}
		if err := db.Create(&stat).Error; err != nil {
			t.Fatalf("create stat failed: %v", err)
		}
	}

	stats, err := repo.ListStatsByDate("2026-06-04")
	if err != nil {
		t.Fatalf("list stats failed: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(stats))
	}
	for i, stat := range stats {
		if stat.AffiliateID != ids[i] {
			t.Fatalf("row %d want affiliate %s got %s", i, ids[i], stat.AffiliateID)
		}
	}
}

func TestDeductEarningsClampedAtZero(t *testing.T) {
	_, db := setupKingMidasRepoTest(t)
	repo := NewAffiliateRepository(db)

	affiliate := models.Affiliate{
		ID:            uuid.NewString(),
		Code:          "CLAMP01",
		Status:        constants.AffiliateStatusActive,
		TotalEarnings: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
	}
	if err := db.Create(&affiliate).Error; err != nil {
		t.Fatalf("create affiliate failed: %v", err)
	}

	if err := repo.DeductEarningsClamped(affiliate.ID, decimal.NewFromInt(25)); err != nil {
		t.Fatalf("deduct failed: %v", err)
	}

	var reloaded models.Affiliate
	if err := db.Where("id = ?", affiliate.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("load affiliate failed: %v", err)
	}
	if reloaded.TotalEarnings.String() != "0.00" {
		t.Fatalf("earnings should clamp at zero, got %s", reloaded.TotalEarnings)
	}
}
