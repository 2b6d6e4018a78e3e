package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/models"
	"github.com/kingmidas-next/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupKingMidasServiceTest(t *testing.T) (*KingMidasService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:king_midas_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Affiliate{}, &models.DailyStat{}, &models.PoolPayout{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewKingMidasService(repository.NewKingMidasRepository(db), nil, 8), db
}

func createKingMidasTestAffiliate(t *testing.T, db *gorm.DB, code string) models.Affiliate {
	t.Helper()

	row := models.Affiliate{
		ID:             uuid.NewString(),
		Code:           code,
		Status:         constants.AffiliateStatusActive,
		CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create affiliate failed: %v", err)
	}
	return row
}

func createKingMidasTestStat(t *testing.T, db *gorm.DB, affiliateID, statDate string, profit decimal.Decimal) models.DailyStat {
	t.Helper()

	row := models.DailyStat{
		AffiliateID:     affiliateID,
		StatDate:        statDate,
		ProfitGenerated: models.NewMoneyFromDecimal(profit),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create daily stat failed: %v", err)
	}
	return row
}

func TestDistributePoolRanksAndTierShares(t *testing.T) {
	svc, db := setupKingMidasServiceTest(t)
	statDate := "2026-03-01"

	a := createKingMidasTestAffiliate(t, db, "MIDASA")
	b := createKingMidasTestAffiliate(t, db, "MIDASB")
	c := createKingMidasTestAffiliate(t, db, "MIDASC")
	d := createKingMidasTestAffiliate(t, db, "MIDASD")
	createKingMidasTestStat(t, db, a.ID, statDate, decimal.NewFromInt(50))
	createKingMidasTestStat(t, db, b.ID, statDate, decimal.NewFromInt(100))
	createKingMidasTestStat(t, db, c.ID, statDate, decimal.NewFromInt(25))
	createKingMidasTestStat(t, db, d.ID, statDate, decimal.NewFromInt(25))

	result, err := svc.DistributePool(context.Background(), statDate)
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if result.Distributed != 4 {
		t.Fatalf("expected 4 payouts, got %d", result.Distributed)
	}
	// 总利润 200，奖池 8% = 16.00
	if result.TotalPool.Decimal.Cmp(decimal.NewFromInt(16)) != 0 {
		t.Fatalf("expected pool 16.00, got %s", result.TotalPool)
	}

	wantShares := map[string]string{
		b.ID: "8.00", // 第一名 50%
		a.ID: "4.80", // 第二名 30%
		c.ID: "1.60", // 第三名 10%
		d.ID: "1.60", // 第四名起均分剩余 10%
	}
	wantRanks := map[string]int{b.ID: 1, a.ID: 2, c.ID: 3, d.ID: 4}
	for _, entry := range result.Rankings {
		if entry.PoolShare.String() != wantShares[entry.AffiliateID] {
			t.Fatalf("affiliate %s share want %s got %s", entry.AffiliateID, wantShares[entry.AffiliateID], entry.PoolShare)
		}
		if entry.Rank != wantRanks[entry.AffiliateID] {
			t.Fatalf("affiliate %s rank want %d got %d", entry.AffiliateID, wantRanks[entry.AffiliateID], entry.Rank)
		}
	}

	var payouts []models.PoolPayout
	if err := db.Where("stat_date = ?", statDate).Find(&payouts).Error; err != nil {
		t.Fatalf("load payouts failed: %v", err)
	}
	if len(payouts) != 4 {
		t.Fatalf("expected 4 payout rows, got %d", len(payouts))
	}
	for _, payout := range payouts {
		if payout.Status != constants.PoolPayoutStatusPending {
			t.Fatalf("payout should be pending, got %s", payout.Status)
		}
	}

	var stats []models.DailyStat
	if err := db.Where("stat_date = ?", statDate).Find(&stats).Error; err != nil {
		t.Fatalf("load stats failed: %v", err)
	}
	for _, stat := range stats {
		if stat.Rank == nil {
			t.Fatalf("stat %d should carry rank after distribution", stat.ID)
		}
	}
}

func TestDistributePoolTieKeepsInsertOrder(t *testing.T) {
	svc, db := setupKingMidasServiceTest(t)
	statDate := "2026-03-02"

	a := createKingMidasTestAffiliate(t, db, "TIEAAA")
	b := createKingMidasTestAffiliate(t, db, "TIEBBB")
	c := createKingMidasTestAffiliate(t, db, "TIECCC")
	createKingMidasTestStat(t, db, a.ID, statDate, decimal.NewFromInt(10))
	createKingMidasTestStat(t, db, b.ID, statDate, decimal.NewFromInt(10))
	createKingMidasTestStat(t, db, c.ID, statDate, decimal.NewFromInt(10))

	result, err := svc.DistributePool(context.Background(), statDate)
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	wantOrder := []string{a.ID, b.ID, c.ID}
	for i, entry := range result.Rankings {
		if entry.AffiliateID != wantOrder[i] {
			t.Fatalf("rank %d want affiliate %s got %s", i+1, wantOrder[i], entry.AffiliateID)
		}
		if entry.Rank != i+1 {
			t.Fatalf("expected sequential rank %d, got %d", i+1, entry.Rank)
		}
	}
}

func TestDistributePoolRemainderUndistributedWhenTopThreeOnly(t *testing.T) {
	svc, db := setupKingMidasServiceTest(t)
	statDate := "2026-03-03"

	a := createKingMidasTestAffiliate(t, db, "TOPAAA")
	b := createKingMidasTestAffiliate(t, db, "TOPBBB")
	createKingMidasTestStat(t, db, a.ID, statDate, decimal.NewFromInt(150))
	createKingMidasTestStat(t, db, b.ID, statDate, decimal.NewFromInt(100))

	result, err := svc.DistributePool(context.Background(), statDate)
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	// 总利润 250，奖池 20.00：第一名 10.00，第二名 6.00，无第四名则剩余 10% 不分配
	if result.Distributed != 2 {
		t.Fatalf("expected 2 payouts, got %d", result.Distributed)
	}
	total := decimal.Zero
	for _, entry := range result.Rankings {
		total = total.Add(entry.PoolShare.Decimal)
	}
	if total.Cmp(decimal.NewFromInt(16)) != 0 {
		t.Fatalf("expected distributed total 16.00, got %s", total)
	}
}

func TestDistributePoolRerunIsIdempotent(t *testing.T) {
	svc, db := setupKingMidasServiceTest(t)
	statDate := "2026-03-04"

	a := createKingMidasTestAffiliate(t, db, "RERUNA")
	b := createKingMidasTestAffiliate(t, db, "RERUNB")
	createKingMidasTestStat(t, db, a.ID, statDate, decimal.NewFromInt(80))
	createKingMidasTestStat(t, db, b.ID, statDate, decimal.NewFromInt(40))

	if _, err := svc.DistributePool(context.Background(), statDate); err != nil {
		t.Fatalf("first distribute failed: %v", err)
	}
	if _, err := svc.DistributePool(context.Background(), statDate); err != nil {
		t.Fatalf("second distribute failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.PoolPayout{}).Where("stat_date = ?", statDate).Count(&count).Error; err != nil {
		t.Fatalf("count payouts failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("rerun should not duplicate payouts, got %d rows", count)
	}
}

func TestDistributePoolEmptyDay(t *testing.T) {
	svc, _ := setupKingMidasServiceTest(t)

	result, err := svc.DistributePool(context.Background(), "2026-03-05")
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if result.Distributed != 0 {
		t.Fatalf("empty day should distribute nothing, got %d", result.Distributed)
	}
}

func TestDistributePoolInvalidDate(t *testing.T) {
	svc, _ := setupKingMidasServiceTest(t)

	if _, err := svc.DistributePool(context.Background(), "03/06/2026"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

type blockedTestLocker struct{}

func (blockedTestLocker) Acquire(ctx context.Context, statDate string) (bool, error) { return false, nil }
func (blockedTestLocker) Release(ctx context.Context, statDate string)               {}

func TestDistributePoolRespectsLock(t *testing.T) {
	_, db := setupKingMidasServiceTest(t)
	svc := NewKingMidasService(repository.NewKingMidasRepository(db), blockedTestLocker{}, 8)

	if _, err := svc.DistributePool(context.Background(), "2026-03-07"); !errors.Is(err, ErrDistributionLocked) {
		t.Fatalf("expected ErrDistributionLocked, got %v", err)
	}
}
