package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kingmidas-next/internal/constants"
	"github.com/kingmidas-next/internal/models"
	"github.com/kingmidas-next/internal/provider"
	"github.com/kingmidas-next/internal/repository"
	"github.com/kingmidas-next/internal/service"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
)

func setupPublicHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:public_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Affiliate{}, &models.AffiliateClick{}, &models.AffiliateCommission{}, &models.DailyStat{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	affiliateRepo := repository.NewAffiliateRepository(db)
	container := &provider.Container{
		AttributionService: service.NewAttributionService(affiliateRepo),
		CommissionService: service.NewCommissionService(
			affiliateRepo,
			repository.NewCommissionRepository(db),
			repository.NewKingMidasRepository(db),
		),
	}
	return New(container), db
}

func createPublicTestAffiliate(t *testing.T, db *gorm.DB, code string) models.Affiliate {
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

func performPublicJSONRequest(t *testing.T, handler gin.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler(c)
	return w
}

func decodePublicEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()

	var resp struct {
		StatusCode int                    `json:"status_code"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal envelope failed: %v", err)
	}
	return resp.StatusCode, resp.Data
}

func TestOrderPaidAccruesCommission(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	affiliate := createPublicTestAffiliate(t, db, "HOOKED1")

	body := `{"order_id":"ORDER-H1","affiliate_code":"hooked1","gross_amount":"100","product_cost":"40","paid_at":"2026-07-01T10:00:00Z"}`
	w := performPublicJSONRequest(t, h.OrderPaid, http.MethodPost, "/api/v1/hooks/orders/paid", body)

	code, data := decodePublicEnvelope(t, w)
	if code != 0 {
		t.Fatalf("expected success envelope, got %d", code)
	}
	if data["accrued"] != true {
		t.Fatalf("expected accrued payload, got %+v", data)
	}

	var commission models.AffiliateCommission
	if err := db.Where("order_id = ?", "ORDER-H1").First(&commission).Error; err != nil {
		t.Fatalf("load commission failed: %v", err)
	}
	if commission.AffiliateID != affiliate.ID || commission.Amount.String() != "6.00" {
		t.Fatalf("commission mismatch: %+v", commission)
	}
}

func TestOrderPaidWithoutCodeStillSucceeds(t *testing.T) {
	h, db := setupPublicHandlerTest(t)

	body := `{"order_id":"ORDER-H2","gross_amount":"50"}`
	w := performPublicJSONRequest(t, h.OrderPaid, http.MethodPost, "/api/v1/hooks/orders/paid", body)

	code, data := decodePublicEnvelope(t, w)
	if code != 0 {
		t.Fatalf("missing code should still succeed, got %d", code)
	}
	if data["accrued"] != false {
		t.Fatalf("expected not accrued, got %+v", data)
	}

	var count int64
	if err := db.Model(&models.AffiliateCommission{}).Count(&count).Error; err != nil {
		t.Fatalf("count commissions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no commissions, got %d", count)
	}
}

func TestOrderPaidRejectsBadPayload(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)

	cases := []string{
		`{"gross_amount":"100"}`,
		`{"order_id":"ORDER-H3","gross_amount":"abc"}`,
		`{"order_id":"ORDER-H3","gross_amount":"-5"}`,
		`{"order_id":"ORDER-H3","gross_amount":"100","paid_at":"yesterday"}`,
	}
	for _, body := range cases {
		w := performPublicJSONRequest(t, h.OrderPaid, http.MethodPost, "/api/v1/hooks/orders/paid", body)
		if code, _ := decodePublicEnvelope(t, w); code != 400 {
			t.Fatalf("payload %s should be rejected, got %d", body, code)
		}
	}
}

func TestTrackAffiliateClickAlwaysSucceeds(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	affiliate := createPublicTestAffiliate(t, db, "TRACKED")

	w := performPublicJSONRequest(t, h.TrackAffiliateClick, http.MethodPost, "/api/v1/public/affiliate/track",
		`{"code":"tracked","visitor_key":"v-1","landing_path":"/pricing"}`)
	if code, _ := decodePublicEnvelope(t, w); code != 0 {
		t.Fatalf("track should succeed, got %d", code)
	}

	// 未知推广码同样返回成功，不向外暴露归因结果
	w = performPublicJSONRequest(t, h.TrackAffiliateClick, http.MethodPost, "/api/v1/public/affiliate/track",
		`{"code":"ghost"}`)
	if code, _ := decodePublicEnvelope(t, w); code != 0 {
		t.Fatalf("unknown code should still succeed, got %d", code)
	}

	var reloaded models.Affiliate
	if err := db.Where("id = ?", affiliate.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("load affiliate failed: %v", err)
	}
	if reloaded.ClickCount != 1 {
		t.Fatalf("click count want 1 got %d", reloaded.ClickCount)
	}
}

func TestResolveAffiliateByQuery(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	affiliate := createPublicTestAffiliate(t, db, "LOOKUP1")

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/public/affiliate/resolve?code=lookup1", nil)
	h.ResolveAffiliate(c)

	code, data := decodePublicEnvelope(t, w)
	if code != 0 {
		t.Fatalf("resolve should succeed, got %d", code)
	}
	if data["id"] != affiliate.ID {
		t.Fatalf("resolved id mismatch: %+v", data)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/public/affiliate/resolve?code=ghost", nil)
	h.ResolveAffiliate(c)
	if code, _ := decodePublicEnvelope(t, w); code != 404 {
		t.Fatalf("unknown code should be 404, got %d", code)
	}
}
