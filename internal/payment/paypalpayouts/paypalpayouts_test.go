package paypalpayouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	cfg := &Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		BaseURL:      "https://api-m.sandbox.paypal.com",
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig should pass, got: %v", err)
	}
	if err := ValidateConfig(&Config{ClientSecret: "secret", BaseURL: "https://x"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing client id should be invalid, got: %v", err)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{
		ClientID:     " cid ",
		ClientSecret: " secret ",
		BaseURL:      "",
	}
	cfg.Normalize()
	if cfg.ClientID != "cid" {
		t.Fatalf("client id not normalized, got: %s", cfg.ClientID)
	}
	if cfg.BaseURL != "https://api-m.sandbox.paypal.com" {
		t.Fatalf("base url should default to sandbox, got: %s", cfg.BaseURL)
	}
	if cfg.EmailSubject == "" {
		t.Fatalf("email subject should have default value")
	}
}

func newPayoutTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Config) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := &Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		BaseURL:      server.URL,
	}
	cfg.Normalize()
	return server, cfg
}

func TestCreatePayoutBatch(t *testing.T) {
	var gotPayload map[string]interface{}
	_, cfg := newPayoutTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			if user, pass, ok := r.BasicAuth(); !ok || user != "cid" || pass != "secret" {
				t.Errorf("unexpected basic auth: %s %s", user, pass)
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "token-1"})
		case "/v1/payments/payouts":
			if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
				t.Errorf("unexpected authorization header: %s", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
				t.Errorf("decode payout payload failed: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"batch_header": map[string]interface{}{
					"payout_batch_id": "BATCH-123",
					"batch_status":    "PENDING",
				},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	result, err := CreatePayoutBatch(context.Background(), cfg, "sender-1", []PayoutItem{
		{SenderItemID: "payout-1", Receiver: "a@example.com", Amount: "25.00", Currency: "usd", Note: "提现打款"},
	})
	if err != nil {
		t.Fatalf("create payout batch failed: %v", err)
	}
	if result.BatchID != "BATCH-123" || result.BatchStatus != "PENDING" {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	items, ok := gotPayload["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected payload items: %+v", gotPayload)
	}
	item := items[0].(map[string]interface{})
	amount := item["amount"].(map[string]interface{})
	if amount["currency"] != "USD" {
		t.Fatalf("currency should be upper-cased, got %v", amount["currency"])
	}
	header, ok := gotPayload["sender_batch_header"].(map[string]interface{})
	if !ok || header["sender_batch_id"] != "sender-1" {
		t.Fatalf("unexpected sender batch header: %+v", gotPayload)
	}
}

func TestCreatePayoutBatchRejectsInvalidItem(t *testing.T) {
	cfg := &Config{ClientID: "cid", ClientSecret: "secret", BaseURL: "https://api-m.sandbox.paypal.com"}
	_, err := CreatePayoutBatch(context.Background(), cfg, "sender-1", []PayoutItem{
		{Receiver: "", Amount: "10.00", Currency: "USD"},
	})
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("empty receiver should be invalid, got: %v", err)
	}
}

func TestGetPayoutBatchStatus(t *testing.T) {
	_, cfg := newPayoutTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "token-2"})
		case "/v1/payments/payouts/BATCH-9":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"batch_header": map[string]interface{}{
					"payout_batch_id": "BATCH-9",
					"batch_status":    "SUCCESS",
					"time_created":    "2026-05-01T08:00:00Z",
				},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	result, err := GetPayoutBatchStatus(context.Background(), cfg, "BATCH-9")
	if err != nil {
		t.Fatalf("get batch status failed: %v", err)
	}
	if result.BatchStatus != "SUCCESS" || result.TimeCreated == "" {
		t.Fatalf("unexpected status result: %+v", result)
	}
}

func TestGetPayoutBatchStatusAuthFailure(t *testing.T) {
	_, cfg := newPayoutTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := GetPayoutBatchStatus(context.Background(), cfg, "BATCH-9"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got: %v", err)
	}
}
