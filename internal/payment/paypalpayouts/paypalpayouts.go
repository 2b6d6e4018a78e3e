package paypalpayouts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("paypal payouts config invalid")
	ErrAuthFailed      = errors.New("paypal payouts auth failed")
	ErrRequestFailed   = errors.New("paypal payouts request failed")
	ErrResponseInvalid = errors.New("paypal payouts response invalid")
)

const (
	defaultSandboxBaseURL = "https://api-m.sandbox.paypal.com"
	defaultTimeout        = 12 * time.Second
)

// Config PayPal 批量打款渠道配置。
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	BaseURL      string `json:"base_url"`
	EmailSubject string `json:"email_subject"`
	EmailMessage string `json:"email_message"`
}

// PayoutItem 批量打款单项。
type PayoutItem struct {
	SenderItemID string
	Receiver     string
	Amount       string
	Currency     string
	Note         string
}

// BatchResult 批量打款提交返回。
type BatchResult struct {
	BatchID     string
	BatchStatus string
	Raw         map[string]interface{}
}

// BatchStatusResult 批次状态查询返回。
type BatchStatusResult struct {
	BatchID     string
	BatchStatus string
	TimeCreated string
	Raw         map[string]interface{}
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return fmt.Errorf("%w: client_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return fmt.Errorf("%w: client_secret is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.BaseURL)); err != nil {
		return fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// Normalize 归一化配置并填充默认值。
func (c *Config) Normalize() {
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.ClientSecret = strings.TrimSpace(c.ClientSecret)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultSandboxBaseURL
	}
	c.EmailSubject = strings.TrimSpace(c.EmailSubject)
	if c.EmailSubject == "" {
		c.EmailSubject = "You have a payout"
	}
	c.EmailMessage = strings.TrimSpace(c.EmailMessage)
}

// CreatePayoutBatch 提交批量打款批次。
func CreatePayoutBatch(ctx context.Context, cfg *Config, senderBatchID string, items []PayoutItem) (*BatchResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(senderBatchID) == "" || len(items) == 0 {
		return nil, fmt.Errorf("%w: payout batch input is invalid", ErrConfigInvalid)
	}

	payloadItems := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Receiver) == "" || strings.TrimSpace(item.Amount) == "" || strings.TrimSpace(item.Currency) == "" {
			return nil, fmt.Errorf("%w: payout item is invalid", ErrConfigInvalid)
		}
		payloadItem := map[string]interface{}{
			"recipient_type": "EMAIL",
			"receiver":       strings.TrimSpace(item.Receiver),
			"sender_item_id": strings.TrimSpace(item.SenderItemID),
			"amount": map[string]string{
				"value":    strings.TrimSpace(item.Amount),
				"currency": strings.ToUpper(strings.TrimSpace(item.Currency)),
			},
		}
		if note := strings.TrimSpace(item.Note); note != "" {
			payloadItem["note"] = note
		}
		payloadItems = append(payloadItems, payloadItem)
	}

	senderHeader := map[string]string{
		"sender_batch_id": strings.TrimSpace(senderBatchID),
		"email_subject":   cfg.EmailSubject,
	}
	if cfg.EmailMessage != "" {
		senderHeader["email_message"] = cfg.EmailMessage
	}
	payload := map[string]interface{}{
		"sender_batch_header": senderHeader,
		"items":               payloadItems,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request failed", ErrRequestFailed)
	}

	token, err := getAccessToken(ctx, cfg)
	if err != nil {
		return nil, err
	}

	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, "/v1/payments/payouts", token, body)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create payout batch status %d", ErrResponseInvalid, statusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}

	result := &BatchResult{Raw: raw}
	result.BatchID = strings.TrimSpace(readString(raw, "batch_header", "payout_batch_id"))
	result.BatchStatus = strings.TrimSpace(readString(raw, "batch_header", "batch_status"))
	if result.BatchID == "" {
		return nil, fmt.Errorf("%w: missing payout batch id", ErrResponseInvalid)
	}
	return result, nil
}

// GetPayoutBatchStatus 查询批次状态。
func GetPayoutBatchStatus(ctx context.Context, cfg *Config, batchID string) (*BatchStatusResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, fmt.Errorf("%w: batch id is empty", ErrConfigInvalid)
	}

	token, err := getAccessToken(ctx, cfg)
	if err != nil {
		return nil, err
	}

	endpoint := "/v1/payments/payouts/" + url.PathEscape(batchID)
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: payout batch status %d", ErrResponseInvalid, statusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}

	result := &BatchStatusResult{Raw: raw}
	result.BatchID = strings.TrimSpace(readString(raw, "batch_header", "payout_batch_id"))
	result.BatchStatus = strings.TrimSpace(readString(raw, "batch_header", "batch_status"))
	result.TimeCreated = strings.TrimSpace(readString(raw, "batch_header", "time_created"))
	if result.BatchID == "" {
		result.BatchID = batchID
	}
	if result.BatchStatus == "" {
		return nil, fmt.Errorf("%w: missing batch status", ErrResponseInvalid)
	}
	return result, nil
}

func getAccessToken(ctx context.Context, cfg *Config) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	values := url.Values{}
	values.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(cfg.BaseURL, "/")+"/v1/oauth2/token", strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build token request failed", ErrAuthFailed)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(cfg.ClientID, cfg.ClientSecret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request token failed", ErrAuthFailed)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response failed", ErrAuthFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token status %d", ErrAuthFailed, resp.StatusCode)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode token response failed", ErrAuthFailed)
	}
	token := strings.TrimSpace(readString(parsed, "access_token"))
	if token == "" {
		return "", fmt.Errorf("%w: access_token is empty", ErrAuthFailed)
	}
	return token, nil
}

func doJSONRequest(ctx context.Context, cfg *Config, method, endpoint, token string, body []byte) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(cfg.BaseURL, "/")+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: http request failed", ErrRequestFailed)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	return respBody, resp.StatusCode, nil
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

func readString(raw map[string]interface{}, path ...string) string {
	if raw == nil {
		return ""
	}
	var current interface{} = raw
	for _, seg := range path {
		if idx, err := strconv.Atoi(seg); err == nil {
			arr, ok := current.([]interface{})
			if !ok || idx < 0 || idx >= len(arr) {
				return ""
			}
			current = arr[idx]
			continue
		}
		next, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current = next[seg]
	}
	if val, ok := current.(string); ok {
		return val
	}
	return ""
}
