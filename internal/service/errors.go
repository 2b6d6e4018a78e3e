package service

import "errors"

// 业务错误定义，处理器据此映射 HTTP 状态码。
var (
	ErrNotFound           = errors.New("record not found")
	ErrValidation         = errors.New("validation failed")
	ErrNotConfigured      = errors.New("feature not configured")
	ErrAffiliateDisabled  = errors.New("affiliate disabled")
	ErrPayoutStateInvalid = errors.New("payout state transition invalid")
	ErrGatewayUnavailable = errors.New("payout gateway unavailable")
	ErrDistributionLocked = errors.New("distribution already running")
)
