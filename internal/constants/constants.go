package constants

// 推广联盟状态常量
const (
	AffiliateStatusActive   = "active"
	AffiliateStatusDisabled = "disabled"
)

// 联盟佣金状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusConfirmed = "confirmed"
	CommissionStatusReversed  = "reversed"
)

// 联盟佣金类型常量
const (
	CommissionTypeOrder       = "order"
	CommissionTypeSecretSanta = "secret_santa"
)

// 联盟佣金来源常量
const (
	CommissionSourcePaypal    = "paypal"
	CommissionSourceLightning = "lightning"
)

// King Midas 奖池发放状态常量
const (
	PoolPayoutStatusPending = "pending"
	PoolPayoutStatusPaid    = "paid"
)

// 提现申请状态常量
const (
	PayoutRequestStatusPending   = "pending"
	PayoutRequestStatusApproved  = "approved"
	PayoutRequestStatusPaid      = "paid"
	PayoutRequestStatusRejected  = "rejected"
	PayoutRequestStatusCancelled = "cancelled"
)

// 提现申请批量操作常量
const (
	PayoutActionApprove     = "approve"
	PayoutActionMarkPaid    = "mark-paid"
	PayoutActionReject      = "reject"
	PayoutActionCancel      = "cancel"
	PayoutActionPayPaypal   = "pay-via-paypal"
	PayoutActionCheckPaypal = "check-paypal-status"
)

// 队列相关常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskKingMidasDistribute = "king_midas:distribute"
)

// StatDateLayout King Midas 统计日期格式
const StatDateLayout = "2006-01-02"
