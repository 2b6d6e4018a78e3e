package models

import (
	"time"

	"gorm.io/gorm"
)

// PayoutRequest 联盟伙伴发起的提现申请
type PayoutRequest struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                        // 主键
	AffiliateID         string         `gorm:"type:varchar(36);not null;index" json:"affiliate_id"`         // 联盟伙伴ID
	AffiliateCode       string         `gorm:"type:varchar(32);not null;index" json:"affiliate_code"`       // 申请时的联盟短码快照
	Amount              Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`         // 申请金额
	Currency            string         `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`      // 币种
	Status              string         `gorm:"type:varchar(20);not null;index" json:"status"`               // 状态 pending/approved/paid/rejected/cancelled
	PaypalEmail         string         `gorm:"type:varchar(255)" json:"paypal_email"`                       // 收款邮箱
	Notes               string         `gorm:"type:varchar(1024)" json:"notes"`                             // 审核备注
	ErrorMessage        string         `gorm:"type:varchar(1024)" json:"error_message"`                     // 最近一次打款失败原因
	PaypalPayoutBatchID *string        `gorm:"type:varchar(64);index" json:"paypal_payout_batch_id,omitempty"` // 外部批量打款批次ID
	ProcessedAt         *time.Time     `gorm:"index" json:"processed_at,omitempty"`                         // 终态处理时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 联盟伙伴
}

// TableName 指定表名
func (PayoutRequest) TableName() string {
	return "payout_requests"
}
