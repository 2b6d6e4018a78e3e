package models

import (
	"time"

	"gorm.io/gorm"
)

// Affiliate 推广联盟伙伴档案
type Affiliate struct {
	ID             string         `gorm:"type:varchar(36);primarykey" json:"id"`                           // UUID 主键
	Code           string         `gorm:"type:varchar(32);not null;uniqueIndex;column:code" json:"code"`   // 联盟短码（统一大写存储）
	LegacyCode     string         `gorm:"type:varchar(32);index;column:affiliate_code" json:"-"`           // 历史列名，仅迁移期查询使用
	Status         string         `gorm:"type:varchar(20);not null;index" json:"status"`                   // 状态 active/disabled
	CommissionRate Money          `gorm:"type:decimal(10,2);not null;default:0" json:"commission_rate"`    // 佣金比例（百分比 0-100）
	TotalEarnings  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_earnings"`     // 累计可用收益（扣除已打款后，不为负）
	PaypalEmail    string         `gorm:"type:varchar(255)" json:"paypal_email"`                           // 默认收款邮箱
	ClickCount     int64          `gorm:"not null;default:0" json:"click_count"`                           // 推广点击计数
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (Affiliate) TableName() string {
	return "affiliates"
}
