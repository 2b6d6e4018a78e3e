package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateCommission 联盟佣金记录（每次支付成功记一笔）
type AffiliateCommission struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                                                               // 主键
	AffiliateID     string         `gorm:"type:varchar(36);not null;index;index:idx_commission_unique,unique" json:"affiliate_id"`            // 联盟伙伴ID
	OrderID         string         `gorm:"type:varchar(64);not null;index;index:idx_commission_unique,unique" json:"order_id"`                // 外部支付订单号
	CommissionType  string         `gorm:"type:varchar(20);not null;default:'order';index:idx_commission_unique,unique" json:"commission_type"` // 佣金类型
	Amount          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                                               // 佣金金额（可为负）
	ProfitGenerated Money          `gorm:"type:decimal(20,2);not null;default:0" json:"profit_generated"`                                     // 产生利润（毛收入-成本）
	ProductCost     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"product_cost"`                                         // 商品成本
	Source          string         `gorm:"type:varchar(20);not null;default:'paypal'" json:"source"`                                          // 支付来源
	Status          string         `gorm:"type:varchar(20);not null;index" json:"status"`                                                     // 佣金状态 pending/confirmed/reversed
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                                                           // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                                                           // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                                                    // 软删除时间

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 联盟伙伴
}

// TableName 指定表名
func (AffiliateCommission) TableName() string {
	return "affiliate_commissions"
}
