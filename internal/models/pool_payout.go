package models

import "time"

// PoolPayout King Midas 奖池发放台账（每伙伴每天最多一行）
type PoolPayout struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                                    // 主键
	AffiliateID string    `gorm:"type:varchar(36);not null;index;index:idx_pool_payout_unique,unique" json:"affiliate_id"` // 联盟伙伴ID
	StatDate    string    `gorm:"type:varchar(10);not null;index;index:idx_pool_payout_unique,unique" json:"stat_date"`    // 统计日期 YYYY-MM-DD
	Rank        int       `gorm:"not null" json:"rank"`                                                                    // 当日排名
	PoolAmount  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"pool_amount"`                                // 发放金额
	Status      string    `gorm:"type:varchar(20);not null;index" json:"status"`                                           // 发放状态 pending/paid
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                                                 // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                                                                 // 更新时间

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 联盟伙伴
}

// TableName 指定表名
func (PoolPayout) TableName() string {
	return "king_midas_payouts"
}
