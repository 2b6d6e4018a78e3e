package models

import "time"

// DailyStat King Midas 每日利润统计（每个伙伴每天一行）
// rank/pool_share 由当日分配任务填写，其余字段由统计采集方写入。
type DailyStat struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                                                   // 主键
	AffiliateID     string    `gorm:"type:varchar(36);not null;index;index:idx_daily_stat_unique,unique" json:"affiliate_id"` // 联盟伙伴ID
	StatDate        string    `gorm:"type:varchar(10);not null;index;index:idx_daily_stat_unique,unique" json:"stat_date"`    // 统计日期 YYYY-MM-DD
	ProfitGenerated Money     `gorm:"type:decimal(20,2);not null;default:0" json:"profit_generated"`                          // 当日产生利润
	Rank            *int      `gorm:"column:rank" json:"rank,omitempty"`                                                      // 当日排名（分配后填写）
	PoolShare       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"pool_share"`                                // 当日奖池分成
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                                                // 创建时间
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`                                                                // 更新时间

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 联盟伙伴
}

// TableName 指定表名
func (DailyStat) TableName() string {
	return "king_midas_daily_stats"
}
