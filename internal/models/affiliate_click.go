package models

import "time"

// AffiliateClick 推广点击事件（尽力而为记录，写失败不阻断主流程）
type AffiliateClick struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                       // 主键
	AffiliateID string    `gorm:"type:varchar(36);not null;index" json:"affiliate_id"`        // 联盟伙伴ID
	VisitorKey  string    `gorm:"type:varchar(128);index" json:"visitor_key"`                 // 访客标识
	LandingPath string    `gorm:"type:varchar(512)" json:"landing_path"`                      // 落地页面路径
	Referrer    string    `gorm:"type:varchar(1024)" json:"referrer"`                         // 来源地址
	ClientIP    string    `gorm:"type:varchar(64)" json:"client_ip"`                          // 客户端IP
	UserAgent   string    `gorm:"type:varchar(1024)" json:"user_agent"`                       // 客户端UA
	CreatedAt   time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 创建时间

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 联盟伙伴
}

// TableName 指定表名
func (AffiliateClick) TableName() string {
	return "affiliate_clicks"
}
