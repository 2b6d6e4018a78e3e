package repository

import "time"

// CommissionListFilter 查询佣金流水的过滤条件
type CommissionListFilter struct {
	Page        int
	PageSize    int
	AffiliateID string
	Status      string
	Source      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PayoutRequestListFilter 查询提现申请的过滤条件
type PayoutRequestListFilter struct {
	Status        string
	AffiliateCode string
	Limit         int
	WithAffiliate bool
}
