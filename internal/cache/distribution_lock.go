package cache

import (
	"context"
	"fmt"
	"time"
)

const distributionLockTTL = 10 * time.Minute

// DistributionLock 基于 Redis SETNX 的分池日期互斥锁。
// Redis 未启用时退化为不加锁（单实例部署可接受）。
type DistributionLock struct{}

// NewDistributionLock 创建分池互斥锁
func NewDistributionLock() *DistributionLock {
	return &DistributionLock{}
}

// Acquire 尝试获取指定日期的分池锁。
func (l *DistributionLock) Acquire(ctx context.Context, statDate string) (bool, error) {
	if !Enabled() {
		return true, nil
	}
	key := buildKey(fmt.Sprintf("king_midas:distribute:%s", statDate))
	return redisClient.SetNX(ctx, key, time.Now().Unix(), distributionLockTTL).Result()
}

// Release 释放指定日期的分池锁。
func (l *DistributionLock) Release(ctx context.Context, statDate string) {
	if !Enabled() {
		return
	}
	key := buildKey(fmt.Sprintf("king_midas:distribute:%s", statDate))
	redisClient.Del(ctx, key)
}
