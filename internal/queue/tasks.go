package queue

import (
	"encoding/json"

	"github.com/kingmidas-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskKingMidasDistribute 日榜分池任务
	TaskKingMidasDistribute = constants.TaskKingMidasDistribute
)

// KingMidasDistributePayload 日榜分池任务载荷
type KingMidasDistributePayload struct {
	StatDate string `json:"stat_date"` // YYYY-MM-DD，空值表示当天
}

// NewKingMidasDistributeTask 创建日榜分池任务
func NewKingMidasDistributeTask(payload KingMidasDistributePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskKingMidasDistribute, body), nil
}
