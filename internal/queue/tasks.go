package queue

import (
	"encoding/json"

	"github.com/usercenter-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskAuthEmail 认证邮件通知任务（确认/重置）
	TaskAuthEmail = constants.TaskAuthEmail
)

// AuthEmailPayload 认证邮件任务载荷
type AuthEmailPayload struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
	Purpose     string `json:"purpose"`
}

// NewAuthEmailTask 创建认证邮件任务
func NewAuthEmailTask(payload AuthEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuthEmail, body), nil
}
