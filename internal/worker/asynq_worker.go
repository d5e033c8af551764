package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/usercenter-next/internal/logger"
	"github.com/usercenter-next/internal/provider"
	"github.com/usercenter-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskAuthEmail, c.handleAuthEmail)
}

func (c *Consumer) handleAuthEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_auth_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AuthEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_auth_email_unmarshal_failed", "error", err)
		return err
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" || payload.Token == "" {
		logger.Debugw("worker_auth_email_skip_invalid_payload", "email", email, "purpose", payload.Purpose)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_auth_email_skip_email_service_nil", "email", email)
		return nil
	}
	if err := c.EmailService.SendAuthEmail(email, payload.DisplayName, payload.Token, payload.Purpose); err != nil {
		logger.Warnw("worker_auth_email_send_failed",
			"email", email,
			"purpose", payload.Purpose,
			"error", err,
		)
		return err
	}
	return nil
}
