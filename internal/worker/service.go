package worker

import (
	"context"
	"errors"
	"time"

	"github.com/usercenter-next/internal/config"
	"github.com/usercenter-next/internal/logger"
	"github.com/usercenter-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	tokenPurgeInterval = time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.TokenService != nil {
		go s.runTokenPurgeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runTokenPurgeLoop 周期清理过期的验证令牌。
// 过期判定在查询路径上已惰性执行，这里兜底清理从未被再次查询的记录。
func (s *Service) runTokenPurgeLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.TokenService == nil {
		return
	}
	runOnce := func() {
		removed, err := s.consumer.TokenService.PurgeExpired()
		if err != nil {
			logger.Warnw("worker_token_purge_failed", "error", err)
			return
		}
		if removed > 0 {
			logger.Debugw("worker_token_purge_done", "removed", removed)
		}
	}
	runOnce()

	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
