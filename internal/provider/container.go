package provider

import (
	"github.com/usercenter-next/internal/cache"
	"github.com/usercenter-next/internal/config"
	"github.com/usercenter-next/internal/logger"
	"github.com/usercenter-next/internal/queue"
	"github.com/usercenter-next/internal/repository"
	"github.com/usercenter-next/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Repositories
	UserRepo  repository.UserRepository
	TokenRepo repository.VerifyTokenRepository

	// Services
	TokenService    *service.TokenService
	UserAuthService *service.UserAuthService
	UserService     *service.UserService
	EmailService    *service.EmailService
	UploadService   *service.UploadService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	c.UserRepo = repository.NewUserRepository(c.DB)
	c.TokenRepo = repository.NewVerifyTokenRepository(c.DB)
}

func (c *Container) initServices() {
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.TokenService = service.NewTokenService(c.Config, c.TokenRepo, c.UserRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.TokenService, c.EmailService, c.QueueClient)
	c.UserService = service.NewUserService(c.UserRepo)
	c.UploadService = service.NewUploadService(c.Config)
}
