package router

import (
	"github.com/usercenter-next/internal/config"
	"github.com/usercenter-next/internal/http/handlers"
	"github.com/usercenter-next/internal/logger"
	"github.com/usercenter-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := handlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的头像）
	r.Static("/uploads", "./uploads")

	r.GET("/healthz", handler.Health)

	auth := r.Group("/api/auth")
	{
		auth.POST("/create-account", handler.CreateAccount)
		auth.POST("/confirm-account", handler.ConfirmAccount)
		auth.POST("/login", handler.Login)
		auth.POST("/request-code", handler.RequestCode)
		auth.POST("/forgot-password", handler.ForgotPassword)
		auth.POST("/validate-token", handler.ValidateToken)
		auth.POST("/update-password/:token", handler.UpdatePassword)
	}

	// 需鉴权接口
	user := r.Group("/api/auth")
	user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey))
	{
		user.GET("/user", handler.GetCurrentUser)
		user.PATCH("/profile", handler.UpdateProfile)
		user.POST("/updated-password", handler.UpdatedPassword)
		user.POST("/check-password", handler.CheckPassword)
		user.GET("/", handler.ListUsers)
		user.GET("/user/:id", handler.GetUser)
		user.PATCH("/user/:id", handler.UpdateUser)
	}

	return r
}
