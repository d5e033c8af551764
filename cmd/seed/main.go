package main

import (
	"os"
	"strings"

	"github.com/usercenter-next/internal/config"
	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/logger"
	"github.com/usercenter-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// 创建初始已确认管理员账号，邮箱与密码来自环境变量。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	db, err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("UC_ADMIN_EMAIL")))
	password := os.Getenv("UC_ADMIN_PASSWORD")
	if email == "" || password == "" {
		stdLog.Fatalf("UC_ADMIN_EMAIL and UC_ADMIN_PASSWORD must be set")
	}
	if len(password) < 8 {
		stdLog.Fatalf("UC_ADMIN_PASSWORD must be at least 8 characters")
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		stdLog.Printf("User already exists: %s", email)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}

	admin := models.User{
		Email:        email,
		PasswordHash: string(hashed),
		DisplayName:  "Administrator",
		Confirmed:    true,
		Admin:        true,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		stdLog.Fatalf("Failed to create admin user: %v", err)
	}
	stdLog.Printf("Created admin user: %s (id=%d)", admin.Email, admin.ID)
}
