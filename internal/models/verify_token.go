package models

import (
	"time"
)

// VerifyToken 验证令牌记录（一次性、短时效）
type VerifyToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`              // 主键
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`     // 令牌值（不返回给前端）
	Purpose   string    `gorm:"index;not null" json:"purpose"`     // 用途（confirm/reset）
	UserID    uint      `gorm:"index;not null" json:"user_id"`     // 所属用户ID
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`  // 签发时间
}

// TableName 指定表名
func (VerifyToken) TableName() string {
	return "verify_tokens"
}
