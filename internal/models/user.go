package models

import (
	"time"
)

// User 用户表
type User struct {
	ID              uint       `gorm:"primarykey" json:"id"`              // 主键
	Email           string     `gorm:"uniqueIndex;not null" json:"email"` // 邮箱
	PasswordHash    string     `gorm:"not null" json:"-"`                 // 密码哈希（不返回给前端）
	DisplayName     string     `gorm:"default:''" json:"display_name"`    // 昵称
	Alias           string     `gorm:"default:''" json:"alias"`           // 别名
	Confirmed       bool       `gorm:"default:false" json:"confirmed"`    // 邮箱是否已确认
	Admin           bool       `gorm:"default:false" json:"admin"`        // 管理员标记（首个确认用户）
	Connected       bool       `gorm:"default:false" json:"connected"`    // 在线状态
	AvatarPath      string     `gorm:"default:''" json:"avatar_path"`     // 头像存储路径
	LastConnectedAt *time.Time `json:"last_connected_at"`                 // 最后连接时间
	Status          string     `gorm:"default:'active'" json:"status"`    // 账号状态（active/inactive）
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`           // 创建时间
	UpdatedAt       time.Time  `gorm:"index" json:"updated_at"`           // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// PublicUser 对外用户投影（列表与按 ID 查询时排除密码与确认标记）
type PublicUser struct {
	ID              uint       `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"display_name"`
	Alias           string     `json:"alias"`
	Admin           bool       `json:"admin"`
	Connected       bool       `json:"connected"`
	AvatarPath      string     `json:"avatar_path"`
	LastConnectedAt *time.Time `json:"last_connected_at"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToPublic 转换为对外投影
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		Alias:           u.Alias,
		Admin:           u.Admin,
		Connected:       u.Connected,
		AvatarPath:      u.AvatarPath,
		LastConnectedAt: u.LastConnectedAt,
		Status:          u.Status,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
