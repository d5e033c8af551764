package repository

import (
	"errors"
	"time"

	"github.com/usercenter-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateFields(id uint, fields map[string]interface{}) error
	ListConfirmed() ([]models.User, error)
	HasConfirmedAdmin() (bool, error)
	PromoteFirstConfirmedAdmin(id uint) (bool, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateFields 按白名单字段更新用户，字段校验由上层负责
func (r *GormUserRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// ListConfirmed 获取所有已确认用户
func (r *GormUserRepository) ListConfirmed() ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("confirmed = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// HasConfirmedAdmin 是否已存在已确认的管理员
func (r *GormUserRepository) HasConfirmedAdmin() (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).
		Where("confirmed = ? AND admin = ?", true, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PromoteFirstConfirmedAdmin 将用户提升为管理员，仅当尚无已确认管理员时生效。
// 单条带子查询的条件更新，并发确认下至多一个用户会被提升。
func (r *GormUserRepository) PromoteFirstConfirmedAdmin(id uint) (bool, error) {
	result := r.db.Exec(
		`UPDATE users SET admin = ?, updated_at = ? WHERE id = ?
		 AND NOT EXISTS (SELECT 1 FROM users AS existing WHERE existing.confirmed = ? AND existing.admin = ?)`,
		true, time.Now(), id, true, true,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
