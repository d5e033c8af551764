package repository

import (
	"errors"
	"time"

	"github.com/usercenter-next/internal/models"

	"gorm.io/gorm"
)

// VerifyTokenRepository 验证令牌数据访问接口
type VerifyTokenRepository interface {
	Create(token *models.VerifyToken) error
	GetByValue(value string) (*models.VerifyToken, error)
	Delete(id uint) error
	Consume(id uint) (bool, error)
	DeleteByUser(userID uint, purpose string) error
	DeleteExpired(before time.Time) (int64, error)
}

// GormVerifyTokenRepository GORM 实现
type GormVerifyTokenRepository struct {
	db *gorm.DB
}

// NewVerifyTokenRepository 创建验证令牌仓库
func NewVerifyTokenRepository(db *gorm.DB) *GormVerifyTokenRepository {
	return &GormVerifyTokenRepository{db: db}
}

// Create 创建令牌记录
func (r *GormVerifyTokenRepository) Create(token *models.VerifyToken) error {
	return r.db.Create(token).Error
}

// GetByValue 根据令牌值获取记录
func (r *GormVerifyTokenRepository) GetByValue(value string) (*models.VerifyToken, error) {
	var record models.VerifyToken
	if err := r.db.Where("token = ?", value).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Delete 删除令牌记录（过期清理）
func (r *GormVerifyTokenRepository) Delete(id uint) error {
	return r.db.Delete(&models.VerifyToken{}, id).Error
}

// Consume 消费令牌。条件删除并检查影响行数，
// 并发消费同一令牌时至多一方成功。
func (r *GormVerifyTokenRepository) Consume(id uint) (bool, error) {
	result := r.db.Delete(&models.VerifyToken{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByUser 删除用户在某一用途下的全部令牌
func (r *GormVerifyTokenRepository) DeleteByUser(userID uint, purpose string) error {
	return r.db.Where("user_id = ? AND purpose = ?", userID, purpose).
		Delete(&models.VerifyToken{}).Error
}

// DeleteExpired 批量清理过期令牌
func (r *GormVerifyTokenRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", before).Delete(&models.VerifyToken{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
