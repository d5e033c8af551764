package service

import (
	"context"
	"time"

	"github.com/usercenter-next/internal/cache"
	"github.com/usercenter-next/internal/config"
	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/logger"
	"github.com/usercenter-next/internal/models"
	"github.com/usercenter-next/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenService 验证令牌服务：签发、校验、过期与消费
//
// 令牌状态机：Issued -> {Valid, Expired, Consumed}。
// 过期在查询时惰性判定，判定到即删除记录；
// worker 模式下另有周期清理兜底。
type TokenService struct {
	cfg       *config.Config
	tokenRepo repository.VerifyTokenRepository
	userRepo  repository.UserRepository
}

// NewTokenService 创建验证令牌服务
func NewTokenService(cfg *config.Config, tokenRepo repository.VerifyTokenRepository, userRepo repository.UserRepository) *TokenService {
	return &TokenService{
		cfg:       cfg,
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
	}
}

// Issue 为用户签发一个新令牌，令牌值不可预测且全局唯一。
// 同一用户同一用途的旧令牌会被新令牌取代。
func (s *TokenService) Issue(userID uint, purpose string) (*models.VerifyToken, error) {
	if err := s.tokenRepo.DeleteByUser(userID, purpose); err != nil {
		return nil, err
	}
	token := &models.VerifyToken{
		Token:     uuid.NewString(),
		Purpose:   purpose,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.Create(token); err != nil {
		return nil, err
	}
	return token, nil
}

// Validate 校验令牌并返回其所属用户，不消费令牌。
// 用于 validate-token 流程：客户端确认令牌有效后再提交新密码。
func (s *TokenService) Validate(value, purpose string) (*models.User, error) {
	record, err := s.lookup(value, purpose)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(record.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTokenInvalid
	}
	return user, nil
}

// ConfirmAccount 消费确认令牌并确认账户。
// 首个完成确认的用户通过单条条件更新提升为管理员，
// 并发确认下至多一人获得管理员标记。
func (s *TokenService) ConfirmAccount(value string) (*models.User, error) {
	record, err := s.lookup(value, constants.TokenPurposeConfirm)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(record.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTokenInvalid
	}

	// 先消费再变更，保证同一令牌至多生效一次
	consumed, err := s.tokenRepo.Consume(record.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrTokenInvalid
	}

	user.Confirmed = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	promoted, err := s.userRepo.PromoteFirstConfirmedAdmin(user.ID)
	if err != nil {
		return nil, err
	}
	if promoted {
		user.Admin = true
	}

	if err := cache.Del(context.Background(), publicUserCacheKey(user.ID)); err != nil {
		logger.Warnw("confirm_account_cache_del_failed", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// ResetPassword 消费重置令牌并更新用户密码
func (s *TokenService) ResetPassword(value, newPassword string) (*models.User, error) {
	record, err := s.lookup(value, constants.TokenPurposeReset)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(record.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTokenInvalid
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return nil, err
	}

	consumed, err := s.tokenRepo.Consume(record.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hashed)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// lookup 查找令牌并做过期判定。
// 有效期判定为 age > TTL 过期，恰好等于 TTL 仍然有效；
// 判定到过期即删除记录并返回 ErrTokenExpired。
func (s *TokenService) lookup(value, purpose string) (*models.VerifyToken, error) {
	record, err := s.tokenRepo.GetByValue(value)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrTokenInvalid
	}
	if record.Purpose != purpose {
		return nil, ErrTokenInvalid
	}
	if time.Since(record.CreatedAt) > s.tokenTTL() {
		if err := s.tokenRepo.Delete(record.ID); err != nil {
			return nil, err
		}
		return nil, ErrTokenExpired
	}
	return record, nil
}

// PurgeExpired 批量清理已过期的令牌，返回删除数量
func (s *TokenService) PurgeExpired() (int64, error) {
	cutoff := time.Now().Add(-s.tokenTTL())
	return s.tokenRepo.DeleteExpired(cutoff)
}

func (s *TokenService) tokenTTL() time.Duration {
	minutes := s.cfg.Token.ExpireMinutes
	if minutes <= 0 {
		minutes = 10
	}
	return time.Duration(minutes) * time.Minute
}
