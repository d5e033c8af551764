package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/usercenter-next/internal/cache"
	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/logger"
	"github.com/usercenter-next/internal/models"
	"github.com/usercenter-next/internal/repository"
)

const publicUserCacheTTL = 5 * time.Minute

// UserService 用户目录服务
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户目录服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID 获取用户信息
func (s *UserService) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetPublicByID 获取用户对外投影（排除密码与确认标记）。
// 启用 Redis 时走读穿透缓存，未命中回源后写回。
func (s *UserService) GetPublicByID(id uint) (*models.PublicUser, error) {
	ctx := context.Background()
	cacheKey := publicUserCacheKey(id)

	var cached models.PublicUser
	hit, err := cache.GetJSON(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warnw("public_user_cache_get_failed", "user_id", id, "error", err)
	}
	if hit {
		return &cached, nil
	}

	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	public := user.ToPublic()
	if err := cache.SetJSON(ctx, cacheKey, public, publicUserCacheTTL); err != nil {
		logger.Warnw("public_user_cache_set_failed", "user_id", id, "error", err)
	}
	return &public, nil
}

// ListConfirmed 列出所有已确认用户（排除密码与确认标记）
func (s *UserService) ListConfirmed() ([]models.PublicUser, error) {
	users, err := s.userRepo.ListConfirmed()
	if err != nil {
		return nil, err
	}
	result := make([]models.PublicUser, 0, len(users))
	for _, user := range users {
		result = append(result, user.ToPublic())
	}
	return result, nil
}

// UpdateProfile 更新当前用户资料，avatarPath 为空时不改动头像
func (s *UserService) UpdateProfile(userID uint, displayName, alias, avatarPath string) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	user.DisplayName = strings.TrimSpace(displayName)
	user.Alias = strings.TrimSpace(alias)
	if avatarPath != "" {
		user.AvatarPath = avatarPath
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	s.invalidatePublicUserCache(user.ID)
	return user, nil
}

// UserUpdateInput 用户编辑输入，nil 字段表示不修改
type UserUpdateInput struct {
	DisplayName *string
	Alias       *string
	Status      *string
	AvatarPath  *string
}

// UpdateUser 编辑用户。仅本人或管理员可操作，
// 可更新字段为显式白名单，敏感列不可通过该入口写入。
func (s *UserService) UpdateUser(actorID, targetID uint, input UserUpdateInput) (*models.User, error) {
	target, err := s.GetByID(targetID)
	if err != nil {
		return nil, err
	}

	if actorID != targetID {
		actor, err := s.userRepo.GetByID(actorID)
		if err != nil {
			return nil, err
		}
		if actor == nil || !actor.Admin {
			return nil, ErrForbiddenUpdate
		}
	}

	fields := map[string]interface{}{}
	if input.DisplayName != nil {
		if trimmed := strings.TrimSpace(*input.DisplayName); trimmed != "" {
			fields["display_name"] = trimmed
		}
	}
	if input.Alias != nil {
		if trimmed := strings.TrimSpace(*input.Alias); trimmed != "" {
			fields["alias"] = trimmed
		}
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if status == constants.UserStatusActive || status == constants.UserStatusInactive {
			fields["status"] = status
		}
	}
	if input.AvatarPath != nil && *input.AvatarPath != "" {
		fields["avatar_path"] = *input.AvatarPath
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(target.ID, fields); err != nil {
			return nil, err
		}
		s.invalidatePublicUserCache(target.ID)
	}
	return s.GetByID(target.ID)
}

func (s *UserService) invalidatePublicUserCache(id uint) {
	if err := cache.Del(context.Background(), publicUserCacheKey(id)); err != nil {
		logger.Warnw("public_user_cache_del_failed", "user_id", id, "error", err)
	}
}

func publicUserCacheKey(id uint) string {
	return fmt.Sprintf("public_user:%d", id)
}
