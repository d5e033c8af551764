package service

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/usercenter-next/internal/config"
	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/logger"
	"github.com/usercenter-next/internal/models"
	"github.com/usercenter-next/internal/queue"
	"github.com/usercenter-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserAuthService 用户认证服务：注册、登录、找回密码与会话凭证
type UserAuthService struct {
	cfg          *config.Config
	userRepo     repository.UserRepository
	tokenService *TokenService
	emailService *EmailService
	queueClient  *queue.Client
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, tokenService *TokenService, emailService *EmailService, queueClient *queue.Client) *UserAuthService {
	return &UserAuthService{
		cfg:          cfg,
		userRepo:     userRepo,
		tokenService: tokenService,
		emailService: emailService,
		queueClient:  queueClient,
	}
}

// UserJWTClaims 用户会话凭证声明
type UserJWTClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// RegisterInput 注册输入
type RegisterInput struct {
	DisplayName string
	Alias       string
	Email       string
	Password    string
}

// Register 用户注册：创建未确认账户、签发确认令牌并发送确认邮件。
// 邮件发送相对 HTTP 响应是 fire-and-forget 的，失败只记日志。
func (s *UserAuthService) Register(input RegisterInput) (*models.User, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        normalized,
		PasswordHash: string(hashed),
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Alias:        strings.TrimSpace(input.Alias),
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := s.tokenService.Issue(user.ID, constants.TokenPurposeConfirm)
	if err != nil {
		return nil, err
	}
	s.dispatchAuthEmail(user, token)
	return user, nil
}

// Login 用户登录，成功返回会话凭证。
// 未确认的账户不签发凭证：重新签发确认令牌、发送确认邮件并返回 ErrNotConfirmed。
func (s *UserAuthService) Login(email, password string) (string, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}

	if !user.Confirmed {
		token, err := s.tokenService.Issue(user.ID, constants.TokenPurposeConfirm)
		if err != nil {
			return "", err
		}
		s.dispatchAuthEmail(user, token)
		return "", ErrNotConfirmed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	credential, _, err := s.GenerateUserJWT(user)
	if err != nil {
		return "", err
	}

	// 连接状态属尽力而为的附带更新，失败不影响登录结果
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"connected":         true,
		"last_connected_at": time.Now(),
	}); err != nil {
		logger.Warnw("login_update_connection_state_failed", "user_id", user.ID, "error", err)
	}
	return credential, nil
}

// RequestConfirmationCode 重新发送确认令牌
func (s *UserAuthService) RequestConfirmationCode(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.Confirmed {
		return ErrAlreadyConfirmed
	}

	token, err := s.tokenService.Issue(user.ID, constants.TokenPurposeConfirm)
	if err != nil {
		return err
	}
	s.dispatchAuthEmail(user, token)
	return nil
}

// ForgotPassword 签发重置令牌并发送重置邮件
func (s *UserAuthService) ForgotPassword(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	token, err := s.tokenService.Issue(user.ID, constants.TokenPurposeReset)
	if err != nil {
		return err
	}
	s.dispatchAuthEmail(user, token)
	return nil
}

// ChangePassword 登录态修改密码，要求提供当前密码
func (s *UserAuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(user)
}

// CheckPassword 校验当前密码是否正确
func (s *UserAuthService) CheckPassword(userID uint, password string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// GenerateUserJWT 生成用户会话凭证。
// 凭证自包含签名，有效期固定（默认 180 天），过期前无法吊销。
func (s *UserAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	expireHours := s.cfg.UserJWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 4320
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)
	claims := UserJWTClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	credential, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return credential, expiresAt, nil
}

// ParseUserJWT 解析用户会话凭证，校验不依赖数据库
func (s *UserAuthService) ParseUserJWT(credential string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// dispatchAuthEmail 派发认证邮件。优先走异步队列，
// 队列未启用时直接在后台协程发送；两种路径的失败都只记日志。
func (s *UserAuthService) dispatchAuthEmail(user *models.User, token *models.VerifyToken) {
	payload := queue.AuthEmailPayload{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Token:       token.Token,
		Purpose:     token.Purpose,
	}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueAuthEmail(payload); err != nil {
			logger.Warnw("auth_email_enqueue_failed", "email", payload.Email, "purpose", payload.Purpose, "error", err)
		}
		return
	}
	if s.emailService == nil {
		logger.Debugw("auth_email_skip_no_email_service", "email", payload.Email, "purpose", payload.Purpose)
		return
	}
	go func() {
		if err := s.emailService.SendAuthEmail(payload.Email, payload.DisplayName, payload.Token, payload.Purpose); err != nil {
			logger.Warnw("auth_email_send_failed", "email", payload.Email, "purpose", payload.Purpose, "error", err)
		}
	}()
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
