package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/usercenter-next/internal/config"
	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/models"
	"github.com/usercenter-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:user_auth_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.VerifyToken{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		UserJWT: config.JWTConfig{
			SecretKey:   "user-auth-service-test-secret-0123456789",
			ExpireHours: 1,
		},
		Token: config.TokenConfig{ExpireMinutes: 10},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
	userRepo := repository.NewUserRepository(db)
	tokenService := NewTokenService(cfg, repository.NewVerifyTokenRepository(db), userRepo)
	svc := NewUserAuthService(cfg, userRepo, tokenService, nil, nil)
	return svc, db
}

func countUserTokens(t *testing.T, db *gorm.DB, userID uint, purpose string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.VerifyToken{}).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Count(&count).Error; err != nil {
		t.Fatalf("count tokens failed: %v", err)
	}
	return count
}

func TestRegisterIssuesConfirmToken(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	user, err := svc.Register(RegisterInput{
		DisplayName: "Alice",
		Email:       "Alice@Example.com",
		Password:    "password1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.Confirmed {
		t.Fatalf("expected new account unconfirmed")
	}
	if got := countUserTokens(t, db, user.ID, constants.TokenPurposeConfirm); got != 1 {
		t.Fatalf("expected 1 confirm token, got %d", got)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, err := svc.Register(RegisterInput{Email: "dup@example.com", Password: "password1"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(RegisterInput{Email: "dup@example.com", Password: "password2"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginUnconfirmedIssuesFreshToken(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	user, err := svc.Register(RegisterInput{Email: "pending@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	credential, err := svc.Login("pending@example.com", "password1")
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if credential != "" {
		t.Fatalf("expected no credential for unconfirmed account")
	}
	// 登录重发的新令牌取代注册时签发的旧令牌
	if got := countUserTokens(t, db, user.ID, constants.TokenPurposeConfirm); got != 1 {
		t.Fatalf("expected a single outstanding confirm token, got %d", got)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	if _, err := svc.Login("nobody@example.com", "whatever"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user, err := svc.Register(RegisterInput{Email: "login@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("confirmed", true).Error; err != nil {
		t.Fatalf("confirm user failed: %v", err)
	}

	if _, err := svc.Login("login@example.com", "wrong-password"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestLoginCredentialRoundtrip(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	user, err := svc.Register(RegisterInput{Email: "jwt@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("confirmed", true).Error; err != nil {
		t.Fatalf("confirm user failed: %v", err)
	}

	credential, err := svc.Login("jwt@example.com", "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if credential == "" {
		t.Fatalf("expected credential")
	}

	claims, err := svc.ParseUserJWT(credential)
	if err != nil {
		t.Fatalf("parse credential failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %d in claims, got %d", user.ID, claims.UserID)
	}
}

func TestRequestConfirmationCode(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	if err := svc.RequestConfirmationCode("missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user, err := svc.Register(RegisterInput{Email: "resend@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.RequestConfirmationCode("resend@example.com"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("confirmed", true).Error; err != nil {
		t.Fatalf("confirm user failed: %v", err)
	}
	if err := svc.RequestConfirmationCode("resend@example.com"); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed, got %v", err)
	}
}

func TestForgotPasswordIssuesResetToken(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	if err := svc.ForgotPassword("missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user, err := svc.Register(RegisterInput{Email: "forgot@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.ForgotPassword("forgot@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	if got := countUserTokens(t, db, user.ID, constants.TokenPurposeReset); got != 1 {
		t.Fatalf("expected 1 reset token, got %d", got)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, err := svc.Register(RegisterInput{Email: "change@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong-current", "new-password-1"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "password1", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "password1", "new-password-1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if err := svc.CheckPassword(user.ID, "new-password-1"); err != nil {
		t.Fatalf("expected new password to verify: %v", err)
	}
	if err := svc.CheckPassword(user.ID, "password1"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
}
