package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserRepoTest(t *testing.T) (*GormUserRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:user_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewUserRepository(db), db
}

func createRepoTestUser(t *testing.T, repo *GormUserRepository, email string, confirmed, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		Confirmed:    confirmed,
		Admin:        admin,
		Status:       constants.UserStatusActive,
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestPromoteFirstConfirmedAdmin(t *testing.T) {
	repo, _ := setupUserRepoTest(t)

	first := createRepoTestUser(t, repo, "first@example.com", true, false)
	second := createRepoTestUser(t, repo, "second@example.com", true, false)

	promoted, err := repo.PromoteFirstConfirmedAdmin(first.ID)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if !promoted {
		t.Fatalf("expected first promotion to succeed")
	}

	// 已有确认管理员后条件更新不再命中
	promoted, err = repo.PromoteFirstConfirmedAdmin(second.ID)
	if err != nil {
		t.Fatalf("second promote errored: %v", err)
	}
	if promoted {
		t.Fatalf("expected second promotion to be rejected")
	}

	reloaded, err := repo.GetByID(second.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Admin {
		t.Fatalf("expected second user to stay non-admin")
	}
}

func TestHasConfirmedAdmin(t *testing.T) {
	repo, _ := setupUserRepoTest(t)

	// 未确认的管理员标记不算数
	createRepoTestUser(t, repo, "ghost@example.com", false, true)

	has, err := repo.HasConfirmedAdmin()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if has {
		t.Fatalf("expected no confirmed admin yet")
	}

	createRepoTestUser(t, repo, "boss@example.com", true, true)
	has, err = repo.HasConfirmedAdmin()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !has {
		t.Fatalf("expected confirmed admin found")
	}
}

func TestUpdateFieldsPartial(t *testing.T) {
	repo, _ := setupUserRepoTest(t)
	user := createRepoTestUser(t, repo, "partial@example.com", true, false)

	if err := repo.UpdateFields(user.ID, map[string]interface{}{
		"display_name": "Partial",
		"alias":        "p",
	}); err != nil {
		t.Fatalf("update fields failed: %v", err)
	}

	reloaded, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.DisplayName != "Partial" || reloaded.Alias != "p" {
		t.Fatalf("expected fields updated, got %+v", reloaded)
	}
	if reloaded.Email != "partial@example.com" {
		t.Fatalf("expected untouched email, got %s", reloaded.Email)
	}
}
