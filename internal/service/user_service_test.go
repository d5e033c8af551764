package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/usercenter-next/internal/constants"
	"github.com/usercenter-next/internal/models"
	"github.com/usercenter-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserServiceTest(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:user_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewUserService(repository.NewUserRepository(db)), db
}

func createDirectoryTestUser(t *testing.T, db *gorm.DB, email string, confirmed, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		DisplayName:  "User",
		Confirmed:    confirmed,
		Admin:        admin,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestListConfirmedExcludesUnconfirmed(t *testing.T) {
	svc, db := setupUserServiceTest(t)

	confirmed := createDirectoryTestUser(t, db, "confirmed@example.com", true, false)
	createDirectoryTestUser(t, db, "pending@example.com", false, false)

	users, err := svc.ListConfirmed()
	if err != nil {
		t.Fatalf("list confirmed failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 confirmed user, got %d", len(users))
	}
	if users[0].ID != confirmed.ID {
		t.Fatalf("expected user %d, got %d", confirmed.ID, users[0].ID)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := setupUserServiceTest(t)

	if _, err := svc.GetByID(12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetPublicByID(12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, db := setupUserServiceTest(t)
	user := createDirectoryTestUser(t, db, "profile@example.com", true, false)

	updated, err := svc.UpdateProfile(user.ID, "New Name", "new-alias", "/uploads/avatars/2026/08/a.png")
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != "New Name" || updated.Alias != "new-alias" {
		t.Fatalf("expected profile fields updated, got %+v", updated)
	}
	if updated.AvatarPath != "/uploads/avatars/2026/08/a.png" {
		t.Fatalf("expected avatar path recorded, got %s", updated.AvatarPath)
	}

	// 空头像路径保留原值
	kept, err := svc.UpdateProfile(user.ID, "New Name", "new-alias", "")
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if kept.AvatarPath != "/uploads/avatars/2026/08/a.png" {
		t.Fatalf("expected avatar path kept, got %s", kept.AvatarPath)
	}
}

func TestUpdateUserSelfOrAdminOnly(t *testing.T) {
	svc, db := setupUserServiceTest(t)

	admin := createDirectoryTestUser(t, db, "admin@example.com", true, true)
	target := createDirectoryTestUser(t, db, "target@example.com", true, false)
	other := createDirectoryTestUser(t, db, "other@example.com", true, false)

	name := "Renamed"
	if _, err := svc.UpdateUser(other.ID, target.ID, UserUpdateInput{DisplayName: &name}); !errors.Is(err, ErrForbiddenUpdate) {
		t.Fatalf("expected ErrForbiddenUpdate for non-admin stranger, got %v", err)
	}

	updated, err := svc.UpdateUser(target.ID, target.ID, UserUpdateInput{DisplayName: &name})
	if err != nil {
		t.Fatalf("self update failed: %v", err)
	}
	if updated.DisplayName != "Renamed" {
		t.Fatalf("expected self update applied, got %s", updated.DisplayName)
	}

	status := constants.UserStatusInactive
	updated, err = svc.UpdateUser(admin.ID, target.ID, UserUpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Status != constants.UserStatusInactive {
		t.Fatalf("expected admin status update applied, got %s", updated.Status)
	}
}

func TestUpdateUserIgnoresInvalidStatus(t *testing.T) {
	svc, db := setupUserServiceTest(t)
	user := createDirectoryTestUser(t, db, "status@example.com", true, false)

	bogus := "superuser"
	updated, err := svc.UpdateUser(user.ID, user.ID, UserUpdateInput{Status: &bogus})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != constants.UserStatusActive {
		t.Fatalf("expected unknown status ignored, got %s", updated.Status)
	}
}
