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

func setupTokenRepoTest(t *testing.T) (*GormVerifyTokenRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:verify_token_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.VerifyToken{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewVerifyTokenRepository(db), db
}

func TestConsumeIsAtMostOnce(t *testing.T) {
	repo, _ := setupTokenRepoTest(t)

	token := &models.VerifyToken{
		Token:   "consume-once",
		Purpose: constants.TokenPurposeConfirm,
		UserID:  1,
	}
	if err := repo.Create(token); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	consumed, err := repo.Consume(token.ID)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if !consumed {
		t.Fatalf("expected first consume to succeed")
	}

	consumed, err = repo.Consume(token.ID)
	if err != nil {
		t.Fatalf("second consume errored: %v", err)
	}
	if consumed {
		t.Fatalf("expected second consume to report no rows")
	}
}

func TestGetByValueMissing(t *testing.T) {
	repo, _ := setupTokenRepoTest(t)

	record, err := repo.GetByValue("missing")
	if err != nil {
		t.Fatalf("lookup errored: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record for missing token, got %+v", record)
	}
}

func TestDeleteByUserScopedToPurpose(t *testing.T) {
	repo, db := setupTokenRepoTest(t)

	rows := []models.VerifyToken{
		{Token: "confirm-1", Purpose: constants.TokenPurposeConfirm, UserID: 7},
		{Token: "reset-1", Purpose: constants.TokenPurposeReset, UserID: 7},
		{Token: "confirm-2", Purpose: constants.TokenPurposeConfirm, UserID: 8},
	}
	for i := range rows {
		if err := repo.Create(&rows[i]); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	if err := repo.DeleteByUser(7, constants.TokenPurposeConfirm); err != nil {
		t.Fatalf("delete by user failed: %v", err)
	}

	var remaining []models.VerifyToken
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("load remaining failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 remaining tokens, got %d", len(remaining))
	}
	for _, row := range remaining {
		if row.UserID == 7 && row.Purpose == constants.TokenPurposeConfirm {
			t.Fatalf("expected user 7 confirm tokens removed, found %s", row.Token)
		}
	}
}

func TestDeleteExpiredCutoff(t *testing.T) {
	repo, db := setupTokenRepoTest(t)

	old := models.VerifyToken{Token: "old", Purpose: constants.TokenPurposeReset, UserID: 1, CreatedAt: time.Now().Add(-time.Hour)}
	fresh := models.VerifyToken{Token: "fresh", Purpose: constants.TokenPurposeReset, UserID: 1, CreatedAt: time.Now()}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("create old failed: %v", err)
	}
	if err := db.Create(&fresh).Error; err != nil {
		t.Fatalf("create fresh failed: %v", err)
	}

	removed, err := repo.DeleteExpired(time.Now().Add(-10 * time.Minute))
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	var count int64
	if err := db.Model(&models.VerifyToken{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining, got %d", count)
	}
}
