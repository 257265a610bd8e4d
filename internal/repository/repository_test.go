package repository

import (
	"testing"

	"tidepool/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Block{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		PlanTier: models.PlanTierFree,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint) *models.Post {
	t.Helper()
	post := &models.Post{
		Content:    "test post",
		UserID:     userID,
		Visibility: models.VisibilityPublic,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}

func postCommentsCount(t *testing.T, db *gorm.DB, postID uint) int {
	t.Helper()
	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("Failed to reload post: %v", err)
	}
	return post.CommentsCount
}

func commentRows(t *testing.T, db *gorm.DB, postID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count comments: %v", err)
	}
	return count
}
