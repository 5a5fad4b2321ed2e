package relationship

import (
	"fmt"
	"testing"

	"socialgraph/backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the production schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Friendship{}, &models.Follower{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedUsers creates n users and returns their ids in creation order.
func seedUsers(t *testing.T, db *gorm.DB, n int) []uint {
	t.Helper()

	ids := make([]uint, 0, n)
	for i := 1; i <= n; i++ {
		u := models.User{
			Nickname:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: "not-a-real-hash",
		}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("seed user %d: %v", i, err)
		}
		ids = append(ids, u.ID)
	}
	return ids
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
