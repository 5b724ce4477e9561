// internal/service/helpers_test.go
package service

import (
	"fmt"
	"testing"

	"studyflow/internal/config"
	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB はテストごとに独立したインメモリDBを用意します。
// 名前付き共有メモリDBにしないと、コネクションプールが別々の空DBを見てしまう。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")

	// 単一コネクションに絞り、sqliteの書き込みロック競合を避ける
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, repository.Migrate(db), "failed to migrate test database")
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.PageSize = 20
	cfg.App.DefaultImportLevel = "N5"
	return cfg
}

// createTestChapter は課を1件直接INSERTします
func createTestChapter(t *testing.T, db *gorm.DB, bookName string, chapterNumber int, level model.Level) *model.Chapter {
	t.Helper()
	chapter := &model.Chapter{
		ChapterID:     uuid.New(),
		Level:         level,
		BookName:      bookName,
		ChapterNumber: chapterNumber,
	}
	require.NoError(t, db.Create(chapter).Error)
	return chapter
}

// createTestUser はユーザーを1件直接INSERTします (パスワードハッシュはダミー)
func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		UserID:       uuid.New(),
		Name:         "テスト太郎",
		Email:        email,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
