// internal/repository/db.go
package repository

import (
	"log/slog"
	"time"

	"studyflow/internal/model"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB はGORMのDB接続を初期化します
func NewDB(databaseURL string, appLogger *slog.Logger, debug bool) (*gorm.DB, error) {
	gormLogLevel := gormlogger.Warn
	if debug {
		gormLogLevel = gormlogger.Info
	}

	// GORMのクエリログを slog に流す
	slogGormLogger := slogGorm.New(
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithTraceAll(),
		slogGorm.WithSlowThreshold(500*time.Millisecond),
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: slogGormLogger.LogMode(gormLogLevel),
		// ユニーク制約違反を gorm.ErrDuplicatedKey に寄せる
		TranslateError: true,
	})
	if err != nil {
		appLogger.Error("Failed to connect to database with GORM", slog.Any("error", err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		return nil, err
	}

	if err = sqlDB.Ping(); err != nil {
		appLogger.Error("Error pinging database", slog.Any("error", err))
		sqlDB.Close()
		return nil, err
	}

	// コネクションプールの設定
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	appLogger.Info("Database connection established with GORM")
	return db, nil
}

// Migrate はスキーマを最新化します
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Chapter{},
		&model.Vocabulary{},
		&model.KanjiInfo{},
		&model.GrammarPattern{},
		&model.GrammarUsage{},
		&model.GrammarExample{},
		&model.Note{},
		&model.PracticeActivity{},
		&model.PracticeQuestion{},
		&model.UserProgress{},
		&model.InputTestQuestion{},
		&model.InputTestAttempt{},
	)
}
