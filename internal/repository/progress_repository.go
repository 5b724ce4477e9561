// internal/repository/progress_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyflow/internal/middleware"
	"studyflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository インターフェース
type ProgressRepository interface {
	// GetOrCreate は (user, activity) の進捗行を取得し、なければ score=0 で作成します。
	// ユニーク制約への conditional insert なので同時送信でも行は重複しない。
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID, activityID uuid.UUID) (*model.UserProgress, bool, error)
	// IncrementScore はスコアを原子的に1加算し、last_attempt を更新します
	IncrementScore(ctx context.Context, tx *gorm.DB, userID, activityID uuid.UUID) error
	// TouchLastAttempt は不正解時など、スコアを変えずに最終挑戦日時だけ更新します
	TouchLastAttempt(ctx context.Context, tx *gorm.DB, userID, activityID uuid.UUID) error
	FindByUserAndActivity(ctx context.Context, db *gorm.DB, userID, activityID uuid.UUID) (*model.UserProgress, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, p model.ListParams) (*model.ListResult[*model.UserProgress], error)
	Update(ctx context.Context, tx *gorm.DB, userID, progressID uuid.UUID, updates map[string]interface{}) error
}

var progressListConfig = ListConfig{
	FilterColumns: map[string]string{
		"activity_id": "activity_id",
		"completed":   "completed",
	},
	OrderColumns: map[string]string{
		"score":        "score",
		"last_attempt": "last_attempt",
	},
	DefaultOrder: "last_attempt DESC",
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, activityID uuid.UUID) (*model.UserProgress, bool, error) {
	logger := middleware.GetLogger(ctx)

	progress := model.UserProgress{
		ProgressID:  uuid.New(),
		UserID:      userID,
		ActivityID:  activityID,
		Score:       0,
		LastAttempt: time.Now(),
	}
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "activity_id"}},
		DoNothing: true,
	}).Create(&progress)
	if result.Error != nil {
		logger.Error("Error in progress get-or-create insert",
			"error", result.Error,
			"user_id", userID.String(),
			"activity_id", activityID.String(),
		)
		return nil, false, fmt.Errorf("gormProgressRepository.GetOrCreate: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return &progress, true, nil
	}

	existing, err := r.FindByUserAndActivity(ctx, tx, userID, activityID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *gormProgressRepository) IncrementScore(ctx context.Context, tx *gorm.DB, userID, activityID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Updates(map[string]interface{}{
			"score":        gorm.Expr("score + 1"),
			"last_attempt": time.Now(),
		})
	if result.Error != nil {
		logger.Error("Error incrementing progress score",
			"error", result.Error,
			"user_id", userID.String(),
			"activity_id", activityID.String(),
		)
		return fmt.Errorf("gormProgressRepository.IncrementScore: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormProgressRepository) TouchLastAttempt(ctx context.Context, tx *gorm.DB, userID, activityID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Update("last_attempt", time.Now())
	if result.Error != nil {
		logger.Error("Error touching progress last_attempt",
			"error", result.Error,
			"user_id", userID.String(),
			"activity_id", activityID.String(),
		)
		return fmt.Errorf("gormProgressRepository.TouchLastAttempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormProgressRepository) FindByUserAndActivity(ctx context.Context, db *gorm.DB, userID, activityID uuid.UUID) (*model.UserProgress, error) {
	logger := middleware.GetLogger(ctx)
	var progress model.UserProgress
	result := db.WithContext(ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding progress in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"activity_id", activityID.String(),
		)
		return nil, fmt.Errorf("gormProgressRepository.FindByUserAndActivity: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, p model.ListParams) (*model.ListResult[*model.UserProgress], error) {
	return List[model.UserProgress](ctx, db, progressListConfig, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

func (r *gormProgressRepository) Update(ctx context.Context, tx *gorm.DB, userID, progressID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND progress_id = ?", userID, progressID).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating progress in DB", "error", result.Error, "progress_id", progressID.String())
		return fmt.Errorf("gormProgressRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
