// internal/repository/attempt_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"studyflow/internal/middleware"
	"studyflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttemptRepository は追記専用の回答ログを扱うインターフェース。
// 更新・削除は提供しない。
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *model.InputTestAttempt) error
	FindByID(ctx context.Context, db *gorm.DB, attemptID uuid.UUID) (*model.InputTestAttempt, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, p model.ListParams) (*model.ListResult[*model.InputTestAttempt], error)
}

var attemptListConfig = ListConfig{
	FilterColumns: map[string]string{
		"question_id": "question_id",
		"is_correct":  "is_correct",
	},
	OrderColumns: map[string]string{
		"created_at": "created_at",
	},
	DefaultOrder: "created_at DESC", // 新しい順
}

type gormAttemptRepository struct{}

func NewGormAttemptRepository() AttemptRepository {
	return &gormAttemptRepository{}
}

func (r *gormAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *model.InputTestAttempt) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		logger.Error("Error creating input test attempt in DB",
			"error", result.Error,
			"question_id", attempt.QuestionID.String(),
		)
		return fmt.Errorf("gormAttemptRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormAttemptRepository) FindByID(ctx context.Context, db *gorm.DB, attemptID uuid.UUID) (*model.InputTestAttempt, error) {
	var attempt model.InputTestAttempt
	result := db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&attempt)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormAttemptRepository.FindByID: %w", result.Error)
	}
	return &attempt, nil
}

func (r *gormAttemptRepository) ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, p model.ListParams) (*model.ListResult[*model.InputTestAttempt], error) {
	return List[model.InputTestAttempt](ctx, db, attemptListConfig, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}
