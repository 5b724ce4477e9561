// internal/repository/activity_repository.go
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

// ActivityRepository インターフェース
type ActivityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, activity *model.PracticeActivity) error
	FindByID(ctx context.Context, db *gorm.DB, activityID uuid.UUID) (*model.PracticeActivity, error)
	List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.PracticeActivity], error)
	Update(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) error
}

var activityListConfig = ListConfig{
	FilterColumns: map[string]string{
		"chapter_id":    "chapter_id",
		"activity_type": "activity_type",
	},
	SearchColumns: []string{"title", "description"},
	OrderColumns: map[string]string{
		"created_at": "created_at",
	},
	DefaultOrder: "created_at DESC",
}

type gormActivityRepository struct{}

func NewGormActivityRepository() ActivityRepository {
	return &gormActivityRepository{}
}

func (r *gormActivityRepository) Create(ctx context.Context, tx *gorm.DB, activity *model.PracticeActivity) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(activity)
	if result.Error != nil {
		logger.Error("Error creating practice activity in DB",
			"error", result.Error,
			"chapter_id", activity.ChapterID.String(),
			"title", activity.Title,
		)
		return fmt.Errorf("gormActivityRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormActivityRepository) FindByID(ctx context.Context, db *gorm.DB, activityID uuid.UUID) (*model.PracticeActivity, error) {
	logger := middleware.GetLogger(ctx)
	var activity model.PracticeActivity
	result := db.WithContext(ctx).
		Preload("Questions").
		Preload("Questions.Vocabulary").
		Where("activity_id = ?", activityID).
		First(&activity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding practice activity by ID in DB", "error", result.Error, "activity_id", activityID.String())
		return nil, fmt.Errorf("gormActivityRepository.FindByID: %w", result.Error)
	}
	return &activity, nil
}

func (r *gormActivityRepository) List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.PracticeActivity], error) {
	return List[model.PracticeActivity](ctx, db, activityListConfig, p, nil)
}

func (r *gormActivityRepository) Update(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.PracticeActivity{}).Where("activity_id = ?", activityID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating practice activity in DB", "error", result.Error, "activity_id", activityID.String())
		return fmt.Errorf("gormActivityRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormActivityRepository) Delete(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("activity_id = ?", activityID).Delete(&model.PracticeActivity{})
	if result.Error != nil {
		logger.Error("Error deleting practice activity in DB", "error", result.Error, "activity_id", activityID.String())
		return fmt.Errorf("gormActivityRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
