// internal/repository/practice_question_repository.go
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

// PracticeQuestionRepository インターフェース
type PracticeQuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *model.PracticeQuestion) error
	FindByID(ctx context.Context, db *gorm.DB, questionID uuid.UUID) (*model.PracticeQuestion, error)
	// FindByIDInActivity はアクティビティに属する設問だけを対象に取得します。
	// 別アクティビティの設問IDを指定した場合は ErrNotFound。
	FindByIDInActivity(ctx context.Context, db *gorm.DB, activityID, questionID uuid.UUID) (*model.PracticeQuestion, error)
	List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.PracticeQuestion], error)
	Update(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error
}

var practiceQuestionListConfig = ListConfig{
	FilterColumns: map[string]string{
		"activity_id":   "activity_id",
		"vocabulary_id": "vocabulary_id",
	},
	OrderColumns: map[string]string{
		"created_at": "created_at",
	},
	DefaultOrder: "created_at ASC",
}

type gormPracticeQuestionRepository struct{}

func NewGormPracticeQuestionRepository() PracticeQuestionRepository {
	return &gormPracticeQuestionRepository{}
}

func (r *gormPracticeQuestionRepository) Create(ctx context.Context, tx *gorm.DB, question *model.PracticeQuestion) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(question)
	if result.Error != nil {
		logger.Error("Error creating practice question in DB",
			"error", result.Error,
			"activity_id", question.ActivityID.String(),
		)
		return fmt.Errorf("gormPracticeQuestionRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormPracticeQuestionRepository) FindByID(ctx context.Context, db *gorm.DB, questionID uuid.UUID) (*model.PracticeQuestion, error) {
	logger := middleware.GetLogger(ctx)
	var question model.PracticeQuestion
	result := db.WithContext(ctx).Preload("Vocabulary").Where("question_id = ?", questionID).First(&question)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding practice question by ID in DB", "error", result.Error, "question_id", questionID.String())
		return nil, fmt.Errorf("gormPracticeQuestionRepository.FindByID: %w", result.Error)
	}
	return &question, nil
}

func (r *gormPracticeQuestionRepository) FindByIDInActivity(ctx context.Context, db *gorm.DB, activityID, questionID uuid.UUID) (*model.PracticeQuestion, error) {
	logger := middleware.GetLogger(ctx)
	var question model.PracticeQuestion
	result := db.WithContext(ctx).
		Where("activity_id = ? AND question_id = ?", activityID, questionID).
		First(&question)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding practice question in activity",
			"error", result.Error,
			"activity_id", activityID.String(),
			"question_id", questionID.String(),
		)
		return nil, fmt.Errorf("gormPracticeQuestionRepository.FindByIDInActivity: %w", result.Error)
	}
	return &question, nil
}

func (r *gormPracticeQuestionRepository) List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.PracticeQuestion], error) {
	return List[model.PracticeQuestion](ctx, db, practiceQuestionListConfig, p, nil, "Vocabulary")
}

func (r *gormPracticeQuestionRepository) Update(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.PracticeQuestion{}).Where("question_id = ?", questionID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating practice question in DB", "error", result.Error, "question_id", questionID.String())
		return fmt.Errorf("gormPracticeQuestionRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormPracticeQuestionRepository) Delete(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("question_id = ?", questionID).Delete(&model.PracticeQuestion{})
	if result.Error != nil {
		logger.Error("Error deleting practice question in DB", "error", result.Error, "question_id", questionID.String())
		return fmt.Errorf("gormPracticeQuestionRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
