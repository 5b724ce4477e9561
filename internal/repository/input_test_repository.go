// internal/repository/input_test_repository.go
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

// InputTestQuestionRepository インターフェース
type InputTestQuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *model.InputTestQuestion) error
	FindByID(ctx context.Context, db *gorm.DB, questionID uuid.UUID) (*model.InputTestQuestion, error)
	List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.InputTestQuestion], error)
	// ListVocabulary は question_type=vocabulary に固定した読み取り専用ビュー
	ListVocabulary(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.InputTestQuestion], error)
	Update(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error
	// FindMissingDenormalized は book_name / chapter_number が欠けている設問を返します (バックフィル用)
	FindMissingDenormalized(ctx context.Context, db *gorm.DB) ([]*model.InputTestQuestion, error)
	// FindByBookAndChapter は非正規化キーで設問を検索します (修復ジョブ用)
	FindByBookAndChapter(ctx context.Context, db *gorm.DB, bookName string, chapterNumber int) ([]*model.InputTestQuestion, error)
}

var inputTestQuestionListConfig = ListConfig{
	FilterColumns: map[string]string{
		"chapter_id":    "chapter_id",
		"question_type": "question_type",
	},
	OrderColumns: map[string]string{
		"created_at": "created_at",
	},
	DefaultOrder: "question_type ASC, created_at ASC",
}

// 語彙ビューは課と非正規化キーの両方で絞り込める
var vocabularyQuestionListConfig = ListConfig{
	FilterColumns: map[string]string{
		"chapter_id":     "chapter_id",
		"book_name":      "book_name",
		"chapter_number": "chapter_number",
	},
	OrderColumns: map[string]string{
		"created_at": "created_at",
	},
	DefaultOrder: "created_at ASC",
}

type gormInputTestQuestionRepository struct{}

func NewGormInputTestQuestionRepository() InputTestQuestionRepository {
	return &gormInputTestQuestionRepository{}
}

func (r *gormInputTestQuestionRepository) Create(ctx context.Context, tx *gorm.DB, question *model.InputTestQuestion) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(question)
	if result.Error != nil {
		logger.Error("Error creating input test question in DB",
			"error", result.Error,
			"chapter_id", question.ChapterID.String(),
		)
		return fmt.Errorf("gormInputTestQuestionRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormInputTestQuestionRepository) FindByID(ctx context.Context, db *gorm.DB, questionID uuid.UUID) (*model.InputTestQuestion, error) {
	logger := middleware.GetLogger(ctx)
	var question model.InputTestQuestion
	result := db.WithContext(ctx).Where("question_id = ?", questionID).First(&question)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding input test question by ID in DB", "error", result.Error, "question_id", questionID.String())
		return nil, fmt.Errorf("gormInputTestQuestionRepository.FindByID: %w", result.Error)
	}
	return &question, nil
}

func (r *gormInputTestQuestionRepository) List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.InputTestQuestion], error) {
	return List[model.InputTestQuestion](ctx, db, inputTestQuestionListConfig, p, nil)
}

func (r *gormInputTestQuestionRepository) ListVocabulary(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.InputTestQuestion], error) {
	return List[model.InputTestQuestion](ctx, db, vocabularyQuestionListConfig, p, func(db *gorm.DB) *gorm.DB {
		return db.Where("question_type = ?", model.QuestionVocabulary)
	})
}

func (r *gormInputTestQuestionRepository) Update(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.InputTestQuestion{}).Where("question_id = ?", questionID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating input test question in DB", "error", result.Error, "question_id", questionID.String())
		return fmt.Errorf("gormInputTestQuestionRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormInputTestQuestionRepository) Delete(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("question_id = ?", questionID).Delete(&model.InputTestQuestion{})
	if result.Error != nil {
		logger.Error("Error deleting input test question in DB", "error", result.Error, "question_id", questionID.String())
		return fmt.Errorf("gormInputTestQuestionRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormInputTestQuestionRepository) FindMissingDenormalized(ctx context.Context, db *gorm.DB) ([]*model.InputTestQuestion, error) {
	var questions []*model.InputTestQuestion
	result := db.WithContext(ctx).
		Where("book_name = '' OR chapter_number = 0").
		Find(&questions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormInputTestQuestionRepository.FindMissingDenormalized: %w", result.Error)
	}
	return questions, nil
}

func (r *gormInputTestQuestionRepository) FindByBookAndChapter(ctx context.Context, db *gorm.DB, bookName string, chapterNumber int) ([]*model.InputTestQuestion, error) {
	var questions []*model.InputTestQuestion
	result := db.WithContext(ctx).
		Where("book_name = ? AND chapter_number = ?", bookName, chapterNumber).
		Find(&questions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormInputTestQuestionRepository.FindByBookAndChapter: %w", result.Error)
	}
	return questions, nil
}
