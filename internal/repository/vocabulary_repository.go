// internal/repository/vocabulary_repository.go
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

// VocabularyRepository インターフェース
type VocabularyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, vocabulary *model.Vocabulary) error
	FindByID(ctx context.Context, db *gorm.DB, vocabularyID uuid.UUID) (*model.Vocabulary, error)
	List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.Vocabulary], error)
	Update(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID) error
}

var vocabularyListConfig = ListConfig{
	FilterColumns: map[string]string{
		"chapter_id": "chapter_id",
	},
	SearchColumns: []string{"word", "meaning"},
	OrderColumns: map[string]string{
		"word":       "word",
		"created_at": "created_at",
	},
	DefaultOrder: "created_at DESC",
}

type gormVocabularyRepository struct{}

func NewGormVocabularyRepository() VocabularyRepository {
	return &gormVocabularyRepository{}
}

func (r *gormVocabularyRepository) Create(ctx context.Context, tx *gorm.DB, vocabulary *model.Vocabulary) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(vocabulary)
	if result.Error != nil {
		logger.Error("Error creating vocabulary in DB",
			"error", result.Error,
			"chapter_id", vocabulary.ChapterID.String(),
			"word", vocabulary.Word,
		)
		return fmt.Errorf("gormVocabularyRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormVocabularyRepository) FindByID(ctx context.Context, db *gorm.DB, vocabularyID uuid.UUID) (*model.Vocabulary, error) {
	logger := middleware.GetLogger(ctx)
	var vocabulary model.Vocabulary
	result := db.WithContext(ctx).Preload("KanjiInfo").Where("vocabulary_id = ?", vocabularyID).First(&vocabulary)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding vocabulary by ID in DB", "error", result.Error, "vocabulary_id", vocabularyID.String())
		return nil, fmt.Errorf("gormVocabularyRepository.FindByID: %w", result.Error)
	}
	return &vocabulary, nil
}

func (r *gormVocabularyRepository) List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.Vocabulary], error) {
	return List[model.Vocabulary](ctx, db, vocabularyListConfig, p, nil, "KanjiInfo")
}

func (r *gormVocabularyRepository) Update(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Vocabulary{}).Where("vocabulary_id = ?", vocabularyID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating vocabulary in DB", "error", result.Error, "vocabulary_id", vocabularyID.String())
		return fmt.Errorf("gormVocabularyRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormVocabularyRepository) Delete(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("vocabulary_id = ?", vocabularyID).Delete(&model.Vocabulary{})
	if result.Error != nil {
		logger.Error("Error deleting vocabulary in DB", "error", result.Error, "vocabulary_id", vocabularyID.String())
		return fmt.Errorf("gormVocabularyRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
