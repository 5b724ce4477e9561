// internal/repository/grammar_repository.go
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

// GrammarRepository は文型とネストした用法・例文を扱うインターフェース
type GrammarRepository interface {
	Create(ctx context.Context, tx *gorm.DB, pattern *model.GrammarPattern) error
	FindByID(ctx context.Context, db *gorm.DB, patternID uuid.UUID) (*model.GrammarPattern, error)
	List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.GrammarPattern], error)
	Update(ctx context.Context, tx *gorm.DB, patternID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, patternID uuid.UUID) error
}

var grammarListConfig = ListConfig{
	FilterColumns: map[string]string{
		"chapter_id": "chapter_id",
	},
	SearchColumns: []string{"pattern", "description"},
	OrderColumns: map[string]string{
		"pattern":    "pattern",
		"created_at": "created_at",
	},
	DefaultOrder: "created_at DESC",
}

// orderedUsages は用法と例文を order 順でPreloadする共通スコープ
func orderedUsages(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Usages", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Usages.Examples", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") })
}

type gormGrammarRepository struct{}

func NewGormGrammarRepository() GrammarRepository {
	return &gormGrammarRepository{}
}

// Create は文型をネストした用法・例文ごと保存します (GORMのアソシエーション経由)
func (r *gormGrammarRepository) Create(ctx context.Context, tx *gorm.DB, pattern *model.GrammarPattern) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(pattern)
	if result.Error != nil {
		logger.Error("Error creating grammar pattern in DB",
			"error", result.Error,
			"chapter_id", pattern.ChapterID.String(),
			"pattern", pattern.Pattern,
		)
		return fmt.Errorf("gormGrammarRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormGrammarRepository) FindByID(ctx context.Context, db *gorm.DB, patternID uuid.UUID) (*model.GrammarPattern, error) {
	logger := middleware.GetLogger(ctx)
	var pattern model.GrammarPattern
	result := orderedUsages(db.WithContext(ctx)).Where("pattern_id = ?", patternID).First(&pattern)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding grammar pattern by ID in DB", "error", result.Error, "pattern_id", patternID.String())
		return nil, fmt.Errorf("gormGrammarRepository.FindByID: %w", result.Error)
	}
	return &pattern, nil
}

func (r *gormGrammarRepository) List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.GrammarPattern], error) {
	return List[model.GrammarPattern](ctx, db, grammarListConfig, p, orderedUsages)
}

func (r *gormGrammarRepository) Update(ctx context.Context, tx *gorm.DB, patternID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.GrammarPattern{}).Where("pattern_id = ?", patternID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating grammar pattern in DB", "error", result.Error, "pattern_id", patternID.String())
		return fmt.Errorf("gormGrammarRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormGrammarRepository) Delete(ctx context.Context, tx *gorm.DB, patternID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("pattern_id = ?", patternID).Delete(&model.GrammarPattern{})
	if result.Error != nil {
		logger.Error("Error deleting grammar pattern in DB", "error", result.Error, "pattern_id", patternID.String())
		return fmt.Errorf("gormGrammarRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
