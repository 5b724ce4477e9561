// internal/repository/chapter_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"studyflow/internal/middleware"
	"studyflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChapterRepository インターフェース
type ChapterRepository interface {
	Create(ctx context.Context, tx *gorm.DB, chapter *model.Chapter) error
	GetOrCreate(ctx context.Context, tx *gorm.DB, bookName string, chapterNumber int, level model.Level) (*model.Chapter, bool, error)
	FindByID(ctx context.Context, db *gorm.DB, chapterID uuid.UUID) (*model.Chapter, error)
	List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.Chapter], error)
	Update(ctx context.Context, tx *gorm.DB, chapterID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, chapterID uuid.UUID) error
}

var chapterListConfig = ListConfig{
	FilterColumns: map[string]string{
		"level":     "level",
		"book_name": "book_name",
	},
	SearchColumns: []string{"book_name"},
	OrderColumns: map[string]string{
		"chapter_number": "chapter_number",
		"created_at":     "created_at",
	},
	DefaultOrder: "level ASC, chapter_number ASC",
}

type gormChapterRepository struct{}

func NewGormChapterRepository() ChapterRepository {
	return &gormChapterRepository{}
}

func (r *gormChapterRepository) Create(ctx context.Context, tx *gorm.DB, chapter *model.Chapter) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(chapter)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		logger.Error("Error creating chapter in DB",
			"error", result.Error,
			"book_name", chapter.BookName,
			"chapter_number", chapter.ChapterNumber,
		)
		return fmt.Errorf("gormChapterRepository.Create: %w", result.Error)
	}
	return nil
}

// GetOrCreate は (book_name, chapter_number) で課を取得し、なければ作成します。
// ユニーク制約に対する INSERT ... ON CONFLICT DO NOTHING の後に取得する方式で、
// 同一キーへの同時インポートでも課が重複しない。
func (r *gormChapterRepository) GetOrCreate(ctx context.Context, tx *gorm.DB, bookName string, chapterNumber int, level model.Level) (*model.Chapter, bool, error) {
	logger := middleware.GetLogger(ctx)

	chapter := model.Chapter{
		ChapterID:     uuid.New(),
		Level:         level,
		BookName:      bookName,
		ChapterNumber: chapterNumber,
	}
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_name"}, {Name: "chapter_number"}},
		DoNothing: true,
	}).Create(&chapter)
	if result.Error != nil {
		logger.Error("Error in chapter get-or-create insert",
			"error", result.Error,
			"book_name", bookName,
			"chapter_number", chapterNumber,
		)
		return nil, false, fmt.Errorf("gormChapterRepository.GetOrCreate: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return &chapter, true, nil
	}

	// 競合に負けた場合は勝者の行を取得する
	var existing model.Chapter
	result = tx.WithContext(ctx).
		Where("book_name = ? AND chapter_number = ?", bookName, chapterNumber).
		First(&existing)
	if result.Error != nil {
		logger.Error("Error fetching chapter after conflict",
			"error", result.Error,
			"book_name", bookName,
			"chapter_number", chapterNumber,
		)
		return nil, false, fmt.Errorf("gormChapterRepository.GetOrCreate fetch: %w", result.Error)
	}
	return &existing, false, nil
}

func (r *gormChapterRepository) FindByID(ctx context.Context, db *gorm.DB, chapterID uuid.UUID) (*model.Chapter, error) {
	logger := middleware.GetLogger(ctx)
	var chapter model.Chapter
	result := db.WithContext(ctx).
		Preload("Vocabularies").
		Preload("Vocabularies.KanjiInfo").
		Preload("GrammarPatterns").
		Preload("GrammarPatterns.Usages", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("GrammarPatterns.Usages.Examples", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("chapter_id = ?", chapterID).
		First(&chapter)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding chapter by ID in DB", "error", result.Error, "chapter_id", chapterID.String())
		return nil, fmt.Errorf("gormChapterRepository.FindByID: %w", result.Error)
	}
	return &chapter, nil
}

func (r *gormChapterRepository) List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.Chapter], error) {
	return List[model.Chapter](ctx, db, chapterListConfig, p, nil)
}

func (r *gormChapterRepository) Update(ctx context.Context, tx *gorm.DB, chapterID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Chapter{}).Where("chapter_id = ?", chapterID).Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		logger.Error("Error updating chapter in DB", "error", result.Error, "chapter_id", chapterID.String())
		return fmt.Errorf("gormChapterRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormChapterRepository) Delete(ctx context.Context, tx *gorm.DB, chapterID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("chapter_id = ?", chapterID).Delete(&model.Chapter{})
	if result.Error != nil {
		logger.Error("Error deleting chapter in DB", "error", result.Error, "chapter_id", chapterID.String())
		return fmt.Errorf("gormChapterRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
