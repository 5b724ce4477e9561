// internal/repository/note_repository.go
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

// NoteRepository インターフェース
type NoteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, note *model.Note) error
	FindByID(ctx context.Context, db *gorm.DB, noteID uuid.UUID) (*model.Note, error)
	List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.Note], error)
	Update(ctx context.Context, tx *gorm.DB, noteID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) error
}

var noteListConfig = ListConfig{
	FilterColumns: map[string]string{},
	SearchColumns: []string{"title", "content"},
	OrderColumns: map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
	},
	DefaultOrder: "created_at DESC",
}

type gormNoteRepository struct{}

func NewGormNoteRepository() NoteRepository {
	return &gormNoteRepository{}
}

func (r *gormNoteRepository) Create(ctx context.Context, tx *gorm.DB, note *model.Note) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(note)
	if result.Error != nil {
		logger.Error("Error creating note in DB", "error", result.Error)
		return fmt.Errorf("gormNoteRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormNoteRepository) FindByID(ctx context.Context, db *gorm.DB, noteID uuid.UUID) (*model.Note, error) {
	logger := middleware.GetLogger(ctx)
	var note model.Note
	result := db.WithContext(ctx).Where("note_id = ?", noteID).First(&note)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding note by ID in DB", "error", result.Error, "note_id", noteID.String())
		return nil, fmt.Errorf("gormNoteRepository.FindByID: %w", result.Error)
	}
	return &note, nil
}

func (r *gormNoteRepository) List(ctx context.Context, db *gorm.DB, p model.ListParams) (*model.ListResult[*model.Note], error) {
	return List[model.Note](ctx, db, noteListConfig, p, nil)
}

func (r *gormNoteRepository) Update(ctx context.Context, tx *gorm.DB, noteID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Note{}).Where("note_id = ?", noteID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating note in DB", "error", result.Error, "note_id", noteID.String())
		return fmt.Errorf("gormNoteRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormNoteRepository) Delete(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("note_id = ?", noteID).Delete(&model.Note{})
	if result.Error != nil {
		logger.Error("Error deleting note in DB", "error", result.Error, "note_id", noteID.String())
		return fmt.Errorf("gormNoteRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
