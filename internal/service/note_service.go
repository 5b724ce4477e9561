// internal/service/note_service.go
package service

import (
	"context"
	"errors"

	"studyflow/internal/config"
	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteService interface {
	PostNote(ctx context.Context, req *model.PostNoteRequest) (*model.Note, error)
	GetNote(ctx context.Context, noteID uuid.UUID) (*model.Note, error)
	ListNotes(ctx context.Context, p model.ListParams) (*model.ListResult[*model.Note], error)
	PatchNote(ctx context.Context, noteID uuid.UUID, req *model.PatchNoteRequest) (*model.Note, error)
	DeleteNote(ctx context.Context, noteID uuid.UUID) error
}

type noteService struct {
	db       *gorm.DB
	noteRepo repository.NoteRepository
	cfg      *config.Config
}

func NewNoteService(db *gorm.DB, noteRepo repository.NoteRepository, cfg *config.Config) NoteService {
	return &noteService{
		db:       db,
		noteRepo: noteRepo,
		cfg:      cfg,
	}
}

func (s *noteService) PostNote(ctx context.Context, req *model.PostNoteRequest) (*model.Note, error) {
	logger := middleware.GetLogger(ctx)

	note := &model.Note{
		NoteID:  uuid.New(),
		Title:   req.Title,
		Content: req.Content,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.noteRepo.Create(ctx, tx, note)
	})
	if err != nil {
		logger.Error("Transaction failed for PostNote", "error", err)
		return nil, model.ErrInternalServer
	}
	return note, nil
}

func (s *noteService) GetNote(ctx context.Context, noteID uuid.UUID) (*model.Note, error) {
	return s.noteRepo.FindByID(ctx, s.db, noteID)
}

func (s *noteService) ListNotes(ctx context.Context, p model.ListParams) (*model.ListResult[*model.Note], error) {
	logger := middleware.GetLogger(ctx)
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.noteRepo.List(ctx, s.db, p)
	if err != nil {
		logger.Error("Error listing notes", "error", err)
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *noteService) PatchNote(ctx context.Context, noteID uuid.UUID, req *model.PatchNoteRequest) (*model.Note, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.noteRepo.FindByID(ctx, tx, noteID); err != nil {
			return err
		}
		updates := make(map[string]interface{})
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Content != nil {
			updates["content"] = *req.Content
		}
		if err := s.noteRepo.Update(ctx, tx, noteID, updates); err != nil {
			return err
		}
		var err error
		updated, err = s.noteRepo.FindByID(ctx, tx, noteID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for PatchNote", "error", err)
		return nil, model.ErrInternalServer
	}
	return updated, nil
}

func (s *noteService) DeleteNote(ctx context.Context, noteID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.noteRepo.Delete(ctx, tx, noteID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Transaction failed for DeleteNote", "error", err)
		return model.ErrInternalServer
	}
	return nil
}
