// internal/service/chapter_service.go
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

type ChapterService interface {
	PostChapter(ctx context.Context, req *model.PostChapterRequest) (*model.Chapter, error)
	GetChapter(ctx context.Context, chapterID uuid.UUID) (*model.Chapter, error)
	ListChapters(ctx context.Context, p model.ListParams) (*model.ListResult[*model.Chapter], error)
	PutChapter(ctx context.Context, chapterID uuid.UUID, req *model.PutChapterRequest) (*model.Chapter, error)
	DeleteChapter(ctx context.Context, chapterID uuid.UUID) error
}

type chapterService struct {
	db          *gorm.DB
	chapterRepo repository.ChapterRepository
	cfg         *config.Config
}

func NewChapterService(db *gorm.DB, chapterRepo repository.ChapterRepository, cfg *config.Config) ChapterService {
	return &chapterService{
		db:          db,
		chapterRepo: chapterRepo,
		cfg:         cfg,
	}
}

func (s *chapterService) PostChapter(ctx context.Context, req *model.PostChapterRequest) (*model.Chapter, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.Chapter
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chapter := &model.Chapter{
			ChapterID:     uuid.New(),
			Level:         req.Level,
			BookName:      req.BookName,
			ChapterNumber: req.ChapterNumber,
		}
		if err := s.chapterRepo.Create(ctx, tx, chapter); err != nil {
			return err
		}
		created = chapter
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("CHAPTER_CONFLICT", "同じ教科書名と課番号の課が既に存在します。", "chapter_number", model.ErrConflict)
		}
		logger.Error("Transaction failed for PostChapter", "error", err)
		return nil, model.ErrInternalServer
	}
	return created, nil
}

func (s *chapterService) GetChapter(ctx context.Context, chapterID uuid.UUID) (*model.Chapter, error) {
	return s.chapterRepo.FindByID(ctx, s.db, chapterID)
}

func (s *chapterService) ListChapters(ctx context.Context, p model.ListParams) (*model.ListResult[*model.Chapter], error) {
	logger := middleware.GetLogger(ctx)
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.chapterRepo.List(ctx, s.db, p)
	if err != nil {
		logger.Error("Error listing chapters", "error", err)
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *chapterService) PutChapter(ctx context.Context, chapterID uuid.UUID, req *model.PutChapterRequest) (*model.Chapter, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.Chapter
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.chapterRepo.FindByID(ctx, tx, chapterID); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"level":          req.Level,
			"book_name":      req.BookName,
			"chapter_number": req.ChapterNumber,
		}
		if err := s.chapterRepo.Update(ctx, tx, chapterID, updates); err != nil {
			return err
		}
		var err error
		updated, err = s.chapterRepo.FindByID(ctx, tx, chapterID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("CHAPTER_CONFLICT", "同じ教科書名と課番号の課が既に存在します。", "chapter_number", model.ErrConflict)
		}
		logger.Error("Transaction failed for PutChapter", "error", err)
		return nil, model.ErrInternalServer
	}
	return updated, nil
}

// DeleteChapter は課と配下の語彙・文型・アクティビティ・設問をすべて削除します
// (外部キーのカスケードに委ねる)
func (s *chapterService) DeleteChapter(ctx context.Context, chapterID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.chapterRepo.Delete(ctx, tx, chapterID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Transaction failed for DeleteChapter", "error", err)
		return model.ErrInternalServer
	}
	return nil
}
