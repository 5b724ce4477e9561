// internal/service/vocabulary_service.go
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

type VocabularyService interface {
	PostVocabulary(ctx context.Context, req *model.PostVocabularyRequest) (*model.Vocabulary, error)
	GetVocabulary(ctx context.Context, vocabularyID uuid.UUID) (*model.Vocabulary, error)
	ListVocabularies(ctx context.Context, p model.ListParams) (*model.ListResult[*model.Vocabulary], error)
	PatchVocabulary(ctx context.Context, vocabularyID uuid.UUID, req *model.PatchVocabularyRequest) (*model.Vocabulary, error)
	DeleteVocabulary(ctx context.Context, vocabularyID uuid.UUID) error
}

type vocabularyService struct {
	db          *gorm.DB
	vocabRepo   repository.VocabularyRepository
	chapterRepo repository.ChapterRepository
	cfg         *config.Config
}

func NewVocabularyService(db *gorm.DB, vocabRepo repository.VocabularyRepository, chapterRepo repository.ChapterRepository, cfg *config.Config) VocabularyService {
	return &vocabularyService{
		db:          db,
		vocabRepo:   vocabRepo,
		chapterRepo: chapterRepo,
		cfg:         cfg,
	}
}

func (s *vocabularyService) PostVocabulary(ctx context.Context, req *model.PostVocabularyRequest) (*model.Vocabulary, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.Vocabulary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 親の課が存在するか確認
		if _, err := s.chapterRepo.FindByID(ctx, tx, req.ChapterID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CHAPTER_NOT_FOUND", "指定された課が見つかりません。", "chapter_id", model.ErrNotFound)
			}
			return err
		}

		vocabulary := &model.Vocabulary{
			VocabularyID:       uuid.New(),
			ChapterID:          req.ChapterID,
			Word:               req.Word,
			Meaning:            req.Meaning,
			Example:            req.Example,
			ExampleTranslation: req.ExampleTranslation,
		}
		if req.KanjiInfo != nil {
			vocabulary.KanjiInfo = &model.KanjiInfo{
				KanjiInfoID: uuid.New(),
				Radical:     req.KanjiInfo.Radical,
				OnYomi:      req.KanjiInfo.OnYomi,
				KunYomi:     req.KanjiInfo.KunYomi,
			}
		}
		if err := s.vocabRepo.Create(ctx, tx, vocabulary); err != nil {
			return err
		}
		created = vocabulary
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Transaction failed for PostVocabulary", "error", err)
		return nil, model.ErrInternalServer
	}
	return created, nil
}

func (s *vocabularyService) GetVocabulary(ctx context.Context, vocabularyID uuid.UUID) (*model.Vocabulary, error) {
	return s.vocabRepo.FindByID(ctx, s.db, vocabularyID)
}

func (s *vocabularyService) ListVocabularies(ctx context.Context, p model.ListParams) (*model.ListResult[*model.Vocabulary], error) {
	logger := middleware.GetLogger(ctx)
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.vocabRepo.List(ctx, s.db, p)
	if err != nil {
		logger.Error("Error listing vocabularies", "error", err)
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *vocabularyService) PatchVocabulary(ctx context.Context, vocabularyID uuid.UUID, req *model.PatchVocabularyRequest) (*model.Vocabulary, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.Vocabulary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.vocabRepo.FindByID(ctx, tx, vocabularyID); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Word != nil {
			updates["word"] = *req.Word
		}
		if req.Meaning != nil {
			updates["meaning"] = *req.Meaning
		}
		if req.Example != nil {
			updates["example"] = *req.Example
		}
		if req.ExampleTranslation != nil {
			updates["example_translation"] = *req.ExampleTranslation
		}
		if err := s.vocabRepo.Update(ctx, tx, vocabularyID, updates); err != nil {
			return err
		}

		var err error
		updated, err = s.vocabRepo.FindByID(ctx, tx, vocabularyID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for PatchVocabulary", "error", err)
		return nil, model.ErrInternalServer
	}
	return updated, nil
}

func (s *vocabularyService) DeleteVocabulary(ctx context.Context, vocabularyID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.vocabRepo.Delete(ctx, tx, vocabularyID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Transaction failed for DeleteVocabulary", "error", err)
		return model.ErrInternalServer
	}
	return nil
}
