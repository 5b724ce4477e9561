// internal/service/grammar_service.go
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

type GrammarService interface {
	PostGrammarPattern(ctx context.Context, req *model.PostGrammarPatternRequest) (*model.GrammarPattern, error)
	GetGrammarPattern(ctx context.Context, patternID uuid.UUID) (*model.GrammarPattern, error)
	ListGrammarPatterns(ctx context.Context, p model.ListParams) (*model.ListResult[*model.GrammarPattern], error)
	PutGrammarPattern(ctx context.Context, patternID uuid.UUID, req *model.PutGrammarPatternRequest) (*model.GrammarPattern, error)
	DeleteGrammarPattern(ctx context.Context, patternID uuid.UUID) error
}

type grammarService struct {
	db          *gorm.DB
	grammarRepo repository.GrammarRepository
	chapterRepo repository.ChapterRepository
	cfg         *config.Config
}

func NewGrammarService(db *gorm.DB, grammarRepo repository.GrammarRepository, chapterRepo repository.ChapterRepository, cfg *config.Config) GrammarService {
	return &grammarService{
		db:          db,
		grammarRepo: grammarRepo,
		chapterRepo: chapterRepo,
		cfg:         cfg,
	}
}

// PostGrammarPattern は文型をネストした用法・例文ごと一括登録します
func (s *grammarService) PostGrammarPattern(ctx context.Context, req *model.PostGrammarPatternRequest) (*model.GrammarPattern, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.GrammarPattern
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.chapterRepo.FindByID(ctx, tx, req.ChapterID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CHAPTER_NOT_FOUND", "指定された課が見つかりません。", "chapter_id", model.ErrNotFound)
			}
			return err
		}

		pattern := &model.GrammarPattern{
			PatternID:   uuid.New(),
			ChapterID:   req.ChapterID,
			Pattern:     req.Pattern,
			Description: req.Description,
		}
		for _, usageReq := range req.Usages {
			usage := model.GrammarUsage{
				UsageID:     uuid.New(),
				Explanation: usageReq.Explanation,
				Order:       usageReq.Order,
			}
			for _, exampleReq := range usageReq.Examples {
				usage.Examples = append(usage.Examples, model.GrammarExample{
					ExampleID:   uuid.New(),
					Sentence:    exampleReq.Sentence,
					Translation: exampleReq.Translation,
					Order:       exampleReq.Order,
				})
			}
			pattern.Usages = append(pattern.Usages, usage)
		}

		if err := s.grammarRepo.Create(ctx, tx, pattern); err != nil {
			return err
		}
		created = pattern
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Transaction failed for PostGrammarPattern", "error", err)
		return nil, model.ErrInternalServer
	}
	return created, nil
}

func (s *grammarService) GetGrammarPattern(ctx context.Context, patternID uuid.UUID) (*model.GrammarPattern, error) {
	return s.grammarRepo.FindByID(ctx, s.db, patternID)
}

func (s *grammarService) ListGrammarPatterns(ctx context.Context, p model.ListParams) (*model.ListResult[*model.GrammarPattern], error) {
	logger := middleware.GetLogger(ctx)
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.grammarRepo.List(ctx, s.db, p)
	if err != nil {
		logger.Error("Error listing grammar patterns", "error", err)
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *grammarService) PutGrammarPattern(ctx context.Context, patternID uuid.UUID, req *model.PutGrammarPatternRequest) (*model.GrammarPattern, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.GrammarPattern
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.grammarRepo.FindByID(ctx, tx, patternID); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"pattern":     req.Pattern,
			"description": req.Description,
		}
		if err := s.grammarRepo.Update(ctx, tx, patternID, updates); err != nil {
			return err
		}
		var err error
		updated, err = s.grammarRepo.FindByID(ctx, tx, patternID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for PutGrammarPattern", "error", err)
		return nil, model.ErrInternalServer
	}
	return updated, nil
}

func (s *grammarService) DeleteGrammarPattern(ctx context.Context, patternID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.grammarRepo.Delete(ctx, tx, patternID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Transaction failed for DeleteGrammarPattern", "error", err)
		return model.ErrInternalServer
	}
	return nil
}
