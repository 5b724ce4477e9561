// internal/service/practice_service.go
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

// PracticeService は練習アクティビティ・設問・進捗と回答採点を扱います。
type PracticeService interface {
	PostActivity(ctx context.Context, req *model.PostActivityRequest) (*model.PracticeActivity, error)
	GetActivity(ctx context.Context, activityID uuid.UUID) (*model.PracticeActivity, error)
	ListActivities(ctx context.Context, p model.ListParams) (*model.ListResult[*model.PracticeActivity], error)
	PutActivity(ctx context.Context, activityID uuid.UUID, req *model.PutActivityRequest) (*model.PracticeActivity, error)
	DeleteActivity(ctx context.Context, activityID uuid.UUID) error

	PostQuestion(ctx context.Context, req *model.PostPracticeQuestionRequest) (*model.PracticeQuestion, error)
	GetQuestion(ctx context.Context, questionID uuid.UUID) (*model.PracticeQuestion, error)
	ListQuestions(ctx context.Context, p model.ListParams) (*model.ListResult[*model.PracticeQuestion], error)
	PatchQuestion(ctx context.Context, questionID uuid.UUID, req *model.PatchPracticeQuestionRequest) (*model.PracticeQuestion, error)
	DeleteQuestion(ctx context.Context, questionID uuid.UUID) error

	ListProgress(ctx context.Context, p model.ListParams) (*model.ListResult[*model.UserProgress], error)
	PatchProgress(ctx context.Context, progressID uuid.UUID, req *model.PatchProgressRequest) (*model.UserProgress, error)

	// SubmitAnswer は選択式設問の回答を採点し、進捗スコアを更新します。
	SubmitAnswer(ctx context.Context, activityID uuid.UUID, req *model.SubmitPracticeAnswerRequest) (*model.SubmitPracticeAnswerResponse, error)
}

type practiceService struct {
	db           *gorm.DB
	activityRepo repository.ActivityRepository
	questionRepo repository.PracticeQuestionRepository
	progressRepo repository.ProgressRepository
	chapterRepo  repository.ChapterRepository
	cfg          *config.Config
}

func NewPracticeService(
	db *gorm.DB,
	activityRepo repository.ActivityRepository,
	questionRepo repository.PracticeQuestionRepository,
	progressRepo repository.ProgressRepository,
	chapterRepo repository.ChapterRepository,
	cfg *config.Config,
) PracticeService {
	return &practiceService{
		db:           db,
		activityRepo: activityRepo,
		questionRepo: questionRepo,
		progressRepo: progressRepo,
		chapterRepo:  chapterRepo,
		cfg:          cfg,
	}
}

func (s *practiceService) PostActivity(ctx context.Context, req *model.PostActivityRequest) (*model.PracticeActivity, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.PracticeActivity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.chapterRepo.FindByID(ctx, tx, req.ChapterID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CHAPTER_NOT_FOUND", "指定された課が見つかりません。", "chapter_id", model.ErrInvalidInput)
			}
			return err
		}
		activity := &model.PracticeActivity{
			ActivityID:   uuid.New(),
			ChapterID:    req.ChapterID,
			ActivityType: req.ActivityType,
			Title:        req.Title,
			Description:  req.Description,
		}
		if err := s.activityRepo.Create(ctx, tx, activity); err != nil {
			return err
		}
		created = activity
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Transaction failed for PostActivity", "error", err)
		return nil, model.ErrInternalServer
	}
	return created, nil
}

func (s *practiceService) GetActivity(ctx context.Context, activityID uuid.UUID) (*model.PracticeActivity, error) {
	return s.activityRepo.FindByID(ctx, s.db, activityID)
}

func (s *practiceService) ListActivities(ctx context.Context, p model.ListParams) (*model.ListResult[*model.PracticeActivity], error) {
	logger := middleware.GetLogger(ctx)
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.activityRepo.List(ctx, s.db, p)
	if err != nil {
		logger.Error("Error listing practice activities", "error", err)
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *practiceService) PutActivity(ctx context.Context, activityID uuid.UUID, req *model.PutActivityRequest) (*model.PracticeActivity, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.PracticeActivity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"activity_type": req.ActivityType,
			"title":         req.Title,
			"description":   req.Description,
		}
		if err := s.activityRepo.Update(ctx, tx, activityID, updates); err != nil {
			return err
		}
		var err error
		updated, err = s.activityRepo.FindByID(ctx, tx, activityID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for PutActivity", "error", err)
		return nil, model.ErrInternalServer
	}
	return updated, nil
}

func (s *practiceService) DeleteActivity(ctx context.Context, activityID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.activityRepo.Delete(ctx, tx, activityID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Transaction failed for DeleteActivity", "error", err)
		return model.ErrInternalServer
	}
	return nil
}

func (s *practiceService) PostQuestion(ctx context.Context, req *model.PostPracticeQuestionRequest) (*model.PracticeQuestion, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.PracticeQuestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.activityRepo.FindByID(ctx, tx, req.ActivityID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("ACTIVITY_NOT_FOUND", "指定されたアクティビティが見つかりません。", "activity_id", model.ErrInvalidInput)
			}
			return err
		}
		question := &model.PracticeQuestion{
			QuestionID:    uuid.New(),
			ActivityID:    req.ActivityID,
			VocabularyID:  req.VocabularyID,
			QuestionText:  req.QuestionText,
			CorrectAnswer: req.CorrectAnswer,
			Options:       model.StringList(req.Options),
		}
		if err := s.questionRepo.Create(ctx, tx, question); err != nil {
			return err
		}
		created = question
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Transaction failed for PostQuestion", "error", err)
		return nil, model.ErrInternalServer
	}
	return created, nil
}

func (s *practiceService) GetQuestion(ctx context.Context, questionID uuid.UUID) (*model.PracticeQuestion, error) {
	return s.questionRepo.FindByID(ctx, s.db, questionID)
}

func (s *practiceService) ListQuestions(ctx context.Context, p model.ListParams) (*model.ListResult[*model.PracticeQuestion], error) {
	logger := middleware.GetLogger(ctx)
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.questionRepo.List(ctx, s.db, p)
	if err != nil {
		logger.Error("Error listing practice questions", "error", err)
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *practiceService) PatchQuestion(ctx context.Context, questionID uuid.UUID, req *model.PatchPracticeQuestionRequest) (*model.PracticeQuestion, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.PracticeQuestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := make(map[string]interface{})
		if req.QuestionText != nil {
			updates["question_text"] = *req.QuestionText
		}
		if req.CorrectAnswer != nil {
			updates["correct_answer"] = *req.CorrectAnswer
		}
		if req.Options != nil {
			updates["options"] = model.StringList(*req.Options)
		}
		if err := s.questionRepo.Update(ctx, tx, questionID, updates); err != nil {
			return err
		}
		var err error
		updated, err = s.questionRepo.FindByID(ctx, tx, questionID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for PatchQuestion", "error", err)
		return nil, model.ErrInternalServer
	}
	return updated, nil
}

func (s *practiceService) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.questionRepo.Delete(ctx, tx, questionID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Transaction failed for DeleteQuestion", "error", err)
		return model.ErrInternalServer
	}
	return nil
}

// ListProgress は認証済みユーザー自身の進捗のみを返します。
func (s *practiceService) ListProgress(ctx context.Context, p model.ListParams) (*model.ListResult[*model.UserProgress], error) {
	logger := middleware.GetLogger(ctx)

	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, model.NewAppError("AUTH_REQUIRED", "進捗の参照にはログインが必要です。", "", model.ErrForbidden)
	}
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.progressRepo.ListByUser(ctx, s.db, userID, p)
	if err != nil {
		logger.Error("Error listing user progress", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *practiceService) PatchProgress(ctx context.Context, progressID uuid.UUID, req *model.PatchProgressRequest) (*model.UserProgress, error) {
	logger := middleware.GetLogger(ctx)

	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, model.NewAppError("AUTH_REQUIRED", "進捗の更新にはログインが必要です。", "", model.ErrForbidden)
	}

	var updated *model.UserProgress
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := make(map[string]interface{})
		if req.Completed != nil {
			updates["completed"] = *req.Completed
		}
		if err := s.progressRepo.Update(ctx, tx, userID, progressID, updates); err != nil {
			return err
		}
		var progress model.UserProgress
		if err := tx.WithContext(ctx).Where("progress_id = ? AND user_id = ?", progressID, userID).First(&progress).Error; err != nil {
			return err
		}
		updated = &progress
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for PatchProgress", "error", err)
		return nil, model.ErrInternalServer
	}
	return updated, nil
}

// SubmitAnswer は回答を採点し、正解ならスコアを1加算します。
// 設問はアクティビティ配下のものに限定して検索する (他アクティビティの設問IDは404)。
// 進捗行は (user, activity) ごとに score=0 で upsert されるため、初回回答でも安全。
func (s *practiceService) SubmitAnswer(ctx context.Context, activityID uuid.UUID, req *model.SubmitPracticeAnswerRequest) (*model.SubmitPracticeAnswerResponse, error) {
	logger := middleware.GetLogger(ctx)

	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, model.NewAppError("AUTH_REQUIRED", "回答の送信にはログインが必要です。", "", model.ErrForbidden)
	}

	var resp *model.SubmitPracticeAnswerResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question, err := s.questionRepo.FindByIDInActivity(ctx, tx, activityID, req.QuestionID)
		if err != nil {
			return err
		}

		isCorrect := question.CheckAnswer(req.Answer)

		if _, _, err := s.progressRepo.GetOrCreate(ctx, tx, userID, activityID); err != nil {
			return err
		}
		if isCorrect {
			if err := s.progressRepo.IncrementScore(ctx, tx, userID, activityID); err != nil {
				return err
			}
		} else {
			if err := s.progressRepo.TouchLastAttempt(ctx, tx, userID, activityID); err != nil {
				return err
			}
		}

		progress, err := s.progressRepo.FindByUserAndActivity(ctx, tx, userID, activityID)
		if err != nil {
			return err
		}

		resp = &model.SubmitPracticeAnswerResponse{
			IsCorrect:     isCorrect,
			CorrectAnswer: question.CorrectAnswer,
			Score:         progress.Score,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for SubmitAnswer",
			"error", err,
			"activity_id", activityID.String(),
			"user_id", userID.String(),
		)
		return nil, model.ErrInternalServer
	}
	return resp, nil
}
