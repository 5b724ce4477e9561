// internal/service/inputtest_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studyflow/internal/config"
	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InputTestService は自由入力設問のCRUD・一括インポート・採点を扱います。
type InputTestService interface {
	PostQuestion(ctx context.Context, req *model.PostInputTestQuestionRequest) (*model.InputTestQuestion, error)
	GetQuestion(ctx context.Context, questionID uuid.UUID) (*model.InputTestQuestion, error)
	ListQuestions(ctx context.Context, p model.ListParams) (*model.ListResult[*model.InputTestQuestion], error)
	// ListVocabularyQuestions は question_type=vocabulary に固定した読み取り専用ビュー
	ListVocabularyQuestions(ctx context.Context, p model.ListParams) (*model.ListResult[*model.InputTestQuestion], error)
	PatchQuestion(ctx context.Context, questionID uuid.UUID, req *model.PatchInputTestQuestionRequest) (*model.InputTestQuestion, error)
	DeleteQuestion(ctx context.Context, questionID uuid.UUID) error

	// ImportQuestions は設問を一括登録します。課は (book_name, chapter_number) で
	// get-or-create され、1件の失敗はバッチ全体を中断させない。
	ImportQuestions(ctx context.Context, req *model.ImportQuestionsRequest) (*model.ImportQuestionsResponse, error)

	// SubmitAnswer は回答を採点し、挑戦ログを必ず1件記録します (匿名可)。
	SubmitAnswer(ctx context.Context, questionID uuid.UUID, req *model.SubmitInputTestAnswerRequest) (*model.SubmitInputTestAnswerResponse, error)

	ListAttempts(ctx context.Context, p model.ListParams) (*model.ListResult[*model.InputTestAttempt], error)

	// BackfillDenormalizedFields は book_name / chapter_number が欠けている設問を
	// 課から埋め直し、更新件数を返します。
	BackfillDenormalizedFields(ctx context.Context) (int, error)
	// FixMismatchedQuestions は非正規化キーに一致する設問を正しい課に付け替え、
	// question_type を揃えます。更新件数を返します。
	FixMismatchedQuestions(ctx context.Context, bookName string, chapterNumber int, questionType model.QuestionType) (int, error)
}

type inputTestService struct {
	db           *gorm.DB
	questionRepo repository.InputTestQuestionRepository
	attemptRepo  repository.AttemptRepository
	chapterRepo  repository.ChapterRepository
	cfg          *config.Config
}

func NewInputTestService(
	db *gorm.DB,
	questionRepo repository.InputTestQuestionRepository,
	attemptRepo repository.AttemptRepository,
	chapterRepo repository.ChapterRepository,
	cfg *config.Config,
) InputTestService {
	return &inputTestService{
		db:           db,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		chapterRepo:  chapterRepo,
		cfg:          cfg,
	}
}

func (s *inputTestService) PostQuestion(ctx context.Context, req *model.PostInputTestQuestionRequest) (*model.InputTestQuestion, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.InputTestQuestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chapter, err := s.chapterRepo.FindByID(ctx, tx, req.ChapterID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("CHAPTER_NOT_FOUND", "指定された課が見つかりません。", "chapter_id", model.ErrInvalidInput)
			}
			return err
		}
		question := &model.InputTestQuestion{
			QuestionID:    uuid.New(),
			ChapterID:     chapter.ChapterID,
			BookName:      chapter.BookName,
			ChapterNumber: chapter.ChapterNumber,
			QuestionType:  req.QuestionType,
			QuestionText:  req.QuestionText,
			CorrectAnswer: req.CorrectAnswer,
			Hint:          req.Hint,
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

func (s *inputTestService) GetQuestion(ctx context.Context, questionID uuid.UUID) (*model.InputTestQuestion, error) {
	return s.questionRepo.FindByID(ctx, s.db, questionID)
}

func (s *inputTestService) ListQuestions(ctx context.Context, p model.ListParams) (*model.ListResult[*model.InputTestQuestion], error) {
	logger := middleware.GetLogger(ctx)
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.questionRepo.List(ctx, s.db, p)
	if err != nil {
		logger.Error("Error listing input test questions", "error", err)
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *inputTestService) ListVocabularyQuestions(ctx context.Context, p model.ListParams) (*model.ListResult[*model.InputTestQuestion], error) {
	logger := middleware.GetLogger(ctx)
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.questionRepo.ListVocabulary(ctx, s.db, p)
	if err != nil {
		logger.Error("Error listing vocabulary input test questions", "error", err)
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *inputTestService) PatchQuestion(ctx context.Context, questionID uuid.UUID, req *model.PatchInputTestQuestionRequest) (*model.InputTestQuestion, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.InputTestQuestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := make(map[string]interface{})
		if req.QuestionType != nil {
			updates["question_type"] = *req.QuestionType
		}
		if req.QuestionText != nil {
			updates["question_text"] = *req.QuestionText
		}
		if req.CorrectAnswer != nil {
			updates["correct_answer"] = *req.CorrectAnswer
		}
		if req.Hint != nil {
			updates["hint"] = *req.Hint
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

func (s *inputTestService) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
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

// validateImportRecord は1件分のインポートレコードを検証します。
// バッチ検証に混ぜると1件の不備で全体が400になるため、ここで個別に行う。
func validateImportRecord(record *model.ImportQuestionRecord, batchType model.QuestionType) (model.QuestionType, error) {
	if strings.TrimSpace(record.QuestionText) == "" {
		return "", errors.New("question_text は必須です。")
	}
	if strings.TrimSpace(record.CorrectAnswer) == "" {
		return "", errors.New("correct_answer は必須です。")
	}
	questionType := batchType
	if record.QuestionType != "" {
		questionType = record.QuestionType
	}
	switch questionType {
	case model.QuestionVocabulary, model.QuestionGrammar, model.QuestionKanji:
		return questionType, nil
	default:
		return "", fmt.Errorf("question_type %q は不正です。", questionType)
	}
}

func (s *inputTestService) ImportQuestions(ctx context.Context, req *model.ImportQuestionsRequest) (*model.ImportQuestionsResponse, error) {
	logger := middleware.GetLogger(ctx)

	// 課の解決だけは失敗するとバッチ全体が続行不能なのでエラーを返す
	var chapter *model.Chapter
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		chapter, _, err = s.chapterRepo.GetOrCreate(ctx, tx, req.BookName, req.ChapterNumber, model.Level(s.cfg.App.DefaultImportLevel))
		return err
	})
	if err != nil {
		logger.Error("Failed to resolve chapter for import",
			"error", err,
			"book_name", req.BookName,
			"chapter_number", req.ChapterNumber,
		)
		return nil, model.ErrInternalServer
	}

	resp := &model.ImportQuestionsResponse{
		CreatedQuestions: []*model.InputTestQuestion{},
		Errors:           []model.ImportQuestionError{},
	}

	// 1件ずつ独立に登録する。失敗はエラーリストに積み、残りを続行する。
	for i := range req.Questions {
		record := req.Questions[i]

		questionType, err := validateImportRecord(&record, req.QuestionType)
		if err != nil {
			resp.Errors = append(resp.Errors, model.ImportQuestionError{
				Question: record,
				Error:    err.Error(),
			})
			continue
		}

		question := &model.InputTestQuestion{
			QuestionID:    uuid.New(),
			ChapterID:     chapter.ChapterID,
			BookName:      chapter.BookName,
			ChapterNumber: chapter.ChapterNumber,
			QuestionType:  questionType,
			QuestionText:  record.QuestionText,
			CorrectAnswer: record.CorrectAnswer,
			Hint:          record.Hint,
		}
		if err := s.questionRepo.Create(ctx, s.db, question); err != nil {
			logger.Warn("Failed to import question record",
				"error", err,
				"question_text", record.QuestionText,
			)
			resp.Errors = append(resp.Errors, model.ImportQuestionError{
				Question: record,
				Error:    "設問の保存に失敗しました。",
			})
			continue
		}
		resp.Created++
		resp.CreatedQuestions = append(resp.CreatedQuestions, question)
	}

	resp.Message = fmt.Sprintf("%s 第%d課 に %d 件の設問をインポートしました。", chapter.BookName, chapter.ChapterNumber, resp.Created)
	if len(resp.Errors) > 0 {
		resp.Message += fmt.Sprintf(" %d 件は失敗しました。", len(resp.Errors))
	}

	logger.Info("Import completed",
		"book_name", chapter.BookName,
		"chapter_number", chapter.ChapterNumber,
		"created", resp.Created,
		"errors", len(resp.Errors),
	)
	return resp, nil
}

func (s *inputTestService) SubmitAnswer(ctx context.Context, questionID uuid.UUID, req *model.SubmitInputTestAnswerRequest) (*model.SubmitInputTestAnswerResponse, error) {
	logger := middleware.GetLogger(ctx)

	// 空回答は採点せず、挑戦ログも残さない
	if strings.TrimSpace(req.Answer) == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "answerは必須項目です。", "answer", model.ErrInvalidInput)
	}

	userID := middleware.OptionalUserID(ctx)

	var resp *model.SubmitInputTestAnswerResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question, err := s.questionRepo.FindByID(ctx, tx, questionID)
		if err != nil {
			return err
		}

		isCorrect := strings.EqualFold(question.CorrectAnswer, req.Answer)

		attempt := &model.InputTestAttempt{
			AttemptID:  uuid.New(),
			QuestionID: question.QuestionID,
			UserID:     userID,
			UserAnswer: req.Answer,
			IsCorrect:  isCorrect,
		}
		if err := s.attemptRepo.Create(ctx, tx, attempt); err != nil {
			return err
		}

		resp = &model.SubmitInputTestAnswerResponse{
			IsCorrect:     isCorrect,
			CorrectAnswer: question.CorrectAnswer,
			AttemptID:     attempt.AttemptID,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Transaction failed for SubmitAnswer", "error", err, "question_id", questionID.String())
		return nil, model.ErrInternalServer
	}
	return resp, nil
}

// ListAttempts は認証済みユーザー自身の挑戦ログのみを返します。
func (s *inputTestService) ListAttempts(ctx context.Context, p model.ListParams) (*model.ListResult[*model.InputTestAttempt], error) {
	logger := middleware.GetLogger(ctx)

	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, model.NewAppError("AUTH_REQUIRED", "挑戦ログの参照にはログインが必要です。", "", model.ErrForbidden)
	}
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.App.PageSize
	}
	result, err := s.attemptRepo.ListByUser(ctx, s.db, userID, p)
	if err != nil {
		logger.Error("Error listing input test attempts", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}
	return result, nil
}

func (s *inputTestService) BackfillDenormalizedFields(ctx context.Context) (int, error) {
	logger := middleware.GetLogger(ctx)

	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions, err := s.questionRepo.FindMissingDenormalized(ctx, tx)
		if err != nil {
			return err
		}
		for _, question := range questions {
			chapter, err := s.chapterRepo.FindByID(ctx, tx, question.ChapterID)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					logger.Warn("Question references missing chapter, skipping",
						"question_id", question.QuestionID.String(),
						"chapter_id", question.ChapterID.String(),
					)
					continue
				}
				return err
			}
			updates := map[string]interface{}{
				"book_name":      chapter.BookName,
				"chapter_number": chapter.ChapterNumber,
			}
			if err := s.questionRepo.Update(ctx, tx, question.QuestionID, updates); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		logger.Error("Backfill failed", "error", err)
		return 0, model.ErrInternalServer
	}
	logger.Info("Backfill completed", "updated", updated)
	return updated, nil
}

func (s *inputTestService) FixMismatchedQuestions(ctx context.Context, bookName string, chapterNumber int, questionType model.QuestionType) (int, error) {
	logger := middleware.GetLogger(ctx)

	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chapter, _, err := s.chapterRepo.GetOrCreate(ctx, tx, bookName, chapterNumber, model.Level(s.cfg.App.DefaultImportLevel))
		if err != nil {
			return err
		}
		questions, err := s.questionRepo.FindByBookAndChapter(ctx, tx, bookName, chapterNumber)
		if err != nil {
			return err
		}
		for _, question := range questions {
			if question.ChapterID == chapter.ChapterID && question.QuestionType == questionType {
				continue
			}
			updates := map[string]interface{}{
				"chapter_id":    chapter.ChapterID,
				"question_type": questionType,
			}
			if err := s.questionRepo.Update(ctx, tx, question.QuestionID, updates); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		logger.Error("Fix mismatched questions failed", "error", err, "book_name", bookName, "chapter_number", chapterNumber)
		return 0, model.ErrInternalServer
	}
	logger.Info("Fix mismatched questions completed", "book_name", bookName, "chapter_number", chapterNumber, "updated", updated)
	return updated, nil
}
