// internal/handlers/inputtest_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"
)

// InputTestHandler は自由入力設問・一括インポート・回答送信・挑戦ログのエンドポイント
type InputTestHandler struct {
	service service.InputTestService
	logger  *slog.Logger
}

func NewInputTestHandler(s service.InputTestService, logger *slog.Logger) *InputTestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InputTestHandler{
		service: s,
		logger:  logger,
	}
}

func (h *InputTestHandler) PostQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostQuestion"))

	var req model.PostInputTestQuestionRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	question, err := h.service.PostQuestion(r.Context(), &req)
	if err != nil {
		logger.Error("Error posting input test question in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Input test question posted successfully", slog.String("question_id", question.QuestionID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, question, logger)
}

func (h *InputTestHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetQuestions"))

	p := webutil.ParseListParams(r, "chapter_id", "question_type")
	result, err := h.service.ListQuestions(r.Context(), p)
	if err != nil {
		logger.Error("Error listing input test questions in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Input test questions listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

// GetVocabularyQuestions は語彙設問だけに絞った読み取り専用ビュー
func (h *InputTestHandler) GetVocabularyQuestions(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetVocabularyQuestions"))

	p := webutil.ParseListParams(r, "chapter_id", "book_name", "chapter_number")
	result, err := h.service.ListVocabularyQuestions(r.Context(), p)
	if err != nil {
		logger.Error("Error listing vocabulary input test questions in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Vocabulary input test questions listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

func (h *InputTestHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetQuestion"))

	questionID, err := parseUUIDParam(r, "question_id")
	if err != nil {
		logger.Warn("Invalid question ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("question_id", questionID.String()))

	question, err := h.service.GetQuestion(r.Context(), questionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Input test question not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting input test question from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Input test question retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, question, logger)
}

func (h *InputTestHandler) PatchQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchQuestion"))

	questionID, err := parseUUIDParam(r, "question_id")
	if err != nil {
		logger.Warn("Invalid question ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("question_id", questionID.String()))

	var req model.PatchInputTestQuestionRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	question, err := h.service.PatchQuestion(r.Context(), questionID, &req)
	if err != nil {
		logger.Error("Error patching input test question in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Input test question patched successfully")
	webutil.RespondWithJSON(w, http.StatusOK, question, logger)
}

func (h *InputTestHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteQuestion"))

	questionID, err := parseUUIDParam(r, "question_id")
	if err != nil {
		logger.Warn("Invalid question ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("question_id", questionID.String()))

	if err := h.service.DeleteQuestion(r.Context(), questionID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Input test question not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting input test question in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Input test question deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// ImportQuestions は設問を一括インポートするためのハンドラ。
// バッチ項目 (book_name / chapter_number / question_type / questions) の不備だけが400。
// 各レコードの不備はレスポンスの errors に積まれ、バッチは続行される。
func (h *InputTestHandler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ImportQuestions"))

	var req model.ImportQuestionsRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid import request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.ImportQuestions(r.Context(), &req)
	if err != nil {
		logger.Error("Error importing questions in service", slog.Any("error", err),
			slog.String("book_name", req.BookName),
			slog.Int("chapter_number", req.ChapterNumber),
		)
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Questions imported",
		slog.String("book_name", req.BookName),
		slog.Int("chapter_number", req.ChapterNumber),
		slog.Int("created", resp.Created),
		slog.Int("errors", len(resp.Errors)),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, resp, logger)
}

// SubmitAnswer は自由入力設問の回答を採点するためのハンドラ。
// 匿名でも送信でき、採点のたびに挑戦ログが1件残る。
func (h *InputTestHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SubmitAnswer"))

	questionID, err := parseUUIDParam(r, "question_id")
	if err != nil {
		logger.Warn("Invalid question ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("question_id", questionID.String()))

	var req model.SubmitInputTestAnswerRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), questionID, &req)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Input test question not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error submitting answer in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Answer submitted successfully", slog.Bool("is_correct", resp.IsCorrect))
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// GetAttempts は認証済みユーザー自身の挑戦ログ一覧を取得するためのハンドラ
func (h *InputTestHandler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetAttempts"))

	p := webutil.ParseListParams(r, "question_id", "is_correct")
	result, err := h.service.ListAttempts(r.Context(), p)
	if err != nil {
		logger.Warn("Error listing attempts in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Attempts listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}
