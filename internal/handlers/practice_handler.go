// internal/handlers/practice_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"
)

// PracticeHandler は練習アクティビティ・設問・進捗・回答送信のエンドポイント
type PracticeHandler struct {
	service service.PracticeService
	logger  *slog.Logger
}

func NewPracticeHandler(s service.PracticeService, logger *slog.Logger) *PracticeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PracticeHandler{
		service: s,
		logger:  logger,
	}
}

func (h *PracticeHandler) PostActivity(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostActivity"))

	var req model.PostActivityRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	activity, err := h.service.PostActivity(r.Context(), &req)
	if err != nil {
		logger.Error("Error posting activity in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Activity posted successfully", slog.String("activity_id", activity.ActivityID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, activity, logger)
}

func (h *PracticeHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetActivities"))

	p := webutil.ParseListParams(r, "chapter_id", "activity_type")
	result, err := h.service.ListActivities(r.Context(), p)
	if err != nil {
		logger.Error("Error listing activities in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Activities listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

func (h *PracticeHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetActivity"))

	activityID, err := parseUUIDParam(r, "activity_id")
	if err != nil {
		logger.Warn("Invalid activity ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("activity_id", activityID.String()))

	activity, err := h.service.GetActivity(r.Context(), activityID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Activity not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting activity from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Activity retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, activity, logger)
}

func (h *PracticeHandler) PutActivity(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutActivity"))

	activityID, err := parseUUIDParam(r, "activity_id")
	if err != nil {
		logger.Warn("Invalid activity ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("activity_id", activityID.String()))

	var req model.PutActivityRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	activity, err := h.service.PutActivity(r.Context(), activityID, &req)
	if err != nil {
		logger.Error("Error putting activity in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Activity put successfully")
	webutil.RespondWithJSON(w, http.StatusOK, activity, logger)
}

func (h *PracticeHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteActivity"))

	activityID, err := parseUUIDParam(r, "activity_id")
	if err != nil {
		logger.Warn("Invalid activity ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("activity_id", activityID.String()))

	if err := h.service.DeleteActivity(r.Context(), activityID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Activity not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting activity in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Activity deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAnswer は選択式設問の回答を採点するためのハンドラ。
// 認証済みユーザーのみ。正解ならアクティビティの累積スコアが1増える。
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SubmitAnswer"))

	activityID, err := parseUUIDParam(r, "activity_id")
	if err != nil {
		logger.Warn("Invalid activity ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("activity_id", activityID.String()))

	var req model.SubmitPracticeAnswerRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), activityID, &req)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Question not found in activity", slog.String("question_id", req.QuestionID.String()))
		} else {
			logger.Error("Error submitting answer in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Answer submitted successfully",
		slog.String("question_id", req.QuestionID.String()),
		slog.Bool("is_correct", resp.IsCorrect),
	)
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

func (h *PracticeHandler) PostQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostQuestion"))

	var req model.PostPracticeQuestionRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	question, err := h.service.PostQuestion(r.Context(), &req)
	if err != nil {
		logger.Error("Error posting practice question in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Practice question posted successfully", slog.String("question_id", question.QuestionID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, question, logger)
}

func (h *PracticeHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetQuestions"))

	p := webutil.ParseListParams(r, "activity_id", "vocabulary_id")
	result, err := h.service.ListQuestions(r.Context(), p)
	if err != nil {
		logger.Error("Error listing practice questions in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Practice questions listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

func (h *PracticeHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
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
			logger.Info("Practice question not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting practice question from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Practice question retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, question, logger)
}

func (h *PracticeHandler) PatchQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchQuestion"))

	questionID, err := parseUUIDParam(r, "question_id")
	if err != nil {
		logger.Warn("Invalid question ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("question_id", questionID.String()))

	var req model.PatchPracticeQuestionRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	question, err := h.service.PatchQuestion(r.Context(), questionID, &req)
	if err != nil {
		logger.Error("Error patching practice question in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Practice question patched successfully")
	webutil.RespondWithJSON(w, http.StatusOK, question, logger)
}

func (h *PracticeHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
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
			logger.Info("Practice question not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting practice question in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Practice question deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// GetProgress は認証済みユーザー自身の進捗一覧を取得するためのハンドラ
func (h *PracticeHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetProgress"))

	p := webutil.ParseListParams(r, "activity_id", "completed")
	result, err := h.service.ListProgress(r.Context(), p)
	if err != nil {
		logger.Warn("Error listing progress in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Progress listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

// PatchProgress は進捗の completed フラグを更新するためのハンドラ
func (h *PracticeHandler) PatchProgress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchProgress"))

	progressID, err := parseUUIDParam(r, "progress_id")
	if err != nil {
		logger.Warn("Invalid progress ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("progress_id", progressID.String()))

	var req model.PatchProgressRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	progress, err := h.service.PatchProgress(r.Context(), progressID, &req)
	if err != nil {
		logger.Error("Error patching progress in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Progress patched successfully")
	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}
