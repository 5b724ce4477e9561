// internal/handlers/grammar_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"
)

type GrammarHandler struct {
	service service.GrammarService
	logger  *slog.Logger
}

func NewGrammarHandler(s service.GrammarService, logger *slog.Logger) *GrammarHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GrammarHandler{
		service: s,
		logger:  logger,
	}
}

// PostGrammarPattern は文型リソースを用法・例文ごと作成するためのハンドラ
func (h *GrammarHandler) PostGrammarPattern(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostGrammarPattern"))

	var req model.PostGrammarPatternRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	pattern, err := h.service.PostGrammarPattern(r.Context(), &req)
	if err != nil {
		logger.Error("Error posting grammar pattern in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Grammar pattern posted successfully", slog.String("pattern_id", pattern.PatternID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, pattern, logger)
}

// GetGrammarPatterns は文型リソースの一覧を取得するためのハンドラ
func (h *GrammarHandler) GetGrammarPatterns(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetGrammarPatterns"))

	p := webutil.ParseListParams(r, "chapter_id")
	result, err := h.service.ListGrammarPatterns(r.Context(), p)
	if err != nil {
		logger.Error("Error listing grammar patterns in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Grammar patterns listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

// GetGrammarPattern は特定の文型リソースを取得するためのハンドラ
func (h *GrammarHandler) GetGrammarPattern(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetGrammarPattern"))

	patternID, err := parseUUIDParam(r, "pattern_id")
	if err != nil {
		logger.Warn("Invalid pattern ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("pattern_id", patternID.String()))

	pattern, err := h.service.GetGrammarPattern(r.Context(), patternID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Grammar pattern not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting grammar pattern from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Grammar pattern retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, pattern, logger)
}

// PutGrammarPattern は特定の文型リソースを完全に置き換えるためのハンドラ
func (h *GrammarHandler) PutGrammarPattern(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutGrammarPattern"))

	patternID, err := parseUUIDParam(r, "pattern_id")
	if err != nil {
		logger.Warn("Invalid pattern ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("pattern_id", patternID.String()))

	var req model.PutGrammarPatternRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	pattern, err := h.service.PutGrammarPattern(r.Context(), patternID, &req)
	if err != nil {
		logger.Error("Error putting grammar pattern in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Grammar pattern put successfully")
	webutil.RespondWithJSON(w, http.StatusOK, pattern, logger)
}

// DeleteGrammarPattern は特定の文型リソースを削除するためのハンドラ
func (h *GrammarHandler) DeleteGrammarPattern(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteGrammarPattern"))

	patternID, err := parseUUIDParam(r, "pattern_id")
	if err != nil {
		logger.Warn("Invalid pattern ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("pattern_id", patternID.String()))

	if err := h.service.DeleteGrammarPattern(r.Context(), patternID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Grammar pattern not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting grammar pattern in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Grammar pattern deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
