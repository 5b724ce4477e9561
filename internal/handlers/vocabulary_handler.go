// internal/handlers/vocabulary_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"
)

type VocabularyHandler struct {
	service service.VocabularyService
	logger  *slog.Logger
}

func NewVocabularyHandler(s service.VocabularyService, logger *slog.Logger) *VocabularyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VocabularyHandler{
		service: s,
		logger:  logger,
	}
}

// PostVocabulary は新しい語彙リソースを作成するためのハンドラ。
// kanji_info を含む場合は同時に作成する。
func (h *VocabularyHandler) PostVocabulary(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostVocabulary"))

	var req model.PostVocabularyRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	vocabulary, err := h.service.PostVocabulary(r.Context(), &req)
	if err != nil {
		logger.Error("Error posting vocabulary in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Vocabulary posted successfully", slog.String("vocabulary_id", vocabulary.VocabularyID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, vocabulary, logger)
}

// GetVocabularies は語彙リソースの一覧を取得するためのハンドラ
func (h *VocabularyHandler) GetVocabularies(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetVocabularies"))

	p := webutil.ParseListParams(r, "chapter_id")
	result, err := h.service.ListVocabularies(r.Context(), p)
	if err != nil {
		logger.Error("Error listing vocabularies in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Vocabularies listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

// GetVocabulary は特定の語彙リソースを取得するためのハンドラ
func (h *VocabularyHandler) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetVocabulary"))

	vocabularyID, err := parseUUIDParam(r, "vocabulary_id")
	if err != nil {
		logger.Warn("Invalid vocabulary ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("vocabulary_id", vocabularyID.String()))

	vocabulary, err := h.service.GetVocabulary(r.Context(), vocabularyID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Vocabulary not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting vocabulary from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Vocabulary retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, vocabulary, logger)
}

// PatchVocabulary は特定の語彙リソースを部分更新するためのハンドラ
func (h *VocabularyHandler) PatchVocabulary(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchVocabulary"))

	vocabularyID, err := parseUUIDParam(r, "vocabulary_id")
	if err != nil {
		logger.Warn("Invalid vocabulary ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("vocabulary_id", vocabularyID.String()))

	var req model.PatchVocabularyRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	vocabulary, err := h.service.PatchVocabulary(r.Context(), vocabularyID, &req)
	if err != nil {
		logger.Error("Error patching vocabulary in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Vocabulary patched successfully")
	webutil.RespondWithJSON(w, http.StatusOK, vocabulary, logger)
}

// DeleteVocabulary は特定の語彙リソースを削除するためのハンドラ
func (h *VocabularyHandler) DeleteVocabulary(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteVocabulary"))

	vocabularyID, err := parseUUIDParam(r, "vocabulary_id")
	if err != nil {
		logger.Warn("Invalid vocabulary ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("vocabulary_id", vocabularyID.String()))

	if err := h.service.DeleteVocabulary(r.Context(), vocabularyID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Vocabulary not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting vocabulary in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Vocabulary deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
