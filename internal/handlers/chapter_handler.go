// internal/handlers/chapter_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"
)

type ChapterHandler struct {
	service service.ChapterService
	logger  *slog.Logger
}

func NewChapterHandler(s service.ChapterService, logger *slog.Logger) *ChapterHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChapterHandler{
		service: s,
		logger:  logger,
	}
}

// PostChapter は新しい課リソースを作成するためのハンドラ
func (h *ChapterHandler) PostChapter(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostChapter"))

	var req model.PostChapterRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	chapter, err := h.service.PostChapter(r.Context(), &req)
	if err != nil {
		logger.Error("Error posting chapter in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chapter posted successfully", slog.String("chapter_id", chapter.ChapterID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, chapter, logger)
}

// GetChapters は課リソースの一覧を取得するためのハンドラ
func (h *ChapterHandler) GetChapters(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetChapters"))

	p := webutil.ParseListParams(r, "level", "book_name")
	result, err := h.service.ListChapters(r.Context(), p)
	if err != nil {
		logger.Error("Error listing chapters in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chapters listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

// GetChapter は特定の課リソースを取得するためのハンドラ。
// 語彙と文型 (用法・例文入り) を埋め込んで返す。
func (h *ChapterHandler) GetChapter(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetChapter"))

	chapterID, err := parseUUIDParam(r, "chapter_id")
	if err != nil {
		logger.Warn("Invalid chapter ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("chapter_id", chapterID.String()))

	chapter, err := h.service.GetChapter(r.Context(), chapterID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Chapter not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting chapter from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chapter retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, chapter, logger)
}

// PutChapter は特定の課リソースを完全に置き換えるためのハンドラ
func (h *ChapterHandler) PutChapter(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutChapter"))

	chapterID, err := parseUUIDParam(r, "chapter_id")
	if err != nil {
		logger.Warn("Invalid chapter ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("chapter_id", chapterID.String()))

	var req model.PutChapterRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	chapter, err := h.service.PutChapter(r.Context(), chapterID, &req)
	if err != nil {
		logger.Error("Error putting chapter in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chapter put successfully")
	webutil.RespondWithJSON(w, http.StatusOK, chapter, logger)
}

// DeleteChapter は特定の課リソースを削除するためのハンドラ。
// 配下の語彙・文型・アクティビティ・設問もまとめて消える。
func (h *ChapterHandler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteChapter"))

	chapterID, err := parseUUIDParam(r, "chapter_id")
	if err != nil {
		logger.Warn("Invalid chapter ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("chapter_id", chapterID.String()))

	if err := h.service.DeleteChapter(r.Context(), chapterID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Chapter not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting chapter in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chapter deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
