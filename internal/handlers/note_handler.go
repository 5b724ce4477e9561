// internal/handlers/note_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"
)

type NoteHandler struct {
	service service.NoteService
	logger  *slog.Logger
}

func NewNoteHandler(s service.NoteService, logger *slog.Logger) *NoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteHandler{
		service: s,
		logger:  logger,
	}
}

func (h *NoteHandler) PostNote(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostNote"))

	var req model.PostNoteRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	note, err := h.service.PostNote(r.Context(), &req)
	if err != nil {
		logger.Error("Error posting note in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Note posted successfully", slog.String("note_id", note.NoteID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, note, logger)
}

func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetNotes"))

	p := webutil.ParseListParams(r)
	result, err := h.service.ListNotes(r.Context(), p)
	if err != nil {
		logger.Error("Error listing notes in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Notes listed successfully", slog.Int64("count", result.Count))
	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetNote"))

	noteID, err := parseUUIDParam(r, "note_id")
	if err != nil {
		logger.Warn("Invalid note ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("note_id", noteID.String()))

	note, err := h.service.GetNote(r.Context(), noteID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Note not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting note from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Note retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, note, logger)
}

func (h *NoteHandler) PatchNote(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchNote"))

	noteID, err := parseUUIDParam(r, "note_id")
	if err != nil {
		logger.Warn("Invalid note ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("note_id", noteID.String()))

	var req model.PatchNoteRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	note, err := h.service.PatchNote(r.Context(), noteID, &req)
	if err != nil {
		logger.Error("Error patching note in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Note patched successfully")
	webutil.RespondWithJSON(w, http.StatusOK, note, logger)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteNote"))

	noteID, err := parseUUIDParam(r, "note_id")
	if err != nil {
		logger.Warn("Invalid note ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("note_id", noteID.String()))

	if err := h.service.DeleteNote(r.Context(), noteID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Note not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error deleting note in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Note deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
