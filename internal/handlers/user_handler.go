// internal/handlers/user_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"
)

type UserHandler struct {
	service service.UserService
	logger  *slog.Logger
}

func NewUserHandler(s service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		service: s,
		logger:  logger,
	}
}

// RegisterUser は新しいユーザーを登録するためのハンドラ
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RegisterUser"))

	var req model.RegisterUserRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		logger.Error("Error registering user in service", slog.Any("error", err), slog.String("email", req.Email))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User registered successfully", slog.String("user_id", user.UserID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, user, logger)
}

// GetUser は特定のユーザー情報を取得するためのハンドラ
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetUser"))

	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		logger.Warn("Invalid user ID format in URL", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("User not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting user from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User retrieved successfully")
	webutil.RespondWithJSON(w, http.StatusOK, user, logger)
}
