// internal/handlers/handlers.go
package handlers

import (
	"net/http"

	"studyflow/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// parseUUIDParam はURLパスパラメータをUUIDとして取り出します。
// 形式不正は 400 相当の AppError を返す。
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	idStr := chi.URLParam(r, name)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, model.NewAppError("INVALID_URL_PARAM", name+"の形式が正しくありません。", name, model.ErrInvalidInput)
	}
	return id, nil
}
