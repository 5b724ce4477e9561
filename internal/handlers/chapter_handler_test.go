// internal/handlers/chapter_handler_test.go
package handlers_test

import (
	"net/http"
	"testing"

	"studyflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChapterCRUD(t *testing.T) {
	env := setupTestServer(t)

	var created model.Chapter

	t.Run("正常系: 作成", func(t *testing.T) {
		resp, body := env.doRequest(t, http.MethodPost, "/api/chapters", map[string]interface{}{
			"level":          "N5",
			"book_name":      "みんなの日本語",
			"chapter_number": 1,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(body))
		decodeJSON(t, body, &created)
		assert.NotEqual(t, uuid.Nil, created.ChapterID)
	})

	t.Run("異常系: 重複は409", func(t *testing.T) {
		resp, body := env.doRequest(t, http.MethodPost, "/api/chapters", map[string]interface{}{
			"level":          "N4",
			"book_name":      "みんなの日本語",
			"chapter_number": 1,
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		var errResp model.APIErrorResponse
		decodeJSON(t, body, &errResp)
		assert.Equal(t, "CHAPTER_CONFLICT", errResp.Error.Code)
	})

	t.Run("異常系: 不正なlevelは400", func(t *testing.T) {
		resp, _ := env.doRequest(t, http.MethodPost, "/api/chapters", map[string]interface{}{
			"level":          "N9",
			"book_name":      "みんなの日本語",
			"chapter_number": 2,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("正常系: 一覧とフィルタ", func(t *testing.T) {
		resp, body := env.doRequest(t, http.MethodPost, "/api/chapters", map[string]interface{}{
			"level":          "N3",
			"book_name":      "新完全マスター",
			"chapter_number": 1,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, body = env.doRequest(t, http.MethodGet, "/api/chapters?level=N3", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.ListResult[*model.Chapter]
		decodeJSON(t, body, &result)
		require.Equal(t, int64(1), result.Count)
		assert.Equal(t, "新完全マスター", result.Results[0].BookName)
	})

	t.Run("正常系: 更新", func(t *testing.T) {
		resp, body := env.doRequest(t, http.MethodPut, "/api/chapters/"+created.ChapterID.String(), map[string]interface{}{
			"level":          "N4",
			"book_name":      "みんなの日本語",
			"chapter_number": 1,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

		var updated model.Chapter
		decodeJSON(t, body, &updated)
		assert.Equal(t, model.LevelN4, updated.Level)
	})

	t.Run("正常系: 削除で配下も消える", func(t *testing.T) {
		resp, _ := env.doRequest(t, http.MethodPost, "/api/vocabularies", map[string]interface{}{
			"chapter_id": created.ChapterID,
			"word":       "食べる",
			"meaning":    "to eat",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = env.doRequest(t, http.MethodDelete, "/api/chapters/"+created.ChapterID.String(), nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		var count int64
		require.NoError(t, env.db.Model(&model.Vocabulary{}).Count(&count).Error)
		assert.Zero(t, count)

		resp, _ = env.doRequest(t, http.MethodGet, "/api/chapters/"+created.ChapterID.String(), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRegisterUser(t *testing.T) {
	env := setupTestServer(t)

	t.Run("正常系: 登録", func(t *testing.T) {
		resp, body := env.doRequest(t, http.MethodPost, "/api/users", map[string]string{
			"name":     "山田太郎",
			"email":    "taro@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(body))

		var user model.UserResponse
		decodeJSON(t, body, &user)
		assert.Equal(t, "taro@example.com", user.Email)
		// パスワード関連のフィールドが露出していないこと
		assert.NotContains(t, string(body), "password")
	})

	t.Run("異常系: 重複メールは409", func(t *testing.T) {
		resp, _ := env.doRequest(t, http.MethodPost, "/api/users", map[string]string{
			"name":     "別の太郎",
			"email":    "taro@example.com",
			"password": "password456",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("異常系: 短いパスワードは400", func(t *testing.T) {
		resp, body := env.doRequest(t, http.MethodPost, "/api/users", map[string]string{
			"name":     "山田花子",
			"email":    "hanako@example.com",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp model.APIErrorResponse
		decodeJSON(t, body, &errResp)
		assert.Equal(t, "VALIDATION_ERROR", errResp.Error.Code)
		assert.Equal(t, "password", errResp.Error.Field)
	})
}
