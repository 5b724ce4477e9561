// internal/handlers/helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"studyflow/internal/config"
	"studyflow/internal/handlers"
	"studyflow/internal/middleware"
	"studyflow/internal/repository"
	"studyflow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv はテスト用に本番同等のルーティングを組み立てたサーバー一式
type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, repository.Migrate(db))

	cfg := &config.Config{}
	cfg.App.PageSize = 20
	cfg.App.DefaultImportLevel = "N5"

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	chapterRepo := repository.NewGormChapterRepository()
	vocabularyRepo := repository.NewGormVocabularyRepository()
	activityRepo := repository.NewGormActivityRepository()
	practiceQuestionRepo := repository.NewGormPracticeQuestionRepository()
	progressRepo := repository.NewGormProgressRepository()
	inputTestQuestionRepo := repository.NewGormInputTestQuestionRepository()
	attemptRepo := repository.NewGormAttemptRepository()
	userRepo := repository.NewGormUserRepository()

	chapterService := service.NewChapterService(db, chapterRepo, cfg)
	vocabularyService := service.NewVocabularyService(db, vocabularyRepo, chapterRepo, cfg)
	practiceService := service.NewPracticeService(db, activityRepo, practiceQuestionRepo, progressRepo, chapterRepo, cfg)
	inputTestService := service.NewInputTestService(db, inputTestQuestionRepo, attemptRepo, chapterRepo, cfg)
	userService := service.NewUserService(db, userRepo, cfg)

	chapterHandler := handlers.NewChapterHandler(chapterService, testLogger)
	vocabularyHandler := handlers.NewVocabularyHandler(vocabularyService, testLogger)
	practiceHandler := handlers.NewPracticeHandler(practiceService, testLogger)
	inputTestHandler := handlers.NewInputTestHandler(inputTestService, testLogger)
	userHandler := handlers.NewUserHandler(userService, testLogger)

	r := chi.NewRouter()
	r.Use(middleware.LoggingMiddleware(testLogger))
	r.Use(middleware.UserContextMiddleware(userService))

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.RegisterUser)
		r.Get("/users/{user_id}", userHandler.GetUser)

		r.Route("/chapters", func(r chi.Router) {
			r.Post("/", chapterHandler.PostChapter)
			r.Get("/", chapterHandler.GetChapters)
			r.Get("/{chapter_id}", chapterHandler.GetChapter)
			r.Put("/{chapter_id}", chapterHandler.PutChapter)
			r.Delete("/{chapter_id}", chapterHandler.DeleteChapter)
		})

		r.Route("/vocabularies", func(r chi.Router) {
			r.Post("/", vocabularyHandler.PostVocabulary)
			r.Get("/", vocabularyHandler.GetVocabularies)
			r.Get("/{vocabulary_id}", vocabularyHandler.GetVocabulary)
			r.Patch("/{vocabulary_id}", vocabularyHandler.PatchVocabulary)
			r.Delete("/{vocabulary_id}", vocabularyHandler.DeleteVocabulary)
		})

		r.Route("/practice-activities", func(r chi.Router) {
			r.Post("/", practiceHandler.PostActivity)
			r.Get("/", practiceHandler.GetActivities)
			r.Get("/{activity_id}", practiceHandler.GetActivity)
			r.Put("/{activity_id}", practiceHandler.PutActivity)
			r.Delete("/{activity_id}", practiceHandler.DeleteActivity)
			r.Post("/{activity_id}/submit-answer", practiceHandler.SubmitAnswer)
		})

		r.Route("/practice-questions", func(r chi.Router) {
			r.Post("/", practiceHandler.PostQuestion)
			r.Get("/", practiceHandler.GetQuestions)
			r.Get("/{question_id}", practiceHandler.GetQuestion)
		})

		r.Route("/user-progress", func(r chi.Router) {
			r.Get("/", practiceHandler.GetProgress)
			r.Patch("/{progress_id}", practiceHandler.PatchProgress)
		})

		r.Route("/input-test-questions", func(r chi.Router) {
			r.Post("/", inputTestHandler.PostQuestion)
			r.Get("/", inputTestHandler.GetQuestions)
			r.Post("/import", inputTestHandler.ImportQuestions)
			r.Get("/{question_id}", inputTestHandler.GetQuestion)
			r.Post("/{question_id}/submit-answer", inputTestHandler.SubmitAnswer)
		})

		r.Get("/input-test-attempts", inputTestHandler.GetAttempts)
		r.Get("/vocabulary-input-test-questions", inputTestHandler.GetVocabularyQuestions)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testEnv{server: server, db: db}
}

// doRequest はJSONリクエストを送信し、レスポンスを返します
func (e *testEnv) doRequest(t *testing.T, method, path string, body interface{}, basicAuth ...string) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(basicAuth) == 2 {
		req.SetBasicAuth(basicAuth[0], basicAuth[1])
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func decodeJSON(t *testing.T, data []byte, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, dst), "failed to unmarshal response: %s", string(data))
}
