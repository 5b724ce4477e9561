// cmd/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"studyflow/internal/config"
	"studyflow/internal/handlers"
	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"
	"studyflow/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
	}

	// 開発時は読みやすい tint、本番はJSON
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
	}
	return slog.New(handler)
}

func main() {
	backfill := flag.Bool("backfill-questions", false, "入力テスト設問の book_name / chapter_number を課から埋め直して終了する")
	fixQuestions := flag.Bool("fix-questions", false, "非正規化キーに一致する設問を正しい課へ付け替えて終了する")
	fixBook := flag.String("book", "", "fix-questions 対象の教科書名")
	fixChapter := flag.Int("chapter", 0, "fix-questions 対象の課番号")
	fixType := flag.String("type", string(model.QuestionVocabulary), "fix-questions で設定する設問種別")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		cfg, err = config.LoadConfig("../configs")
		if err != nil {
			slog.Error("Error loading configuration", slog.Any("error", err))
			os.Exit(1)
		}
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("Application starting...", slog.String("env", cfg.Server.Env))

	db, err := repository.NewDB(cfg.Database.URL, logger, !cfg.IsProduction())
	if err != nil {
		logger.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error("Error closing database connection", slog.Any("error", err))
		} else {
			logger.Info("Database connection closed.")
		}
	}()

	if err := repository.Migrate(db); err != nil {
		logger.Error("Error migrating database", slog.Any("error", err))
		os.Exit(1)
	}

	// Dependency Injection
	chapterRepo := repository.NewGormChapterRepository()
	vocabularyRepo := repository.NewGormVocabularyRepository()
	grammarRepo := repository.NewGormGrammarRepository()
	noteRepo := repository.NewGormNoteRepository()
	activityRepo := repository.NewGormActivityRepository()
	practiceQuestionRepo := repository.NewGormPracticeQuestionRepository()
	progressRepo := repository.NewGormProgressRepository()
	inputTestQuestionRepo := repository.NewGormInputTestQuestionRepository()
	attemptRepo := repository.NewGormAttemptRepository()
	userRepo := repository.NewGormUserRepository()

	chapterService := service.NewChapterService(db, chapterRepo, cfg)
	vocabularyService := service.NewVocabularyService(db, vocabularyRepo, chapterRepo, cfg)
	grammarService := service.NewGrammarService(db, grammarRepo, chapterRepo, cfg)
	noteService := service.NewNoteService(db, noteRepo, cfg)
	practiceService := service.NewPracticeService(db, activityRepo, practiceQuestionRepo, progressRepo, chapterRepo, cfg)
	inputTestService := service.NewInputTestService(db, inputTestQuestionRepo, attemptRepo, chapterRepo, cfg)
	userService := service.NewUserService(db, userRepo, cfg)

	// メンテナンスジョブ指定時はサーバーを立てずに実行して終了する
	if *backfill {
		updated, err := inputTestService.BackfillDenormalizedFields(context.Background())
		if err != nil {
			logger.Error("Backfill failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Backfill finished", slog.Int("updated", updated))
		return
	}
	if *fixQuestions {
		if *fixBook == "" || *fixChapter <= 0 {
			logger.Error("fix-questions requires -book and -chapter")
			os.Exit(1)
		}
		updated, err := inputTestService.FixMismatchedQuestions(context.Background(), *fixBook, *fixChapter, model.QuestionType(*fixType))
		if err != nil {
			logger.Error("Fix questions failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Fix questions finished", slog.Int("updated", updated))
		return
	}

	chapterHandler := handlers.NewChapterHandler(chapterService, logger)
	vocabularyHandler := handlers.NewVocabularyHandler(vocabularyService, logger)
	grammarHandler := handlers.NewGrammarHandler(grammarService, logger)
	noteHandler := handlers.NewNoteHandler(noteService, logger)
	practiceHandler := handlers.NewPracticeHandler(practiceService, logger)
	inputTestHandler := handlers.NewInputTestHandler(inputTestService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)

	// Setup Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	if cfg.IsProduction() {
		r.Use(middleware.SecureHeadersMiddleware)
	}

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Basic認証の資格情報があればユーザーを解決する。なくても匿名で通す。
	r.Use(middleware.UserContextMiddleware(userService))

	// API Routes
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

		r.Route("/grammar-patterns", func(r chi.Router) {
			r.Post("/", grammarHandler.PostGrammarPattern)
			r.Get("/", grammarHandler.GetGrammarPatterns)
			r.Get("/{pattern_id}", grammarHandler.GetGrammarPattern)
			r.Put("/{pattern_id}", grammarHandler.PutGrammarPattern)
			r.Delete("/{pattern_id}", grammarHandler.DeleteGrammarPattern)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", noteHandler.PostNote)
			r.Get("/", noteHandler.GetNotes)
			r.Get("/{note_id}", noteHandler.GetNote)
			r.Patch("/{note_id}", noteHandler.PatchNote)
			r.Delete("/{note_id}", noteHandler.DeleteNote)
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
			r.Patch("/{question_id}", practiceHandler.PatchQuestion)
			r.Delete("/{question_id}", practiceHandler.DeleteQuestion)
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
			r.Patch("/{question_id}", inputTestHandler.PatchQuestion)
			r.Delete("/{question_id}", inputTestHandler.DeleteQuestion)
			r.Post("/{question_id}/submit-answer", inputTestHandler.SubmitAnswer)
		})

		r.Get("/input-test-attempts", inputTestHandler.GetAttempts)
		r.Get("/vocabulary-input-test-questions", inputTestHandler.GetVocabularyQuestions)
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := sqlDB.PingContext(ctx); err != nil {
			logger.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Start Server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("Server exiting")
}
