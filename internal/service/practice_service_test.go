// internal/service/practice_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPracticeServiceForTest(t *testing.T) (PracticeService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	service := NewPracticeService(
		db,
		repository.NewGormActivityRepository(),
		repository.NewGormPracticeQuestionRepository(),
		repository.NewGormProgressRepository(),
		repository.NewGormChapterRepository(),
		testConfig(),
	)
	return service, db
}

// 課・アクティビティ・設問を1セット用意する
func seedPracticeQuestion(t *testing.T, db *gorm.DB, correctAnswer string) (*model.PracticeActivity, *model.PracticeQuestion) {
	t.Helper()
	chapter := createTestChapter(t, db, "みんなの日本語", 1, model.LevelN5)

	activity := &model.PracticeActivity{
		ActivityID:   uuid.New(),
		ChapterID:    chapter.ChapterID,
		ActivityType: model.ActivityMultipleChoice,
		Title:        "第1課 選択問題",
	}
	require.NoError(t, db.Create(activity).Error)

	vocabulary := &model.Vocabulary{
		VocabularyID: uuid.New(),
		ChapterID:    chapter.ChapterID,
		Word:         "食べる",
		Meaning:      correctAnswer,
	}
	require.NoError(t, db.Create(vocabulary).Error)

	question := &model.PracticeQuestion{
		QuestionID:    uuid.New(),
		ActivityID:    activity.ActivityID,
		VocabularyID:  vocabulary.VocabularyID,
		QuestionText:  "「食べる」の意味は？",
		CorrectAnswer: correctAnswer,
		Options:       model.StringList{correctAnswer, "to go", "to see"},
	}
	require.NoError(t, db.Create(question).Error)

	return activity, question
}

func Test_practiceService_SubmitAnswer(t *testing.T) {
	service, db := newPracticeServiceForTest(t)
	user := createTestUser(t, db, "taro@example.com")
	ctx := middleware.WithUserID(context.Background(), user.UserID)

	activity, question := seedPracticeQuestion(t, db, "to eat")

	t.Run("正常系: 正解でスコアが1になる", func(t *testing.T) {
		resp, err := service.SubmitAnswer(ctx, activity.ActivityID, &model.SubmitPracticeAnswerRequest{
			QuestionID: question.QuestionID,
			Answer:     "to eat",
		})
		require.NoError(t, err)
		assert.True(t, resp.IsCorrect)
		assert.Equal(t, "to eat", resp.CorrectAnswer)
		assert.Equal(t, 1, resp.Score)
	})

	t.Run("正常系: 大文字小文字は区別しない", func(t *testing.T) {
		resp, err := service.SubmitAnswer(ctx, activity.ActivityID, &model.SubmitPracticeAnswerRequest{
			QuestionID: question.QuestionID,
			Answer:     "TO EAT",
		})
		require.NoError(t, err)
		assert.True(t, resp.IsCorrect)
		assert.Equal(t, 2, resp.Score)
	})

	t.Run("正常系: 不正解はスコアが変わらない", func(t *testing.T) {
		resp, err := service.SubmitAnswer(ctx, activity.ActivityID, &model.SubmitPracticeAnswerRequest{
			QuestionID: question.QuestionID,
			Answer:     "to sleep",
		})
		require.NoError(t, err)
		assert.False(t, resp.IsCorrect)
		assert.Equal(t, "to eat", resp.CorrectAnswer)
		assert.Equal(t, 2, resp.Score)
	})

	t.Run("進捗行は (user, activity) ごとに1行だけ", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&model.UserProgress{}).
			Where("user_id = ? AND activity_id = ?", user.UserID, activity.ActivityID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("異常系: 別アクティビティの設問IDは404", func(t *testing.T) {
		other := &model.PracticeActivity{
			ActivityID:   uuid.New(),
			ChapterID:    activity.ChapterID,
			ActivityType: model.ActivityTyping,
			Title:        "別アクティビティ",
		}
		require.NoError(t, db.Create(other).Error)

		_, err := service.SubmitAnswer(ctx, other.ActivityID, &model.SubmitPracticeAnswerRequest{
			QuestionID: question.QuestionID,
			Answer:     "to eat",
		})
		assert.True(t, errors.Is(err, model.ErrNotFound))

		// 誤った送信で進捗行が作られていないこと
		var count int64
		require.NoError(t, db.Model(&model.UserProgress{}).
			Where("activity_id = ?", other.ActivityID).
			Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("異常系: 匿名ユーザーは403", func(t *testing.T) {
		_, err := service.SubmitAnswer(context.Background(), activity.ActivityID, &model.SubmitPracticeAnswerRequest{
			QuestionID: question.QuestionID,
			Answer:     "to eat",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrForbidden))
	})
}

// 別ユーザーのスコアは混ざらない
func Test_practiceService_SubmitAnswer_PerUserScore(t *testing.T) {
	service, db := newPracticeServiceForTest(t)
	activity, question := seedPracticeQuestion(t, db, "to eat")

	userA := createTestUser(t, db, "a@example.com")
	userB := createTestUser(t, db, "b@example.com")
	ctxA := middleware.WithUserID(context.Background(), userA.UserID)
	ctxB := middleware.WithUserID(context.Background(), userB.UserID)

	req := &model.SubmitPracticeAnswerRequest{QuestionID: question.QuestionID, Answer: "to eat"}

	respA, err := service.SubmitAnswer(ctxA, activity.ActivityID, req)
	require.NoError(t, err)
	respA, err = service.SubmitAnswer(ctxA, activity.ActivityID, req)
	require.NoError(t, err)
	assert.Equal(t, 2, respA.Score)

	respB, err := service.SubmitAnswer(ctxB, activity.ActivityID, req)
	require.NoError(t, err)
	assert.Equal(t, 1, respB.Score)
}

func Test_practiceService_PostActivity(t *testing.T) {
	service, db := newPracticeServiceForTest(t)
	ctx := context.Background()

	chapter := createTestChapter(t, db, "げんき", 1, model.LevelN5)

	t.Run("正常系: アクティビティを作成できる", func(t *testing.T) {
		activity, err := service.PostActivity(ctx, &model.PostActivityRequest{
			ChapterID:    chapter.ChapterID,
			ActivityType: model.ActivityMultipleChoice,
			Title:        "選択問題",
		})
		require.NoError(t, err)
		assert.Equal(t, chapter.ChapterID, activity.ChapterID)
	})

	t.Run("異常系: 存在しない課は400", func(t *testing.T) {
		_, err := service.PostActivity(ctx, &model.PostActivityRequest{
			ChapterID:    uuid.New(),
			ActivityType: model.ActivityTyping,
			Title:        "宙に浮いたアクティビティ",
		})
		require.Error(t, err)
		var appErr *model.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "CHAPTER_NOT_FOUND", appErr.Detail.Code)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})
}

func Test_practiceService_ListProgress(t *testing.T) {
	service, db := newPracticeServiceForTest(t)
	activity, question := seedPracticeQuestion(t, db, "to eat")
	user := createTestUser(t, db, "taro@example.com")
	ctx := middleware.WithUserID(context.Background(), user.UserID)

	_, err := service.SubmitAnswer(ctx, activity.ActivityID, &model.SubmitPracticeAnswerRequest{
		QuestionID: question.QuestionID,
		Answer:     "to eat",
	})
	require.NoError(t, err)

	t.Run("正常系: 自分の進捗だけが返る", func(t *testing.T) {
		result, err := service.ListProgress(ctx, model.ListParams{})
		require.NoError(t, err)
		require.Equal(t, int64(1), result.Count)
		assert.Equal(t, user.UserID, result.Results[0].UserID)
		assert.Equal(t, 1, result.Results[0].Score)
	})

	t.Run("異常系: 匿名ユーザーは403", func(t *testing.T) {
		_, err := service.ListProgress(context.Background(), model.ListParams{})
		assert.True(t, errors.Is(err, model.ErrForbidden))
	})
}

func Test_practiceService_PatchProgress(t *testing.T) {
	service, db := newPracticeServiceForTest(t)
	activity, question := seedPracticeQuestion(t, db, "to eat")
	user := createTestUser(t, db, "taro@example.com")
	ctx := middleware.WithUserID(context.Background(), user.UserID)

	_, err := service.SubmitAnswer(ctx, activity.ActivityID, &model.SubmitPracticeAnswerRequest{
		QuestionID: question.QuestionID,
		Answer:     "to eat",
	})
	require.NoError(t, err)

	var progress model.UserProgress
	require.NoError(t, db.Where("user_id = ?", user.UserID).First(&progress).Error)

	completed := true
	updated, err := service.PatchProgress(ctx, progress.ProgressID, &model.PatchProgressRequest{Completed: &completed})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, 1, updated.Score)

	t.Run("異常系: 他人の進捗は404", func(t *testing.T) {
		other := createTestUser(t, db, "other@example.com")
		otherCtx := middleware.WithUserID(context.Background(), other.UserID)
		_, err := service.PatchProgress(otherCtx, progress.ProgressID, &model.PatchProgressRequest{Completed: &completed})
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}
