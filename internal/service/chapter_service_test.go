// internal/service/chapter_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_chapterService_PostChapter(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := NewChapterService(db, repository.NewGormChapterRepository(), testConfig())

	t.Run("正常系: 課を作成できる", func(t *testing.T) {
		chapter, err := service.PostChapter(ctx, &model.PostChapterRequest{
			Level:         model.LevelN5,
			BookName:      "みんなの日本語",
			ChapterNumber: 1,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, chapter.ChapterID)
		assert.Equal(t, "みんなの日本語", chapter.BookName)
	})

	t.Run("異常系: 同じ教科書名と課番号は409", func(t *testing.T) {
		_, err := service.PostChapter(ctx, &model.PostChapterRequest{
			Level:         model.LevelN4,
			BookName:      "みんなの日本語",
			ChapterNumber: 1,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConflict))

		var appErr *model.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "CHAPTER_CONFLICT", appErr.Detail.Code)
	})
}

func Test_chapterService_GetChapter(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := NewChapterService(db, repository.NewGormChapterRepository(), testConfig())

	chapter := createTestChapter(t, db, "げんき", 3, model.LevelN5)
	vocabulary := &model.Vocabulary{
		VocabularyID: uuid.New(),
		ChapterID:    chapter.ChapterID,
		Word:         "食べる",
		Meaning:      "to eat",
	}
	require.NoError(t, db.Create(vocabulary).Error)

	t.Run("正常系: 語彙を埋め込んで取得できる", func(t *testing.T) {
		got, err := service.GetChapter(ctx, chapter.ChapterID)
		require.NoError(t, err)
		require.Len(t, got.Vocabularies, 1)
		assert.Equal(t, "食べる", got.Vocabularies[0].Word)
	})

	t.Run("異常系: 存在しないIDは404", func(t *testing.T) {
		_, err := service.GetChapter(ctx, uuid.New())
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func Test_chapterService_ListChapters(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := NewChapterService(db, repository.NewGormChapterRepository(), testConfig())

	createTestChapter(t, db, "みんなの日本語", 2, model.LevelN5)
	createTestChapter(t, db, "みんなの日本語", 1, model.LevelN5)
	createTestChapter(t, db, "新完全マスター", 1, model.LevelN3)

	t.Run("正常系: 既定順はレベル昇順・課番号昇順", func(t *testing.T) {
		result, err := service.ListChapters(ctx, model.ListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Count)
		require.Len(t, result.Results, 3)
		assert.Equal(t, 1, result.Results[0].ChapterNumber)
		assert.Equal(t, 2, result.Results[1].ChapterNumber)
	})

	t.Run("正常系: book_nameフィルタ", func(t *testing.T) {
		result, err := service.ListChapters(ctx, model.ListParams{
			Filters: map[string]string{"book_name": "新完全マスター"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Count)
	})

	t.Run("正常系: searchは部分一致", func(t *testing.T) {
		result, err := service.ListChapters(ctx, model.ListParams{Search: "マスター"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Count)
	})

	t.Run("正常系: 許可リスト外のorderingは既定順のまま", func(t *testing.T) {
		result, err := service.ListChapters(ctx, model.ListParams{Ordering: "password"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Count)
	})
}

func Test_chapterService_DeleteChapter_Cascade(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := NewChapterService(db, repository.NewGormChapterRepository(), testConfig())

	chapter := createTestChapter(t, db, "みんなの日本語", 5, model.LevelN5)

	vocabulary := &model.Vocabulary{
		VocabularyID: uuid.New(),
		ChapterID:    chapter.ChapterID,
		Word:         "行く",
		Meaning:      "to go",
	}
	require.NoError(t, db.Create(vocabulary).Error)

	activity := &model.PracticeActivity{
		ActivityID:   uuid.New(),
		ChapterID:    chapter.ChapterID,
		ActivityType: model.ActivityMultipleChoice,
		Title:        "第5課 選択問題",
	}
	require.NoError(t, db.Create(activity).Error)

	practiceQuestion := &model.PracticeQuestion{
		QuestionID:    uuid.New(),
		ActivityID:    activity.ActivityID,
		VocabularyID:  vocabulary.VocabularyID,
		QuestionText:  "「行く」の意味は？",
		CorrectAnswer: "to go",
		Options:       model.StringList{"to go", "to eat"},
	}
	require.NoError(t, db.Create(practiceQuestion).Error)

	inputQuestion := &model.InputTestQuestion{
		QuestionID:    uuid.New(),
		ChapterID:     chapter.ChapterID,
		BookName:      chapter.BookName,
		ChapterNumber: chapter.ChapterNumber,
		QuestionType:  model.QuestionVocabulary,
		QuestionText:  "to go",
		CorrectAnswer: "行く",
	}
	require.NoError(t, db.Create(inputQuestion).Error)

	require.NoError(t, service.DeleteChapter(ctx, chapter.ChapterID))

	// 配下のリソースが残っていないこと
	for name, target := range map[string]interface{}{
		"vocabularies":         &model.Vocabulary{},
		"practice_activities":  &model.PracticeActivity{},
		"practice_questions":   &model.PracticeQuestion{},
		"input_test_questions": &model.InputTestQuestion{},
	} {
		var count int64
		require.NoError(t, db.Model(target).Count(&count).Error)
		assert.Zero(t, count, "orphan rows left in %s", name)
	}

	t.Run("異常系: 二重削除は404", func(t *testing.T) {
		err := service.DeleteChapter(ctx, chapter.ChapterID)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}
