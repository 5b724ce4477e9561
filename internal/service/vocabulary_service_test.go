// internal/service/vocabulary_service_test.go
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
	"gorm.io/gorm"
)

func newVocabularyServiceForTest(db *gorm.DB) VocabularyService {
	return NewVocabularyService(db, repository.NewGormVocabularyRepository(), repository.NewGormChapterRepository(), testConfig())
}

func Test_vocabularyService_PostVocabulary(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newVocabularyServiceForTest(db)

	chapter := createTestChapter(t, db, "みんなの日本語", 1, model.LevelN5)

	t.Run("正常系: 語彙を作成できる", func(t *testing.T) {
		vocabulary, err := service.PostVocabulary(ctx, &model.PostVocabularyRequest{
			ChapterID: chapter.ChapterID,
			Word:      "食べる",
			Meaning:   "to eat",
			Example:   "パンを食べる。",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, vocabulary.VocabularyID)
		assert.Nil(t, vocabulary.KanjiInfo)
	})

	t.Run("正常系: 漢字情報をネストで一括登録できる", func(t *testing.T) {
		vocabulary, err := service.PostVocabulary(ctx, &model.PostVocabularyRequest{
			ChapterID: chapter.ChapterID,
			Word:      "水",
			Meaning:   "water",
			KanjiInfo: &model.PostKanjiInfoRequest{
				Radical: "水",
				OnYomi:  "スイ",
				KunYomi: "みず",
			},
		})
		require.NoError(t, err)
		require.NotNil(t, vocabulary.KanjiInfo)
		assert.Equal(t, "スイ", vocabulary.KanjiInfo.OnYomi)
		assert.True(t, vocabulary.IsKanji())

		got, err := service.GetVocabulary(ctx, vocabulary.VocabularyID)
		require.NoError(t, err)
		require.NotNil(t, got.KanjiInfo)
		assert.Equal(t, "みず", got.KanjiInfo.KunYomi)
	})

	t.Run("異常系: 存在しない課は400", func(t *testing.T) {
		_, err := service.PostVocabulary(ctx, &model.PostVocabularyRequest{
			ChapterID: uuid.New(),
			Word:      "飲む",
			Meaning:   "to drink",
		})
		require.Error(t, err)

		var appErr *model.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "CHAPTER_NOT_FOUND", appErr.Detail.Code)
	})
}

func Test_vocabularyService_PatchVocabulary(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newVocabularyServiceForTest(db)

	chapter := createTestChapter(t, db, "げんき", 2, model.LevelN5)
	created, err := service.PostVocabulary(ctx, &model.PostVocabularyRequest{
		ChapterID: chapter.ChapterID,
		Word:      "見る",
		Meaning:   "to see",
	})
	require.NoError(t, err)

	t.Run("正常系: 指定したフィールドだけ更新される", func(t *testing.T) {
		meaning := "to watch"
		updated, err := service.PatchVocabulary(ctx, created.VocabularyID, &model.PatchVocabularyRequest{
			Meaning: &meaning,
		})
		require.NoError(t, err)
		assert.Equal(t, "to watch", updated.Meaning)
		assert.Equal(t, "見る", updated.Word)
	})

	t.Run("正常系: 空のPATCHは現状を返す", func(t *testing.T) {
		updated, err := service.PatchVocabulary(ctx, created.VocabularyID, &model.PatchVocabularyRequest{})
		require.NoError(t, err)
		assert.Equal(t, "to watch", updated.Meaning)
	})

	t.Run("異常系: 存在しないIDは404", func(t *testing.T) {
		word := "読む"
		_, err := service.PatchVocabulary(ctx, uuid.New(), &model.PatchVocabularyRequest{Word: &word})
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func Test_vocabularyService_ListVocabularies(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newVocabularyServiceForTest(db)

	chapter1 := createTestChapter(t, db, "みんなの日本語", 1, model.LevelN5)
	chapter2 := createTestChapter(t, db, "みんなの日本語", 2, model.LevelN5)

	for _, seed := range []struct {
		chapterID uuid.UUID
		word      string
		meaning   string
	}{
		{chapter1.ChapterID, "食べる", "to eat"},
		{chapter1.ChapterID, "飲む", "to drink"},
		{chapter2.ChapterID, "行く", "to go"},
	} {
		_, err := service.PostVocabulary(ctx, &model.PostVocabularyRequest{
			ChapterID: seed.chapterID,
			Word:      seed.word,
			Meaning:   seed.meaning,
		})
		require.NoError(t, err)
	}

	t.Run("正常系: chapter_idフィルタ", func(t *testing.T) {
		result, err := service.ListVocabularies(ctx, model.ListParams{
			Filters: map[string]string{"chapter_id": chapter1.ChapterID.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Count)
	})

	t.Run("正常系: searchは単語と意味の両方に効く", func(t *testing.T) {
		result, err := service.ListVocabularies(ctx, model.ListParams{Search: "drink"})
		require.NoError(t, err)
		require.Equal(t, int64(1), result.Count)
		assert.Equal(t, "飲む", result.Results[0].Word)
	})
}

func Test_vocabularyService_DeleteVocabulary(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newVocabularyServiceForTest(db)

	chapter := createTestChapter(t, db, "げんき", 4, model.LevelN4)
	created, err := service.PostVocabulary(ctx, &model.PostVocabularyRequest{
		ChapterID: chapter.ChapterID,
		Word:      "山",
		Meaning:   "mountain",
		KanjiInfo: &model.PostKanjiInfoRequest{Radical: "山", KunYomi: "やま"},
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteVocabulary(ctx, created.VocabularyID))

	// 1対1の漢字情報も一緒に消えること
	var count int64
	require.NoError(t, db.Model(&model.KanjiInfo{}).Count(&count).Error)
	assert.Zero(t, count)

	t.Run("異常系: 二重削除は404", func(t *testing.T) {
		err := service.DeleteVocabulary(ctx, created.VocabularyID)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}
