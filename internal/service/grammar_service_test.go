// internal/service/grammar_service_test.go
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

func newGrammarServiceForTest(db *gorm.DB) GrammarService {
	return NewGrammarService(db, repository.NewGormGrammarRepository(), repository.NewGormChapterRepository(), testConfig())
}

func Test_grammarService_PostGrammarPattern(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newGrammarServiceForTest(db)

	chapter := createTestChapter(t, db, "みんなの日本語", 14, model.LevelN5)

	t.Run("正常系: 用法と例文をネストで一括登録できる", func(t *testing.T) {
		pattern, err := service.PostGrammarPattern(ctx, &model.PostGrammarPatternRequest{
			ChapterID:   chapter.ChapterID,
			Pattern:     "〜ている",
			Description: "て形に接続する",
			Usages: []model.PostGrammarUsageRequest{
				{
					Explanation: "動作の継続を表す",
					Order:       1,
					Examples: []model.PostGrammarExampleRequest{
						{Sentence: "雨が降っている。", Translation: "It is raining.", Order: 1},
						{Sentence: "本を読んでいる。", Translation: "I am reading a book.", Order: 2},
					},
				},
				{
					Explanation: "結果の状態を表す",
					Order:       2,
					Examples: []model.PostGrammarExampleRequest{
						{Sentence: "窓が開いている。", Translation: "The window is open.", Order: 1},
					},
				},
			},
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, pattern.PatternID)
		require.Len(t, pattern.Usages, 2)
		require.Len(t, pattern.Usages[0].Examples, 2)

		got, err := service.GetGrammarPattern(ctx, pattern.PatternID)
		require.NoError(t, err)
		require.Len(t, got.Usages, 2)
		assert.Equal(t, "動作の継続を表す", got.Usages[0].Explanation)
		assert.Equal(t, "窓が開いている。", got.Usages[1].Examples[0].Sentence)
	})

	t.Run("正常系: 用法なしでも作成できる", func(t *testing.T) {
		pattern, err := service.PostGrammarPattern(ctx, &model.PostGrammarPatternRequest{
			ChapterID: chapter.ChapterID,
			Pattern:   "〜たい",
		})
		require.NoError(t, err)
		assert.Empty(t, pattern.Usages)
	})

	t.Run("異常系: 存在しない課は400", func(t *testing.T) {
		_, err := service.PostGrammarPattern(ctx, &model.PostGrammarPatternRequest{
			ChapterID: uuid.New(),
			Pattern:   "〜ながら",
		})
		require.Error(t, err)

		var appErr *model.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "CHAPTER_NOT_FOUND", appErr.Detail.Code)
	})
}

func Test_grammarService_GetGrammarPattern_UsageOrder(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newGrammarServiceForTest(db)

	chapter := createTestChapter(t, db, "げんき", 7, model.LevelN4)

	// order を逆順で登録しても取得時は order 昇順で返ること
	pattern, err := service.PostGrammarPattern(ctx, &model.PostGrammarPatternRequest{
		ChapterID: chapter.ChapterID,
		Pattern:   "〜てから",
		Usages: []model.PostGrammarUsageRequest{
			{Explanation: "後で説明される用法", Order: 2},
			{Explanation: "先に説明される用法", Order: 1},
		},
	})
	require.NoError(t, err)

	got, err := service.GetGrammarPattern(ctx, pattern.PatternID)
	require.NoError(t, err)
	require.Len(t, got.Usages, 2)
	assert.Equal(t, "先に説明される用法", got.Usages[0].Explanation)
	assert.Equal(t, "後で説明される用法", got.Usages[1].Explanation)
}

func Test_grammarService_PutGrammarPattern(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newGrammarServiceForTest(db)

	chapter := createTestChapter(t, db, "みんなの日本語", 20, model.LevelN4)
	created, err := service.PostGrammarPattern(ctx, &model.PostGrammarPatternRequest{
		ChapterID: chapter.ChapterID,
		Pattern:   "〜つもり",
		Usages: []model.PostGrammarUsageRequest{
			{Explanation: "意志を表す", Order: 1},
		},
	})
	require.NoError(t, err)

	t.Run("正常系: 本体を更新しても用法は残る", func(t *testing.T) {
		updated, err := service.PutGrammarPattern(ctx, created.PatternID, &model.PutGrammarPatternRequest{
			Pattern:     "〜つもりだ",
			Description: "普通形に接続する",
		})
		require.NoError(t, err)
		assert.Equal(t, "〜つもりだ", updated.Pattern)
		require.Len(t, updated.Usages, 1)
	})

	t.Run("異常系: 存在しないIDは404", func(t *testing.T) {
		_, err := service.PutGrammarPattern(ctx, uuid.New(), &model.PutGrammarPatternRequest{Pattern: "〜そう"})
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func Test_grammarService_DeleteGrammarPattern_Cascade(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newGrammarServiceForTest(db)

	chapter := createTestChapter(t, db, "新完全マスター", 1, model.LevelN3)
	created, err := service.PostGrammarPattern(ctx, &model.PostGrammarPatternRequest{
		ChapterID: chapter.ChapterID,
		Pattern:   "〜ばかり",
		Usages: []model.PostGrammarUsageRequest{
			{
				Explanation: "完了直後を表す",
				Order:       1,
				Examples: []model.PostGrammarExampleRequest{
					{Sentence: "今来たばかりだ。", Translation: "I just arrived.", Order: 1},
				},
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteGrammarPattern(ctx, created.PatternID))

	// 用法と例文が残っていないこと
	for name, target := range map[string]interface{}{
		"grammar_usages":   &model.GrammarUsage{},
		"grammar_examples": &model.GrammarExample{},
	} {
		var count int64
		require.NoError(t, db.Model(target).Count(&count).Error)
		assert.Zero(t, count, "orphan rows left in %s", name)
	}

	t.Run("異常系: 二重削除は404", func(t *testing.T) {
		err := service.DeleteGrammarPattern(ctx, created.PatternID)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}
