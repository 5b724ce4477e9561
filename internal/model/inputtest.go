// internal/model/inputtest.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType は入力テスト設問の種別
type QuestionType string

const (
	QuestionVocabulary QuestionType = "vocabulary"
	QuestionGrammar    QuestionType = "grammar"
	QuestionKanji      QuestionType = "kanji"
)

// InputTestQuestion は自由入力形式の設問を表します。
// book_name / chapter_number は課と独立に検索できるよう非正規化して持つ。
type InputTestQuestion struct {
	QuestionID    uuid.UUID    `gorm:"type:uuid;primaryKey" json:"question_id"`
	ChapterID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"chapter_id"`
	BookName      string       `gorm:"index" json:"book_name"`
	ChapterNumber int          `gorm:"index" json:"chapter_number"`
	QuestionType  QuestionType `gorm:"type:varchar(20);not null;index" json:"question_type"`
	QuestionText  string       `gorm:"not null" json:"question_text"`
	CorrectAnswer string       `gorm:"not null" json:"correct_answer"`
	Hint          string       `json:"hint"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	Attempts []InputTestAttempt `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (InputTestQuestion) TableName() string {
	return "input_test_questions"
}

// InputTestAttempt は回答送信ごとの追記専用ログ。ユーザーは匿名でもよい。
type InputTestAttempt struct {
	AttemptID  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	QuestionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"question_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // 匿名はNULL
	UserAnswer string     `gorm:"not null" json:"user_answer"`
	IsCorrect  bool       `gorm:"not null" json:"is_correct"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (InputTestAttempt) TableName() string {
	return "input_test_attempts"
}

// 設問作成リクエストDTO
type PostInputTestQuestionRequest struct {
	ChapterID     uuid.UUID    `json:"chapter_id" validate:"required"`
	QuestionType  QuestionType `json:"question_type" validate:"required,oneof=vocabulary grammar kanji"`
	QuestionText  string       `json:"question_text" validate:"required,max=500"`
	CorrectAnswer string       `json:"correct_answer" validate:"required,max=200"`
	Hint          string       `json:"hint" validate:"max=200"`
}

// 設問更新（部分）リクエストDTO
type PatchInputTestQuestionRequest struct {
	QuestionType  *QuestionType `json:"question_type,omitempty" validate:"omitempty,oneof=vocabulary grammar kanji"`
	QuestionText  *string       `json:"question_text,omitempty" validate:"omitempty,max=500"`
	CorrectAnswer *string       `json:"correct_answer,omitempty" validate:"omitempty,max=200"`
	Hint          *string       `json:"hint,omitempty" validate:"omitempty,max=200"`
}

// 一括インポートリクエストDTO。
// questions の各要素はバッチを中断させないよう、ここでは検証しない
// (サービス側で1件ずつ検証し、失敗をエラーリストに積む)。
type ImportQuestionsRequest struct {
	BookName      string                 `json:"book_name" validate:"required,max=200"`
	ChapterNumber int                    `json:"chapter_number" validate:"required,min=1"`
	QuestionType  QuestionType           `json:"question_type" validate:"required,oneof=vocabulary grammar kanji"`
	Questions     []ImportQuestionRecord `json:"questions" validate:"required,min=1"`
}

// インポート対象1件分。question_type を個別に上書きできる。
type ImportQuestionRecord struct {
	QuestionType  QuestionType `json:"question_type,omitempty"`
	QuestionText  string       `json:"question_text"`
	CorrectAnswer string       `json:"correct_answer"`
	Hint          string       `json:"hint"`
}

// インポート失敗1件分
type ImportQuestionError struct {
	Question ImportQuestionRecord `json:"question"`
	Error    string               `json:"error"`
}

// 一括インポートレスポンスDTO
type ImportQuestionsResponse struct {
	Created          int                   `json:"created"`
	CreatedQuestions []*InputTestQuestion  `json:"created_questions"`
	Errors           []ImportQuestionError `json:"errors"`
	Message          string                `json:"message"`
}

// 回答送信リクエストDTO（自由入力）
type SubmitInputTestAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// 回答送信レスポンスDTO（自由入力）
type SubmitInputTestAnswerResponse struct {
	IsCorrect     bool      `json:"is_correct"`
	CorrectAnswer string    `json:"correct_answer"`
	AttemptID     uuid.UUID `json:"attempt_id"`
}
