// internal/model/practice.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityType は練習アクティビティの種別
type ActivityType string

const (
	ActivityMultipleChoice ActivityType = "multiple_choice"
	ActivityTyping         ActivityType = "typing"
	ActivityMatching       ActivityType = "matching"
	ActivityListening      ActivityType = "listening"
	ActivitySpeaking       ActivityType = "speaking"
	ActivityWriting        ActivityType = "writing"
)

// PracticeActivity は課に紐づく練習アクティビティを表します
type PracticeActivity struct {
	ActivityID   uuid.UUID    `gorm:"type:uuid;primaryKey" json:"activity_id"`
	ChapterID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"chapter_id"`
	ActivityType ActivityType `gorm:"type:varchar(20);not null" json:"activity_type"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `json:"description"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Questions []PracticeQuestion `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Progress  []UserProgress     `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PracticeActivity) TableName() string {
	return "practice_activities"
}

// StringList は選択肢の文字列リストをJSONカラムとして保存します
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// PracticeQuestion は語彙に紐づく選択式の設問を表します
type PracticeQuestion struct {
	QuestionID    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"question_id"`
	ActivityID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"activity_id"`
	VocabularyID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"vocabulary_id"`
	QuestionText  string     `gorm:"not null" json:"question_text"`
	CorrectAnswer string     `gorm:"not null" json:"correct_answer"`
	Options       StringList `gorm:"type:text" json:"options"` // 選択肢
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Vocabulary *Vocabulary `gorm:"foreignKey:VocabularyID;constraint:OnDelete:CASCADE" json:"vocabulary,omitempty"`
}

func (PracticeQuestion) TableName() string {
	return "practice_questions"
}

// CheckAnswer は回答の正誤を判定します（大文字小文字は区別しない）
func (q *PracticeQuestion) CheckAnswer(answer string) bool {
	return strings.EqualFold(q.CorrectAnswer, answer)
}

// UserProgress は (user, activity) ごとの累積スコアを表します
type UserProgress struct {
	ProgressID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"progress_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_user_activity,unique" json:"user_id"`
	ActivityID  uuid.UUID `gorm:"type:uuid;not null;index:idx_user_activity,unique" json:"activity_id"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	LastAttempt time.Time `json:"last_attempt"`
	CreatedAt   time.Time `json:"created_at"`

	Activity *PracticeActivity `gorm:"foreignKey:ActivityID;references:ActivityID" json:"-"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// アクティビティ作成リクエストDTO
type PostActivityRequest struct {
	ChapterID    uuid.UUID    `json:"chapter_id" validate:"required"`
	ActivityType ActivityType `json:"activity_type" validate:"required,oneof=multiple_choice typing matching listening speaking writing"`
	Title        string       `json:"title" validate:"required,max=200"`
	Description  string       `json:"description"`
}

// 設問作成リクエストDTO
type PostPracticeQuestionRequest struct {
	ActivityID    uuid.UUID `json:"activity_id" validate:"required"`
	VocabularyID  uuid.UUID `json:"vocabulary_id" validate:"required"`
	QuestionText  string    `json:"question_text" validate:"required"`
	CorrectAnswer string    `json:"correct_answer" validate:"required"`
	Options       []string  `json:"options" validate:"required,min=2"`
}

// アクティビティ更新リクエストDTO
type PutActivityRequest struct {
	ActivityType ActivityType `json:"activity_type" validate:"required,oneof=multiple_choice typing matching listening speaking writing"`
	Title        string       `json:"title" validate:"required,max=200"`
	Description  string       `json:"description"`
}

// 設問更新（部分）リクエストDTO
type PatchPracticeQuestionRequest struct {
	QuestionText  *string   `json:"question_text,omitempty"`
	CorrectAnswer *string   `json:"correct_answer,omitempty"`
	Options       *[]string `json:"options,omitempty" validate:"omitempty,min=2"`
}

// 進捗更新（部分）リクエストDTO
type PatchProgressRequest struct {
	Completed *bool `json:"completed,omitempty" validate:"required"`
}

// 回答送信リクエストDTO（選択式）
type SubmitPracticeAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Answer     string    `json:"answer" validate:"required"`
}

// 回答送信レスポンスDTO（選択式）
type SubmitPracticeAnswerResponse struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Score         int    `json:"score"`
}
