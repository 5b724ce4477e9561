// internal/model/chapter.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Level はJLPTのレベル (N5〜N1)
type Level string

const (
	LevelN5 Level = "N5"
	LevelN4 Level = "N4"
	LevelN3 Level = "N3"
	LevelN2 Level = "N2"
	LevelN1 Level = "N1"
)

// Chapter は教科書の課を表します。(book_name, chapter_number) で一意。
type Chapter struct {
	ChapterID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"chapter_id"`
	Level         Level     `gorm:"type:varchar(2);not null;index" json:"level"`
	BookName      string    `gorm:"not null;index:idx_book_chapter,unique" json:"book_name"`
	ChapterNumber int       `gorm:"not null;index:idx_book_chapter,unique" json:"chapter_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 関連 (Preload用)。Chapter削除時に子もすべて削除される。
	Vocabularies       []Vocabulary        `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"vocabularies,omitempty"`
	GrammarPatterns    []GrammarPattern    `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"grammar_patterns,omitempty"`
	Activities         []PracticeActivity  `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"-"`
	InputTestQuestions []InputTestQuestion `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// 課作成リクエストDTO
type PostChapterRequest struct {
	Level         Level  `json:"level" validate:"required,oneof=N5 N4 N3 N2 N1"`
	BookName      string `json:"book_name" validate:"required,max=200"`
	ChapterNumber int    `json:"chapter_number" validate:"required,min=1"`
}

// 課更新リクエストDTO
type PutChapterRequest struct {
	Level         Level  `json:"level" validate:"required,oneof=N5 N4 N3 N2 N1"`
	BookName      string `json:"book_name" validate:"required,max=200"`
	ChapterNumber int    `json:"chapter_number" validate:"required,min=1"`
}
