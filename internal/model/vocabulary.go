// internal/model/vocabulary.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Vocabulary は課に属する語彙を表します
type Vocabulary struct {
	VocabularyID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"vocabulary_id"`
	ChapterID          uuid.UUID `gorm:"type:uuid;not null;index" json:"chapter_id"`
	Word               string    `gorm:"not null" json:"word"`    // 単語（漢字一文字や複合語）
	Meaning            string    `gorm:"not null" json:"meaning"` // 意味（越語・英語など）
	Example            string    `json:"example"`                 // 例文 (任意)
	ExampleTranslation string    `json:"example_translation"`     // 例文の訳 (任意)
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// 漢字情報 (任意・1対1)
	KanjiInfo *KanjiInfo `gorm:"foreignKey:VocabularyID;constraint:OnDelete:CASCADE" json:"kanji_info,omitempty"`
}

func (Vocabulary) TableName() string {
	return "vocabularies"
}

// IsKanji は単語が漢字一文字かどうかを返します
func (v *Vocabulary) IsKanji() bool {
	runes := []rune(v.Word)
	return len(runes) == 1 && runes[0] >= 0x4e00 && runes[0] <= 0x9faf
}

// KanjiInfo は漢字一文字の語彙に付随するメタ情報
type KanjiInfo struct {
	KanjiInfoID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"kanji_info_id"`
	VocabularyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	Radical      string    `json:"radical"` // 部首
	OnYomi       string    `json:"on_yomi"`
	KunYomi      string    `json:"kun_yomi"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (KanjiInfo) TableName() string {
	return "kanji_info"
}

// 語彙作成リクエストDTO
type PostVocabularyRequest struct {
	ChapterID          uuid.UUID              `json:"chapter_id" validate:"required"`
	Word               string                 `json:"word" validate:"required,max=100"`
	Meaning            string                 `json:"meaning" validate:"required"`
	Example            string                 `json:"example"`
	ExampleTranslation string                 `json:"example_translation"`
	KanjiInfo          *PostKanjiInfoRequest  `json:"kanji_info,omitempty"`
}

// 漢字情報DTO (語彙作成時にネストで指定可能)
type PostKanjiInfoRequest struct {
	Radical string `json:"radical" validate:"max=10"`
	OnYomi  string `json:"on_yomi" validate:"max=100"`
	KunYomi string `json:"kun_yomi" validate:"max=100"`
}

// 語彙更新（部分）リクエストDTO
type PatchVocabularyRequest struct {
	Word               *string `json:"word,omitempty" validate:"omitempty,min=1,max=100"`
	Meaning            *string `json:"meaning,omitempty" validate:"omitempty,min=1"`
	Example            *string `json:"example,omitempty"`
	ExampleTranslation *string `json:"example_translation,omitempty"`
}
