// internal/model/grammar.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// GrammarPattern は文型 (例: 〜ている) を表します
type GrammarPattern struct {
	PatternID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"pattern_id"`
	ChapterID   uuid.UUID `gorm:"type:uuid;not null;index" json:"chapter_id"`
	Pattern     string    `gorm:"not null" json:"pattern"`
	Description string    `json:"description"` // 任意の補足
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 用法は order 順に並ぶ
	Usages []GrammarUsage `gorm:"foreignKey:PatternID;constraint:OnDelete:CASCADE" json:"usages,omitempty"`
}

func (GrammarPattern) TableName() string {
	return "grammar_patterns"
}

// GrammarUsage は文型の一つの用法を表します
type GrammarUsage struct {
	UsageID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"usage_id"`
	PatternID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Explanation string    `gorm:"not null" json:"explanation"` // 例: 動作の継続を表す
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Examples []GrammarExample `gorm:"foreignKey:UsageID;constraint:OnDelete:CASCADE" json:"examples,omitempty"`
}

func (GrammarUsage) TableName() string {
	return "grammar_usages"
}

// GrammarExample は用法の例文を表します
type GrammarExample struct {
	ExampleID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"example_id"`
	UsageID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Sentence    string    `gorm:"not null" json:"sentence"`    // 日本語の例文
	Translation string    `gorm:"not null" json:"translation"` // 訳文
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (GrammarExample) TableName() string {
	return "grammar_examples"
}

// 文型作成リクエストDTO。用法と例文をネストで一括登録できる。
type PostGrammarPatternRequest struct {
	ChapterID   uuid.UUID                  `json:"chapter_id" validate:"required"`
	Pattern     string                     `json:"pattern" validate:"required,max=200"`
	Description string                     `json:"description"`
	Usages      []PostGrammarUsageRequest  `json:"usages" validate:"omitempty,dive"`
}

type PostGrammarUsageRequest struct {
	Explanation string                      `json:"explanation" validate:"required"`
	Order       int                         `json:"order" validate:"min=0"`
	Examples    []PostGrammarExampleRequest `json:"examples" validate:"omitempty,dive"`
}

type PostGrammarExampleRequest struct {
	Sentence    string `json:"sentence" validate:"required"`
	Translation string `json:"translation" validate:"required"`
	Order       int    `json:"order" validate:"min=0"`
}

// 文型更新リクエストDTO (本体のみ。用法の編集は再作成で行う)
type PutGrammarPatternRequest struct {
	Pattern     string `json:"pattern" validate:"required,max=200"`
	Description string `json:"description"`
}
