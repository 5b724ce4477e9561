// internal/model/note.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Note は独立したメモを表します
type Note struct {
	NoteID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"note_id"`
	Title     *string   `json:"title"` // 任意
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Note) TableName() string {
	return "notes"
}

// メモ作成リクエストDTO
type PostNoteRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content string  `json:"content" validate:"required"`
}

// メモ更新（部分）リクエストDTO
type PatchNoteRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content *string `json:"content,omitempty" validate:"omitempty,min=1"`
}
