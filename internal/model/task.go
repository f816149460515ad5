package model

import "time"

type Task struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	AudioLink *string    `gorm:"size:1024" json:"audio_link"`
	Prompts   PromptList `gorm:"type:text" json:"prompts"`
	OwnerID   uint       `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskUpdate carries the fields of a partial update. Only present fields are
// written; a present field with a nil value clears the column.
type TaskUpdate struct {
	Name      Patch[string]   `json:"name"`
	AudioLink Patch[string]   `json:"audio_link"`
	Prompts   Patch[[]string] `json:"prompts"`
}

func (u TaskUpdate) Empty() bool {
	return !u.Name.Present && !u.AudioLink.Present && !u.Prompts.Present
}
