package model

import (
	"time"
)

// SceneHistoryEntry 되돌리기/다시하기 스택 항목
// Position 은 스택 바닥부터의 순서이다.
type SceneHistoryEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SceneID   string    `gorm:"type:varchar(36);not null;index:idx_scene_stack_position" json:"scene_id"`
	Stack     string    `gorm:"type:varchar(10);not null;index:idx_scene_stack_position" json:"stack"`
	Position  int       `gorm:"not null;index:idx_scene_stack_position" json:"position"`
	Elements  string    `gorm:"type:jsonb;not null" json:"elements"`
	AppState  string    `gorm:"type:jsonb;not null" json:"app_state"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SceneHistoryEntry) TableName() string {
	return "scene_history_entries"
}
