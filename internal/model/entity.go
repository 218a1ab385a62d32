package model

import (
	"time"
)

// User 사용자
type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Nickname   string    `gorm:"type:varchar(100);not null" json:"nickname"`
	ProfileImg *string   `gorm:"type:text" json:"profile_img,omitempty"`
	Provider   *string   `gorm:"type:varchar(50)" json:"provider,omitempty"`
	ProviderID *string   `gorm:"type:varchar(255)" json:"provider_id,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Scene 드로잉 문서
// Elements, AppState 는 JSON 문서로 통째로 저장한다.
type Scene struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	OwnerID   int64     `gorm:"not null;index" json:"owner_id"`
	Elements  string    `gorm:"type:jsonb;not null" json:"elements"`
	AppState  string    `gorm:"type:jsonb;not null" json:"app_state"`
	Version   int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner   User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []SceneMember `gorm:"foreignKey:SceneID" json:"members,omitempty"`
}

func (Scene) TableName() string {
	return "scenes"
}

// SceneMember 씬 멤버와 권한
type SceneMember struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SceneID           string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_scene_member" json:"scene_id"`
	UserID            int64     `gorm:"not null;uniqueIndex:idx_scene_member" json:"user_id"`
	Role              string    `gorm:"type:varchar(20);default:'EDITOR'" json:"role"`
	CanDeleteComments bool      `gorm:"default:false" json:"can_delete_comments"`
	JoinedAt          time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (SceneMember) TableName() string {
	return "scene_members"
}
