package service

import (
	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/model"

	"gorm.io/gorm"
)

// MemberService 씬 멤버십/권한 관련 비즈니스 로직
type MemberService struct {
	db *gorm.DB
}

// NewMemberService MemberService 생성
func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// IsSceneMember 씬 멤버 여부 확인
func (s *MemberService) IsSceneMember(sceneID string, userID int64) bool {
	var count int64
	s.db.Model(&model.SceneMember{}).
		Where("scene_id = ? AND user_id = ?", sceneID, userID).
		Count(&count)
	return count > 0
}

// IsSceneOwner 씬 소유자 여부 확인
func (s *MemberService) IsSceneOwner(sceneID string, userID int64) bool {
	var ownerID int64
	s.db.Table("scenes").Where("id = ?", sceneID).Select("owner_id").Scan(&ownerID)
	return ownerID == userID
}

// IsSceneMemberOrOwner 멤버 또는 소유자 여부 확인
func (s *MemberService) IsSceneMemberOrOwner(sceneID string, userID int64) bool {
	return s.IsSceneMember(sceneID, userID) || s.IsSceneOwner(sceneID, userID)
}

// HasPermission 특정 권한 보유 여부 확인 (조회 실패는 권한 없음)
func (s *MemberService) HasPermission(sceneID string, userID int64, permissionCode string) bool {
	ok, err := auth.CheckPermission(s.db, sceneID, userID, permissionCode)
	return err == nil && ok
}

// CanDeleteComments 코멘트 삭제 권한
func (s *MemberService) CanDeleteComments(sceneID string, userID int64) bool {
	return s.HasPermission(sceneID, userID, auth.PermissionCommentDelete)
}
