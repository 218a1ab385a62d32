package auth

import (
	"errors"

	"gorm.io/gorm"

	"whiteboard-backend/internal/model"
)

// 씬 권한 코드
const (
	PermissionSceneView     = "SCENE_VIEW"
	PermissionSceneEdit     = "SCENE_EDIT"
	PermissionCommentDelete = "COMMENT_DELETE"
)

// CheckPermission 씬 권한 확인
func CheckPermission(db *gorm.DB, sceneID string, userID int64, permissionCode string) (bool, error) {
	// 1. 소유자는 모든 권한을 가짐
	var ownerID int64
	if err := db.Table("scenes").Where("id = ?", sceneID).Select("owner_id").Scan(&ownerID).Error; err != nil {
		return false, err
	}
	if ownerID == userID {
		return true, nil
	}

	// 2. 멤버 역할 기반 권한 확인
	var member model.SceneMember
	err := db.Where("scene_id = ? AND user_id = ?", sceneID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return RoleAllows(model.MemberRole(member.Role), member.CanDeleteComments, permissionCode), nil
}

// RoleAllows 역할과 코멘트 삭제 플래그로 권한 판정
func RoleAllows(role model.MemberRole, canDeleteComments bool, permissionCode string) bool {
	switch permissionCode {
	case PermissionSceneView:
		return true
	case PermissionSceneEdit:
		return role == model.MemberRoleOwner || role == model.MemberRoleEditor
	case PermissionCommentDelete:
		return role == model.MemberRoleOwner || canDeleteComments
	default:
		return false
	}
}
