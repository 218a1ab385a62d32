package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"whiteboard-backend/internal/model"
)

var (
	// ErrSceneNotFound 씬 없음
	ErrSceneNotFound = errors.New("scene not found")
	// ErrUserNotFound 사용자 없음
	ErrUserNotFound = errors.New("user not found")
)

// SceneRepository 씬/멤버/히스토리 저장소
type SceneRepository struct {
	db *gorm.DB
}

// NewSceneRepository SceneRepository 생성
func NewSceneRepository(db *gorm.DB) *SceneRepository {
	return &SceneRepository{db: db}
}

// DB 하위 연결 (헬스 체크용)
func (r *SceneRepository) DB() *gorm.DB {
	return r.db
}

// CreateScene 씬과 소유자 멤버를 함께 생성
func (r *SceneRepository) CreateScene(ctx context.Context, scene *model.Scene) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(scene).Error; err != nil {
			return fmt.Errorf("create scene: %w", err)
		}
		owner := model.SceneMember{
			SceneID:           scene.ID,
			UserID:            scene.OwnerID,
			Role:              model.MemberRoleOwner.String(),
			CanDeleteComments: true,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("create owner member: %w", err)
		}
		return nil
	})
}

// LoadScene 씬과 히스토리 항목 조회 (stack, position 순)
func (r *SceneRepository) LoadScene(ctx context.Context, sceneID string) (*model.Scene, []model.SceneHistoryEntry, error) {
	db := r.db.WithContext(ctx)

	var scene model.Scene
	if err := db.Where("id = ?", sceneID).First(&scene).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSceneNotFound
		}
		return nil, nil, fmt.Errorf("load scene: %w", err)
	}

	var entries []model.SceneHistoryEntry
	if err := db.Where("scene_id = ?", sceneID).
		Order("stack ASC, position ASC").
		Find(&entries).Error; err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}

	return &scene, entries, nil
}

// SaveScene 씬 문서와 히스토리 스택을 한 트랜잭션으로 교체
// 저장된 버전을 1 올리고 scene.Version 에 반영한다.
func (r *SceneRepository) SaveScene(ctx context.Context, scene *model.Scene, entries []model.SceneHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&model.Scene{}).
			Where("id = ?", scene.ID).
			Updates(map[string]interface{}{
				"name":       scene.Name,
				"elements":   scene.Elements,
				"app_state":  scene.AppState,
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("update scene: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrSceneNotFound
		}

		if err := tx.Where("scene_id = ?", scene.ID).Delete(&model.SceneHistoryEntry{}).Error; err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		if len(entries) > 0 {
			for i := range entries {
				entries[i].SceneID = scene.ID
			}
			if err := tx.CreateInBatches(entries, 100).Error; err != nil {
				return fmt.Errorf("insert history: %w", err)
			}
		}

		if err := tx.Model(&model.Scene{}).Where("id = ?", scene.ID).Select("version").Scan(&scene.Version).Error; err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		scene.UpdatedAt = now
		return nil
	})
}

// ListSceneIDs 모든 씬 ID
func (r *SceneRepository) ListSceneIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Scene{}).Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return ids, nil
}

// AddMember 멤버 추가 (이미 있으면 역할/권한 갱신)
func (r *SceneRepository) AddMember(ctx context.Context, member *model.SceneMember) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scene_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "can_delete_comments"}),
	}).Create(member).Error
}

// FindMember 씬 멤버 조회, 없으면 nil
func (r *SceneRepository) FindMember(ctx context.Context, sceneID string, userID int64) (*model.SceneMember, error) {
	var member model.SceneMember
	err := r.db.WithContext(ctx).
		Where("scene_id = ? AND user_id = ?", sceneID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindOrCreateUser 이메일로 사용자 조회, 없으면 생성
func (r *SceneRepository) FindOrCreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).
		Where(model.User{Email: user.Email}).
		Attrs(model.User{Nickname: user.Nickname, ProfileImg: user.ProfileImg, Provider: user.Provider, ProviderID: user.ProviderID}).
		FirstOrCreate(user).Error
}

// FindUser ID 로 사용자 조회
func (r *SceneRepository) FindUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
