package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"whiteboard-backend/internal/action"
	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/database"
	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/scene"
	"whiteboard-backend/internal/service"
)

const localSceneID = "sceneID"

// SceneService 씬 처리 서비스
type SceneService interface {
	Create(ctx context.Context, ownerID int64, name string) (*service.SceneState, error)
	Get(ctx context.Context, sceneID string) (*service.SceneState, error)
	Commit(ctx context.Context, sceneID, actor string, elements []element.Element, appState scene.AppState) (*service.SceneState, error)
	Perform(ctx context.Context, sceneID string, input service.ActionInput) (*service.ActionOutcome, error)
	ForceDeleteComments(ctx context.Context, sceneID, actor string, elementIDs []string) (*service.ActionOutcome, error)
}

// PermissionChecker 씬 권한 조회
type PermissionChecker interface {
	HasPermission(sceneID string, userID int64, permissionCode string) bool
}

// SceneHandler 씬 HTTP 핸들러
type SceneHandler struct {
	scenes SceneService
	perms  PermissionChecker
	log    zerolog.Logger
}

// NewSceneHandler SceneHandler 생성
func NewSceneHandler(scenes SceneService, perms PermissionChecker, log zerolog.Logger) *SceneHandler {
	return &SceneHandler{
		scenes: scenes,
		perms:  perms,
		log:    log.With().Str("component", "scene_handler").Logger(),
	}
}

// CreateSceneRequest 씬 생성 요청
type CreateSceneRequest struct {
	Name string `json:"name"`
}

// CommitSceneRequest 씬 저장 요청
type CommitSceneRequest struct {
	Elements []element.Element `json:"elements"`
	AppState scene.AppState    `json:"appState"`
}

// ActionRequest 액션 실행 요청
// Action 이 비어 있으면 Key 로 액션을 찾는다.
type ActionRequest struct {
	Action         string           `json:"action"`
	Key            *action.KeyEvent `json:"key,omitempty"`
	ForceDeleteIDs []string         `json:"forceDeleteIds,omitempty"`
}

// ForceDeleteRequest 코멘트 강제 삭제 요청
type ForceDeleteRequest struct {
	ElementIDs []string `json:"elementIds"`
}

// RequireScenePermission :id 씬에 대한 권한 확인 미들웨어
func (h *SceneHandler) RequireScenePermission(permissionCode string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sceneID := c.Params("id")
		userID, ok := c.Locals(auth.LocalUserID).(int64)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		if !h.perms.HasPermission(sceneID, userID, permissionCode) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "permission denied",
				"code":  permissionCode,
			})
		}
		c.Locals(localSceneID, sceneID)
		return c.Next()
	}
}

// CreateScene 씬 생성
func (h *SceneHandler) CreateScene(c *fiber.Ctx) error {
	userID, ok := c.Locals(auth.LocalUserID).(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req CreateSceneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" {
		req.Name = "Untitled"
	}

	state, err := h.scenes.Create(c.UserContext(), userID, req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

// GetScene 씬 조회
func (h *SceneHandler) GetScene(c *fiber.Ctx) error {
	state, err := h.scenes.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(state)
}

// CommitScene 클라이언트 편집 결과 저장
func (h *SceneHandler) CommitScene(c *fiber.Ctx) error {
	var req CommitSceneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	email, _ := c.Locals(auth.LocalEmail).(string)
	state, err := h.scenes.Commit(c.UserContext(), c.Params("id"), email, req.Elements, req.AppState)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(state)
}

// PerformAction 삭제/되돌리기/다시하기 실행
func (h *SceneHandler) PerformAction(c *fiber.Ctx) error {
	var req ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Action == "" && req.Key == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action or key is required"})
	}

	sceneID := c.Params("id")
	userID, _ := c.Locals(auth.LocalUserID).(int64)
	email, _ := c.Locals(auth.LocalEmail).(string)

	canDeleteComments := h.perms.HasPermission(sceneID, userID, auth.PermissionCommentDelete)
	if len(req.ForceDeleteIDs) > 0 && !canDeleteComments {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "permission denied",
			"code":  auth.PermissionCommentDelete,
		})
	}

	input := service.ActionInput{
		Name:              req.Action,
		Key:               req.Key,
		CanDeleteComments: canDeleteComments,
		ForceDeleteIDs:    req.ForceDeleteIDs,
	}
	if email != "" {
		input.Actor = &scene.Identity{Email: email}
	}

	outcome, err := h.scenes.Perform(c.UserContext(), sceneID, input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(outcome)
}

// ForceDeleteComments 권한 있는 사용자의 코멘트 강제 삭제
func (h *SceneHandler) ForceDeleteComments(c *fiber.Ctx) error {
	var req ForceDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.ElementIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "elementIds is required"})
	}

	email, _ := c.Locals(auth.LocalEmail).(string)
	outcome, err := h.scenes.ForceDeleteComments(c.UserContext(), c.Params("id"), email, req.ElementIDs)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(outcome)
}

// fail 서비스 에러를 HTTP 상태로 변환
func (h *SceneHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, database.ErrSceneNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "scene not found"})
	case errors.Is(err, service.ErrInvalidScene), errors.Is(err, action.ErrUnknownAction):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("scene request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
