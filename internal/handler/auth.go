package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/database"
	"whiteboard-backend/internal/model"
)

// IDTokenVerifier Google ID 토큰 검증
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.GoogleUserInfo, error)
}

// UserStore 사용자 저장소
type UserStore interface {
	FindOrCreateUser(ctx context.Context, user *model.User) error
	FindUser(ctx context.Context, userID int64) (*model.User, error)
}

// AuthHandler 인증 핸들러
type AuthHandler struct {
	users       UserStore
	jwtManager  *auth.JWTManager
	googleAuth  IDTokenVerifier
	tokenExpiry time.Duration
}

// NewAuthHandler AuthHandler 생성
func NewAuthHandler(users UserStore, jwtManager *auth.JWTManager, googleAuth IDTokenVerifier, tokenExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		users:       users,
		jwtManager:  jwtManager,
		googleAuth:  googleAuth,
		tokenExpiry: tokenExpiry,
	}
}

// GoogleLoginRequest Google 로그인 요청
type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// AuthResponse 인증 응답
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
}

// UserResponse 사용자 응답
type UserResponse struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	Nickname   string  `json:"nickname"`
	ProfileImg *string `json:"profile_img,omitempty"`
	Provider   *string `json:"provider,omitempty"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Nickname:   user.Nickname,
		ProfileImg: user.ProfileImg,
		Provider:   user.Provider,
	}
}

// GoogleLogin Google OAuth 로그인
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.IDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id_token is required",
		})
	}

	// Google ID Token 검증
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	googleUser, err := h.googleAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid google token",
		})
	}

	// 사용자 조회 또는 생성
	provider := "google"
	user := &model.User{
		Email:      googleUser.Email,
		Nickname:   googleUser.Name,
		ProfileImg: &googleUser.Picture,
		Provider:   &provider,
		ProviderID: &googleUser.ID,
	}
	if user.Nickname == "" {
		user.Nickname = googleUser.Email
	}
	if err := h.users.FindOrCreateUser(ctx, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load user",
		})
	}

	// JWT 토큰 생성
	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Nickname)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate token",
		})
	}

	return c.JSON(AuthResponse{
		User:        toUserResponse(user),
		AccessToken: accessToken,
		ExpiresIn:   int64(h.tokenExpiry.Seconds()),
	})
}

// Me 현재 사용자 조회
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals(auth.LocalUserID).(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	user, err := h.users.FindUser(c.UserContext(), userID)
	if errors.Is(err, database.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(toUserResponse(user))
}
