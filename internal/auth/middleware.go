package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals 키
const (
	LocalUserID   = "userID"
	LocalEmail    = "email"
	LocalNickname = "nickname"
	LocalClaims   = "claims"
)

// AuthMiddleware JWT 인증 미들웨어
// 토큰은 Authorization 헤더, access_token 쿠키, token 쿼리(WebSocket) 순으로 찾는다.
func AuthMiddleware(jwtManager *JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := tokenFromRequest(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		// 토큰 검증
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "token expired",
					"code":  "TOKEN_EXPIRED",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		// 사용자 정보를 컨텍스트에 저장
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalNickname, claims.Nickname)
		c.Locals(LocalClaims, claims)

		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) (string, error) {
	if header := c.Get("Authorization"); header != "" {
		// Bearer 토큰 파싱
		parts := strings.Split(header, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}
	if cookie := c.Cookies("access_token"); cookie != "" {
		return cookie, nil
	}
	if query := c.Query("token"); query != "" {
		return query, nil
	}
	return "", errors.New("missing authorization token")
}

// CurrentClaims 인증 미들웨어가 저장한 클레임
func CurrentClaims(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*Claims)
	return claims, ok
}
