package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/database"
	"whiteboard-backend/internal/model"
)

type fakeVerifier struct {
	info *auth.GoogleUserInfo
	err  error
}

func (f fakeVerifier) VerifyIDToken(context.Context, string) (*auth.GoogleUserInfo, error) {
	return f.info, f.err
}

type fakeUsers struct {
	users map[int64]*model.User
}

func (f *fakeUsers) FindOrCreateUser(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			*user = *u
			return nil
		}
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) FindUser(_ context.Context, userID int64) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return u, nil
}

func TestGoogleLoginIssuesToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour, nil)
	users := &fakeUsers{users: map[int64]*model.User{}}
	h := NewAuthHandler(users, jwtManager, fakeVerifier{info: &auth.GoogleUserInfo{ID: "g-1", Email: "a@x", Name: "A"}}, time.Hour)

	app := fiber.New()
	app.Post("/auth/google", h.GoogleLogin)
	app.Get("/auth/me", auth.AuthMiddleware(jwtManager), h.Me)

	status, body := doJSON(t, app, fiber.MethodPost, "/auth/google", `{"id_token":"tok"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3600), body["expires_in"])

	token, _ := body["access_token"].(string)
	claims, err := jwtManager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x", claims.Email)
	assert.Len(t, users.users, 1)
}

func TestGoogleLoginRejects(t *testing.T) {
	h := NewAuthHandler(&fakeUsers{users: map[int64]*model.User{}}, auth.NewJWTManager("secret", time.Hour, nil),
		fakeVerifier{err: errors.New("bad token")}, time.Hour)
	app := fiber.New()
	app.Post("/auth/google", h.GoogleLogin)

	status, _ := doJSON(t, app, fiber.MethodPost, "/auth/google", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, fiber.MethodPost, "/auth/google", `{"id_token":"tok"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestMeUnknownUser(t *testing.T) {
	h := NewAuthHandler(&fakeUsers{users: map[int64]*model.User{}}, nil, nil, time.Hour)
	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals(auth.LocalUserID, int64(42))
		return c.Next()
	}, h.Me)

	status, _ := doJSON(t, app, fiber.MethodGet, "/me", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
