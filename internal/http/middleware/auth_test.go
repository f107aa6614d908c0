package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediafeed/internal/model"
	repoMocks "mediafeed/internal/repository/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, sub, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthApp(users *repoMocks.MockUserRepository) *fiber.App {
	app := fiber.New()
	app.Use(Auth(testSecret, users))
	app.Get("/protected", func(c *fiber.Ctx) error {
		ident, ok := IdentityFromCtx(c)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "identity missing")
		}
		return c.SendString(ident.ID + ":" + ident.Email)
	})
	return app
}

func TestAuth(t *testing.T) {
	t.Run("valid token resolves identity and upserts user", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		users.On("Upsert", mock.Anything, "user-1", "u1@example.com").
			Return(&model.User{ID: "user-1", Email: "u1@example.com"}, nil)

		app := newAuthApp(users)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signToken(t, testSecret, "user-1", "u1@example.com"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		users.AssertExpectations(t)
	})

	t.Run("missing header", func(t *testing.T) {
		app := newAuthApp(new(repoMocks.MockUserRepository))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		app := newAuthApp(new(repoMocks.MockUserRepository))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Token abc")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with wrong secret", func(t *testing.T) {
		app := newAuthApp(new(repoMocks.MockUserRepository))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signToken(t, "other-secret", "user-1", "u1@example.com"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token without subject", func(t *testing.T) {
		app := newAuthApp(new(repoMocks.MockUserRepository))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signToken(t, testSecret, "", "u1@example.com"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("upsert failure", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		users.On("Upsert", mock.Anything, "user-1", "u1@example.com").
			Return(nil, errors.New("db fail"))

		app := newAuthApp(users)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signToken(t, testSecret, "user-1", "u1@example.com"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		users.AssertExpectations(t)
	})
}
