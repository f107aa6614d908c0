package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"mediafeed/internal/model"
	"mediafeed/internal/repository"
)

// IdentityLocalKey is the key used to store the authenticated caller in Fiber's context locals.
const IdentityLocalKey = "identity"

// IdentityFromCtx returns the authenticated caller stored by Auth, or false
// when the request was not authenticated.
func IdentityFromCtx(c *fiber.Ctx) (model.Identity, bool) {
	ident, ok := c.Locals(IdentityLocalKey).(model.Identity)
	return ident, ok
}

// Auth returns middleware that validates a Bearer JWT issued by the identity
// provider and injects the caller into the request context.
//
// Claims: "sub" carries the stable user ID, "email" the display email. On a
// valid token the user row is upserted so the caller always exists before any
// post is created under their ID. Core handlers never touch the users table.
//
// Failures are returned as fiber errors and standardized by the global
// error handler.
func Auth(jwtSecret string, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header required")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header format")
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token claims")
		}

		userID, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "token has no subject")
		}

		u, err := users.Upsert(c.UserContext(), userID, email)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "resolve caller")
		}

		c.Locals(IdentityLocalKey, model.Identity{ID: u.ID, Email: u.Email})
		return c.Next()
	}
}
