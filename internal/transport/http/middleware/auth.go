package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/earnly/backend/internal/config"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
)

// UserLocalKey is where UserAuth stores the resolved user on the request.
const UserLocalKey = "auth_user"

func bearerToken(c *fiber.Ctx, header string) string {
	token := c.Get(header)
	if token == "" {
		auth := c.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
			token = auth[len(prefix):]
		}
	}
	return token
}

// UserAuth resolves the caller from an API token. Websocket upgrades
// cannot set headers from a browser, so a token query parameter is
// accepted as a fallback.
func UserAuth(users ports.UserRepository, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c, "X-User-Token")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		user, err := users.GetByToken(c.Context(), token)
		if err != nil {
			log.Warnw("user_auth_failed", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

// AuthenticatedUser returns the user resolved by UserAuth, or nil when the
// middleware did not run.
func AuthenticatedUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(UserLocalKey).(*domain.User)
	return user
}

func AdminAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := cfg.Auth.AdminAPIKey
		if apiKey == "" {
			return c.Next()
		}

		headerToken := bearerToken(c, "X-Admin-Token")
		if headerToken != apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		return c.Next()
	}
}
