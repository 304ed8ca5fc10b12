package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// Locals keys populated by SessionProtected.
const (
	LocalUserID       = "user_id"
	LocalUserRole     = "user_role"
	LocalSessionID    = "session_id"
	LocalSessionToken = "session_token"
)

// SessionConfig wires SessionProtected to a session store.
type SessionConfig struct {
	Sessions   service.SessionService
	CookieName string
}

// SessionProtected validates the session cookie (or a bearer token) against
// the session store. Pair it with RequireRole to restrict a portal to one role.
func SessionProtected(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c, cfg.CookieName)
		if token == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		session, err := cfg.Sessions.Validate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionInvalid) {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired, please sign in again")
			}
			return utils.SendError(c, fiber.StatusServiceUnavailable, "session store unavailable")
		}

		c.Locals(LocalUserID, session.SubjectID)
		c.Locals(LocalUserRole, session.Role)
		c.Locals(LocalSessionID, session.ID)
		c.Locals(LocalSessionToken, token)

		return c.Next()
	}
}

// SessionToken reads the session token from the cookie, falling back to an
// Authorization bearer header.
func SessionToken(c *fiber.Ctx, cookieName string) string {
	if cookieName != "" {
		if value := strings.TrimSpace(c.Cookies(cookieName)); value != "" {
			return value
		}
	}

	authorization := c.Get(fiber.HeaderAuthorization)
	const bearer = "bearer "
	if len(authorization) > len(bearer) && strings.EqualFold(authorization[:len(bearer)], bearer) {
		return strings.TrimSpace(authorization[len(bearer):])
	}
	return ""
}

// UserID returns the authenticated subject id.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(LocalUserID).(uint); ok {
		return id
	}
	return 0
}

// UserRole returns the authenticated role, if any.
func UserRole(c *fiber.Ctx) string {
	if role, ok := c.Locals(LocalUserRole).(string); ok {
		return role
	}
	return ""
}
