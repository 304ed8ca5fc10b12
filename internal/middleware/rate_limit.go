package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/qazaq-teachers/internal/observability"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// LoginRateLimit throttles sign-in attempts per client IP.
func LoginRateLimit(portal string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("login:%s:%s", portal, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			observability.PortalErrors().WithLabelValues(portal, c.Method(), routeTemplate(c), "429").Inc()
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many login attempts, try again later")
		},
	})
}
