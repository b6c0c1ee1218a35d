package middleware

import (
	"log/slog"

	"sweet-shop-api/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger puts a logger tagged with the request id on the request's user context.
// It must run after requestid.New.
func RequestLogger(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		l := base.With("request_id", rid, "method", c.Method(), "path", c.Path())
		c.SetUserContext(logging.IntoContext(c.UserContext(), l))
		return c.Next()
	}
}
