package middleware

import (
	"errors"
	"strings"

	"sweet-shop-api/internal/apperror"
	"sweet-shop-api/internal/logging"
	"sweet-shop-api/internal/policy"
	"sweet-shop-api/internal/repository"
	"sweet-shop-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const callerKey = "caller"

// Authenticate resolves the bearer token, if any, into a policy.Caller stored
// on the request. Requests without a token continue anonymously; a token that
// fails verification is rejected here, before any handler runs.
func Authenticate(tokens *jwt.Manager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		// Extract token from "Bearer <token>"; other schemes are not ours to judge
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Next()
		}

		claims, err := tokens.ParseAccess(strings.TrimSpace(parts[1]))
		if err != nil {
			return apperror.Unauthenticated("Invalid or expired token")
		}

		// Role comes from the store, not the token, so demotions apply immediately
		user, err := users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Unauthenticated("User not found")
			}
			return err
		}

		caller := &policy.Caller{UserID: user.ID, Username: user.Username, IsStaff: user.IsStaff}
		c.Locals(callerKey, caller)

		ctx := c.UserContext()
		c.SetUserContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", user.ID.String())))

		return c.Next()
	}
}

// Require evaluates p against the request's caller and the operation implied by its method.
func Require(p policy.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := p.Authorize(CallerFrom(c), policy.OperationFor(c.Method())); err != nil {
			return err
		}
		return c.Next()
	}
}

// CallerFrom returns the authenticated caller, or nil for anonymous requests.
func CallerFrom(c *fiber.Ctx) *policy.Caller {
	caller, _ := c.Locals(callerKey).(*policy.Caller)
	return caller
}
