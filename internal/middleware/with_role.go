package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academe-go-api/internal/service"
)

// WithResolvedRole fills in the user_role local when the token carried no
// role claim, consulting the teacher and admin registries. It must run
// after JWTProtected and before any RequireRole guard.
func WithResolvedRole(roles service.RoleService, logger zerolog.Logger) fiber.Handler {
	roleLogger := logger.With().Str("component", "role_middleware").Logger()

	return func(c *fiber.Ctx) error {
		if normalizeRoleValue(c.Locals("user_role")) != "" {
			return c.Next()
		}

		identity := IdentityFromCtx(c)
		role, err := roles.ResolveRole(c.UserContext(), identity)
		if err != nil {
			roleLogger.Warn().Err(err).Uint("user_id", identity.UserID).Msg("role resolution failed")
			return c.Next()
		}

		c.Locals("user_role", role)
		return c.Next()
	}
}

// IdentityFromCtx builds the caller identity from request locals set by
// JWTProtected.
func IdentityFromCtx(c *fiber.Ctx) service.Identity {
	identity := service.Identity{}
	if userID, ok := c.Locals("user_id").(uint); ok {
		identity.UserID = userID
	}
	if email, ok := c.Locals("user_email").(string); ok {
		identity.Email = email
	}
	identity.Role = normalizeRoleValue(c.Locals("user_role"))
	return identity
}
