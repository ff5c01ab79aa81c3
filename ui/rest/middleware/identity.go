package middleware

import (
	"github.com/smartnotes/summarizer/infrastructure/identity"
	"github.com/gofiber/fiber/v2"
)

// Identity copies the basic-auth username into the request's user context so
// services behind the HTTP layer can resolve the caller.
func Identity() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if username, ok := ctx.Locals("username").(string); ok && username != "" {
			ctx.SetUserContext(identity.WithUserID(ctx.UserContext(), username))
		}
		return ctx.Next()
	}
}
