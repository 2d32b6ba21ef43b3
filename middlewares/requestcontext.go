package middlewares

import (
	"strings"

	"praxis-backend/requestctx"

	"github.com/gofiber/fiber/v2"
)

// RequestContext builds the per-request caller metadata and installs it on the
// request's UserContext, so every db.WithContext call chain downstream - the
// audit interceptor included - can read it.
//
// Register it once for public routes and again after IsAuthenticatedHeader()
// so the identity locals are picked up on protected routes. It never fails
// the request; missing fields just stay empty.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(string)
		branchID, _ := c.Locals("branchID").(string)

		// Prefer the first X-Forwarded-For hop, fall back to the socket address.
		ip := strings.TrimSpace(strings.Split(c.Get(fiber.HeaderXForwardedFor), ",")[0])
		if ip == "" {
			ip = c.IP()
		}

		rc := requestctx.Context{
			UserID:    userID,
			BranchID:  branchID,
			IPAddress: ip,
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}
		c.SetUserContext(requestctx.With(c.UserContext(), rc))
		return c.Next()
	}
}
