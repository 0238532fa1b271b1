package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ExtractToken returns the bearer token from the Authorization header, or
// the session cookie when no bearer header is present.
func ExtractToken(authHeader, cookie string) string {
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(cookie)
}

// TokenFromRequest applies ExtractToken to a fiber request.
func TokenFromRequest(c *fiber.Ctx, cookieName string) string {
	return ExtractToken(c.Get(fiber.HeaderAuthorization), c.Cookies(cookieName))
}
