package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated admin.
type Principal struct {
	Admin   *domain.Admin
	Session *domain.Session
}

// AuthMiddleware validates tokens and loads the admin behind them.
type AuthMiddleware struct {
	tokens     *TokenManager
	admins     repository.AdminRepository
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, admins repository.AdminRepository, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, admins: admins, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := TokenFromRequest(c, m.cookieName)
	if token == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	principal, err := m.resolve(c, token)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional attaches a principal when a valid token is present and lets
// anonymous requests through untouched.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if token := TokenFromRequest(c, m.cookieName); token != "" {
		if principal, err := m.resolve(c, token); err == nil {
			c.Locals(principalKey, principal)
		}
	}
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx, token string) (*Principal, error) {
	session, err := m.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}

	admin, err := m.admins.GetByID(c.UserContext(), session.AdminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("admin not found")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !admin.IsActive {
		return nil, apperrors.NewUnauthorized("admin account is inactive")
	}
	return &Principal{Admin: admin, Session: session}, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.Admin != nil
}
