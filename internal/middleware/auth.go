// Package middleware contains reusable Echo middleware: bearer-token
// verification, policy gates, the login rate limiter and the response cache.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/condo-maintenance/internal/auth"
)

// identityKey is the context key under which Verify stores the decoded
// auth.Identity.
const identityKey = "identity"

// Verify gates protected routes. A request must carry
// `Authorization: Bearer <token>` and the token must pass both the
// storage-backed check (ValidateAccess, which makes reissue an instant
// revocation) and the signature/expiry check (ParseAccess). On success the
// decoded identity is stored in the Echo context for handlers downstream.
func Verify(tokens *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			ok, err := tokens.ValidateAccess(c.Request().Context(), raw)
			if err != nil {
				c.Logger().Errorf("token lookup failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			ident, err := tokens.ParseAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

// IdentityFrom retrieves the identity stored by Verify. The second return is
// false when the middleware did not run for this request.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	ident, ok := c.Get(identityKey).(auth.Identity)
	return ident, ok
}
