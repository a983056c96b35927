package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/condo-maintenance/internal/auth"
)

// RequireRequisitionCreation blocks unvalidated users from filing
// requisitions. It assumes Verify already ran and produces an explicit 403
// rather than silently dropping the request.
func RequireRequisitionCreation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if !auth.CanCreateRequisition(ident.Role) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "user not validated; requisition creation is not allowed"})
			}
			return next(c)
		}
	}
}
