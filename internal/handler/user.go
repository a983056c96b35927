package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/condo-maintenance/internal/auth"
	"github.com/iliyamo/condo-maintenance/internal/middleware"
	"github.com/iliyamo/condo-maintenance/internal/repository"
)

// UserHandler implements the user-triage endpoints used by complex admins
// and síndicos: role changes (promote/demote/validate) and deletion.
type UserHandler struct {
	Users UserStore
}

func NewUserHandler(users UserStore) *UserHandler { return &UserHandler{Users: users} }

type updateRoleReq struct {
	Role int `json:"role"`
}

// UpdateRole changes the target user's role. The policy check needs the
// target's current role, so the target is loaded before the gate runs.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	newRole := auth.Role(req.Role)
	if !newRole.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role value"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	if !auth.CanModifyUser(ident.Role, target.Role, newRole) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Users.UpdateRole(ctx, target.ID, newRole); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("role update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":       target.ID,
		"username": target.Username,
		"role":     newRole.String(),
	})
}

// Delete removes a user account. Only complex admins may delete, and never
// another complex admin.
func (h *UserHandler) Delete(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}

	if !auth.CanDeleteUser(ident.Role, target.Role) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Users.Delete(ctx, target.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("user delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	return c.NoContent(http.StatusNoContent)
}
