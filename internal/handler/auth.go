package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/condo-maintenance/internal/auth"
	"github.com/iliyamo/condo-maintenance/internal/config"
	"github.com/iliyamo/condo-maintenance/internal/middleware"
	"github.com/iliyamo/condo-maintenance/internal/repository"
	"github.com/iliyamo/condo-maintenance/internal/utils"
)

// dbTimeout bounds every database round-trip started by a handler.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for registration, login and the token
// endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     UserStore
	Complexes ComplexStore
	Tokens    *auth.Service
}

func NewAuthHandler(cfg config.Config, users UserStore, complexes ComplexStore, tokens *auth.Service) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Complexes: complexes, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ComplexName string `json:"complexName"`
	Complement  string `json:"complement"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID         uint64 `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	ComplexID  uint64 `json:"complexId"`
	Complement string `json:"complement"`
}
type loginResp struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         userPart `json:"user"`
}

// Register creates a resident account under a complex. New accounts always
// start as NAO_VALIDADO; a manager promotes them before they can log in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Name == "" || req.Username == "" || req.Password == "" || req.ComplexName == "" || req.Complement == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all fields are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cpx, err := h.Complexes.GetByNameSubstring(ctx, req.ComplexName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "complex not found"})
		}
		c.Logger().Errorf("complex lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		c.Logger().Errorf("password hash failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	u, err := h.Users.Create(ctx, req.Username, hash, req.Name, cpx.ID, req.Complement)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		c.Logger().Errorf("create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	return c.JSON(http.StatusCreated, userPart{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Role:       u.Role.String(),
		ComplexID:  u.ComplexID,
		Complement: u.Complement,
	})
}

// Login authenticates a user and issues a fresh token pair, replacing any
// pair the user already held. The validation-status check runs before the
// password comparison and answers with a distinguishable 403; unknown
// username and wrong password share the same generic 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		c.Logger().Errorf("user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process login"})
	}
	if !auth.CanLogin(u.Role) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "user not validated"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	pair, err := h.Tokens.Issue(ctx, auth.Identity{ID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		c.Logger().Errorf("token issue failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process login"})
	}

	return c.JSON(http.StatusOK, loginResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User: userPart{
			ID:         u.ID,
			Username:   u.Username,
			Name:       u.Name,
			Role:       u.Role.String(),
			ComplexID:  u.ComplexID,
			Complement: u.Complement,
		},
	})
}

// Refresh exchanges a refresh token for a new pair. The stored row is
// rewritten in place, which immediately invalidates the previous access
// token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Tokens.Rotate(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid or expired refresh token"})
		}
		c.Logger().Errorf("token rotate failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to refresh token"})
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the caller's token pair. Protected route: the identity
// comes from the verified access token.
func (h *AuthHandler) Logout(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, ident.ID); err != nil {
		c.Logger().Errorf("token revoke failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to log out"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       ident.ID,
		"username": ident.Username,
		"role":     ident.Role.String(),
	})
}
