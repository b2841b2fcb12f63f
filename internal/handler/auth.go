package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/config"
	"github.com/iliyamo/queue-ticketing/internal/repository"
	"github.com/iliyamo/queue-ticketing/internal/utils"
)

// AuthHandler implements account registration and the token lifecycle
// for staff and kiosk accounts.  Refresh tokens rotate on every use and
// only their hashes are stored.
type AuthHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Cfg    config.Config
}

// NewAuthHandler wires the repositories and config into a handler.
func NewAuthHandler(users *repository.UserRepo, tokens *repository.TokenRepo, cfg config.Config) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Cfg: cfg}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /api/auth/register.  New accounts are always
// non-admin; admins are promoted directly in the database.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and a password of at least 8 characters are required."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, false, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email is already registered."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create account."})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "email": req.Email})
}

// Login handles POST /api/auth/login and returns an access/refresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		// same response for unknown email and wrong password
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password."})
	}
	return h.issueTokens(ctx, c, u.ID, u.IsAdmin)
}

// Refresh handles POST /api/auth/refresh.  The presented token is
// revoked and a fresh pair is issued, so each refresh token works once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "refresh_token is required."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired refresh token."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to refresh session."})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to refresh session."})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired refresh token."})
	}
	return h.issueTokens(ctx, c, u.ID, u.IsAdmin)
}

// Logout handles POST /api/auth/logout and revokes every refresh token
// the account holds.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: Missing or invalid token"})
	}
	uid, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		// sentinel identities have no stored tokens to revoke
		return c.JSON(http.StatusOK, echo.Map{"message": "Logged out."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to log out."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out."})
}

// Me handles GET /api/auth/me and returns the caller's account.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized: Missing or invalid token"})
	}
	isAdmin, _ := c.Get("is_admin").(bool)
	uid, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		// sentinel identity, not backed by a users row
		return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "is_admin": isAdmin})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Account not found."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       u.ID,
		"email":    u.Email,
		"is_admin": u.IsAdmin,
	})
}

func (h *AuthHandler) issueTokens(ctx context.Context, c echo.Context, userID uint64, isAdmin bool) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, strconv.FormatUint(userID, 10), isAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to issue tokens."})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to issue tokens."})
	}
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to issue tokens."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access.Token,
		"expires_at":    access.Exp,
		"refresh_token": refresh.Raw,
	})
}
