package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/swiftride/admin-auth/internal/usecase"
)

const refreshCookieName = "refresh_token"

// AuthHandler is the HTTP delivery layer for the login/refresh/logout state
// machine.
type AuthHandler struct {
	usecase *usecase.AuthUsecase
	logger  *zap.Logger
}

// NewAuthHandler registers the authentication routes on the /admin/auth
// group. authed must carry JWTMiddleware.
func NewAuthHandler(public, authed *echo.Group, u *usecase.AuthUsecase, logger *zap.Logger) {
	handler := &AuthHandler{usecase: u, logger: logger}

	public.POST("/login", handler.Login)
	public.POST("/refresh-token", handler.Refresh)

	authed.POST("/logout", handler.Logout)
	authed.GET("/profile", handler.Profile)
	authed.POST("/change-password", handler.ChangePassword)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login drives the full credential + MFA flow. When MFA is enabled and no
// code was supplied the response is a flow marker, not an error.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	result, err := h.usecase.Login(c.Request().Context(), req.Email, req.Password, req.MFACode, requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if result.MFARequired {
		return c.JSON(http.StatusOK, echo.Map{"status": "mfa_required"})
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": result.Tokens.AccessToken,
		"expiresIn":   result.Tokens.ExpiresIn,
		"admin":       result.Admin,
	})
}

// Refresh rotates the refresh token from the HTTP-only cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing refresh token"})
	}

	tokens, err := h.usecase.Refresh(c.Request().Context(), cookie.Value, requestMeta(c))
	if err != nil {
		h.clearRefreshCookie(c)
		return respondError(c, h.logger, err)
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": tokens.AccessToken,
		"expiresIn":   tokens.ExpiresIn,
	})
}

// Logout revokes the presented refresh token, or all of the caller's tokens
// when the cookie is absent.
func (h *AuthHandler) Logout(c echo.Context) error {
	adminID, _ := c.Get(ctxAdminID).(string)

	var refreshToken string
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.usecase.Logout(c.Request().Context(), adminID, refreshToken, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err)
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"status": "logged_out"})
}

// Profile returns the calling admin's account.
func (h *AuthHandler) Profile(c echo.Context) error {
	adminID, _ := c.Get(ctxAdminID).(string)

	admin, err := h.usecase.Profile(c.Request().Context(), adminID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"admin": admin})
}

// ChangePassword re-verifies the current password before storing a new one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	adminID, _ := c.Get(ctxAdminID).(string)
	if err := h.usecase.ChangePassword(c.Request().Context(), adminID, req.CurrentPassword, req.NewPassword, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "password_changed"})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/admin/auth",
		MaxAge:   int(h.usecase.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/admin/auth",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
