package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/swiftride/admin-auth/internal/usecase"
)

// MFAHandler handles MFA enrollment and management. All routes require an
// authenticated session.
type MFAHandler struct {
	usecase *usecase.AuthUsecase
	logger  *zap.Logger
}

// NewMFAHandler registers the MFA management routes on the authenticated
// /admin/auth group.
func NewMFAHandler(authed *echo.Group, u *usecase.AuthUsecase, logger *zap.Logger) {
	handler := &MFAHandler{usecase: u, logger: logger}

	authed.POST("/mfa/setup", handler.Setup)
	authed.POST("/mfa/enable", handler.Enable)
	authed.POST("/mfa/disable", handler.Disable)
}

type mfaEnableRequest struct {
	Code string `json:"code"`
}

type mfaDisableRequest struct {
	Password string `json:"password"`
}

// Setup generates a pending TOTP secret plus backup codes. The secret and
// codes are shown exactly once; MFA stays off until Enable confirms a code.
func (h *MFAHandler) Setup(c echo.Context) error {
	adminID, _ := c.Get(ctxAdminID).(string)

	setup, err := h.usecase.SetupMFA(c.Request().Context(), adminID, requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, setup)
}

// Enable verifies the first code and officially turns on MFA for the account.
func (h *MFAHandler) Enable(c echo.Context) error {
	var req mfaEnableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}

	adminID, _ := c.Get(ctxAdminID).(string)
	if err := h.usecase.EnableMFA(c.Request().Context(), adminID, req.Code, requestMeta(c)); err != nil {
		// An invalid code during enrollment is a 400, not a 401: the
		// caller is already authenticated.
		if err == usecase.ErrInvalidMFACode {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "mfa_enabled"})
}

// Disable requires re-authentication with the current password.
func (h *MFAHandler) Disable(c echo.Context) error {
	var req mfaDisableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	adminID, _ := c.Get(ctxAdminID).(string)
	if err := h.usecase.DisableMFA(c.Request().Context(), adminID, req.Password, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "mfa_disabled"})
}
