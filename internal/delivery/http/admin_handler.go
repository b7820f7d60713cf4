package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/swiftride/admin-auth/internal/domain"
	"github.com/swiftride/admin-auth/internal/permission"
	"github.com/swiftride/admin-auth/internal/usecase"
)

// AdminHandler exposes admin-account management. Mutations are irreversible
// from a security standpoint, so they sit behind an explicit SUPER_ADMIN role
// check rather than a permission-table entry.
type AdminHandler struct {
	usecase *usecase.AdminUsecase
	logger  *zap.Logger
}

// NewAdminHandler registers the admin-management routes on the authenticated
// /admin/users group.
func NewAdminHandler(authed *echo.Group, u *usecase.AdminUsecase, logger *zap.Logger) {
	handler := &AdminHandler{usecase: u, logger: logger}

	superAdmin := RequireRole(domain.RoleSuperAdmin)

	authed.GET("", handler.List, RequirePermission(permission.ResourceAdmins, permission.ActionRead))
	authed.POST("", handler.Create, superAdmin)
	authed.POST("/:id/unlock", handler.Unlock, superAdmin)
	authed.POST("/:id/reset-password", handler.ResetPassword, superAdmin)
	authed.DELETE("/:id", handler.Deactivate, superAdmin)
}

type createAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// List returns all admin accounts.
func (h *AdminHandler) List(c echo.Context) error {
	admins, err := h.usecase.ListAdmins(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"admins": admins})
}

// Create provisions a new admin account.
func (h *AdminHandler) Create(c echo.Context) error {
	var req createAdminRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	actorID, _ := c.Get(ctxAdminID).(string)
	account, err := h.usecase.CreateAdmin(c.Request().Context(), actorID, req.Email, req.Password, domain.Role(req.Role), requestMeta(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"admin": account})
}

// Unlock clears a lockout ahead of its expiry.
func (h *AdminHandler) Unlock(c echo.Context) error {
	actorID, _ := c.Get(ctxAdminID).(string)

	if err := h.usecase.UnlockAccount(c.Request().Context(), actorID, c.Param("id"), requestMeta(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "unlocked"})
}

// ResetPassword sets a new password and revokes the target's sessions.
func (h *AdminHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	actorID, _ := c.Get(ctxAdminID).(string)
	if err := h.usecase.ResetPassword(c.Request().Context(), actorID, c.Param("id"), req.NewPassword, requestMeta(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "password_reset"})
}

// Deactivate soft-deletes the target account.
func (h *AdminHandler) Deactivate(c echo.Context) error {
	actorID, _ := c.Get(ctxAdminID).(string)

	if err := h.usecase.DeactivateAdmin(c.Request().Context(), actorID, c.Param("id"), requestMeta(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deactivated"})
}
