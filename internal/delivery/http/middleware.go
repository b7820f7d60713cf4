package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/swiftride/admin-auth/internal/domain"
	"github.com/swiftride/admin-auth/internal/permission"
	"github.com/swiftride/admin-auth/internal/usecase"
)

// Context keys for the authenticated admin, set by JWTMiddleware.
const (
	ctxAdminID = "admin_id"
	ctxEmail   = "admin_email"
	ctxRole    = "admin_role"
)

// JWTMiddleware validates the Bearer access token before any handler logic
// runs. Validity is signature and expiry only; no storage lookup.
func JWTMiddleware(auth *usecase.AuthUsecase) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization header"})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format"})
			}

			claims, err := auth.ValidateAccessToken(parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(ctxAdminID, claims.AdminID)
			c.Set(ctxEmail, claims.Email)
			c.Set(ctxRole, domain.Role(claims.Role))

			return next(c)
		}
	}
}

// RequireRole guards operations that are inherently irreversible (admin
// account management) behind an explicit role check.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current, ok := c.Get(ctxRole).(domain.Role)
			if !ok || current != role {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}

// RequirePermission checks the caller's role against the static permission
// table before the handler runs.
func RequirePermission(resource permission.Resource, action permission.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ctxRole).(domain.Role)
			if !ok || !permission.Has(role, resource, action) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}

func requestMeta(c echo.Context) usecase.RequestMeta {
	return usecase.RequestMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
