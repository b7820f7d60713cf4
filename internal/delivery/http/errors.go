package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/swiftride/admin-auth/internal/domain"
	"github.com/swiftride/admin-auth/internal/usecase"
)

// respondError maps usecase outcomes to HTTP statuses. Anything unrecognized
// is a server fault: logged with detail, returned as a bare 500.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var locked *usecase.AccountLockedError
	if errors.As(err, &locked) {
		return c.JSON(http.StatusLocked, echo.Map{
			"error":               locked.Error(),
			"retry_after_minutes": locked.RemainingMinutes(),
		})
	}

	var validation *usecase.ValidationError
	if errors.As(err, &validation) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Error()})
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidMFACode),
		errors.Is(err, usecase.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrAccountDisabled),
		errors.Is(err, usecase.ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrMFAAlreadyEnabled),
		errors.Is(err, usecase.ErrNoPendingMFASetup),
		errors.Is(err, usecase.ErrMFANotEnabled):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateEmail):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrAdminNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}

	logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
