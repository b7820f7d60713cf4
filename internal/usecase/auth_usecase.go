package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/swiftride/admin-auth/internal/domain"
	"github.com/swiftride/admin-auth/pkg/security"
)

const minPasswordLength = 8

// RequestMeta carries caller metadata for audit attribution.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// LoginResult is the outcome of a successful (or MFA-pending) login.
// MFARequired is a flow branch, not an error: credentials were correct but
// no tokens are issued until a code is supplied.
type LoginResult struct {
	MFARequired bool
	Admin       *domain.AdminAccount
	Tokens      *domain.TokenPair
}

// AuthUsecase orchestrates login, token refresh, logout, password changes and
// MFA management. It is the only component exposed to the HTTP boundary.
type AuthUsecase struct {
	adminRepo domain.AdminRepository
	tokenRepo domain.TokenRepository
	auditRepo domain.AuditRepository
	logger    *zap.Logger

	jwtSecret       string
	accessTTL       time.Duration
	refreshTTL      time.Duration
	maxAttempts     int
	lockoutDuration time.Duration
}

// AuthConfig bundles the tunables for NewAuthUsecase.
type AuthConfig struct {
	JWTSecret       string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	MaxAttempts     int
	LockoutDuration time.Duration
}

func NewAuthUsecase(admins domain.AdminRepository, tokens domain.TokenRepository, audit domain.AuditRepository, logger *zap.Logger, cfg AuthConfig) *AuthUsecase {
	return &AuthUsecase{
		adminRepo:       admins,
		tokenRepo:       tokens,
		auditRepo:       audit,
		logger:          logger,
		jwtSecret:       cfg.JWTSecret,
		accessTTL:       cfg.AccessTTL,
		refreshTTL:      cfg.RefreshTTL,
		maxAttempts:     cfg.MaxAttempts,
		lockoutDuration: cfg.LockoutDuration,
	}
}

// RefreshTTL exposes the configured refresh-token lifetime to the delivery
// layer (cookie max-age).
func (u *AuthUsecase) RefreshTTL() time.Duration { return u.refreshTTL }

// ValidateAccessToken checks an access token's signature and expiry.
// Stateless: no storage lookup.
func (u *AuthUsecase) ValidateAccessToken(token string) (*security.Claims, error) {
	return security.ValidateToken(token, u.jwtSecret)
}

// Login drives the credential → lockout → MFA → token state machine.
//
// A missing account and a wrong password are indistinguishable to the caller
// (anti-enumeration); a disabled account is explicitly distinguished. A
// locked account rejects every attempt, even with correct credentials,
// without consuming an attempt slot.
func (u *AuthUsecase) Login(ctx context.Context, email, password, mfaCode string, meta RequestMeta) (*LoginResult, error) {
	admin, err := u.adminRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			if err := u.audit(ctx, "", domain.AuditLoginFailed, meta, map[string]interface{}{"email": email, "reason": "unknown_account"}); err != nil {
				return nil, err
			}
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.IsActive {
		return nil, ErrAccountDisabled
	}

	if admin.Locked(time.Now()) {
		return nil, &AccountLockedError{Until: *admin.LockedUntil}
	}

	match, err := security.ComparePassword(password, admin.PasswordHash)
	if err != nil {
		// Malformed stored hash is a configuration fault, not a wrong
		// password.
		return nil, err
	}
	if !match {
		return nil, u.recordFailure(ctx, admin, meta)
	}

	if admin.MFAEnabled {
		if mfaCode == "" {
			// Credentials were correct; stop here without touching
			// the lockout counter and without issuing tokens.
			return &LoginResult{MFARequired: true}, nil
		}
		ok, err := u.checkMFACode(ctx, admin, mfaCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			// MFA failures are a separate class from password
			// failures and do not feed the lockout counter.
			if err := u.audit(ctx, admin.ID, domain.AuditLoginMFAFailed, meta, nil); err != nil {
				return nil, err
			}
			return nil, ErrInvalidMFACode
		}
	}

	if err := u.adminRepo.RecordLoginSuccess(ctx, admin.ID); err != nil {
		return nil, err
	}

	tokens, err := u.issueTokens(ctx, admin)
	if err != nil {
		return nil, err
	}

	if err := u.audit(ctx, admin.ID, domain.AuditLoginSuccess, meta, nil); err != nil {
		return nil, err
	}

	now := time.Now()
	admin.LastLoginAt = &now
	admin.LoginAttempts = 0
	admin.LockedUntil = nil

	return &LoginResult{Admin: admin, Tokens: tokens}, nil
}

// recordFailure routes a wrong password into the lockout tracker and returns
// the user-facing outcome.
func (u *AuthUsecase) recordFailure(ctx context.Context, admin *domain.AdminAccount, meta RequestMeta) error {
	result, err := u.adminRepo.RecordLoginFailure(ctx, admin.ID, u.maxAttempts, u.lockoutDuration)
	if err != nil {
		return err
	}

	if result.LockedUntil != nil {
		if err := u.audit(ctx, admin.ID, domain.AuditAccountLocked, meta, map[string]interface{}{
			"locked_until": result.LockedUntil.Format(time.RFC3339),
		}); err != nil {
			return err
		}
		return &AccountLockedError{Until: *result.LockedUntil}
	}

	if err := u.audit(ctx, admin.ID, domain.AuditLoginFailed, meta, nil); err != nil {
		return err
	}
	return ErrInvalidCredentials
}

// checkMFACode accepts either a current TOTP code or one unused backup code.
// A matched backup code is consumed atomically and cannot be replayed.
func (u *AuthUsecase) checkMFACode(ctx context.Context, admin *domain.AdminAccount, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if security.VerifyMFACode(code, admin.MFASecret) {
		return true, nil
	}
	return u.adminRepo.ConsumeBackupCode(ctx, admin.ID, code)
}

// Refresh rotates a refresh token: the old token is consumed atomically, so
// of two concurrent calls with the same token exactly one succeeds.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (*domain.TokenPair, error) {
	adminID, err := u.tokenRepo.Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	admin, err := u.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !admin.IsActive {
		// The account went inactive while holding a live token; sever
		// everything.
		if err := u.tokenRepo.DeleteAll(ctx, admin.ID); err != nil {
			u.logger.Warn("failed to revoke tokens for inactive account", zap.String("admin_id", admin.ID), zap.Error(err))
		}
		return nil, ErrInvalidRefreshToken
	}

	tokens, err := u.issueTokens(ctx, admin)
	if err != nil {
		return nil, err
	}

	if err := u.audit(ctx, admin.ID, domain.AuditTokenRefreshed, meta, nil); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout revokes the supplied refresh token, or every token of the account
// when none is supplied ("log out everywhere").
func (u *AuthUsecase) Logout(ctx context.Context, adminID, refreshToken string, meta RequestMeta) error {
	if refreshToken != "" {
		if err := u.tokenRepo.Delete(ctx, refreshToken); err != nil {
			return err
		}
	} else {
		if err := u.tokenRepo.DeleteAll(ctx, adminID); err != nil {
			return err
		}
	}
	return u.audit(ctx, adminID, domain.AuditLogout, meta, nil)
}

// Profile returns the calling admin's account.
func (u *AuthUsecase) Profile(ctx context.Context, adminID string) (*domain.AdminAccount, error) {
	return u.adminRepo.GetByID(ctx, adminID)
}

// ChangePassword re-verifies the current password before storing a new hash.
// Existing refresh tokens stay valid; the holder of the session that changed
// the password keeps it.
func (u *AuthUsecase) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string, meta RequestMeta) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	admin, err := u.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}

	match, err := security.ComparePassword(currentPassword, admin.PasswordHash)
	if err != nil {
		return err
	}
	if !match {
		return ErrInvalidCredentials
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := u.adminRepo.SetPassword(ctx, adminID, hash); err != nil {
		return err
	}

	return u.audit(ctx, adminID, domain.AuditPasswordChanged, meta, nil)
}

// issueTokens mints a fresh access/refresh pair. Each issuance gets a new
// random session id, so tokens from different sessions are not linkable.
func (u *AuthUsecase) issueTokens(ctx context.Context, admin *domain.AdminAccount) (*domain.TokenPair, error) {
	accessToken, err := security.GenerateAccessToken(admin.ID, admin.Email, string(admin.Role), u.jwtSecret, u.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := security.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}
	if err := u.tokenRepo.Store(ctx, admin.ID, refreshToken, u.refreshTTL); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.accessTTL.Seconds()),
	}, nil
}

// audit appends a security event. A failed write fails the parent operation;
// audit records are not best-effort.
func (u *AuthUsecase) audit(ctx context.Context, actorID, action string, meta RequestMeta, details map[string]interface{}) error {
	err := u.auditRepo.Append(ctx, &domain.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		TargetType: "admin_account",
		TargetID:   actorID,
		Details:    details,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	if err != nil {
		u.logger.Error("audit write failed", zap.String("action", action), zap.Error(err))
	}
	return err
}

// ValidatePassword enforces the minimum password policy before any
// state-mutating step runs.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}
