package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/swiftride/admin-auth/internal/domain"
	"github.com/swiftride/admin-auth/pkg/security"
)

// AdminUsecase covers super-admin account management: creating accounts,
// unlocking, resetting passwords and deactivation. The delivery layer
// enforces that only SUPER_ADMIN reaches these.
type AdminUsecase struct {
	adminRepo domain.AdminRepository
	tokenRepo domain.TokenRepository
	auditRepo domain.AuditRepository
	logger    *zap.Logger
}

func NewAdminUsecase(admins domain.AdminRepository, tokens domain.TokenRepository, audit domain.AuditRepository, logger *zap.Logger) *AdminUsecase {
	return &AdminUsecase{
		adminRepo: admins,
		tokenRepo: tokens,
		auditRepo: audit,
		logger:    logger,
	}
}

// CreateAdmin provisions a new admin account with the given role.
func (u *AdminUsecase) CreateAdmin(ctx context.Context, actorID, email, password string, role domain.Role, meta RequestMeta) (*domain.AdminAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if !role.Valid() {
		return nil, &ValidationError{Field: "role", Reason: "unknown role"}
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &domain.AdminAccount{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := u.adminRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := u.audit(ctx, actorID, domain.AuditAdminUserCreated, account.ID, meta, map[string]interface{}{
		"email": email,
		"role":  string(role),
	}); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAdmins returns all admin accounts.
func (u *AdminUsecase) ListAdmins(ctx context.Context) ([]*domain.AdminAccount, error) {
	return u.adminRepo.List(ctx)
}

// UnlockAccount clears a lockout ahead of its expiry.
func (u *AdminUsecase) UnlockAccount(ctx context.Context, actorID, targetID string, meta RequestMeta) error {
	if err := u.adminRepo.Unlock(ctx, targetID); err != nil {
		return err
	}
	return u.audit(ctx, actorID, domain.AuditAccountUnlocked, targetID, meta, nil)
}

// ResetPassword sets a new password on the target account and revokes all of
// its refresh tokens. Unlike a self-service password change, a reset implies
// the account may be compromised, so outstanding sessions do not survive.
func (u *AdminUsecase) ResetPassword(ctx context.Context, actorID, targetID, newPassword string, meta RequestMeta) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := u.adminRepo.SetPassword(ctx, targetID, hash); err != nil {
		return err
	}
	if err := u.tokenRepo.DeleteAll(ctx, targetID); err != nil {
		return err
	}
	return u.audit(ctx, actorID, domain.AuditPasswordReset, targetID, meta, nil)
}

// DeactivateAdmin soft-deletes the target account and revokes its refresh
// tokens. Accounts are never hard-deleted. Self-deactivation is rejected so
// the last super admin cannot lock the platform out.
func (u *AdminUsecase) DeactivateAdmin(ctx context.Context, actorID, targetID string, meta RequestMeta) error {
	if actorID == targetID {
		return &ValidationError{Field: "id", Reason: "cannot deactivate your own account"}
	}

	if err := u.adminRepo.Deactivate(ctx, targetID); err != nil {
		return err
	}
	if err := u.tokenRepo.DeleteAll(ctx, targetID); err != nil {
		return err
	}
	return u.audit(ctx, actorID, domain.AuditAdminUserDeactivated, targetID, meta, nil)
}

func (u *AdminUsecase) audit(ctx context.Context, actorID, action, targetID string, meta RequestMeta, details map[string]interface{}) error {
	err := u.auditRepo.Append(ctx, &domain.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		TargetType: "admin_account",
		TargetID:   targetID,
		Details:    details,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	if err != nil {
		u.logger.Error("audit write failed", zap.String("action", action), zap.Error(err))
	}
	return err
}
