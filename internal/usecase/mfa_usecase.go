package usecase

import (
	"context"

	"github.com/swiftride/admin-auth/internal/domain"
	"github.com/swiftride/admin-auth/pkg/security"
)

// MFASetup is returned by SetupMFA: everything the admin needs to enroll an
// authenticator app. MFA stays disabled until EnableMFA confirms a code.
type MFASetup struct {
	Secret      string   `json:"secret"`
	QRCode      string   `json:"qr_code"`
	BackupCodes []string `json:"backup_codes"`
}

// SetupMFA begins enrollment: generates a TOTP secret and backup codes and
// persists them as pending. Rejected if MFA is already enabled.
func (u *AuthUsecase) SetupMFA(ctx context.Context, adminID string, meta RequestMeta) (*MFASetup, error) {
	admin, err := u.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.MFAEnabled {
		return nil, ErrMFAAlreadyEnabled
	}

	secret, err := security.GenerateMFASecret()
	if err != nil {
		return nil, err
	}
	backupCodes, err := security.GenerateBackupCodes()
	if err != nil {
		return nil, err
	}

	if err := u.adminRepo.StoreMFASetup(ctx, adminID, secret, backupCodes); err != nil {
		return nil, err
	}
	if err := u.audit(ctx, adminID, domain.AuditMFASetupStarted, meta, nil); err != nil {
		return nil, err
	}

	return &MFASetup{
		Secret:      secret,
		QRCode:      security.GetMFAQRCodeURI(admin.Email, secret),
		BackupCodes: backupCodes,
	}, nil
}

// EnableMFA confirms enrollment with the first valid TOTP code. Fails when no
// setup is pending.
func (u *AuthUsecase) EnableMFA(ctx context.Context, adminID, code string, meta RequestMeta) error {
	admin, err := u.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.MFAEnabled {
		return ErrMFAAlreadyEnabled
	}
	if admin.MFASecret == "" {
		return ErrNoPendingMFASetup
	}

	if !security.VerifyMFACode(code, admin.MFASecret) {
		return ErrInvalidMFACode
	}

	if err := u.adminRepo.ConfirmMFA(ctx, adminID); err != nil {
		return err
	}
	return u.audit(ctx, adminID, domain.AuditMFAEnabled, meta, nil)
}

// DisableMFA requires re-authentication with the current password, then
// clears the secret and backup codes.
func (u *AuthUsecase) DisableMFA(ctx context.Context, adminID, password string, meta RequestMeta) error {
	admin, err := u.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.MFAEnabled {
		return ErrMFANotEnabled
	}

	match, err := security.ComparePassword(password, admin.PasswordHash)
	if err != nil {
		return err
	}
	if !match {
		return ErrInvalidCredentials
	}

	if err := u.adminRepo.DisableMFA(ctx, adminID); err != nil {
		return err
	}
	return u.audit(ctx, adminID, domain.AuditMFADisabled, meta, nil)
}
