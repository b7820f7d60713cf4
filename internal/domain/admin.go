package domain

import (
	"context"
	"errors"
	"time"
)

// Storage-level sentinel errors. Usecases translate these into user-facing
// outcomes; handlers never see them directly.
var (
	ErrAdminNotFound  = errors.New("admin account not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrTokenNotFound  = errors.New("refresh token not found")
)

// Role is the closed set of administrator roles. Permission sets are resolved
// statically from the role in internal/permission.
type Role string

const (
	RoleSuperAdmin        Role = "SUPER_ADMIN"
	RoleOperationsManager Role = "OPERATIONS_MANAGER"
	RoleFinanceManager    Role = "FINANCE_MANAGER"
	RoleCustomerService   Role = "CUSTOMER_SERVICE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOperationsManager, RoleFinanceManager, RoleCustomerService:
		return true
	}
	return false
}

// AdminAccount is the central identity entity of the system. Accounts are
// deactivated, never deleted.
type AdminAccount struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"` // stored lower-cased, unique
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Lockout state. The account is locked iff LockedUntil is set and in
	// the future. LoginAttempts resets to 0 whenever the lock engages and
	// on every successful login.
	LoginAttempts int        `json:"-"`
	LockedUntil   *time.Time `json:"-"`

	// MFA state. MFAEnabled implies MFASecret is non-empty; the secret is
	// persisted at setup time but the flag only flips once the first code
	// is confirmed.
	MFAEnabled     bool     `json:"mfa_enabled"`
	MFASecret      string   `json:"-"`
	MFABackupCodes []string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Locked reports whether the account is locked out at the given instant.
func (a *AdminAccount) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// TokenPair is returned after a fully successful login or refresh. The
// refresh token is opaque and single-use; the access token is a signed JWT.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"` // delivered via HTTP-only cookie, never in the JSON body
	ExpiresIn    int64  `json:"expires_in"`
}

// LockoutResult reports the outcome of recording one failed login attempt.
type LockoutResult struct {
	Attempts    int
	LockedUntil *time.Time // non-nil when this failure engaged the lock
}

// AdminRepository is the persistence contract for admin accounts, implemented
// in internal/repository on PostgreSQL. Lockout and backup-code mutations are
// single atomic statements so concurrent logins cannot lose updates.
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*AdminAccount, error)
	GetByID(ctx context.Context, id string) (*AdminAccount, error)
	Create(ctx context.Context, account *AdminAccount) error
	List(ctx context.Context) ([]*AdminAccount, error)

	// RecordLoginFailure atomically increments the attempt counter, or, if
	// this failure is the maxAttempts-th, resets it to zero and sets the
	// lock. Callers learn which happened from the result.
	RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (*LockoutResult, error)

	// RecordLoginSuccess clears the lockout state and stamps last_login_at.
	RecordLoginSuccess(ctx context.Context, id string) error

	// Unlock clears the lockout state without touching last_login_at
	// (explicit administrative unlock).
	Unlock(ctx context.Context, id string) error

	SetPassword(ctx context.Context, id, passwordHash string) error
	Deactivate(ctx context.Context, id string) error

	// StoreMFASetup persists a pending TOTP secret and backup codes,
	// leaving mfa_enabled false until ConfirmMFA.
	StoreMFASetup(ctx context.Context, id, secret string, backupCodes []string) error
	ConfirmMFA(ctx context.Context, id string) error
	DisableMFA(ctx context.Context, id string) error

	// ConsumeBackupCode atomically removes the code from the account's
	// backup-code list, reporting whether it was present.
	ConsumeBackupCode(ctx context.Context, id, code string) (bool, error)
}

// TokenRepository is the persistence contract for opaque refresh tokens.
type TokenRepository interface {
	Store(ctx context.Context, adminID, token string, ttl time.Duration) error

	// Consume looks up and deletes the token in one atomic step, returning
	// the owning admin id. Of two concurrent calls with the same token,
	// exactly one succeeds; the other observes ErrTokenNotFound.
	Consume(ctx context.Context, token string) (string, error)

	Delete(ctx context.Context, token string) error
	DeleteAll(ctx context.Context, adminID string) error
}
