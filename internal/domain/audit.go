package domain

import (
	"context"
	"time"
)

// Audit action tags. The audit log is append-only; entries are never mutated
// or deleted by the application.
const (
	AuditLoginSuccess         = "LOGIN_SUCCESS"
	AuditLoginFailed          = "LOGIN_FAILED"
	AuditLoginMFAFailed       = "LOGIN_MFA_FAILED"
	AuditAccountLocked        = "ACCOUNT_LOCKED"
	AuditAccountUnlocked      = "ACCOUNT_UNLOCKED"
	AuditLogout               = "LOGOUT"
	AuditTokenRefreshed       = "TOKEN_REFRESHED"
	AuditPasswordChanged      = "PASSWORD_CHANGED"
	AuditPasswordReset        = "PASSWORD_RESET"
	AuditMFASetupStarted      = "MFA_SETUP_STARTED"
	AuditMFAEnabled           = "MFA_ENABLED"
	AuditMFADisabled          = "MFA_DISABLED"
	AuditAdminUserCreated     = "ADMIN_USER_CREATED"
	AuditAdminUserDeactivated = "ADMIN_USER_DEACTIVATED"
)

// AuditEntry is one immutable security-event record.
type AuditEntry struct {
	ActorID    string // empty for anonymous events (e.g. failed login for unknown email)
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]interface{}
	IP         string
	UserAgent  string
	CreatedAt  time.Time
}

// AuditRepository appends security events. Writes must not be silently
// dropped: callers propagate an append failure as the parent operation's
// failure.
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
}
