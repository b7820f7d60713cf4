package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/swiftride/admin-auth/internal/domain"
)

// PostgresAdminRepo implements domain.AdminRepository using PostgreSQL.
//
// Every lockout and backup-code mutation is a single conditional UPDATE so
// that concurrent logins against the same account cannot lose updates.
type PostgresAdminRepo struct {
	db *sql.DB
}

// NewPostgresAdminRepo creates a new repository instance.
func NewPostgresAdminRepo(db *sql.DB) *PostgresAdminRepo {
	return &PostgresAdminRepo{db: db}
}

const adminColumns = `id, email, password_hash, role, is_active, last_login_at,
	login_attempts, locked_until, mfa_enabled, COALESCE(mfa_secret, ''), mfa_backup_codes,
	created_at, updated_at`

func scanAdmin(row interface{ Scan(...interface{}) error }) (*domain.AdminAccount, error) {
	a := &domain.AdminAccount{}
	var lastLogin, lockedUntil sql.NullTime
	var backupCodes pq.StringArray

	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.IsActive,
		&lastLogin,
		&a.LoginAttempts,
		&lockedUntil,
		&a.MFAEnabled,
		&a.MFASecret,
		&backupCodes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if lastLogin.Valid {
		a.LastLoginAt = &lastLogin.Time
	}
	if lockedUntil.Valid {
		a.LockedUntil = &lockedUntil.Time
	}
	a.MFABackupCodes = backupCodes
	return a, nil
}

// GetByEmail retrieves an account by email. Emails are stored lower-cased;
// the lookup normalizes its input the same way.
func (r *PostgresAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_accounts WHERE email = $1`
	return scanAdmin(r.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

// GetByID retrieves an account by its UUID.
func (r *PostgresAdminRepo) GetByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_accounts WHERE id = $1`
	return scanAdmin(r.db.QueryRowContext(ctx, query, id))
}

// Create inserts a new admin account.
func (r *PostgresAdminRepo) Create(ctx context.Context, account *domain.AdminAccount) error {
	query := `
		INSERT INTO admin_accounts (email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	account.Email = strings.ToLower(account.Email)
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt

	err := r.db.QueryRowContext(ctx, query,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	return nil
}

// List returns all admin accounts, newest first.
func (r *PostgresAdminRepo) List(ctx context.Context) ([]*domain.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_accounts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.AdminAccount
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// RecordLoginFailure increments the attempt counter, or engages the lock and
// resets the counter when this failure is the maxAttempts-th. One statement,
// so two concurrent failures cannot both observe the same pre-increment
// counter.
func (r *PostgresAdminRepo) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (*domain.LockoutResult, error) {
	query := `
		UPDATE admin_accounts
		SET login_attempts = CASE WHEN login_attempts + 1 >= $2 THEN 0 ELSE login_attempts + 1 END,
		    locked_until   = CASE WHEN login_attempts + 1 >= $2 THEN $3 ELSE locked_until END,
		    updated_at     = now()
		WHERE id = $1
		RETURNING login_attempts, locked_until
	`

	var attempts int
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id, maxAttempts, time.Now().Add(lockFor)).Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	result := &domain.LockoutResult{Attempts: attempts}
	if lockedUntil.Valid && lockedUntil.Time.After(time.Now()) {
		result.LockedUntil = &lockedUntil.Time
	}
	return result, nil
}

// RecordLoginSuccess clears lockout state and stamps last_login_at.
func (r *PostgresAdminRepo) RecordLoginSuccess(ctx context.Context, id string) error {
	query := `
		UPDATE admin_accounts
		SET login_attempts = 0, locked_until = NULL, last_login_at = now(), updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id)
}

// Unlock clears lockout state (explicit administrative action).
func (r *PostgresAdminRepo) Unlock(ctx context.Context, id string) error {
	query := `
		UPDATE admin_accounts
		SET login_attempts = 0, locked_until = NULL, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id)
}

// SetPassword replaces the password hash.
func (r *PostgresAdminRepo) SetPassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE admin_accounts SET password_hash = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id, passwordHash)
}

// Deactivate soft-deletes the account. Rows are never hard-deleted.
func (r *PostgresAdminRepo) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE admin_accounts SET is_active = FALSE, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id)
}

// StoreMFASetup persists a pending secret and backup codes. mfa_enabled stays
// false until the first code is confirmed.
func (r *PostgresAdminRepo) StoreMFASetup(ctx context.Context, id, secret string, backupCodes []string) error {
	query := `
		UPDATE admin_accounts
		SET mfa_secret = $2, mfa_backup_codes = $3, mfa_enabled = FALSE, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, secret, pq.Array(backupCodes))
}

// ConfirmMFA flips mfa_enabled once a valid code has been submitted. The
// WHERE clause keeps the invariant that an enabled account has a secret.
func (r *PostgresAdminRepo) ConfirmMFA(ctx context.Context, id string) error {
	query := `
		UPDATE admin_accounts
		SET mfa_enabled = TRUE, updated_at = now()
		WHERE id = $1 AND mfa_secret IS NOT NULL
	`
	return r.exec(ctx, query, id)
}

// DisableMFA clears all MFA state.
func (r *PostgresAdminRepo) DisableMFA(ctx context.Context, id string) error {
	query := `
		UPDATE admin_accounts
		SET mfa_enabled = FALSE, mfa_secret = NULL, mfa_backup_codes = NULL, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id)
}

// ConsumeBackupCode removes the code from the account's list in one
// statement; the WHERE clause makes presence the success condition, so the
// same code cannot be consumed twice.
func (r *PostgresAdminRepo) ConsumeBackupCode(ctx context.Context, id, code string) (bool, error) {
	query := `
		UPDATE admin_accounts
		SET mfa_backup_codes = array_remove(mfa_backup_codes, $2), updated_at = now()
		WHERE id = $1 AND $2 = ANY(mfa_backup_codes)
	`
	result, err := r.db.ExecContext(ctx, query, id, code)
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return rows > 0, nil
}

func (r *PostgresAdminRepo) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if rows == 0 {
		return domain.ErrAdminNotFound
	}
	return nil
}
