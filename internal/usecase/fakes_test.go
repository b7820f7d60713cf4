package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swiftride/admin-auth/internal/domain"
)

// fakeAdminRepo is an in-memory AdminRepository. Mutations hold a single
// mutex, mirroring the atomicity the Postgres implementation gets from
// single-statement conditional updates.
type fakeAdminRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.AdminAccount
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{accounts: make(map[string]*domain.AdminAccount)}
}

func (r *fakeAdminRepo) add(a *domain.AdminAccount) *domain.AdminAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.accounts[a.ID] = a
	return a
}

func cloneAccount(a *domain.AdminAccount) *domain.AdminAccount {
	clone := *a
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		clone.LastLoginAt = &t
	}
	if a.LockedUntil != nil {
		t := *a.LockedUntil
		clone.LockedUntil = &t
	}
	clone.MFABackupCodes = append([]string(nil), a.MFABackupCodes...)
	return &clone
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAdminNotFound
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAdminNotFound
	}
	return cloneAccount(a), nil
}

func (r *fakeAdminRepo) Create(_ context.Context, account *domain.AdminAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return domain.ErrDuplicateEmail
		}
	}
	account.ID = uuid.NewString()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (r *fakeAdminRepo) List(_ context.Context) ([]*domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AdminAccount
	for _, a := range r.accounts {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (r *fakeAdminRepo) RecordLoginFailure(_ context.Context, id string, maxAttempts int, lockFor time.Duration) (*domain.LockoutResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAdminNotFound
	}
	if a.LoginAttempts+1 >= maxAttempts {
		until := time.Now().Add(lockFor)
		a.LoginAttempts = 0
		a.LockedUntil = &until
		return &domain.LockoutResult{Attempts: 0, LockedUntil: &until}, nil
	}
	a.LoginAttempts++
	return &domain.LockoutResult{Attempts: a.LoginAttempts}, nil
}

func (r *fakeAdminRepo) RecordLoginSuccess(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	now := time.Now()
	a.LoginAttempts = 0
	a.LockedUntil = nil
	a.LastLoginAt = &now
	return nil
}

func (r *fakeAdminRepo) Unlock(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.LoginAttempts = 0
	a.LockedUntil = nil
	return nil
}

func (r *fakeAdminRepo) SetPassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (r *fakeAdminRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.IsActive = false
	return nil
}

func (r *fakeAdminRepo) StoreMFASetup(_ context.Context, id, secret string, backupCodes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.MFASecret = secret
	a.MFABackupCodes = append([]string(nil), backupCodes...)
	a.MFAEnabled = false
	return nil
}

func (r *fakeAdminRepo) ConfirmMFA(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.MFASecret == "" {
		return domain.ErrAdminNotFound
	}
	a.MFAEnabled = true
	return nil
}

func (r *fakeAdminRepo) DisableMFA(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.MFAEnabled = false
	a.MFASecret = ""
	a.MFABackupCodes = nil
	return nil
}

func (r *fakeAdminRepo) ConsumeBackupCode(_ context.Context, id, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return false, domain.ErrAdminNotFound
	}
	for i, c := range a.MFABackupCodes {
		if c == code {
			a.MFABackupCodes = append(a.MFABackupCodes[:i], a.MFABackupCodes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// fakeTokenRepo is an in-memory TokenRepository; Consume is atomic under the
// mutex, like GETDEL.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]string // token -> admin id
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]string)}
}

func (r *fakeTokenRepo) Store(_ context.Context, adminID, token string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = adminID
	return nil
}

func (r *fakeTokenRepo) Consume(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	adminID, ok := r.tokens[token]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	delete(r.tokens, token)
	return adminID, nil
}

func (r *fakeTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *fakeTokenRepo) DeleteAll(_ context.Context, adminID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, owner := range r.tokens {
		if owner == adminID {
			delete(r.tokens, token)
		}
	}
	return nil
}

func (r *fakeTokenRepo) count(adminID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, owner := range r.tokens {
		if owner == adminID {
			n++
		}
	}
	return n
}

// fakeAuditRepo records entries in memory; failErr simulates a broken audit
// store.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
	failErr error
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Append(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}
