package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swiftride/admin-auth/internal/domain"
)

// memAdminRepo is a minimal in-memory AdminRepository for handler tests.
type memAdminRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.AdminAccount
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{accounts: make(map[string]*domain.AdminAccount)}
}

func (r *memAdminRepo) add(a *domain.AdminAccount) *domain.AdminAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.accounts[a.ID] = a
	return a
}

func (r *memAdminRepo) get(id string) (*domain.AdminAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAdminNotFound
	}
	clone := *a
	if a.LockedUntil != nil {
		t := *a.LockedUntil
		clone.LockedUntil = &t
	}
	clone.MFABackupCodes = append([]string(nil), a.MFABackupCodes...)
	return &clone, nil
}

func (r *memAdminRepo) GetByEmail(_ context.Context, email string) (*domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.accounts {
		if a.Email == email {
			return r.get(id)
		}
	}
	return nil, domain.ErrAdminNotFound
}

func (r *memAdminRepo) GetByID(_ context.Context, id string) (*domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memAdminRepo) Create(_ context.Context, account *domain.AdminAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return domain.ErrDuplicateEmail
		}
	}
	account.ID = uuid.NewString()
	clone := *account
	r.accounts[account.ID] = &clone
	return nil
}

func (r *memAdminRepo) List(_ context.Context) ([]*domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AdminAccount
	for id := range r.accounts {
		a, _ := r.get(id)
		out = append(out, a)
	}
	return out, nil
}

func (r *memAdminRepo) RecordLoginFailure(_ context.Context, id string, maxAttempts int, lockFor time.Duration) (*domain.LockoutResult, error) {
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
		return &domain.LockoutResult{LockedUntil: &until}, nil
	}
	a.LoginAttempts++
	return &domain.LockoutResult{Attempts: a.LoginAttempts}, nil
}

func (r *memAdminRepo) RecordLoginSuccess(_ context.Context, id string) error {
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

func (r *memAdminRepo) Unlock(_ context.Context, id string) error {
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

func (r *memAdminRepo) SetPassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r *memAdminRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.IsActive = false
	return nil
}

func (r *memAdminRepo) StoreMFASetup(_ context.Context, id, secret string, codes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.MFASecret = secret
	a.MFABackupCodes = append([]string(nil), codes...)
	a.MFAEnabled = false
	return nil
}

func (r *memAdminRepo) ConfirmMFA(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.MFAEnabled = true
	return nil
}

func (r *memAdminRepo) DisableMFA(_ context.Context, id string) error {
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

func (r *memAdminRepo) ConsumeBackupCode(_ context.Context, id, code string) (bool, error) {
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

// memTokenRepo is a minimal in-memory TokenRepository.
type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]string)}
}

func (r *memTokenRepo) Store(_ context.Context, adminID, token string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = adminID
	return nil
}

func (r *memTokenRepo) Consume(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	adminID, ok := r.tokens[token]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	delete(r.tokens, token)
	return adminID, nil
}

func (r *memTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *memTokenRepo) DeleteAll(_ context.Context, adminID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, owner := range r.tokens {
		if owner == adminID {
			delete(r.tokens, token)
		}
	}
	return nil
}

// memAuditRepo records audit entries in memory.
type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (r *memAuditRepo) Append(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}
