package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/swiftride/admin-auth/internal/domain"
)

// PostgresAuditRepo implements domain.AuditRepository. The audit_logs table
// is append-only; nothing in the application updates or deletes rows.
type PostgresAuditRepo struct {
	db *sql.DB
}

// NewPostgresAuditRepo creates a new repository instance.
func NewPostgresAuditRepo(db *sql.DB) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: db}
}

// Append inserts one immutable security-event record. Errors propagate to
// the caller: a security action whose audit record cannot be written is
// treated as a failed action.
func (r *PostgresAuditRepo) Append(ctx context.Context, entry *domain.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		details = []byte("{}")
	}

	query := `
		INSERT INTO audit_logs (actor_id, action, target_type, target_id, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// actor_id is NULL for anonymous events (e.g. failed login for an
	// unknown email).
	var actor sql.NullString
	if entry.ActorID != "" {
		actor.String = entry.ActorID
		actor.Valid = true
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, query,
		actor,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		details,
		entry.IP,
		entry.UserAgent,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}
