package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/adlytica/toolkit/internal/pkg/errors"
	"github.com/adlytica/toolkit/internal/reset"
)

// Timestamps are written as second-precision RFC 3339 text so the values
// compare correctly in both postgres and the sqlite test driver.
const tokenTimeLayout = time.RFC3339

// TokenRepository implements reset.TokenRepository against the
// confirmation_tokens table. Token issuance and consumption are separate
// CLI invocations, so the records must live in the datastore.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a confirmation token repository
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Insert(ctx context.Context, rec reset.TokenRecord) error {
	var consumedAt interface{}
	if rec.ConsumedAt != nil {
		consumedAt = rec.ConsumedAt.UTC().Format(tokenTimeLayout)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO confirmation_tokens
			(token_id, tenant_id, mode, issued_at, expires_at, token_hash, consumed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.TokenID, rec.TenantID, string(rec.Mode),
		rec.IssuedAt.UTC().Format(tokenTimeLayout),
		rec.ExpiresAt.UTC().Format(tokenTimeLayout),
		rec.TokenHashHex, consumedAt)
	if err != nil {
		return errors.DatabaseError("Failed to insert confirmation token", err)
	}
	return nil
}

func (r *TokenRepository) Get(ctx context.Context, tokenID string) (*reset.TokenRecord, error) {
	var (
		rec      reset.TokenRecord
		mode     string
		issued   scanTime
		expires  scanTime
		consumed scanTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT token_id, tenant_id, mode, issued_at, expires_at, token_hash, consumed_at
		FROM confirmation_tokens
		WHERE token_id = $1
	`, tokenID).Scan(&rec.TokenID, &rec.TenantID, &mode, &issued, &expires, &rec.TokenHashHex, &consumed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to load confirmation token", err)
	}

	rec.Mode = reset.Mode(mode)
	rec.IssuedAt = issued.Time
	rec.ExpiresAt = expires.Time
	if consumed.Valid {
		t := consumed.Time
		rec.ConsumedAt = &t
	}
	return &rec, nil
}

// MarkConsumed flips an unconsumed record to used. The conditional update
// is what makes consumption one-time under concurrent attempts.
func (r *TokenRepository) MarkConsumed(ctx context.Context, tokenID string, consumedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE confirmation_tokens
		SET consumed_at = $1
		WHERE token_id = $2 AND consumed_at IS NULL
	`, consumedAt.UTC().Format(tokenTimeLayout), tokenID)
	if err != nil {
		return false, errors.DatabaseError("Failed to consume confirmation token", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows == 1, nil
}

func (r *TokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM confirmation_tokens
		WHERE consumed_at IS NOT NULL OR expires_at < $1
	`, cutoff.UTC().Format(tokenTimeLayout))
	if err != nil {
		return 0, errors.DatabaseError("Failed to delete stale confirmation tokens", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows, nil
}
