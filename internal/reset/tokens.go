package reset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adlytica/toolkit/internal/pkg/errors"
)

// TokenPrefix identifies toolkit confirmation tokens on the wire
const TokenPrefix = "adlytica-confirm"

// TokenTTL is how long a minted token stays valid
const TokenTTL = 5 * time.Minute

// clockSkewTolerance bounds how far in the future a caller-supplied
// confirmation timestamp may be
const clockSkewTolerance = 30 * time.Second

// Mode distinguishes partial from hard resets in the token record
type Mode string

const (
	ModePartial Mode = "partial"
	ModeHard    Mode = "hard"
)

// TokenRecord is the stored state of one confirmation token. Only the hash
// of the secret is kept, never the secret itself.
type TokenRecord struct {
	TokenID      string
	TenantID     string
	Mode         Mode
	IssuedAt     time.Time
	ExpiresAt    time.Time
	TokenHashHex string
	ConsumedAt   *time.Time
}

// IssuedToken is what GenerateConfirmationToken hands back to the operator
type IssuedToken struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenRepository persists confirmation token records. Issuance and
// consumption happen in separate CLI processes, so the records must
// outlive the process that minted them. Implementations store only the
// secret hash, never the secret.
type TokenRepository interface {
	Insert(ctx context.Context, rec TokenRecord) error

	// Get returns nil with no error when no record exists for the id
	Get(ctx context.Context, tokenID string) (*TokenRecord, error)

	// MarkConsumed marks an unconsumed record as used; false means the
	// record was already consumed or no longer exists
	MarkConsumed(ctx context.Context, tokenID string, consumedAt time.Time) (bool, error)

	// DeleteStale removes consumed records and records expired at cutoff
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// MemoryTokenRepository keeps token records in process. It backs tests
// and flows that never leave one process; cross-process confirmation
// uses the datastore-backed repository.
type MemoryTokenRepository struct {
	mu      sync.Mutex
	records map[string]*TokenRecord
}

// NewMemoryTokenRepository creates an empty in-process token repository
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{records: make(map[string]*TokenRecord)}
}

func (r *MemoryTokenRepository) Insert(ctx context.Context, rec TokenRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := rec
	r.records[rec.TokenID] = &stored
	return nil
}

func (r *MemoryTokenRepository) Get(ctx context.Context, tokenID string) (*TokenRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[tokenID]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (r *MemoryTokenRepository) MarkConsumed(ctx context.Context, tokenID string, consumedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[tokenID]
	if !ok || rec.ConsumedAt != nil {
		return false, nil
	}
	consumed := consumedAt
	rec.ConsumedAt = &consumed
	return true, nil
}

func (r *MemoryTokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, rec := range r.records {
		if rec.ConsumedAt != nil || cutoff.After(rec.ExpiresAt) {
			delete(r.records, id)
			removed++
		}
	}
	return removed, nil
}

// TokenStore validates and consumes one-time confirmation tokens on top
// of a TokenRepository.
type TokenStore struct {
	repo TokenRepository
	now  func() time.Time
}

// NewTokenStore creates a token store over a repository
func NewTokenStore(repo TokenRepository) *TokenStore {
	return &TokenStore{repo: repo, now: time.Now}
}

// Generate mints a one-time confirmation token for a tenant and mode. The
// returned opaque string is PREFIX.tokenId.secret; the repository keeps
// only the secret's SHA-256 hash.
func (s *TokenStore) Generate(ctx context.Context, tenantID string, mode Mode) (IssuedToken, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return IssuedToken{}, fmt.Errorf("generate token secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)
	tokenID := uuid.NewString()

	now := s.now().UTC()
	record := TokenRecord{
		TokenID:      tokenID,
		TenantID:     tenantID,
		Mode:         mode,
		IssuedAt:     now,
		ExpiresAt:    now.Add(TokenTTL),
		TokenHashHex: hashSecret(secret),
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return IssuedToken{}, fmt.Errorf("store token record: %w", err)
	}

	return IssuedToken{
		Token:     fmt.Sprintf("%s.%s.%s", TokenPrefix, tokenID, secret),
		TokenID:   tokenID,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// Consume validates a token against a tenant and mode and marks it used.
// Validation order is fixed; every failure is specific and non-destructive.
func (s *TokenStore) Consume(ctx context.Context, token, tenantID string, mode Mode, confirmedAt time.Time) *errors.AppError {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != TokenPrefix {
		return errors.MissingConfirmation("confirmation token is malformed")
	}
	tokenID, secret := parts[1], parts[2]

	record, err := s.repo.Get(ctx, tokenID)
	if err != nil {
		return errors.DatabaseError("Failed to load confirmation token", err)
	}
	if record == nil {
		return errors.MissingConfirmation("confirmation token is unknown")
	}

	now := s.now().UTC()
	if now.After(record.ExpiresAt) {
		return errors.MissingConfirmation("confirmation token has expired")
	}
	if record.Mode != mode {
		return errors.MissingConfirmation("confirmation token was issued for a different mode")
	}
	if record.TenantID != tenantID {
		return errors.MissingConfirmation("confirmation token was issued for a different tenant")
	}
	if record.ConsumedAt != nil {
		return errors.MissingConfirmation("confirmation token has already been used")
	}

	confirmedAt = confirmedAt.UTC()
	if confirmedAt.Before(record.IssuedAt) || confirmedAt.After(record.ExpiresAt) {
		return errors.MissingConfirmation("confirmation timestamp is outside the token's validity window")
	}
	if confirmedAt.After(now.Add(clockSkewTolerance)) {
		return errors.MissingConfirmation("confirmation timestamp is too far in the future")
	}

	suppliedHash := hashSecret(secret)
	if subtle.ConstantTimeCompare([]byte(suppliedHash), []byte(record.TokenHashHex)) != 1 {
		return errors.MissingConfirmation("confirmation token secret does not match")
	}

	// The conditional update is the replay barrier: a concurrent consume
	// of the same token loses here, not at the read above
	ok, err := s.repo.MarkConsumed(ctx, tokenID, now)
	if err != nil {
		return errors.DatabaseError("Failed to consume confirmation token", err)
	}
	if !ok {
		return errors.MissingConfirmation("confirmation token has already been used")
	}
	return nil
}

// Sweep removes consumed and expired tokens; returns how many were removed
func (s *TokenStore) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteStale(ctx, s.now().UTC())
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
