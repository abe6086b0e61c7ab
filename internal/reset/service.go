package reset

import (
	"context"
	"time"

	"github.com/adlytica/toolkit/internal/pkg/errors"
	"github.com/adlytica/toolkit/internal/pkg/logger"
)

// Counts reports rows deleted per table group
type Counts struct {
	Metrics         int64 `json:"metrics"`
	TriggeredAlerts int64 `json:"triggered_alerts"`
	AlertHistory    int64 `json:"alert_history"`
	Campaigns       int64 `json:"campaigns"`
	AlertRules      int64 `json:"alert_rules"`
}

// Total sums all deleted rows
func (c Counts) Total() int64 {
	return c.Metrics + c.TriggeredAlerts + c.AlertHistory + c.Campaigns + c.AlertRules
}

// Repository performs the actual multi-table deletes, each call one atomic
// transaction. Tenant identity, user accounts and integration configuration
// are never touched: the repository enumerates operational tables
// explicitly and must not cascade from the tenants table.
type Repository interface {
	// DeleteOperationalData removes metrics, triggered-alert state and
	// alert history for a tenant in one transaction
	DeleteOperationalData(ctx context.Context, tenantID string) (Counts, error)

	// DeleteDefinitions additionally removes campaign and alert-rule
	// definitions in one transaction
	DeleteDefinitions(ctx context.Context, tenantID string) (Counts, error)

	// PlanOperationalData counts what DeleteOperationalData would remove
	PlanOperationalData(ctx context.Context, tenantID string) (Counts, error)

	// PlanDefinitions counts what DeleteDefinitions would remove
	PlanDefinitions(ctx context.Context, tenantID string) (Counts, error)
}

// Service orchestrates tenant resets behind the confirmation-token gate
type Service struct {
	repo   Repository
	tokens *TokenStore
	logger *logger.Logger
}

// NewService creates a reset service
func NewService(repo Repository, tokens *TokenStore, log *logger.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: log}
}

// GenerateConfirmationToken mints a one-time token for a hard reset.
// Issuance is also a natural point to clear stale records.
func (s *Service) GenerateConfirmationToken(ctx context.Context, tenantID string, mode Mode) (IssuedToken, error) {
	s.SweepTokens(ctx)

	issued, err := s.tokens.Generate(ctx, tenantID, mode)
	if err != nil {
		return IssuedToken{}, err
	}
	s.logger.WithFields(map[string]interface{}{
		"tenant":   tenantID,
		"token_id": issued.TokenID,
		"mode":     string(mode),
	}).Info("confirmation token issued")
	return issued, nil
}

// PartialReset deletes only operational rows; no token required
func (s *Service) PartialReset(ctx context.Context, tenantID string, dryRun bool) (Counts, *errors.AppError) {
	if dryRun {
		counts, err := s.repo.PlanOperationalData(ctx, tenantID)
		if err != nil {
			return Counts{}, errors.ResetFailed("failed to plan partial reset", err)
		}
		return counts, nil
	}

	counts, err := s.repo.DeleteOperationalData(ctx, tenantID)
	if err != nil {
		return Counts{}, errors.ResetFailed("partial reset failed", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"tenant":       tenantID,
		"rows_deleted": counts.Total(),
	}).Info("partial reset completed")
	return counts, nil
}

// HardReset deletes operational rows plus campaign and alert-rule
// definitions. It requires a valid one-time confirmation token, which is
// consumed before the delete transaction starts so a failing delete cannot
// make the token replayable.
func (s *Service) HardReset(ctx context.Context, tenantID, confirmation string, confirmedAt time.Time, dryRun bool) (Counts, *errors.AppError) {
	if confirmation == "" {
		return Counts{}, errors.MissingConfirmation("hard reset requires a confirmation token")
	}

	if dryRun {
		// Dry-run previews the plan without consuming the token
		counts, err := s.repo.PlanDefinitions(ctx, tenantID)
		if err != nil {
			return Counts{}, errors.ResetFailed("failed to plan hard reset", err)
		}
		return counts, nil
	}

	if appErr := s.tokens.Consume(ctx, confirmation, tenantID, ModeHard, confirmedAt); appErr != nil {
		return Counts{}, appErr
	}

	counts, err := s.repo.DeleteDefinitions(ctx, tenantID)
	if err != nil {
		return Counts{}, errors.ResetFailed("hard reset failed", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"tenant":       tenantID,
		"rows_deleted": counts.Total(),
	}).Info("hard reset completed")
	return counts, nil
}

// SweepTokens runs one TTL sweep over the token store. Sweep failures are
// logged and swallowed; expiry is always re-checked at consume time.
func (s *Service) SweepTokens(ctx context.Context) int64 {
	removed, err := s.tokens.Sweep(ctx)
	if err != nil {
		s.logger.Debugf("token sweep failed: %v", err)
		return 0
	}
	if removed > 0 {
		s.logger.Debugf("token sweep removed %d records", removed)
	}
	return removed
}
