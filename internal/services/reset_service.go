package services

import (
	"context"
	"time"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/pkg/errors"
	"github.com/adlytica/toolkit/internal/pkg/logger"
	"github.com/adlytica/toolkit/internal/pkg/validator"
	"github.com/adlytica/toolkit/internal/reset"
)

// ResetParams are the parameters of the reset and reset-hard commands
type ResetParams struct {
	Confirmation string    `json:"confirmation,omitempty"`
	ConfirmedAt  time.Time `json:"confirmed_at,omitempty"`
}

// ResetReport is the success value of a reset run
type ResetReport struct {
	Mode   string       `json:"mode"`
	Counts reset.Counts `json:"counts"`
}

func (r ResetReport) PlannedWrites() int { return int(r.Counts.Total()) }
func (r ResetReport) AppliedWrites() int {
	if r.Mode == "dry-run" {
		return 0
	}
	return int(r.Counts.Total())
}

// ResetCommandService adapts the reset service to the command surface
type ResetCommandService struct {
	resets   *reset.Service
	validate *validator.Validator
	logger   *logger.Logger
}

// NewResetCommandService creates a reset command service
func NewResetCommandService(resets *reset.Service, v *validator.Validator, log *logger.Logger) *ResetCommandService {
	return &ResetCommandService{resets: resets, validate: v, logger: log}
}

// HandlePartial deletes only operational rows, no token required
func (s *ResetCommandService) HandlePartial(ctx context.Context, run *command.ExecutionContext, raw interface{}) command.Result {
	counts, appErr := s.resets.PartialReset(ctx, run.Tenant.String(), run.DryRun)
	if appErr != nil {
		return command.Fail(appErr)
	}
	return command.Ok(ResetReport{Mode: modeLabel("partial", run.DryRun), Counts: counts})
}

// HandleHard additionally deletes definitions; the one-time confirmation
// token is validated and consumed before the delete transaction starts
func (s *ResetCommandService) HandleHard(ctx context.Context, run *command.ExecutionContext, raw interface{}) command.Result {
	params, ok := raw.(ResetParams)
	if !ok {
		return command.Fail(errors.Validation("reset-hard: unexpected parameter type"))
	}

	confirmedAt := params.ConfirmedAt
	if confirmedAt.IsZero() {
		confirmedAt = time.Now().UTC()
	}

	counts, appErr := s.resets.HardReset(ctx, run.Tenant.String(), params.Confirmation, confirmedAt, run.DryRun)
	if appErr != nil {
		return command.Fail(appErr)
	}
	return command.Ok(ResetReport{Mode: modeLabel("hard", run.DryRun), Counts: counts})
}

func modeLabel(mode string, dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return mode
}
