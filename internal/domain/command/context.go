package command

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/adlytica/toolkit/internal/pkg/logger"
)

// ExecutionContext is the immutable per-run bundle handed to every step of
// one command execution. It is never mutated; With* methods return copies.
type ExecutionContext struct {
	Tenant        TenantID
	CorrelationID string
	RunID         string
	StartTime     time.Time
	DryRun        bool
	Verbose       bool
	Logger        *logger.Logger
}

// NewExecutionContext creates the context for one command invocation
func NewExecutionContext(tenant TenantID, dryRun, verbose bool, log *logger.Logger) *ExecutionContext {
	runID := ulid.Make().String()
	correlationID := uuid.NewString()

	return &ExecutionContext{
		Tenant:        tenant,
		CorrelationID: correlationID,
		RunID:         runID,
		StartTime:     time.Now().UTC(),
		DryRun:        dryRun,
		Verbose:       verbose,
		Logger: log.WithFields(map[string]interface{}{
			"tenant":         tenant.String(),
			"run_id":         runID,
			"correlation_id": correlationID,
		}),
	}
}

// WithDryRun returns a copy with the dry-run flag set
func (c *ExecutionContext) WithDryRun(dryRun bool) *ExecutionContext {
	clone := *c
	clone.DryRun = dryRun
	return &clone
}

// WithCorrelationID returns a copy carrying a caller-supplied correlation id
func (c *ExecutionContext) WithCorrelationID(id string) *ExecutionContext {
	clone := *c
	clone.CorrelationID = id
	clone.Logger = c.Logger.With("correlation_id", id)
	return &clone
}
