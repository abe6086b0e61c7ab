package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/domain/metric"
	"github.com/adlytica/toolkit/internal/domain/scenario"
	"github.com/adlytica/toolkit/internal/pkg/errors"
	"github.com/adlytica/toolkit/internal/pkg/logger"
	"github.com/adlytica/toolkit/internal/pkg/validator"
	"github.com/adlytica/toolkit/internal/seeding"
)

// SeedParams are the parameters of the seed and seed-unified commands
type SeedParams struct {
	Scenario     string `json:"scenario" validate:"required"`
	Seed         int64  `json:"seed"`
	Mode         string `json:"mode" validate:"required,oneof=GENERATED FIXTURE HYBRID"`
	Days         int    `json:"days" validate:"gte=0,lte=365"`
	Platform     string `json:"platform,omitempty"`
	AllowUnclean bool   `json:"allow_unclean,omitempty"`
}

// SeedReport is the success value of a seed run. It implements
// pipeline.WriteReporter so planned/applied counts reach the manifest.
type SeedReport struct {
	Scenario   string `json:"scenario"`
	Seed       int64  `json:"seed"`
	Mode       string `json:"mode"`
	RowsPlan   int    `json:"rows_planned"`
	RowsWrite  int    `json:"rows_applied"`
	RowsPurged int64  `json:"rows_purged"`
	Checksum   string `json:"checksum"`
	Verified   *bool  `json:"verified,omitempty"`
}

func (r SeedReport) PlannedWrites() int { return r.RowsPlan }
func (r SeedReport) AppliedWrites() int { return r.RowsWrite }

// SeedService implements the deterministic seeding commands
type SeedService struct {
	metrics  metric.Repository
	loader   *scenario.Loader
	fixtures *scenario.FixtureStore
	validate *validator.Validator
	logger   *logger.Logger
}

// NewSeedService creates a seed service
func NewSeedService(metrics metric.Repository, loader *scenario.Loader, fixtures *scenario.FixtureStore, v *validator.Validator, log *logger.Logger) *SeedService {
	return &SeedService{
		metrics:  metrics,
		loader:   loader,
		fixtures: fixtures,
		validate: v,
		logger:   log,
	}
}

// Handle executes one seed command
func (s *SeedService) Handle(ctx context.Context, run *command.ExecutionContext, raw interface{}) command.Result {
	params, ok := raw.(SeedParams)
	if !ok {
		return command.Fail(errors.Validation("seed: unexpected parameter type"))
	}
	if errs := s.validate.Validate(params); len(errs) > 0 {
		return command.Fail(errors.ValidationWithDetails("seed: invalid parameters", errs))
	}
	mode, ok := scenario.ParseMode(params.Mode)
	if !ok {
		return command.Fail(errors.Validation(fmt.Sprintf("seed: unknown mode %q", params.Mode)))
	}

	spec, err := s.loader.Load(params.Scenario)
	if err != nil {
		return command.Fail(errors.Validation(err.Error()))
	}
	spec = narrowSpec(spec, params)

	// Hygiene check: bulk synthetic writes are refused when the tenant
	// already holds rows that are not mock-tagged
	if !params.AllowUnclean && mode != scenario.ModeFixture {
		realRows, err := s.metrics.CountRealRows(ctx, run.Tenant.String())
		if err != nil {
			return command.Fail(errors.DatabaseError("seed: hygiene check failed", err))
		}
		if realRows > 0 {
			return command.Fail(errors.HygieneViolation(fmt.Sprintf(
				"tenant %s holds %d non-synthetic metric rows; pass allow-unclean to override",
				run.Tenant, realRows)))
		}
	}

	switch mode {
	case scenario.ModeFixture:
		return s.handleFixture(params, spec)
	case scenario.ModeGenerated:
		return s.handleGenerated(ctx, run, params, spec, nil)
	default: // HYBRID
		fixture, err := s.fixtures.Load(spec.Name, params.Seed)
		if err != nil {
			return command.Fail(errors.VerificationFailed(
				fmt.Sprintf("seed: golden fixture unavailable: %v", err)))
		}
		return s.handleGenerated(ctx, run, params, spec, fixture)
	}
}

// handleFixture loads and reports a golden fixture without writing
func (s *SeedService) handleFixture(params SeedParams, spec *scenario.Spec) command.Result {
	fixture, err := s.fixtures.Load(spec.Name, params.Seed)
	if err != nil {
		return command.Fail(errors.VerificationFailed(
			fmt.Sprintf("seed: golden fixture unavailable: %v", err)))
	}
	return command.Ok(SeedReport{
		Scenario: spec.Name,
		Seed:     params.Seed,
		Mode:     string(scenario.ModeFixture),
		RowsPlan: fixture.Shape.RowCount,
		Checksum: fixture.Checksum,
	})
}

// handleGenerated synthesizes rows; with a fixture present it verifies the
// generated shape before any write is allowed
func (s *SeedService) handleGenerated(ctx context.Context, run *command.ExecutionContext, params SeedParams, spec *scenario.Spec, fixture *scenario.Fixture) command.Result {
	out := seeding.Generate(seeding.Input{
		TenantID:   run.Tenant.String(),
		ScenarioID: spec.Name,
		Seed:       params.Seed,
		Spec:       spec,
	})

	checksum, err := seeding.Checksum(out.Shape)
	if err != nil {
		return command.Fail(errors.Unexpected("seed: checksum computation failed", err))
	}

	report := SeedReport{
		Scenario: spec.Name,
		Seed:     params.Seed,
		Mode:     string(scenario.ModeGenerated),
		RowsPlan: len(out.Snapshots),
		Checksum: checksum,
	}

	if fixture != nil {
		report.Mode = string(scenario.ModeHybrid)
		verdict, err := seeding.VerifyAgainstFixture(out.Shape, fixture)
		if err != nil {
			return command.Fail(errors.Unexpected("seed: verification failed to run", err))
		}
		accepted := verdict.Accepted()
		report.Verified = &accepted
		if !accepted {
			return command.Fail(errors.VerificationFailed(verdict.Describe()))
		}
	}

	if run.DryRun {
		run.Logger.Infof("dry-run: %d rows planned for scenario %s, nothing written", report.RowsPlan, spec.Name)
		return command.Ok(report)
	}

	// Idempotency: purge previous rows with the same tag per platform, then
	// recreate, so identical reruns converge instead of accumulating
	for _, platform := range spec.Platforms {
		purged, err := s.metrics.DeleteBySourceTag(ctx, run.Tenant.String(), seeding.SourceTag, platform)
		if err != nil {
			return command.Fail(errors.DatabaseError("seed: purge of prior mock rows failed", err))
		}
		report.RowsPurged += purged
	}

	if err := s.metrics.InsertSnapshots(ctx, out.Snapshots); err != nil {
		return command.Fail(errors.DatabaseError("seed: snapshot insert failed", err))
	}
	report.RowsWrite = len(out.Snapshots)

	run.Logger.WithFields(map[string]interface{}{
		"scenario": spec.Name,
		"seed":     params.Seed,
		"rows":     report.RowsWrite,
		"purged":   report.RowsPurged,
		"checksum": checksum,
	}).Info("seed completed")
	return command.Ok(report)
}

// CaptureFixture generates and stores a golden fixture for a scenario+seed
func (s *SeedService) CaptureFixture(tenantID, scenarioName string, seed int64) (*scenario.Fixture, error) {
	spec, err := s.loader.Load(scenarioName)
	if err != nil {
		return nil, err
	}
	out := seeding.Generate(seeding.Input{
		TenantID:   tenantID,
		ScenarioID: spec.Name,
		Seed:       seed,
		Spec:       spec,
	})
	fixture, err := seeding.CaptureFixture(out.Shape)
	if err != nil {
		return nil, err
	}
	fixture.GeneratedAt = time.Now().UTC()
	if err := s.fixtures.Save(fixture); err != nil {
		return nil, err
	}
	return fixture, nil
}

// narrowSpec applies per-invocation overrides without mutating the cached spec
func narrowSpec(spec *scenario.Spec, params SeedParams) *scenario.Spec {
	clone := *spec
	clone.Platforms = append([]string(nil), spec.Platforms...)
	if params.Days > 0 {
		clone.Days = params.Days
	}
	if params.Platform != "" {
		clone.Platforms = []string{params.Platform}
	}
	return &clone
}
