package services

import (
	"context"
	"fmt"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/pkg/errors"
	"github.com/adlytica/toolkit/internal/seeding"
)

// VerifyParams are the parameters of the verify-scenario command
type VerifyParams struct {
	Scenario string `json:"scenario" validate:"required"`
	Seed     int64  `json:"seed"`
}

// VerifyReport is the success value of a verify-scenario run
type VerifyReport struct {
	Scenario string               `json:"scenario"`
	Seed     int64                `json:"seed"`
	Result   seeding.VerifyResult `json:"result"`
	Verdict  string               `json:"verdict"`
}

// HandleVerify recomputes a scenario's shape and compares it against the
// stored golden fixture. Read-only; it never touches the datastore.
func (s *SeedService) HandleVerify(ctx context.Context, run *command.ExecutionContext, raw interface{}) command.Result {
	params, ok := raw.(VerifyParams)
	if !ok {
		return command.Fail(errors.Validation("verify-scenario: unexpected parameter type"))
	}
	if errs := s.validate.Validate(params); len(errs) > 0 {
		return command.Fail(errors.ValidationWithDetails("verify-scenario: invalid parameters", errs))
	}

	spec, err := s.loader.Load(params.Scenario)
	if err != nil {
		return command.Fail(errors.Validation(err.Error()))
	}

	fixture, err := s.fixtures.Load(spec.Name, params.Seed)
	if err != nil {
		return command.Fail(errors.VerificationFailed(
			fmt.Sprintf("verify-scenario: golden fixture unavailable: %v", err)))
	}

	out := seeding.Generate(seeding.Input{
		TenantID:   run.Tenant.String(),
		ScenarioID: spec.Name,
		Seed:       params.Seed,
		Spec:       spec,
	})

	verdict, err := seeding.VerifyAgainstFixture(out.Shape, fixture)
	if err != nil {
		return command.Fail(errors.Unexpected("verify-scenario: verification failed to run", err))
	}
	if !verdict.Accepted() {
		return command.Fail(errors.VerificationFailed(verdict.Describe()))
	}

	return command.Ok(VerifyReport{
		Scenario: spec.Name,
		Seed:     params.Seed,
		Result:   verdict,
		Verdict:  verdict.Describe(),
	})
}
