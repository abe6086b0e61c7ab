package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/domain/manifest"
	apperrors "github.com/adlytica/toolkit/internal/pkg/errors"
	"github.com/adlytica/toolkit/internal/pkg/logger"
	"github.com/adlytica/toolkit/internal/testutil"
)

type countedReport struct {
	planned int
	applied int
}

func (r countedReport) PlannedWrites() int { return r.planned }
func (r countedReport) AppliedWrites() int { return r.applied }

func okHandler(value interface{}) command.Handler {
	return func(ctx context.Context, run *command.ExecutionContext, params interface{}) command.Result {
		return command.Ok(value)
	}
}

func testRun(t *testing.T) *command.ExecutionContext {
	t.Helper()
	tenant, err := command.ParseTenantID("acme")
	if err != nil {
		t.Fatalf("ParseTenantID() error = %v", err)
	}
	return command.NewExecutionContext(tenant, false, false, logger.Nop())
}

func newTestSafety(t *testing.T, parity ParityChecker, limit int, register func(r *command.Registry)) *Safety {
	t.Helper()
	registry := command.NewRegistry()
	register(registry)
	return NewSafety(SafetyConfig{
		Registry: registry,
		Throttle: NewThrottle(limit),
		Parity:   parity,
	})
}

func TestExecuteUnknownCommand(t *testing.T) {
	safety := newTestSafety(t, &testutil.MockParityChecker{}, 2, func(r *command.Registry) {})

	outcome := safety.Execute(context.Background(), ExecuteRequest{
		CommandName: "nonexistent",
		Run:         testRun(t),
	})
	if outcome.Result.IsOk() {
		t.Fatal("Execute() succeeded for an unknown command")
	}
	if outcome.Result.Err().Code != apperrors.ErrCodeValidation {
		t.Errorf("Code = %s, want %s", outcome.Result.Err().Code, apperrors.ErrCodeValidation)
	}
}

func TestExecuteCoveredCommandSuccess(t *testing.T) {
	parity := &testutil.MockParityChecker{}
	safety := newTestSafety(t, parity, 2, func(r *command.Registry) {
		r.MustRegister(command.Command{Name: command.NameSeed},
			okHandler(countedReport{planned: 90, applied: 90}))
	})

	outcome := safety.Execute(context.Background(), ExecuteRequest{
		CommandName: command.NameSeed,
		Run:         testRun(t),
	})
	if !outcome.Result.IsOk() {
		t.Fatalf("Execute() error = %v", outcome.Result.Err())
	}
	if parity.Calls != 1 {
		t.Errorf("parity checker called %d times, want 1", parity.Calls)
	}

	pr := outcome.Pipeline
	if pr == nil {
		t.Fatal("Pipeline result is nil for a covered command")
	}
	if pr.Status != manifest.PipelineSuccess || pr.ExitCode != manifest.ExitSuccess {
		t.Errorf("pipeline = %s/%d, want SUCCESS/0", pr.Status, pr.ExitCode)
	}
	if len(pr.Manifest.Steps) != 2 {
		t.Fatalf("manifest has %d steps, want 2", len(pr.Manifest.Steps))
	}
	if pr.Manifest.Steps[0].Name != manifest.StepValidateInput || pr.Manifest.Steps[1].Name != manifest.StepExecute {
		t.Errorf("step order = %s, %s", pr.Manifest.Steps[0].Name, pr.Manifest.Steps[1].Name)
	}
	if pr.Manifest.Results.PlannedWrites != 90 || pr.Manifest.Results.AppliedWrites != 90 {
		t.Errorf("results = %+v, want planned/applied 90", pr.Manifest.Results)
	}
}

func TestExecutePreflightBlocksHandler(t *testing.T) {
	parity := &testutil.MockParityChecker{
		Err: apperrors.SchemaParity("campaign_metrics is missing column source_tag", nil),
	}
	handlerCalled := 0
	safety := newTestSafety(t, parity, 2, func(r *command.Registry) {
		r.MustRegister(command.Command{Name: command.NameSeed},
			func(ctx context.Context, run *command.ExecutionContext, params interface{}) command.Result {
				handlerCalled++
				return command.Ok(nil)
			})
	})

	outcome := safety.Execute(context.Background(), ExecuteRequest{
		CommandName: command.NameSeed,
		Run:         testRun(t),
	})
	if handlerCalled != 0 {
		t.Errorf("handler called %d times after preflight failure, want 0", handlerCalled)
	}
	if outcome.Result.IsOk() {
		t.Fatal("Execute() succeeded despite preflight failure")
	}
	if outcome.Result.Err().Code != apperrors.ErrCodeSchemaParity {
		t.Errorf("Code = %s, want %s", outcome.Result.Err().Code, apperrors.ErrCodeSchemaParity)
	}

	pr := outcome.Pipeline
	if pr.Status != manifest.PipelineBlocked || pr.ExitCode != manifest.ExitBlocked {
		t.Errorf("pipeline = %s/%d, want BLOCKED/78", pr.Status, pr.ExitCode)
	}
	if pr.Manifest.Results.AppliedWrites != 0 {
		t.Errorf("AppliedWrites = %d, want 0", pr.Manifest.Results.AppliedWrites)
	}
	if len(pr.Manifest.Steps) != 1 {
		t.Errorf("manifest has %d steps, want only the preflight step", len(pr.Manifest.Steps))
	}
}

func TestExecuteSkipPreflight(t *testing.T) {
	parity := &testutil.MockParityChecker{Err: errors.New("should not be called")}
	safety := newTestSafety(t, parity, 2, func(r *command.Registry) {
		r.MustRegister(command.Command{Name: command.NameSeed}, okHandler(nil))
	})

	outcome := safety.Execute(context.Background(), ExecuteRequest{
		CommandName:   command.NameSeed,
		Run:           testRun(t),
		SkipPreflight: true,
	})
	if !outcome.Result.IsOk() {
		t.Fatalf("Execute() error = %v", outcome.Result.Err())
	}
	if parity.Calls != 0 {
		t.Errorf("parity checker called %d times with SkipPreflight, want 0", parity.Calls)
	}
	if got := outcome.Pipeline.Manifest.Steps[0].Status; got != manifest.StepSkipped {
		t.Errorf("preflight step status = %s, want SKIPPED", got)
	}
}

func TestExecuteHandlerFailure(t *testing.T) {
	safety := newTestSafety(t, &testutil.MockParityChecker{}, 2, func(r *command.Registry) {
		r.MustRegister(command.Command{Name: command.NameSeed},
			func(ctx context.Context, run *command.ExecutionContext, params interface{}) command.Result {
				return command.Fail(apperrors.HygieneViolation("tenant holds real campaign data"))
			})
	})

	outcome := safety.Execute(context.Background(), ExecuteRequest{
		CommandName: command.NameSeed,
		Run:         testRun(t),
	})
	if outcome.Result.IsOk() {
		t.Fatal("Execute() succeeded despite handler failure")
	}
	if outcome.Result.Err().Code != apperrors.ErrCodeHygieneViolation {
		t.Errorf("Code = %s, want %s", outcome.Result.Err().Code, apperrors.ErrCodeHygieneViolation)
	}
	pr := outcome.Pipeline
	if pr.Status != manifest.PipelineFailed || pr.ExitCode != manifest.ExitFailed {
		t.Errorf("pipeline = %s/%d, want FAILED/1", pr.Status, pr.ExitCode)
	}
}

func TestExecuteHandlerPanicBecomesUnexpectedError(t *testing.T) {
	safety := newTestSafety(t, &testutil.MockParityChecker{}, 2, func(r *command.Registry) {
		r.MustRegister(command.Command{Name: command.NameSeed},
			func(ctx context.Context, run *command.ExecutionContext, params interface{}) command.Result {
				panic("nil map write")
			})
	})

	outcome := safety.Execute(context.Background(), ExecuteRequest{
		CommandName: command.NameSeed,
		Run:         testRun(t),
	})
	if outcome.Result.IsOk() {
		t.Fatal("Execute() succeeded despite handler panic")
	}
	if outcome.Result.Err().Code != apperrors.ErrCodeUnexpected {
		t.Errorf("Code = %s, want %s", outcome.Result.Err().Code, apperrors.ErrCodeUnexpected)
	}
	if outcome.Pipeline.Status != manifest.PipelineFailed {
		t.Errorf("pipeline status = %s, want FAILED", outcome.Pipeline.Status)
	}
}

func TestExecuteThrottleOverflow(t *testing.T) {
	handlerCalled := 0
	safety := newTestSafety(t, &testutil.MockParityChecker{}, 1, func(r *command.Registry) {
		r.MustRegister(command.Command{Name: command.NameSeed},
			func(ctx context.Context, run *command.ExecutionContext, params interface{}) command.Result {
				handlerCalled++
				return command.Ok(nil)
			})
	})

	// Hold the only slot so the next execution is rejected
	if !safety.throttle.TryAcquire() {
		t.Fatal("TryAcquire() failed on an empty throttle")
	}
	defer safety.throttle.Release()

	outcome := safety.Execute(context.Background(), ExecuteRequest{
		CommandName: command.NameSeed,
		Run:         testRun(t),
	})
	if handlerCalled != 0 {
		t.Errorf("handler called %d times under throttle rejection, want 0", handlerCalled)
	}
	if outcome.Result.IsOk() {
		t.Fatal("Execute() succeeded at throttle capacity")
	}
	if outcome.Result.Err().Code != apperrors.ErrCodeConcurrencyLimit {
		t.Errorf("Code = %s, want %s", outcome.Result.Err().Code, apperrors.ErrCodeConcurrencyLimit)
	}
	if outcome.Pipeline != nil {
		t.Error("throttle rejection produced a manifest, want none")
	}
}

func TestExecuteUncoveredCommandBypassesPipeline(t *testing.T) {
	parity := &testutil.MockParityChecker{Err: errors.New("parity must not run")}
	safety := newTestSafety(t, parity, 2, func(r *command.Registry) {
		r.MustRegister(command.Command{Name: command.NameVerifyScenario}, okHandler("verified"))
	})

	outcome := safety.Execute(context.Background(), ExecuteRequest{
		CommandName: command.NameVerifyScenario,
		Run:         testRun(t),
	})
	if !outcome.Result.IsOk() {
		t.Fatalf("Execute() error = %v", outcome.Result.Err())
	}
	if outcome.Pipeline != nil {
		t.Error("read-only command produced a manifest, want direct invocation")
	}
	if parity.Calls != 0 {
		t.Errorf("parity checker called %d times for an uncovered command, want 0", parity.Calls)
	}
}
