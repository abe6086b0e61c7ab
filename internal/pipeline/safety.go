package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/domain/manifest"
	"github.com/adlytica/toolkit/internal/pkg/errors"
	"github.com/adlytica/toolkit/internal/pkg/metrics"
)

// WriteReporter is implemented by handler results that performed (or
// planned) datastore writes; the counts feed the manifest results block
type WriteReporter interface {
	PlannedWrites() int
	AppliedWrites() int
}

// ParityChecker runs the schema-parity preflight against the target datastore
type ParityChecker interface {
	AssertSchemaParity(ctx context.Context) error
}

// manifestCovered is the set of command names the safety manifest applies to.
// Everything else bypasses the pipeline entirely.
var manifestCovered = map[command.Name]bool{
	command.NameSeed:          true,
	command.NameSeedUnified:   true,
	command.NameAlertScenario: true,
	command.NameReset:         true,
	command.NameResetHard:     true,
}

// SafetyConfig wires the safety execution wrapper
type SafetyConfig struct {
	Registry    *command.Registry
	Throttle    *Throttle
	Parity      ParityChecker
	ManifestDir string
}

// Safety is the execution wrapper that decides, per command, whether the
// manifest pipeline and its preflight apply
type Safety struct {
	registry    *command.Registry
	throttle    *Throttle
	parity      ParityChecker
	manifestDir string
}

// NewSafety creates the safety execution wrapper
func NewSafety(cfg SafetyConfig) *Safety {
	return &Safety{
		registry:    cfg.Registry,
		throttle:    cfg.Throttle,
		parity:      cfg.Parity,
		manifestDir: cfg.ManifestDir,
	}
}

// ExecuteRequest is one command invocation
type ExecuteRequest struct {
	CommandName   command.Name
	Run           *command.ExecutionContext
	Params        interface{}
	SkipPreflight bool
}

// ExecuteOutcome pairs the caller-facing result with the audit artifact
type ExecuteOutcome struct {
	Result   command.Result
	Pipeline *manifest.PipelineResult
}

// Execute runs one command through the safety pipeline. Commands outside the
// manifest-covered set call their handler directly; covered commands get the
// throttle, the schema-parity preflight and a full manifest.
func (s *Safety) Execute(ctx context.Context, req ExecuteRequest) ExecuteOutcome {
	started := time.Now()
	reg, ok := s.registry.Resolve(req.CommandName)
	if !ok {
		return ExecuteOutcome{Result: command.Fail(
			errors.Validation(fmt.Sprintf("unknown command: %s", req.CommandName)))}
	}

	if !manifestCovered[req.CommandName] {
		res := s.invoke(ctx, reg.Handler, req.Run, req.Params)
		metrics.RecordCommandExecution(req.CommandName.String(), statusLabel(res), time.Since(started))
		return ExecuteOutcome{Result: res}
	}

	if !s.throttle.TryAcquire() {
		err := errors.ConcurrencyLimit(fmt.Sprintf(
			"too many concurrent commands (limit %d), retry later", s.throttle.Limit()))
		metrics.RecordCommandExecution(req.CommandName.String(), "rejected", time.Since(started))
		return ExecuteOutcome{Result: command.Fail(err)}
	}
	defer s.throttle.Release()

	pr := ExecuteWithManifest(Config{
		CommandName: req.CommandName.String(),
		Run:         req.Run,
		ManifestDir: s.manifestDir,
	}, func(b *Builder) {
		s.runSteps(ctx, b, reg.Handler, req)
	})

	res := resultFor(pr)
	metrics.RecordCommandExecution(req.CommandName.String(), string(pr.Status), time.Since(started))
	return ExecuteOutcome{Result: res, Pipeline: &pr}
}

func (s *Safety) runSteps(ctx context.Context, b *Builder, handler command.Handler, req ExecuteRequest) {
	validate := b.StartStep(manifest.StepValidateInput)
	if req.SkipPreflight {
		validate.Close(StepClose{
			Status:  manifest.StepSkipped,
			Summary: "schema-parity preflight skipped by request",
		})
	} else if err := s.parity.AssertSchemaParity(ctx); err != nil {
		metrics.RecordPreflightBlock()
		validate.Close(StepClose{
			Status:  manifest.StepBlocked,
			Summary: "schema-parity preflight failed",
			Error: &manifest.StepError{
				Code:    errors.ErrCodeSchemaParity,
				Message: err.Error(),
			},
		})
		b.AddError(err.Error())
		return
	} else {
		validate.Close(StepClose{
			Status:  manifest.StepSuccess,
			Summary: "schema parity verified",
		})
	}

	execute := b.StartStep(manifest.StepExecute)
	res := s.invoke(ctx, handler, req.Run, req.Params)
	if res.IsOk() {
		if rep, ok := res.Value().(WriteReporter); ok {
			b.SetResults(manifest.Results{
				PlannedWrites: rep.PlannedWrites(),
				AppliedWrites: rep.AppliedWrites(),
				DryRun:        req.Run.DryRun,
			})
		}
		execute.Close(StepClose{
			Status:  manifest.StepSuccess,
			Summary: "command executed",
			Metrics: resultMetrics(res.Value()),
		})
		return
	}

	appErr := res.Err()
	execute.Close(StepClose{
		Status:  manifest.StepFailed,
		Summary: "command execution failed",
		Error: &manifest.StepError{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
	b.AddError(appErr.Error())
}

// invoke calls the handler, converting panics into UNEXPECTED_ERROR failures
func (s *Safety) invoke(ctx context.Context, handler command.Handler, run *command.ExecutionContext, params interface{}) (res command.Result) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Unexpected("command panicked", fmt.Errorf("%v", r))
			run.Logger.ErrorWithErr(err, "recovered panic during command execution")
			res = command.Fail(err)
		}
	}()
	return handler(ctx, run, params)
}

// resultFor translates the pipeline outcome into a typed Result for the
// caller. A BLOCKED pipeline is distinguished by which step blocked: the
// preflight step means a schema-parity violation, anything else a generic
// safety block.
func resultFor(pr manifest.PipelineResult) command.Result {
	switch pr.Status {
	case manifest.PipelineSuccess:
		return command.Ok(pr.Manifest)
	case manifest.PipelineBlocked:
		for _, step := range pr.Manifest.Steps {
			if step.Status == manifest.StepBlocked {
				if step.Name == manifest.StepValidateInput && step.Error != nil &&
					step.Error.Code == errors.ErrCodeSchemaParity {
					return command.Fail(errors.SchemaParity(step.Error.Message, nil))
				}
				msg := "command blocked by safety gate"
				if step.Error != nil {
					msg = step.Error.Message
				}
				return command.Fail(errors.SafetyBlock(msg))
			}
		}
		return command.Fail(errors.SafetyBlock("command blocked by safety gate"))
	default:
		for _, step := range pr.Manifest.Steps {
			if step.Status == manifest.StepFailed && step.Error != nil {
				return command.Fail(errors.New(step.Error.Code, step.Error.Message, 422))
			}
		}
		return command.Fail(errors.CommandFailed("pipeline failed", nil))
	}
}

func resultMetrics(value interface{}) map[string]interface{} {
	if value == nil {
		return nil
	}
	if m, ok := value.(map[string]interface{}); ok {
		return m
	}
	return nil
}

func statusLabel(res command.Result) string {
	if res.IsOk() {
		return "SUCCESS"
	}
	return "FAILED"
}
