package manifest

import "time"

// StepStatus is the terminal status of one manifest step
type StepStatus string

const (
	StepSuccess StepStatus = "SUCCESS"
	StepFailed  StepStatus = "FAILED"
	StepSkipped StepStatus = "SKIPPED"
	StepBlocked StepStatus = "BLOCKED"
)

// PipelineStatus is the terminal status of one pipeline run
type PipelineStatus string

const (
	PipelineSuccess PipelineStatus = "SUCCESS"
	PipelineFailed  PipelineStatus = "FAILED"
	PipelineBlocked PipelineStatus = "BLOCKED"
)

// Process exit codes for pipeline outcomes. 78 mirrors EX_CONFIG from
// sysexits: the environment is not in a state the command may run against.
const (
	ExitSuccess = 0
	ExitFailed  = 1
	ExitBlocked = 78
)

// Well-known step names
const (
	StepValidateInput = "VALIDATE_INPUT"
	StepExecute       = "EXECUTE"
)

// StepError captures why a step failed or blocked
type StepError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Step is one named unit of a pipeline run, closed exactly once
type Step struct {
	Name       string                 `json:"name"`
	Status     StepStatus             `json:"status"`
	Summary    string                 `json:"summary,omitempty"`
	Error      *StepError             `json:"error,omitempty"`
	Metrics    map[string]interface{} `json:"metrics,omitempty"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
}

// TenantResolution records which tenant the run resolved to
type TenantResolution struct {
	TenantID string `json:"tenant_id"`
	Resolved bool   `json:"resolved"`
	Source   string `json:"source,omitempty"`
}

// Results distinguishes planned write counts (computed even in dry-run)
// from applied counts (zero when dry-run)
type Results struct {
	PlannedWrites int  `json:"planned_writes"`
	AppliedWrites int  `json:"applied_writes"`
	DryRun        bool `json:"dry_run"`
}

// Manifest is the structured audit record of one command execution.
// It is built incrementally during the run and immutable afterwards.
type Manifest struct {
	Command       string           `json:"command"`
	RunID         string           `json:"run_id"`
	CorrelationID string           `json:"correlation_id"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	Tenant        TenantResolution `json:"tenant"`
	Steps         []Step           `json:"steps"`
	Results       Results          `json:"results"`
	Warnings      []string         `json:"warnings,omitempty"`
	Errors        []string         `json:"errors,omitempty"`
}

// PipelineResult is the terminal outcome of one pipeline run. Warnings
// collected here happened after the manifest was sealed, such as a failed
// manifest write; they never alter the manifest or the derived status.
type PipelineResult struct {
	Status       PipelineStatus `json:"status"`
	ExitCode     int            `json:"exit_code"`
	Manifest     *Manifest      `json:"manifest"`
	ManifestPath string         `json:"manifest_path,omitempty"`
	Warnings     []string       `json:"warnings,omitempty"`
}

// DeriveStatus computes the pipeline status from step outcomes: any BLOCKED
// step wins, then any FAILED, else SUCCESS
func DeriveStatus(steps []Step) (PipelineStatus, int) {
	failed := false
	for _, s := range steps {
		switch s.Status {
		case StepBlocked:
			return PipelineBlocked, ExitBlocked
		case StepFailed:
			failed = true
		}
	}
	if failed {
		return PipelineFailed, ExitFailed
	}
	return PipelineSuccess, ExitSuccess
}
