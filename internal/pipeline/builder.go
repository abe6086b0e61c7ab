package pipeline

import (
	"fmt"
	"time"

	"github.com/adlytica/toolkit/internal/domain/manifest"
)

// Builder assembles one manifest during a pipeline run. It is used by a
// single goroutine; steps run strictly sequentially.
type Builder struct {
	m    *manifest.Manifest
	open *StepHandle
}

// StepHandle is an open manifest step awaiting exactly one Close
type StepHandle struct {
	b      *Builder
	step   manifest.Step
	closed bool
}

// StepClose carries the terminal state of a step
type StepClose struct {
	Status  manifest.StepStatus
	Summary string
	Error   *manifest.StepError
	Metrics map[string]interface{}
}

func newBuilder(commandName, runID, correlationID string, startedAt time.Time) *Builder {
	return &Builder{
		m: &manifest.Manifest{
			Command:       commandName,
			RunID:         runID,
			CorrelationID: correlationID,
			StartedAt:     startedAt,
		},
	}
}

// StartStep opens a named step. The previous step must have been closed;
// an open step at that point is a programming error.
func (b *Builder) StartStep(name string) *StepHandle {
	if b.open != nil && !b.open.closed {
		panic(fmt.Sprintf("pipeline: step %q started while %q is still open", name, b.open.step.Name))
	}
	h := &StepHandle{
		b: b,
		step: manifest.Step{
			Name:      name,
			StartedAt: time.Now().UTC(),
		},
	}
	b.open = h
	return h
}

// Close closes the step exactly once; closing twice is a programming error
func (h *StepHandle) Close(c StepClose) {
	if h.closed {
		panic(fmt.Sprintf("pipeline: step %q closed twice", h.step.Name))
	}
	h.closed = true
	h.step.Status = c.Status
	h.step.Summary = c.Summary
	h.step.Error = c.Error
	h.step.Metrics = c.Metrics
	h.step.FinishedAt = time.Now().UTC()
	h.b.m.Steps = append(h.b.m.Steps, h.step)
}

// SetTenant records tenant resolution info on the manifest
func (b *Builder) SetTenant(t manifest.TenantResolution) {
	b.m.Tenant = t
}

// SetResults records the planned/applied write counts
func (b *Builder) SetResults(r manifest.Results) {
	b.m.Results = r
}

// AddWarning appends a run-level warning
func (b *Builder) AddWarning(w string) {
	b.m.Warnings = append(b.m.Warnings, w)
}

// AddError appends a run-level error message
func (b *Builder) AddError(e string) {
	b.m.Errors = append(b.m.Errors, e)
}

// finish seals the manifest and asserts no step was left open
func (b *Builder) finish() *manifest.Manifest {
	if b.open != nil && !b.open.closed {
		panic(fmt.Sprintf("pipeline: step %q left open at pipeline end", b.open.step.Name))
	}
	b.m.FinishedAt = time.Now().UTC()
	return b.m
}
