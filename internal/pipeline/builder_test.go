package pipeline

import (
	"testing"
	"time"

	"github.com/adlytica/toolkit/internal/domain/manifest"
)

func TestBuilderStepLifecycle(t *testing.T) {
	b := newBuilder("seed", "run-1", "corr-1", time.Now())

	first := b.StartStep(manifest.StepValidateInput)
	first.Close(StepClose{Status: manifest.StepSuccess, Summary: "ok"})

	second := b.StartStep(manifest.StepExecute)
	second.Close(StepClose{Status: manifest.StepFailed, Error: &manifest.StepError{Code: "X", Message: "boom"}})

	m := b.finish()
	if len(m.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(m.Steps))
	}
	if m.Steps[0].Status != manifest.StepSuccess {
		t.Errorf("step 0 status = %s, want SUCCESS", m.Steps[0].Status)
	}
	if m.Steps[1].Error == nil || m.Steps[1].Error.Message != "boom" {
		t.Errorf("step 1 error = %+v, want boom", m.Steps[1].Error)
	}
	if m.FinishedAt.IsZero() {
		t.Error("FinishedAt not set by finish()")
	}
}

func TestBuilderDoubleClosePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("closing a step twice did not panic")
		}
	}()

	b := newBuilder("seed", "run-1", "corr-1", time.Now())
	h := b.StartStep(manifest.StepValidateInput)
	h.Close(StepClose{Status: manifest.StepSuccess})
	h.Close(StepClose{Status: manifest.StepSuccess})
}

func TestBuilderStartWhileOpenPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("starting a step over an open step did not panic")
		}
	}()

	b := newBuilder("seed", "run-1", "corr-1", time.Now())
	b.StartStep(manifest.StepValidateInput)
	b.StartStep(manifest.StepExecute)
}

func TestBuilderFinishWithOpenStepPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("finishing with an open step did not panic")
		}
	}()

	b := newBuilder("seed", "run-1", "corr-1", time.Now())
	b.StartStep(manifest.StepValidateInput)
	b.finish()
}
