package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/adlytica/toolkit/internal/domain/manifest"
)

func TestExecuteWithManifestPersists(t *testing.T) {
	dir := t.TempDir()
	run := testRun(t)

	pr := ExecuteWithManifest(Config{
		CommandName: "seed",
		Run:         run,
		ManifestDir: dir,
	}, func(b *Builder) {
		s := b.StartStep(manifest.StepExecute)
		s.Close(StepClose{Status: manifest.StepSuccess, Summary: "done"})
		b.SetResults(manifest.Results{PlannedWrites: 10, AppliedWrites: 10})
	})

	if pr.Status != manifest.PipelineSuccess {
		t.Fatalf("Status = %s, want SUCCESS", pr.Status)
	}
	wantPath := filepath.Join(dir, "manifest-"+run.RunID+".json")
	if pr.ManifestPath != wantPath {
		t.Errorf("ManifestPath = %s, want %s", pr.ManifestPath, wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if m.RunID != run.RunID || m.CorrelationID != run.CorrelationID {
		t.Errorf("persisted ids = %s/%s, want %s/%s", m.RunID, m.CorrelationID, run.RunID, run.CorrelationID)
	}
	if m.Tenant.TenantID != "acme" || !m.Tenant.Resolved {
		t.Errorf("tenant resolution = %+v", m.Tenant)
	}
	if m.Results.AppliedWrites != 10 {
		t.Errorf("AppliedWrites = %d, want 10", m.Results.AppliedWrites)
	}
}

func TestExecuteWithManifestPersistFailure(t *testing.T) {
	// Point the manifest dir at an existing file so the write fails
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	pr := ExecuteWithManifest(Config{
		CommandName: "seed",
		Run:         testRun(t),
		ManifestDir: blocker,
	}, func(b *Builder) {
		s := b.StartStep(manifest.StepExecute)
		s.Close(StepClose{Status: manifest.StepSuccess, Summary: "done"})
	})

	if pr.Status != manifest.PipelineSuccess || pr.ExitCode != manifest.ExitSuccess {
		t.Errorf("pipeline = %s/%d, want SUCCESS/0 despite persist failure", pr.Status, pr.ExitCode)
	}
	if pr.ManifestPath != "" {
		t.Errorf("ManifestPath = %q, want empty", pr.ManifestPath)
	}
	if len(pr.Warnings) != 1 {
		t.Fatalf("result warnings = %v, want one persist warning", pr.Warnings)
	}
	// The sealed manifest itself stays untouched
	if len(pr.Manifest.Warnings) != 0 {
		t.Errorf("manifest warnings = %v, want none", pr.Manifest.Warnings)
	}
}

func TestExecuteWithManifestInMemory(t *testing.T) {
	pr := ExecuteWithManifest(Config{
		CommandName: "seed",
		Run:         testRun(t),
	}, func(b *Builder) {
		s := b.StartStep(manifest.StepExecute)
		s.Close(StepClose{
			Status: manifest.StepFailed,
			Error:  &manifest.StepError{Code: "X", Message: "boom"},
		})
	})

	if pr.Status != manifest.PipelineFailed || pr.ExitCode != manifest.ExitFailed {
		t.Errorf("pipeline = %s/%d, want FAILED/1", pr.Status, pr.ExitCode)
	}
	if pr.ManifestPath != "" {
		t.Errorf("ManifestPath = %q, want empty for in-memory run", pr.ManifestPath)
	}
}
