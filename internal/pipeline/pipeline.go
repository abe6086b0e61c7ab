package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/domain/manifest"
)

// Config controls one manifest pipeline run
type Config struct {
	CommandName string
	Run         *command.ExecutionContext
	// ManifestDir, when set, is where the manifest JSON is persisted.
	// Empty means in-memory only.
	ManifestDir string
}

// ExecuteWithManifest runs execute inside a manifest pipeline. The execute
// function drives steps through the builder; the final status is derived
// from the closed steps, not from the function's return value, so a
// forgotten step cannot be papered over.
func ExecuteWithManifest(cfg Config, execute func(b *Builder)) manifest.PipelineResult {
	b := newBuilder(cfg.CommandName, cfg.Run.RunID, cfg.Run.CorrelationID, cfg.Run.StartTime)
	b.SetTenant(manifest.TenantResolution{
		TenantID: cfg.Run.Tenant.String(),
		Resolved: true,
		Source:   "execution-context",
	})

	execute(b)

	m := b.finish()
	status, exitCode := manifest.DeriveStatus(m.Steps)

	result := manifest.PipelineResult{
		Status:   status,
		ExitCode: exitCode,
		Manifest: m,
	}

	if cfg.ManifestDir != "" {
		path, err := persistManifest(cfg.ManifestDir, m)
		if err != nil {
			// The manifest is sealed at this point; the failure is
			// reported on the result, not written back into the manifest
			cfg.Run.Logger.ErrorWithErr(err, "failed to persist manifest")
			result.Warnings = append(result.Warnings, fmt.Sprintf("manifest not persisted: %v", err))
		} else {
			result.ManifestPath = path
		}
	}

	cfg.Run.Logger.WithFields(map[string]interface{}{
		"command":   cfg.CommandName,
		"status":    string(status),
		"exit_code": exitCode,
		"steps":     len(m.Steps),
	}).Info("pipeline finished")

	return result
}

func persistManifest(dir string, m *manifest.Manifest) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create manifest dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("manifest-%s.json", m.RunID))
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
