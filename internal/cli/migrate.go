package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adlytica/toolkit/internal/domain/manifest"
	"github.com/adlytica/toolkit/internal/repository/postgres"
	"github.com/adlytica/toolkit/migrations"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending toolkit schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := postgres.RunMigrations(a.db, migrations.GetFS()); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func newManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect persisted execution manifests",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the persisted manifest for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			path := filepath.Join(a.cfg.Toolkit.ManifestDir, "manifest-"+args[0]+".json")
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read manifest %s: %w", path, err)
			}
			var m manifest.Manifest
			if err := json.Unmarshal(data, &m); err != nil {
				return fmt.Errorf("parse manifest %s: %w", path, err)
			}
			return printJSON(m)
		},
	})
	return cmd
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List registered toolkit commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			type entry struct {
				Name                     string   `json:"name"`
				Description              string   `json:"description"`
				RequiresConfirmation     bool     `json:"requires_confirmation"`
				EstimatedDurationSeconds int      `json:"estimated_duration_seconds"`
				Risks                    []string `json:"risks,omitempty"`
			}

			var entries []entry
			for _, name := range a.registry.Names() {
				reg, _ := a.registry.Resolve(name)
				entries = append(entries, entry{
					Name:                     reg.Command.Name.String(),
					Description:              reg.Command.Description,
					RequiresConfirmation:     reg.Command.RequiresConfirmation,
					EstimatedDurationSeconds: reg.Command.EstimatedDurationSeconds,
					Risks:                    reg.Command.Risks,
				})
			}
			return printJSON(entries)
		},
	}
}
