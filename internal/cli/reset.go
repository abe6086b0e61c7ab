package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/reset"
	"github.com/adlytica/toolkit/internal/services"
)

func newAlertScenarioCmd() *cobra.Command {
	var params services.AlertScenarioParams

	cmd := &cobra.Command{
		Use:   "alert-scenario",
		Short: "Evaluate alert rules against the tenant's snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCommand(a, command.NameAlertScenario, params)
		},
	}

	cmd.Flags().BoolVar(&params.PersistTriggered, "persist", true, "persist triggered alerts")
	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the tenant's operational data",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireSafeHost(a); err != nil {
				return err
			}
			return runCommand(a, command.NameReset, services.ResetParams{})
		},
	}
}

func newResetHardCmd() *cobra.Command {
	var confirmation string

	cmd := &cobra.Command{
		Use:   "reset-hard",
		Short: "Delete the tenant's data including campaign and rule definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireSafeHost(a); err != nil {
				return err
			}
			if a.cfg.Toolkit.RequireConfirmation && confirmation == "" && !dryRunFlag {
				return fmt.Errorf("reset-hard requires --confirmation (issue one with: token issue)")
			}
			return runCommand(a, command.NameResetHard, services.ResetParams{
				Confirmation: confirmation,
				ConfirmedAt:  time.Now().UTC(),
			})
		},
	}

	cmd.Flags().StringVar(&confirmation, "confirmation", "", "one-time confirmation token")
	return cmd
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage hard-reset confirmation tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "issue",
		Short: "Issue a one-time confirmation token for a hard reset",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			if tenantFlag == "" {
				return fmt.Errorf("--tenant is required")
			}
			issued, err := a.resets.GenerateConfirmationToken(cmd.Context(), tenantFlag, reset.ModeHard)
			if err != nil {
				return err
			}
			return printJSON(issued)
		},
	})

	return cmd
}

// requireSafeHost refuses destructive commands against hosts outside the
// configured allowlist
func requireSafeHost(a *app) error {
	if !a.cfg.HostAllowed() {
		return fmt.Errorf("database host is not on the safe-host allowlist for destructive operations")
	}
	return nil
}
