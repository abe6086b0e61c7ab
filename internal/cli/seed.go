package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/services"
)

func seedFlags(cmd *cobra.Command, params *services.SeedParams) {
	cmd.Flags().StringVar(&params.Scenario, "scenario", "baseline", "scenario name or alias")
	cmd.Flags().Int64Var(&params.Seed, "seed", 42, "deterministic seed")
	cmd.Flags().StringVar(&params.Mode, "mode", "GENERATED", "execution mode: GENERATED, FIXTURE or HYBRID")
	cmd.Flags().IntVar(&params.Days, "days", 0, "override scenario day count")
	cmd.Flags().BoolVar(&params.AllowUnclean, "allow-unclean", false, "bypass the hygiene check against real data")
}

func newSeedCmd() *cobra.Command {
	var params services.SeedParams

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed synthetic campaign history for one platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCommand(a, command.NameSeed, params)
		},
	}

	seedFlags(cmd, &params)
	cmd.Flags().StringVar(&params.Platform, "platform", "", "restrict seeding to one platform")
	return cmd
}

func newSeedUnifiedCmd() *cobra.Command {
	var params services.SeedParams

	cmd := &cobra.Command{
		Use:   "seed-unified",
		Short: "Seed synthetic history across all scenario platforms",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCommand(a, command.NameSeedUnified, params)
		},
	}

	seedFlags(cmd, &params)
	return cmd
}

func newVerifyScenarioCmd() *cobra.Command {
	var params services.VerifyParams

	cmd := &cobra.Command{
		Use:   "verify-scenario",
		Short: "Verify deterministic output against the golden fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCommand(a, command.NameVerifyScenario, params)
		},
	}

	cmd.Flags().StringVar(&params.Scenario, "scenario", "baseline", "scenario name or alias")
	cmd.Flags().Int64Var(&params.Seed, "seed", 42, "deterministic seed")
	return cmd
}

func newFixtureCmd() *cobra.Command {
	var (
		scenarioName string
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "fixture-capture",
		Short: "Generate and store a golden fixture for a scenario and seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			if tenantFlag == "" {
				return fmt.Errorf("--tenant is required")
			}
			fixture, err := a.seeds.CaptureFixture(tenantFlag, scenarioName, seed)
			if err != nil {
				return err
			}
			return printJSON(fixture)
		},
	}

	cmd.Flags().StringVar(&scenarioName, "scenario", "baseline", "scenario name or alias")
	cmd.Flags().Int64Var(&seed, "seed", 42, "deterministic seed")
	return cmd
}
