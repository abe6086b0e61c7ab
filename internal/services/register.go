package services

import (
	"github.com/adlytica/toolkit/internal/domain/command"
)

// RegisterCommands populates the registry with every toolkit command. This
// runs once at the composition root; a duplicate name panics at startup.
func RegisterCommands(registry *command.Registry, seeds *SeedService, alerts *AlertScenarioService, resets *ResetCommandService) {
	registry.MustRegister(command.Command{
		Name:                     command.NameSeed,
		Description:              "Seed synthetic campaign history for one platform set",
		EstimatedDurationSeconds: 15,
		Risks:                    []string{"overwrites previously seeded mock rows for the tenant"},
	}, seeds.Handle)

	registry.MustRegister(command.Command{
		Name:                     command.NameSeedUnified,
		Description:              "Seed synthetic history across all scenario platforms in one run",
		EstimatedDurationSeconds: 30,
		Risks:                    []string{"overwrites previously seeded mock rows for the tenant"},
	}, seeds.Handle)

	registry.MustRegister(command.Command{
		Name:                     command.NameAlertScenario,
		Description:              "Evaluate alert rules against the tenant's metric snapshots",
		EstimatedDurationSeconds: 10,
		Risks:                    []string{"persists triggered-alert rows"},
	}, alerts.Handle)

	registry.MustRegister(command.Command{
		Name:                     command.NameVerifyScenario,
		Description:              "Verify a scenario's deterministic output against its golden fixture",
		EstimatedDurationSeconds: 5,
		Risks:                    nil,
	}, seeds.HandleVerify)

	registry.MustRegister(command.Command{
		Name:                     command.NameReset,
		Description:              "Delete the tenant's operational data (metrics, alert state, history)",
		EstimatedDurationSeconds: 10,
		Risks:                    []string{"deletes operational rows; campaigns and rules survive"},
	}, resets.HandlePartial)

	registry.MustRegister(command.Command{
		Name:                     command.NameResetHard,
		Description:              "Delete the tenant's operational data plus campaign and rule definitions",
		RequiresConfirmation:     true,
		EstimatedDurationSeconds: 10,
		Risks: []string{
			"deletes campaign and alert-rule definitions",
			"requires a one-time confirmation token",
		},
	}, resets.HandleHard)
}
