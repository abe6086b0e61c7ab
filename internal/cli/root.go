package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adlytica/toolkit/internal/config"
	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/domain/scenario"
	"github.com/adlytica/toolkit/internal/pipeline"
	"github.com/adlytica/toolkit/internal/pkg/logger"
	"github.com/adlytica/toolkit/internal/pkg/validator"
	"github.com/adlytica/toolkit/internal/repository/postgres"
	"github.com/adlytica/toolkit/internal/reset"
	"github.com/adlytica/toolkit/internal/services"
)

var (
	tenantFlag  string
	dryRunFlag  bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "adlytica-toolkit",
	Short: "Adlytica operator toolkit - safety-gated data operations",
	Long: `The Adlytica operator toolkit runs data-mutating operations (seed
synthetic history, evaluate alert rules, reset tenant data) with auditable,
idempotent, safety-gated execution. Every write command runs inside a
manifest pipeline with a schema-parity preflight.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		if code := viper.GetInt("exit_code"); code != 0 {
			return code
		}
		return 1
	}
	return viper.GetInt("exit_code")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tenantFlag, "tenant", "", "tenant identifier (required for most commands)")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "compute planned effects without writing")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newSeedUnifiedCmd())
	rootCmd.AddCommand(newVerifyScenarioCmd())
	rootCmd.AddCommand(newFixtureCmd())
	rootCmd.AddCommand(newAlertScenarioCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newResetHardCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newManifestCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCommandsCmd())
}

// app holds the composition root: every dependency is constructed here
// once, with explicit constructor injection
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sql.DB
	registry *command.Registry
	safety   *pipeline.Safety
	resets   *reset.Service
	seeds    *services.SeedService
}

func newApp(needDB bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logLevel := cfg.Logging.Level
	if verboseFlag {
		logLevel = "debug"
	}
	log := logger.New(logger.Config{Level: logLevel, Format: cfg.Logging.Format})

	a := &app{cfg: cfg, log: log}

	var db *sql.DB
	if needDB {
		db, err = postgres.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
	}

	v := validator.New()
	loader := scenario.NewLoader(cfg.Toolkit.ScenarioDir)
	fixtures := scenario.NewFixtureStore(cfg.Toolkit.FixtureDir)

	var (
		parity  pipeline.ParityChecker
		seedSvc *services.SeedService
		alerts  *services.AlertScenarioService
		resets  *services.ResetCommandService
	)

	if needDB {
		parity, err = postgres.NewParityChecker(db, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		metricsRepo := postgres.NewMetricRepository(db)
		alertRepo := postgres.NewAlertingRepository(db)
		resetRepo := postgres.NewResetRepository(db)

		// Tokens live in the datastore: issuance and consumption are
		// separate CLI invocations
		tokens := reset.NewTokenStore(postgres.NewTokenRepository(db))
		a.resets = reset.NewService(resetRepo, tokens, log)
		seedSvc = services.NewSeedService(metricsRepo, loader, fixtures, v, log)
		alerts = services.NewAlertScenarioService(metricsRepo, alertRepo, v, log)
		resets = services.NewResetCommandService(a.resets, v, log)
	}

	a.seeds = seedSvc

	registry := command.NewRegistry()
	if needDB {
		services.RegisterCommands(registry, seedSvc, alerts, resets)
	}
	a.registry = registry

	a.safety = pipeline.NewSafety(pipeline.SafetyConfig{
		Registry:    registry,
		Throttle:    pipeline.NewThrottle(cfg.Toolkit.MaxConcurrent),
		Parity:      parity,
		ManifestDir: cfg.Toolkit.ManifestDir,
	})

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// runContext builds the per-invocation execution context from flags
func (a *app) runContext() (*command.ExecutionContext, error) {
	tenant, err := command.ParseTenantID(tenantFlag)
	if err != nil {
		return nil, err
	}
	dryRun := dryRunFlag || a.cfg.Toolkit.DryRunDefault
	return command.NewExecutionContext(tenant, dryRun, verboseFlag, a.log), nil
}

// setExitCode stashes the pipeline exit code for Execute to return
func setExitCode(code int) {
	viper.Set("exit_code", code)
}
