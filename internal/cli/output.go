package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/adlytica/toolkit/internal/domain/command"
	"github.com/adlytica/toolkit/internal/domain/manifest"
	"github.com/adlytica/toolkit/internal/pipeline"
	"github.com/adlytica/toolkit/internal/pkg/metrics"
)

// printJSON renders any result value as indented JSON on stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runCommand executes one command through the safety wrapper and reports
// the outcome, mapping the pipeline exit code onto the process exit code
func runCommand(a *app, name command.Name, params interface{}) error {
	run, err := a.runContext()
	if err != nil {
		return err
	}

	outcome := a.safety.Execute(context.Background(), pipeline.ExecuteRequest{
		CommandName: name,
		Run:         run,
		Params:      params,
	})

	if a.cfg.Metrics.PushgatewayURL != "" {
		if pushErr := metrics.Push(a.cfg.Metrics.PushgatewayURL, "adlytica_toolkit"); pushErr != nil {
			a.log.WithError(pushErr).Warn("metrics push failed")
		}
	}

	if outcome.Pipeline != nil {
		setExitCode(outcome.Pipeline.ExitCode)
		if outcome.Pipeline.ManifestPath != "" {
			fmt.Fprintln(os.Stderr, "manifest:", outcome.Pipeline.ManifestPath)
		}
	} else if !outcome.Result.IsOk() {
		setExitCode(manifest.ExitFailed)
	}

	if !outcome.Result.IsOk() {
		appErr := outcome.Result.Err()
		return fmt.Errorf("%s: %s", appErr.Code, appErr.Error())
	}
	return printJSON(outcome.Result.Value())
}
