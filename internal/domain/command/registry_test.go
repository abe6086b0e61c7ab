package command

import (
	"context"
	"testing"

	"github.com/adlytica/toolkit/internal/pkg/logger"
)

func noopHandler(ctx context.Context, run *ExecutionContext, params interface{}) Result {
	return Ok(nil)
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Command{Name: NameSeed}, noopHandler); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(Command{Name: NameSeed}, noopHandler); err == nil {
		t.Error("duplicate Register() succeeded, want error")
	}
	if err := r.Register(Command{Name: "Bad Name"}, noopHandler); err == nil {
		t.Error("Register() with invalid name succeeded, want error")
	}
	if err := r.Register(Command{Name: NameReset}, nil); err == nil {
		t.Error("Register() with nil handler succeeded, want error")
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Command{Name: NameSeed, Description: "seed a tenant"}, noopHandler)

	reg, ok := r.Resolve(NameSeed)
	if !ok {
		t.Fatal("Resolve() = false for a registered command")
	}
	if reg.Command.Description != "seed a tenant" {
		t.Errorf("Description = %q", reg.Command.Description)
	}
	if _, ok := r.Resolve(NameResetHard); ok {
		t.Error("Resolve() = true for an unregistered command")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Command{Name: NameReset}, noopHandler)
	r.MustRegister(Command{Name: NameAlertScenario}, noopHandler)
	r.MustRegister(Command{Name: NameSeed}, noopHandler)

	names := r.Names()
	want := []Name{NameAlertScenario, NameReset, NameSeed}
	if len(names) != len(want) {
		t.Fatalf("len(Names()) = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestExecutionContextClones(t *testing.T) {
	tenant, err := ParseTenantID("acme")
	if err != nil {
		t.Fatalf("ParseTenantID() error = %v", err)
	}
	run := NewExecutionContext(tenant, false, true, logger.Nop())

	if run.RunID == "" || run.CorrelationID == "" {
		t.Fatal("run id or correlation id not assigned")
	}

	dry := run.WithDryRun(true)
	if !dry.DryRun {
		t.Error("WithDryRun(true) did not set the flag")
	}
	if run.DryRun {
		t.Error("WithDryRun mutated the original context")
	}

	corr := run.WithCorrelationID("caller-supplied")
	if corr.CorrelationID != "caller-supplied" {
		t.Errorf("CorrelationID = %q", corr.CorrelationID)
	}
	if run.CorrelationID == "caller-supplied" {
		t.Error("WithCorrelationID mutated the original context")
	}
}
