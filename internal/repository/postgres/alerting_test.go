package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/adlytica/toolkit/internal/domain/alerting"
	"github.com/adlytica/toolkit/internal/domain/metric"
	"github.com/adlytica/toolkit/internal/testutil"
)

func TestAlertingRepositoryRules(t *testing.T) {
	repo := NewAlertingRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	rules := []alerting.Rule{
		{
			ID:   "drop",
			Name: "conversion collapse",
			Condition: alerting.Condition{
				Type:             alerting.ConditionDropPercent,
				Metric:           metric.Conversions,
				ThresholdPercent: 50,
			},
			Severity: alerting.SeverityHigh,
			Enabled:  true,
		},
		{
			ID:   "spend-cap",
			Name: "spend cap",
			Condition: alerting.Condition{
				Type:     alerting.ConditionThreshold,
				Metric:   metric.Spend,
				Operator: alerting.OpGT,
				Value:    10000,
			},
			Severity: alerting.SeverityCritical,
			Enabled:  false,
		},
	}
	if err := repo.InsertRules(ctx, "acme", rules); err != nil {
		t.Fatalf("InsertRules() error = %v", err)
	}

	got, err := repo.ListRules(ctx, "acme")
	if err != nil {
		t.Fatalf("ListRules() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRules() returned %d rules, want 2", len(got))
	}

	// Ordered by id: drop, spend-cap
	if got[0].Condition.Type != alerting.ConditionDropPercent || got[0].Condition.ThresholdPercent != 50 {
		t.Errorf("rule 0 condition = %+v", got[0].Condition)
	}
	if got[1].Condition.Operator != alerting.OpGT || got[1].Condition.Value != 10000 {
		t.Errorf("rule 1 condition = %+v", got[1].Condition)
	}
	if got[1].Enabled {
		t.Error("rule 1 Enabled = true, want false")
	}

	other, err := repo.ListRules(ctx, "globex")
	if err != nil {
		t.Fatalf("ListRules() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("ListRules() for another tenant returned %d rules, want 0", len(other))
	}
}

func TestAlertingRepositoryInsertTriggered(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAlertingRepository(db)
	ctx := context.Background()

	alerts := []alerting.TriggeredAlert{
		{
			TenantID:    "acme",
			RuleID:      "drop",
			CampaignID:  "camp-1",
			Severity:    alerting.SeverityHigh,
			Reason:      "conversions dropped 60.00% from baseline",
			TriggeredAt: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
		},
	}
	if err := repo.InsertTriggered(ctx, alerts); err != nil {
		t.Fatalf("InsertTriggered() error = %v", err)
	}
	if err := repo.InsertTriggered(ctx, nil); err != nil {
		t.Errorf("InsertTriggered(nil) error = %v, want nil", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM triggered_alerts WHERE tenant_id = 'acme'`).Scan(&n); err != nil {
		t.Fatalf("count triggered: %v", err)
	}
	if n != 1 {
		t.Errorf("triggered_alerts rows = %d, want 1", n)
	}
}
