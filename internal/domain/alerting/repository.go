package alerting

import "context"

// Repository defines the data access surface for alert rules and
// triggered-alert state
type Repository interface {
	// ListRules returns all alert rules for a tenant
	ListRules(ctx context.Context, tenantID string) ([]Rule, error)

	// InsertRules writes rule definitions for a tenant
	InsertRules(ctx context.Context, tenantID string, rules []Rule) error

	// InsertTriggered records triggered alerts
	InsertTriggered(ctx context.Context, alerts []TriggeredAlert) error
}
