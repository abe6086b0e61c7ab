package alerting

import (
	"time"

	"github.com/adlytica/toolkit/internal/domain/metric"
)

// ConditionType tags the rule condition union
type ConditionType string

const (
	ConditionThreshold       ConditionType = "THRESHOLD"
	ConditionDropPercent     ConditionType = "DROP_PERCENT"
	ConditionZeroConversions ConditionType = "ZERO_CONVERSIONS"
)

// Comparison operators for THRESHOLD conditions
const (
	OpGT  = "GT"
	OpLT  = "LT"
	OpGTE = "GTE"
	OpLTE = "LTE"
	OpEQ  = "EQ"
)

// Severity levels
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Condition is the tagged union of rule conditions. Exactly the fields of
// the tagged variant are meaningful.
type Condition struct {
	Type ConditionType `json:"type"`

	// THRESHOLD
	Metric   string  `json:"metric,omitempty"`
	Operator string  `json:"operator,omitempty"`
	Value    float64 `json:"value,omitempty"`

	// DROP_PERCENT
	ThresholdPercent float64 `json:"threshold_percent,omitempty"`

	// ZERO_CONVERSIONS
	MinSpend float64 `json:"min_spend,omitempty"`
}

// Rule is one alert rule definition
type Rule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Condition Condition `json:"condition"`
	Severity  string    `json:"severity"`
	Enabled   bool      `json:"enabled"`
}

// EvaluationValues records the numbers behind a decision so it can be
// reconstructed without re-running the engine
type EvaluationValues struct {
	Current     float64  `json:"current"`
	Baseline    *float64 `json:"baseline,omitempty"`
	Threshold   *float64 `json:"threshold,omitempty"`
	DropPercent *float64 `json:"drop_percent,omitempty"`
}

// Evaluation is the outcome of evaluating one rule against one snapshot
type Evaluation struct {
	RuleID     string           `json:"rule_id"`
	RuleName   string           `json:"rule_name"`
	Severity   string           `json:"severity"`
	CampaignID string           `json:"campaign_id"`
	Triggered  bool             `json:"triggered"`
	Reason     string           `json:"reason"`
	Values     EvaluationValues `json:"values"`
}

// CheckMetadata summarizes one batch evaluation
type CheckMetadata struct {
	TotalRules    int `json:"total_rules"`
	EnabledRules  int `json:"enabled_rules"`
	SnapshotCount int `json:"snapshot_count"`
}

// CheckResult is the outcome of one batch evaluation
type CheckResult struct {
	Triggered []Evaluation  `json:"triggered"`
	Metadata  CheckMetadata `json:"metadata"`
}

// TriggeredAlert is a persisted alert occurrence
type TriggeredAlert struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	RuleID      string    `json:"rule_id"`
	CampaignID  string    `json:"campaign_id"`
	Severity    string    `json:"severity"`
	Reason      string    `json:"reason"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// BaselineMap resolves one baseline per campaign id
type BaselineMap map[string]metric.Baseline
