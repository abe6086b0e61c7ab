package alerting

import (
	"fmt"
	"math"

	"github.com/adlytica/toolkit/internal/domain/metric"
)

// EQ comparisons tolerate this much floating-point drift
const epsilon = 0.0001

// EvaluateOnce evaluates every enabled rule against a single snapshot.
// The engine is pure: no I/O, no clock, deterministic output.
func EvaluateOnce(snapshot metric.Snapshot, rules []Rule, baselines BaselineMap) []Evaluation {
	evaluations := make([]Evaluation, 0, len(rules))
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		evaluations = append(evaluations, evaluateRule(snapshot, rule, baselines))
	}
	return evaluations
}

// EvaluateCheck evaluates a batch of snapshots, resolving one baseline per
// campaign id (first match wins) when a baseline map is supplied
func EvaluateCheck(snapshots []metric.Snapshot, rules []Rule, baselines BaselineMap) CheckResult {
	enabled := 0
	for _, r := range rules {
		if r.Enabled {
			enabled++
		}
	}

	result := CheckResult{
		Triggered: []Evaluation{},
		Metadata: CheckMetadata{
			TotalRules:    len(rules),
			EnabledRules:  enabled,
			SnapshotCount: len(snapshots),
		},
	}

	for _, snapshot := range snapshots {
		for _, eval := range EvaluateOnce(snapshot, rules, baselines) {
			if eval.Triggered {
				result.Triggered = append(result.Triggered, eval)
			}
		}
	}
	return result
}

// DeriveBaselines builds a baseline map from the earliest snapshot per
// campaign in the window, first match wins. Callers that have a real
// prior-period baseline should supply it instead.
func DeriveBaselines(snapshots []metric.Snapshot) BaselineMap {
	baselines := make(BaselineMap)
	for _, s := range snapshots {
		existing, ok := baselines[s.CampaignID]
		if !ok || s.Date.Before(existing.From) {
			baselines[s.CampaignID] = metric.Baseline{
				CampaignID: s.CampaignID,
				From:       s.Date,
				To:         s.Date,
				Metrics:    s.Metrics,
			}
		}
	}
	return baselines
}

func evaluateRule(snapshot metric.Snapshot, rule Rule, baselines BaselineMap) Evaluation {
	eval := Evaluation{
		RuleID:     rule.ID,
		RuleName:   rule.Name,
		Severity:   rule.Severity,
		CampaignID: snapshot.CampaignID,
	}

	switch rule.Condition.Type {
	case ConditionThreshold:
		evaluateThreshold(&eval, snapshot, rule.Condition)
	case ConditionDropPercent:
		evaluateDropPercent(&eval, snapshot, rule.Condition, baselines)
	case ConditionZeroConversions:
		evaluateZeroConversions(&eval, snapshot, rule.Condition)
	default:
		// Unknown condition tags fail safe, never trigger
		eval.Triggered = false
		eval.Reason = fmt.Sprintf("unknown condition type %q", rule.Condition.Type)
	}
	return eval
}

func evaluateThreshold(eval *Evaluation, snapshot metric.Snapshot, cond Condition) {
	current, ok := snapshot.Metrics.Get(cond.Metric)
	if !ok {
		eval.Reason = fmt.Sprintf("metric %q not present in snapshot", cond.Metric)
		return
	}

	threshold := cond.Value
	eval.Values = EvaluationValues{Current: current, Threshold: &threshold}

	var triggered bool
	switch cond.Operator {
	case OpGT:
		triggered = current > threshold
	case OpLT:
		triggered = current < threshold
	case OpGTE:
		triggered = current >= threshold
	case OpLTE:
		triggered = current <= threshold
	case OpEQ:
		triggered = math.Abs(current-threshold) < epsilon
	default:
		eval.Reason = fmt.Sprintf("unknown operator %q", cond.Operator)
		return
	}

	eval.Triggered = triggered
	if triggered {
		eval.Reason = fmt.Sprintf("%s=%.4f %s %.4f", cond.Metric, current, cond.Operator, threshold)
	} else {
		eval.Reason = fmt.Sprintf("%s=%.4f not %s %.4f", cond.Metric, current, cond.Operator, threshold)
	}
}

func evaluateDropPercent(eval *Evaluation, snapshot metric.Snapshot, cond Condition, baselines BaselineMap) {
	threshold := cond.ThresholdPercent
	eval.Values = EvaluationValues{Threshold: &threshold}

	if baselines == nil {
		eval.Reason = "baseline not provided"
		return
	}
	baseline, ok := baselines[snapshot.CampaignID]
	if !ok {
		eval.Reason = "baseline not provided"
		return
	}

	current, okCur := snapshot.Metrics.Get(cond.Metric)
	base, okBase := baseline.Metrics.Get(cond.Metric)
	if !okCur || !okBase {
		eval.Reason = fmt.Sprintf("metric %q not present in snapshot or baseline", cond.Metric)
		return
	}

	eval.Values.Current = current
	eval.Values.Baseline = &base

	if base <= 0 {
		eval.Reason = fmt.Sprintf("baseline %s=%.4f, cannot compute percentage drop", cond.Metric, base)
		return
	}
	if current >= base {
		eval.Reason = fmt.Sprintf("%s=%.4f did not drop below baseline %.4f", cond.Metric, current, base)
		return
	}

	dropPercent := (base - current) / base * 100
	eval.Values.DropPercent = &dropPercent
	eval.Triggered = dropPercent >= threshold

	if eval.Triggered {
		eval.Reason = fmt.Sprintf("%s dropped %.2f%% from baseline %.4f to %.4f (threshold %.2f%%)",
			cond.Metric, dropPercent, base, current, threshold)
	} else {
		eval.Reason = fmt.Sprintf("%s dropped %.2f%%, below threshold %.2f%%",
			cond.Metric, dropPercent, threshold)
	}
}

func evaluateZeroConversions(eval *Evaluation, snapshot metric.Snapshot, cond Condition) {
	conversions, okConv := snapshot.Metrics.Get(metric.Conversions)
	spend, okSpend := snapshot.Metrics.Get(metric.Spend)
	if !okConv || !okSpend {
		eval.Reason = "conversions or spend not present in snapshot"
		return
	}

	minSpend := cond.MinSpend
	eval.Values = EvaluationValues{Current: conversions, Threshold: &minSpend}

	eval.Triggered = conversions == 0 && spend >= cond.MinSpend
	if eval.Triggered {
		eval.Reason = fmt.Sprintf("zero conversions with spend %.2f >= %.2f", spend, cond.MinSpend)
	} else {
		eval.Reason = fmt.Sprintf("conversions=%.0f spend=%.2f (min spend %.2f)", conversions, spend, cond.MinSpend)
	}
}
