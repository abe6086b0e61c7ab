package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/adlytica/toolkit/internal/domain/alerting"
	"github.com/adlytica/toolkit/internal/pkg/errors"
)

// AlertingRepository implements alerting.Repository
type AlertingRepository struct {
	db *sql.DB
}

// NewAlertingRepository creates an alert rule repository
func NewAlertingRepository(db *sql.DB) alerting.Repository {
	return &AlertingRepository{db: db}
}

func (r *AlertingRepository) ListRules(ctx context.Context, tenantID string) ([]alerting.Rule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, condition, severity, enabled
		FROM alert_rules
		WHERE tenant_id = $1
		ORDER BY id
	`, tenantID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list alert rules", err)
	}
	defer rows.Close()

	var rules []alerting.Rule
	for rows.Next() {
		var (
			rule         alerting.Rule
			conditionRaw string
		)
		if err := rows.Scan(&rule.ID, &rule.Name, &conditionRaw, &rule.Severity, &rule.Enabled); err != nil {
			return nil, errors.DatabaseError("Failed to scan alert rule", err)
		}
		if err := json.Unmarshal([]byte(conditionRaw), &rule.Condition); err != nil {
			return nil, errors.DatabaseError("Failed to decode alert rule condition", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *AlertingRepository) InsertRules(ctx context.Context, tenantID string, rules []alerting.Rule) error {
	if len(rules) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin rule insert", err)
	}
	defer tx.Rollback()

	for _, rule := range rules {
		conditionRaw, err := json.Marshal(rule.Condition)
		if err != nil {
			return errors.DatabaseError("Failed to encode alert rule condition", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO alert_rules (id, tenant_id, name, condition, severity, enabled)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, rule.ID, tenantID, rule.Name, string(conditionRaw), rule.Severity, rule.Enabled)
		if err != nil {
			return errors.DatabaseError("Failed to insert alert rule", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit rule insert", err)
	}
	return nil
}

func (r *AlertingRepository) InsertTriggered(ctx context.Context, alerts []alerting.TriggeredAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin triggered-alert insert", err)
	}
	defer tx.Rollback()

	for _, a := range alerts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO triggered_alerts (tenant_id, rule_id, campaign_id, severity, reason, triggered_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.TenantID, a.RuleID, a.CampaignID, a.Severity, a.Reason, a.TriggeredAt)
		if err != nil {
			return errors.DatabaseError("Failed to insert triggered alert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit triggered-alert insert", err)
	}
	return nil
}
