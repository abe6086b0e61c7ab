package postgres

import (
	"context"
	"database/sql"

	"github.com/adlytica/toolkit/internal/pkg/errors"
	"github.com/adlytica/toolkit/internal/reset"
)

// Operational tables hold derived, regenerable state. Definition tables
// hold configuration the operator created. Tenant identity, user accounts
// and integration configuration live in other tables that no reset touches.
var (
	operationalTables = []string{"campaign_metrics", "triggered_alerts", "alert_history"}
	definitionTables  = []string{"campaigns", "alert_rules"}
)

// ResetRepository implements reset.Repository with one atomic transaction
// per delete call
type ResetRepository struct {
	db *sql.DB
}

// NewResetRepository creates a tenant reset repository
func NewResetRepository(db *sql.DB) reset.Repository {
	return &ResetRepository{db: db}
}

func (r *ResetRepository) DeleteOperationalData(ctx context.Context, tenantID string) (reset.Counts, error) {
	return r.deleteTables(ctx, tenantID, operationalTables)
}

func (r *ResetRepository) DeleteDefinitions(ctx context.Context, tenantID string) (reset.Counts, error) {
	return r.deleteTables(ctx, tenantID, append(append([]string{}, operationalTables...), definitionTables...))
}

func (r *ResetRepository) PlanOperationalData(ctx context.Context, tenantID string) (reset.Counts, error) {
	return r.countTables(ctx, tenantID, operationalTables)
}

func (r *ResetRepository) PlanDefinitions(ctx context.Context, tenantID string) (reset.Counts, error) {
	return r.countTables(ctx, tenantID, append(append([]string{}, operationalTables...), definitionTables...))
}

func (r *ResetRepository) deleteTables(ctx context.Context, tenantID string, tables []string) (reset.Counts, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return reset.Counts{}, errors.DatabaseError("Failed to begin reset transaction", err)
	}
	defer tx.Rollback()

	var counts reset.Counts
	for _, table := range tables {
		result, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE tenant_id = $1", tenantID)
		if err != nil {
			return reset.Counts{}, errors.DatabaseError("Failed to delete from "+table, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return reset.Counts{}, errors.DatabaseError("Failed to get affected rows for "+table, err)
		}
		recordCount(&counts, table, rows)
	}

	if err := tx.Commit(); err != nil {
		return reset.Counts{}, errors.DatabaseError("Failed to commit reset transaction", err)
	}
	return counts, nil
}

func (r *ResetRepository) countTables(ctx context.Context, tenantID string, tables []string) (reset.Counts, error) {
	var counts reset.Counts
	for _, table := range tables {
		var rows int64
		err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+table+" WHERE tenant_id = $1", tenantID).Scan(&rows)
		if err != nil {
			return reset.Counts{}, errors.DatabaseError("Failed to count rows in "+table, err)
		}
		recordCount(&counts, table, rows)
	}
	return counts, nil
}

func recordCount(counts *reset.Counts, table string, rows int64) {
	switch table {
	case "campaign_metrics":
		counts.Metrics = rows
	case "triggered_alerts":
		counts.TriggeredAlerts = rows
	case "alert_history":
		counts.AlertHistory = rows
	case "campaigns":
		counts.Campaigns = rows
	case "alert_rules":
		counts.AlertRules = rows
	}
}
