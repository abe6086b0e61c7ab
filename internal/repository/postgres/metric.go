package postgres

import (
	"context"
	"database/sql"

	"github.com/adlytica/toolkit/internal/domain/metric"
	"github.com/adlytica/toolkit/internal/pkg/errors"
)

// MetricRepository implements metric.Repository against campaign_metrics
type MetricRepository struct {
	db *sql.DB
}

// NewMetricRepository creates a metric snapshot repository
func NewMetricRepository(db *sql.DB) metric.Repository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) InsertSnapshots(ctx context.Context, snapshots []metric.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin snapshot insert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaign_metrics
			(tenant_id, campaign_id, platform, date,
			 impressions, clicks, conversions, spend, revenue,
			 ctr, cpc, cvr, roas, source_tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`)
	if err != nil {
		return errors.DatabaseError("Failed to prepare snapshot insert", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		_, err := stmt.ExecContext(ctx,
			s.TenantID, s.CampaignID, s.Platform, s.Date.Format("2006-01-02"),
			s.Metrics[metric.Impressions], s.Metrics[metric.Clicks],
			s.Metrics[metric.Conversions], s.Metrics[metric.Spend], s.Metrics[metric.Revenue],
			s.Metrics[metric.CTR], s.Metrics[metric.CPC], s.Metrics[metric.CVR], s.Metrics[metric.ROAS],
			s.SourceTag,
		)
		if err != nil {
			return errors.DatabaseError("Failed to insert metric snapshot", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit snapshot insert", err)
	}
	return nil
}

func (r *MetricRepository) DeleteBySourceTag(ctx context.Context, tenantID, sourceTag, platform string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM campaign_metrics
		WHERE tenant_id = $1 AND source_tag = $2 AND platform = $3
	`, tenantID, sourceTag, platform)
	if err != nil {
		return 0, errors.DatabaseError("Failed to delete tagged metric rows", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows, nil
}

func (r *MetricRepository) CountRealRows(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM campaign_metrics
		WHERE tenant_id = $1 AND (source_tag IS NULL OR source_tag = '')
	`, tenantID).Scan(&count)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count real metric rows", err)
	}
	return count, nil
}

func (r *MetricRepository) ListByTenant(ctx context.Context, tenantID string) ([]metric.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT campaign_id, platform, date,
			impressions, clicks, conversions, spend, revenue,
			ctr, cpc, cvr, roas, COALESCE(source_tag, '')
		FROM campaign_metrics
		WHERE tenant_id = $1
		ORDER BY date, campaign_id
	`, tenantID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list metric snapshots", err)
	}
	defer rows.Close()

	var snapshots []metric.Snapshot
	for rows.Next() {
		var (
			s    metric.Snapshot
			date scanTime
			v    [9]float64
		)
		s.TenantID = tenantID
		err := rows.Scan(&s.CampaignID, &s.Platform, &date,
			&v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6], &v[7], &v[8],
			&s.SourceTag)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan metric snapshot", err)
		}
		s.Date = date.Time
		s.Metrics = metric.Values{
			metric.Impressions: v[0], metric.Clicks: v[1], metric.Conversions: v[2],
			metric.Spend: v[3], metric.Revenue: v[4],
			metric.CTR: v[5], metric.CPC: v[6], metric.CVR: v[7], metric.ROAS: v[8],
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
