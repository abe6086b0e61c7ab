package metric

import "context"

// Repository defines the data access surface for metric snapshots
type Repository interface {
	// InsertSnapshots writes snapshot rows tagged with their source
	InsertSnapshots(ctx context.Context, snapshots []Snapshot) error

	// DeleteBySourceTag removes rows carrying the given source tag for one
	// tenant and platform; this is what makes repeated seeds idempotent
	DeleteBySourceTag(ctx context.Context, tenantID, sourceTag, platform string) (int64, error)

	// CountRealRows counts rows NOT tagged as synthetic for a tenant; a
	// non-zero count fails the hygiene check
	CountRealRows(ctx context.Context, tenantID string) (int64, error)

	// ListByTenant returns all snapshots for a tenant ordered by date
	ListByTenant(ctx context.Context, tenantID string) ([]Snapshot, error)
}
