package testutil

import (
	"context"
	"sync"

	"github.com/adlytica/toolkit/internal/domain/alerting"
	"github.com/adlytica/toolkit/internal/domain/metric"
	"github.com/adlytica/toolkit/internal/reset"
)

// MockMetricRepository is an in-memory metric.Repository
type MockMetricRepository struct {
	mu          sync.Mutex
	Snapshots   []metric.Snapshot
	RealRows    int64
	InsertError error
	DeleteError error
	CountError  error
	ListError   error
}

func NewMockMetricRepository() *MockMetricRepository {
	return &MockMetricRepository{}
}

func (m *MockMetricRepository) InsertSnapshots(ctx context.Context, snapshots []metric.Snapshot) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = append(m.Snapshots, snapshots...)
	return nil
}

func (m *MockMetricRepository) DeleteBySourceTag(ctx context.Context, tenantID, sourceTag, platform string) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []metric.Snapshot
	var deleted int64
	for _, s := range m.Snapshots {
		if s.TenantID == tenantID && s.SourceTag == sourceTag && s.Platform == platform {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.Snapshots = kept
	return deleted, nil
}

func (m *MockMetricRepository) CountRealRows(ctx context.Context, tenantID string) (int64, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	return m.RealRows, nil
}

func (m *MockMetricRepository) ListByTenant(ctx context.Context, tenantID string) ([]metric.Snapshot, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []metric.Snapshot
	for _, s := range m.Snapshots {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

// MockAlertingRepository is an in-memory alerting.Repository
type MockAlertingRepository struct {
	mu        sync.Mutex
	Rules     []alerting.Rule
	Triggered []alerting.TriggeredAlert
	ListError error
}

func NewMockAlertingRepository() *MockAlertingRepository {
	return &MockAlertingRepository{}
}

func (m *MockAlertingRepository) ListRules(ctx context.Context, tenantID string) ([]alerting.Rule, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Rules, nil
}

func (m *MockAlertingRepository) InsertRules(ctx context.Context, tenantID string, rules []alerting.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rules = append(m.Rules, rules...)
	return nil
}

func (m *MockAlertingRepository) InsertTriggered(ctx context.Context, alerts []alerting.TriggeredAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Triggered = append(m.Triggered, alerts...)
	return nil
}

// MockResetRepository is an in-memory reset.Repository
type MockResetRepository struct {
	PlanCounts   reset.Counts
	DeleteCounts reset.Counts
	DeleteCalls  int
	DeleteError  error
}

func NewMockResetRepository() *MockResetRepository {
	return &MockResetRepository{}
}

func (m *MockResetRepository) DeleteOperationalData(ctx context.Context, tenantID string) (reset.Counts, error) {
	m.DeleteCalls++
	if m.DeleteError != nil {
		return reset.Counts{}, m.DeleteError
	}
	return m.DeleteCounts, nil
}

func (m *MockResetRepository) DeleteDefinitions(ctx context.Context, tenantID string) (reset.Counts, error) {
	m.DeleteCalls++
	if m.DeleteError != nil {
		return reset.Counts{}, m.DeleteError
	}
	return m.DeleteCounts, nil
}

func (m *MockResetRepository) PlanOperationalData(ctx context.Context, tenantID string) (reset.Counts, error) {
	return m.PlanCounts, nil
}

func (m *MockResetRepository) PlanDefinitions(ctx context.Context, tenantID string) (reset.Counts, error) {
	return m.PlanCounts, nil
}

// MockParityChecker satisfies pipeline.ParityChecker
type MockParityChecker struct {
	Err   error
	Calls int
}

func (m *MockParityChecker) AssertSchemaParity(ctx context.Context) error {
	m.Calls++
	return m.Err
}
