package seeding

import (
	"testing"
	"time"

	"github.com/adlytica/toolkit/internal/domain/metric"
	"github.com/adlytica/toolkit/internal/domain/scenario"
)

func testSpec(trend string) *scenario.Spec {
	return &scenario.Spec{
		Name:            "baseline",
		Trend:           trend,
		BaseImpressions: 10000,
		Platforms:       []string{"google", "meta", "tiktok"},
		Days:            30,
		DateAnchor:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testInput(trend string) Input {
	return Input{
		TenantID:   "acme",
		ScenarioID: "baseline",
		Seed:       42,
		Spec:       testSpec(trend),
	}
}

func TestGenerateDeterminism(t *testing.T) {
	first := Generate(testInput(scenario.TrendFlat))
	second := Generate(testInput(scenario.TrendFlat))

	firstSum, err := Checksum(first.Shape)
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	secondSum, err := Checksum(second.Shape)
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	if firstSum != secondSum {
		t.Errorf("identical inputs produced different checksums: %s vs %s", firstSum, secondSum)
	}
	if len(first.Snapshots) != len(second.Snapshots) {
		t.Fatalf("row counts differ: %d vs %d", len(first.Snapshots), len(second.Snapshots))
	}
	for i := range first.Snapshots {
		a, b := first.Snapshots[i], second.Snapshots[i]
		for name, v := range a.Metrics {
			if b.Metrics[name] != v {
				t.Fatalf("snapshot %d metric %s differs: %v vs %v", i, name, v, b.Metrics[name])
			}
		}
	}
}

func TestGenerateRowCount(t *testing.T) {
	out := Generate(testInput(scenario.TrendFlat))

	wantRows := 3 * 30 // platforms x days
	if len(out.Snapshots) != wantRows {
		t.Errorf("len(Snapshots) = %d, want %d", len(out.Snapshots), wantRows)
	}
	if out.Shape.RowCount != wantRows {
		t.Errorf("Shape.RowCount = %d, want %d", out.Shape.RowCount, wantRows)
	}
	for _, platform := range []string{"google", "meta", "tiktok"} {
		if got := len(out.Shape.Platforms[platform]); got != 30 {
			t.Errorf("platform %s has %d rows, want 30", platform, got)
		}
	}
}

func TestGenerateSeedSensitivity(t *testing.T) {
	base := testInput(scenario.TrendFlat)

	otherSeed := base
	otherSeed.Seed = 43

	otherTenant := base
	otherTenant.TenantID = "globex"

	baseSum := mustChecksum(t, Generate(base).Shape)
	if got := mustChecksum(t, Generate(otherSeed).Shape); got == baseSum {
		t.Error("different seeds produced identical checksums")
	}
	if got := mustChecksum(t, Generate(otherTenant).Shape); got == baseSum {
		t.Error("different tenants produced identical checksums")
	}
}

func TestGenerateTagsAndCampaignIDs(t *testing.T) {
	out := Generate(testInput(scenario.TrendFlat))

	for _, s := range out.Snapshots {
		if s.SourceTag != SourceTag {
			t.Fatalf("SourceTag = %q, want %q", s.SourceTag, SourceTag)
		}
		want := "acme-baseline-" + s.Platform
		if s.CampaignID != want {
			t.Fatalf("CampaignID = %q, want %q", s.CampaignID, want)
		}
	}
}

func TestGenerateTrendShapesDiffer(t *testing.T) {
	flat := mustChecksum(t, Generate(testInput(scenario.TrendFlat)).Shape)
	growth := mustChecksum(t, Generate(testInput(scenario.TrendGrowth)).Shape)
	if flat == growth {
		t.Error("flat and growth trends produced identical checksums")
	}
}

func TestGenerateDerivedMetricsConsistent(t *testing.T) {
	out := Generate(testInput(scenario.TrendGrowth))
	for i, s := range out.Snapshots {
		impressions := s.Metrics[metric.Impressions]
		clicks := s.Metrics[metric.Clicks]
		if impressions > 0 {
			wantCTR := clicks / impressions * 100
			if got := s.Metrics[metric.CTR]; got != wantCTR {
				t.Fatalf("snapshot %d: ctr = %v, want %v", i, got, wantCTR)
			}
		}
		if clicks > 0 {
			wantCPC := s.Metrics[metric.Spend] / clicks
			if got := s.Metrics[metric.CPC]; got != wantCPC {
				t.Fatalf("snapshot %d: cpc = %v, want %v", i, got, wantCPC)
			}
		}
	}
}

func mustChecksum(t *testing.T, shape scenario.Shape) string {
	t.Helper()
	sum, err := Checksum(shape)
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	return sum
}
