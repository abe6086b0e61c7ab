package seeding

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/zeebo/blake3"

	"github.com/adlytica/toolkit/internal/domain/metric"
	"github.com/adlytica/toolkit/internal/domain/scenario"
)

// SourceTag marks every row the toolkit writes so idempotent reruns and the
// hygiene check can tell synthetic data from real data
const SourceTag = "adlytica-mock"

// Input fixes everything the generator depends on. Output is a pure
// function of these fields plus the scenario's date anchor; wall-clock
// time never enters the chain.
type Input struct {
	TenantID   string
	ScenarioID string
	Seed       int64
	Spec       *scenario.Spec
}

// Output is the generated rows plus the shape describing them
type Output struct {
	Snapshots []metric.Snapshot
	Shape     scenario.Shape
}

// baseSeedHash derives the root of the determinism chain from
// (tenant, scenario, seed)
func baseSeedHash(tenantID, scenarioID string, seed int64) []byte {
	h := blake3.New()
	h.Write([]byte(tenantID))
	h.Write([]byte{0})
	h.Write([]byte(scenarioID))
	h.Write([]byte{0})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	return h.Sum(nil)
}

// platformSeed derives the per-platform generator seed from the base hash
func platformSeed(base []byte, platform string) int64 {
	h := blake3.New()
	h.Write(base)
	h.Write([]byte{0})
	h.Write([]byte(platform))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]) & math.MaxInt64)
}

// Generate synthesizes metric snapshots for every platform in the scenario.
// Two calls with identical input produce identical output.
func Generate(in Input) Output {
	base := baseSeedHash(in.TenantID, in.ScenarioID, in.Seed)
	spec := in.Spec

	shape := scenario.Shape{
		ScenarioID: in.ScenarioID,
		Seed:       in.Seed,
		Days:       spec.Days,
		Platforms:  make(map[string][]scenario.RowSpec, len(spec.Platforms)),
	}

	var snapshots []metric.Snapshot
	for _, platform := range spec.Platforms {
		rng := rand.New(rand.NewSource(platformSeed(base, platform)))
		campaignID := fmt.Sprintf("%s-%s-%s", in.TenantID, in.ScenarioID, platform)
		rows := make([]scenario.RowSpec, 0, spec.Days)

		for day := 0; day < spec.Days; day++ {
			date := spec.DateAnchor.AddDate(0, 0, day)
			row := generateRow(rng, spec, campaignID, date, day)
			rows = append(rows, row)

			snapshots = append(snapshots, metric.Snapshot{
				TenantID:   in.TenantID,
				CampaignID: campaignID,
				Platform:   platform,
				Date:       date,
				SourceTag:  SourceTag,
				Metrics: metric.Derived(
					row.Impressions, row.Clicks, row.Conversions, row.Spend, row.Revenue),
			})
		}
		shape.Platforms[platform] = rows
	}
	shape.RowCount = len(snapshots)

	return Output{Snapshots: snapshots, Shape: shape}
}

// generateRow produces one day of synthetic metrics. The exact math is an
// opaque deterministic function of the rng stream and the trend profile.
func generateRow(rng *rand.Rand, spec *scenario.Spec, campaignID string, date time.Time, day int) scenario.RowSpec {
	impressions := spec.BaseImpressions * trendFactor(spec.Trend, day, spec.Days)
	impressions = math.Round(impressions * (0.9 + rng.Float64()*0.2))

	ctr := 0.01 + rng.Float64()*0.04
	clicks := math.Round(impressions * ctr)

	cvr := 0.02 + rng.Float64()*0.08
	conversions := math.Round(clicks * cvr)

	cpc := 0.5 + rng.Float64()*2.5
	spend := round2(clicks * cpc)

	revenuePerConversion := 20 + rng.Float64()*80
	revenue := round2(conversions * revenuePerConversion)

	return scenario.RowSpec{
		CampaignID:  campaignID,
		Date:        date.Format("2006-01-02"),
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
		Spend:       spend,
		Revenue:     revenue,
	}
}

func trendFactor(trend string, day, days int) float64 {
	progress := float64(day) / float64(max(days-1, 1))
	switch trend {
	case scenario.TrendGrowth:
		return 0.5 + progress
	case scenario.TrendDecline:
		return 1.5 - progress
	case scenario.TrendSeasonal:
		return 1 + 0.3*math.Sin(2*math.Pi*float64(day)/7)
	default: // flat
		return 1
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
