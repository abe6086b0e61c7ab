package scenario

import "time"

// Execution modes for scenario seeding
type Mode string

const (
	ModeGenerated Mode = "GENERATED"
	ModeFixture   Mode = "FIXTURE"
	ModeHybrid    Mode = "HYBRID"
)

// ParseMode validates a seeding mode string
func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case ModeGenerated, ModeFixture, ModeHybrid:
		return Mode(raw), true
	}
	return "", false
}

// Trend shapes supported by the synthetic generator
const (
	TrendFlat     = "flat"
	TrendGrowth   = "growth"
	TrendDecline  = "decline"
	TrendSeasonal = "seasonal"
)

// Spec is a loaded scenario definition. It is immutable once parsed.
type Spec struct {
	Name            string    `yaml:"name"`
	Trend           string    `yaml:"trend"`
	BaseImpressions float64   `yaml:"base_impressions"`
	DateAnchor      time.Time `yaml:"date_anchor"`
	Aliases         []string  `yaml:"aliases"`
	SchemaVersion   int       `yaml:"schema_version"`
	Platforms       []string  `yaml:"platforms"`
	Days            int       `yaml:"days"`
}

// Fixture is a captured, content-addressed description of what a
// scenario+seed deterministically produces
type Fixture struct {
	ScenarioID  string    `json:"scenario_id"`
	Seed        int64     `json:"seed"`
	Shape       Shape     `json:"shape"`
	Checksum    string    `json:"checksum"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Shape describes the generated output structurally: per-platform ordered
// row digests plus the totals that must match on regeneration
type Shape struct {
	ScenarioID string               `json:"scenario_id"`
	Seed       int64                `json:"seed"`
	Days       int                  `json:"days"`
	RowCount   int                  `json:"row_count"`
	Platforms  map[string][]RowSpec `json:"platforms"`
}

// RowSpec is the deterministic description of one generated row
type RowSpec struct {
	CampaignID  string  `json:"campaign_id"`
	Date        string  `json:"date"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
}
