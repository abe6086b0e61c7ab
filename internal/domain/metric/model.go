package metric

import "time"

// Metric names used across rules and snapshots
const (
	Impressions = "impressions"
	Clicks      = "clicks"
	Conversions = "conversions"
	Spend       = "spend"
	Revenue     = "revenue"
	CTR         = "ctr"
	CPC         = "cpc"
	CVR         = "cvr"
	ROAS        = "roas"
)

// Values is the fixed numeric metrics bag carried by every snapshot
type Values map[string]float64

// Get looks up a metric by name; ok is false when it is absent
func (v Values) Get(name string) (float64, bool) {
	val, ok := v[name]
	return val, ok
}

// Snapshot is one campaign's metrics for one date and platform
type Snapshot struct {
	TenantID   string    `json:"tenant_id"`
	CampaignID string    `json:"campaign_id"`
	Platform   string    `json:"platform"`
	Date       time.Time `json:"date"`
	Metrics    Values    `json:"metrics"`
	SourceTag  string    `json:"source_tag,omitempty"`
}

// Baseline summarizes a campaign's metrics over a date range, used for
// DROP_PERCENT comparisons
type Baseline struct {
	CampaignID string    `json:"campaign_id"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Metrics    Values    `json:"metrics"`
}

// Derived recomputes the ratio metrics from the counting metrics
func Derived(impressions, clicks, conversions, spend, revenue float64) Values {
	v := Values{
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
		Spend:       spend,
		Revenue:     revenue,
		CTR:         0,
		CPC:         0,
		CVR:         0,
		ROAS:        0,
	}
	if impressions > 0 {
		v[CTR] = clicks / impressions * 100
	}
	if clicks > 0 {
		v[CPC] = spend / clicks
		v[CVR] = conversions / clicks * 100
	}
	if spend > 0 {
		v[ROAS] = revenue / spend
	}
	return v
}
