package models

import "time"

// OmittedSection marks a sub-analysis that could not be produced. Sections
// are withheld with an explicit reason, never silently dropped.
type OmittedSection struct {
	Reason string `json:"reason"`
}

// RankedOpportunity is one entry of the prioritized opportunity list
type RankedOpportunity struct {
	Rank            int     `json:"rank"`
	RegionCode      string  `json:"region_code"`
	GrowthPct       float64 `json:"growth_pct"`
	AdoptionDensity float64 `json:"adoption_density"`
	GapFromMedian   float64 `json:"gap_from_median"`
	BudgetShareHint float64 `json:"budget_share_hint"`
	Rationale       string  `json:"rationale"`
}

// MetricRange summarizes one dimension across the analyzed panel
type MetricRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// DataSummary describes the panel an analysis run operated on. TotalRecords
// counts every stored audit row, including superseded corrections, so it can
// exceed the region count.
type DataSummary struct {
	Regions       int          `json:"regions"`
	TotalRecords  int          `json:"total_records"`
	Period        string       `json:"period,omitempty"`
	GrowthRange   *MetricRange `json:"growth_range"`
	AdoptionRange *MetricRange `json:"adoption_range"`
}

// MonitorSummary carries the sentiment monitor's batch counters into the report
type MonitorSummary struct {
	DocumentsScored  int `json:"documents_scored"`
	DocumentsDropped int `json:"documents_dropped"`
}

// Report is the single structured output artifact of one analysis run.
// It is an immutable structural merge, timestamped at assembly time, with no
// analytical logic of its own. All enums serialize as fixed string literals
// and timestamps as ISO-8601.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	DataSummary DataSummary `json:"data_summary"`

	Correlation        *CorrelationResult `json:"correlation"`
	CorrelationOmitted *OmittedSection    `json:"correlation_omitted,omitempty"`

	Quadrants        *QuadrantMap    `json:"quadrants"`
	QuadrantsOmitted *OmittedSection `json:"quadrants_omitted,omitempty"`

	Opportunities        []RankedOpportunity `json:"opportunities"`
	OpportunitiesOmitted *OmittedSection     `json:"opportunities_omitted,omitempty"`

	ActiveAlerts []Alert         `json:"active_alerts"`
	Monitor      *MonitorSummary `json:"monitor,omitempty"`

	Caveats []string `json:"caveats"`
}
