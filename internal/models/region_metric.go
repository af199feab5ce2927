package models

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

// Dimension identifies a metric axis selectable in a snapshot
type Dimension string

const (
	DimensionEconomicGrowth  Dimension = "economic_growth"
	DimensionAdoptionDensity Dimension = "adoption_density"
)

// periodPattern matches quarterly ("2025-Q1") and monthly ("2025-07") periods
var periodPattern = regexp.MustCompile(`^\d{4}-(Q[1-4]|0[1-9]|1[0-2])$`)

// RegionMetric is one validated regional observation delivered by a connector.
// Records are immutable once stored; corrections arrive as new records for the
// same (region_code, period) key with a later provenance timestamp.
type RegionMetric struct {
	ID         string `json:"id"`
	RegionCode string `json:"region_code" validate:"required"`
	RegionName string `json:"region_name"`
	Period     string `json:"period" validate:"required"`

	// EconomicGrowthPct is a signed percentage with no implicit bound
	EconomicGrowthPct *float64 `json:"economic_growth_pct,omitempty"`

	// Adoption metrics. AdoptionDensity takes precedence when present;
	// otherwise Merchants is normalized by Population when available.
	AdoptionDensity *float64 `json:"adoption_density,omitempty"`
	Merchants       *float64 `json:"merchants,omitempty"`
	Population      *float64 `json:"population,omitempty"`

	SourceProvenance string    `json:"source_provenance"`
	ProvenanceAt     time.Time `json:"provenance_at"`
	IngestedAt       time.Time `json:"ingested_at"`
}

// Validate checks the record invariants at the connector boundary.
// Connector output is never trusted as pre-validated.
func (m *RegionMetric) Validate() error {
	if m.RegionCode == "" {
		return &ValidationError{Field: "region_code", Reason: "must not be empty"}
	}
	if !periodPattern.MatchString(m.Period) {
		return &ValidationError{Field: "period", Reason: fmt.Sprintf("%q is not a valid period (want YYYY-Qn or YYYY-MM)", m.Period)}
	}
	for field, v := range map[string]*float64{
		"economic_growth_pct": m.EconomicGrowthPct,
		"adoption_density":    m.AdoptionDensity,
		"merchants":           m.Merchants,
		"population":          m.Population,
	} {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			return &ValidationError{Field: field, Reason: "must be finite"}
		}
	}
	if m.AdoptionDensity != nil && *m.AdoptionDensity < 0 {
		return &ValidationError{Field: "adoption_density", Reason: "must not be negative"}
	}
	if m.Merchants != nil && *m.Merchants < 0 {
		return &ValidationError{Field: "merchants", Reason: "must not be negative"}
	}
	if m.Population != nil && *m.Population < 0 {
		return &ValidationError{Field: "population", Reason: "must not be negative"}
	}
	return nil
}

// ResolvedAdoptionDensity resolves the adoption axis value for this record.
// Explicit density wins; otherwise merchants per capita when population is
// known, falling back to the raw merchant count.
func (m *RegionMetric) ResolvedAdoptionDensity() (float64, bool) {
	if m.AdoptionDensity != nil {
		return *m.AdoptionDensity, true
	}
	if m.Merchants == nil {
		return 0, false
	}
	if m.Population != nil && *m.Population > 0 {
		return *m.Merchants / *m.Population, true
	}
	return *m.Merchants, true
}

// DimensionValue returns the value of the requested dimension, or false when
// the record is missing that dimension. Missing values are excluded from
// snapshots, never imputed.
func (m *RegionMetric) DimensionValue(dim Dimension) (float64, bool) {
	switch dim {
	case DimensionEconomicGrowth:
		if m.EconomicGrowthPct == nil {
			return 0, false
		}
		return *m.EconomicGrowthPct, true
	case DimensionAdoptionDensity:
		return m.ResolvedAdoptionDensity()
	default:
		return 0, false
	}
}

// KnownDimension reports whether dim is a recognized metric axis
func KnownDimension(dim Dimension) bool {
	return dim == DimensionEconomicGrowth || dim == DimensionAdoptionDensity
}
