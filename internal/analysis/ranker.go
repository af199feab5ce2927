package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/ternarybob/statera/internal/models"
)

// OpportunityRanker fuses quadrant assignments with their source correlation
// into a prioritized intervention list
type OpportunityRanker struct{}

// NewOpportunityRanker creates a ranker
func NewOpportunityRanker() *OpportunityRanker {
	return &OpportunityRanker{}
}

// Rank orders OPPORTUNITY_GAP regions by descending distance of their
// economic growth from the panel median, prioritizing the most under-served
// high-growth regions. Ties break by region code ascending for determinism.
// The rationale carries the correlation's power flag so a low-power result
// always surfaces its caveat next to any ranking that used it. The output is
// empty when no region matches.
func (r *OpportunityRanker) Rank(snapshot *models.Snapshot, quadrants *models.QuadrantMap, correlation *models.CorrelationResult) []models.RankedOpportunity {
	if quadrants == nil {
		return []models.RankedOpportunity{}
	}

	growthIsY := snapshot.DimensionY == models.DimensionEconomicGrowth
	medianGrowth := median(r.growthSeries(snapshot, growthIsY))

	type candidate struct {
		assignment models.QuadrantAssignment
		growth     float64
		adoption   float64
		gap        float64
	}
	var candidates []candidate
	var totalGap float64
	for _, a := range quadrants.Assignments {
		if a.Label != models.QuadrantOpportunityGap {
			continue
		}
		growth, adoption := a.YValue, a.XValue
		if !growthIsY {
			growth, adoption = a.XValue, a.YValue
		}
		gap := math.Abs(growth - medianGrowth)
		candidates = append(candidates, candidate{assignment: a, growth: growth, adoption: adoption, gap: gap})
		totalGap += gap
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].gap != candidates[j].gap {
			return candidates[i].gap > candidates[j].gap
		}
		return candidates[i].assignment.RegionCode < candidates[j].assignment.RegionCode
	})

	ranked := make([]models.RankedOpportunity, 0, len(candidates))
	for i, c := range candidates {
		share := 0.0
		if totalGap > 0 {
			share = round(c.gap/totalGap, 4)
		} else if len(candidates) > 0 {
			share = round(1/float64(len(candidates)), 4)
		}
		ranked = append(ranked, models.RankedOpportunity{
			Rank:            i + 1,
			RegionCode:      c.assignment.RegionCode,
			GrowthPct:       c.growth,
			AdoptionDensity: c.adoption,
			GapFromMedian:   round(c.gap, 6),
			BudgetShareHint: share,
			Rationale:       rationale(c.assignment, c.growth, c.adoption, medianGrowth, correlation),
		})
	}
	return ranked
}

func (r *OpportunityRanker) growthSeries(snapshot *models.Snapshot, growthIsY bool) []float64 {
	if growthIsY {
		return snapshot.YValues()
	}
	return snapshot.XValues()
}

func rationale(a models.QuadrantAssignment, growth, adoption, medianGrowth float64, correlation *models.CorrelationResult) string {
	base := fmt.Sprintf("%s: growth %.1f%% vs panel median %.1f%% with adoption density %.2f below threshold",
		a.Label, growth, medianGrowth, adoption)
	if correlation == nil {
		return base + "; correlation context unavailable for this run"
	}
	note := fmt.Sprintf("; correlation power %s (n=%d)", correlation.PowerFlag, correlation.N)
	if correlation.PowerFlag != models.PowerAdequate {
		note += "; treat as indicative, not confirmed"
	}
	return base + note
}
