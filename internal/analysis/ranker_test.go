package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/ternarybob/statera/internal/models"
)

func classify(t *testing.T, snapshot *models.Snapshot) *models.QuadrantMap {
	t.Helper()
	classifier, err := NewQuadrantClassifier(StrategyMedian, DefaultQuadrantPolicy())
	if err != nil {
		t.Fatalf("NewQuadrantClassifier failed: %v", err)
	}
	quadrants, err := classifier.Classify(snapshot)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	return quadrants
}

func TestOpportunityRanker_OrdersByGapDescending(t *testing.T) {
	// Three opportunity-gap regions with distinct growth distances from
	// the panel median, plus high-adoption regions to anchor the threshold
	snapshot := &models.Snapshot{
		DimensionX: models.DimensionAdoptionDensity,
		DimensionY: models.DimensionEconomicGrowth,
		Pairs: []models.SnapshotPair{
			{RegionCode: "R01", X: 90, Y: 4},
			{RegionCode: "R02", X: 80, Y: 5},
			{RegionCode: "R03", X: 85, Y: 4.5},
			{RegionCode: "R04", X: 5, Y: 12}, // biggest gap
			{RegionCode: "R05", X: 10, Y: 8},
			{RegionCode: "R06", X: 8, Y: 6},
		},
	}
	quadrants := classify(t, snapshot)
	ranker := NewOpportunityRanker()

	ranked := ranker.Rank(snapshot, quadrants, nil)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 opportunity regions, got %d", len(ranked))
	}

	wantOrder := []string{"R04", "R05", "R06"}
	var totalShare float64
	for i, opp := range ranked {
		if opp.RegionCode != wantOrder[i] {
			t.Errorf("rank %d: expected %s, got %s", i+1, wantOrder[i], opp.RegionCode)
		}
		if opp.Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, opp.Rank)
		}
		if i > 0 && opp.GapFromMedian > ranked[i-1].GapFromMedian {
			t.Errorf("gaps must be non-increasing, got %v after %v", opp.GapFromMedian, ranked[i-1].GapFromMedian)
		}
		totalShare += opp.BudgetShareHint
	}
	if math.Abs(totalShare-1.0) > 0.01 {
		t.Errorf("budget share hints should sum to ~1, got %v", totalShare)
	}
}

func TestOpportunityRanker_TieBreaksByRegionCode(t *testing.T) {
	// R04 and R05 sit symmetrically around the growth median with equal
	// gaps; ordering between them must be lexicographic
	snapshot := &models.Snapshot{
		DimensionX: models.DimensionAdoptionDensity,
		DimensionY: models.DimensionEconomicGrowth,
		Pairs: []models.SnapshotPair{
			{RegionCode: "R01", X: 90, Y: 2},
			{RegionCode: "R02", X: 80, Y: 3},
			{RegionCode: "R05", X: 5, Y: 10},
			{RegionCode: "R04", X: 6, Y: 10},
		},
	}
	quadrants := classify(t, snapshot)
	ranked := NewOpportunityRanker().Rank(snapshot, quadrants, nil)

	if len(ranked) != 2 {
		t.Fatalf("expected 2 opportunity regions, got %d", len(ranked))
	}
	if ranked[0].RegionCode != "R04" || ranked[1].RegionCode != "R05" {
		t.Errorf("equal gaps must order by region code, got %s then %s", ranked[0].RegionCode, ranked[1].RegionCode)
	}
}

func TestOpportunityRanker_RationaleCarriesPowerFlag(t *testing.T) {
	snapshot := &models.Snapshot{
		DimensionX: models.DimensionAdoptionDensity,
		DimensionY: models.DimensionEconomicGrowth,
		Pairs: []models.SnapshotPair{
			{RegionCode: "R01", X: 90, Y: 2},
			{RegionCode: "R02", X: 80, Y: 3},
			{RegionCode: "R03", X: 5, Y: 10},
		},
	}
	quadrants := classify(t, snapshot)

	correlation := &models.CorrelationResult{N: 3, PowerFlag: models.PowerInsufficient}
	ranked := NewOpportunityRanker().Rank(snapshot, quadrants, correlation)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 opportunity region, got %d", len(ranked))
	}
	if !strings.Contains(ranked[0].Rationale, "INSUFFICIENT") {
		t.Errorf("rationale must surface the power flag, got %q", ranked[0].Rationale)
	}
	if !strings.Contains(ranked[0].Rationale, "indicative") {
		t.Errorf("low-power rationale must carry its caveat, got %q", ranked[0].Rationale)
	}

	// No correlation available: ranking still proceeds with a note
	ranked = NewOpportunityRanker().Rank(snapshot, quadrants, nil)
	if !strings.Contains(ranked[0].Rationale, "correlation context unavailable") {
		t.Errorf("missing correlation must be noted, got %q", ranked[0].Rationale)
	}
}

func TestOpportunityRanker_EmptyWhenNoGapRegions(t *testing.T) {
	// All regions move together: nothing lands in OPPORTUNITY_GAP
	snapshot := &models.Snapshot{
		DimensionX: models.DimensionAdoptionDensity,
		DimensionY: models.DimensionEconomicGrowth,
		Pairs: []models.SnapshotPair{
			{RegionCode: "R01", X: 10, Y: 1},
			{RegionCode: "R02", X: 20, Y: 2},
			{RegionCode: "R03", X: 30, Y: 3},
			{RegionCode: "R04", X: 40, Y: 4},
		},
	}
	quadrants := classify(t, snapshot)
	ranked := NewOpportunityRanker().Rank(snapshot, quadrants, nil)

	if ranked == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(ranked) != 0 {
		t.Errorf("expected no opportunities, got %d", len(ranked))
	}
}
