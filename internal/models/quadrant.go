package models

// QuadrantLabel names a strategic category for a region
type QuadrantLabel string

const (
	QuadrantStars          QuadrantLabel = "STARS"
	QuadrantSaturated      QuadrantLabel = "SATURATED"
	QuadrantOpportunityGap QuadrantLabel = "OPPORTUNITY_GAP"
	QuadrantSleepingGiant  QuadrantLabel = "SLEEPING_GIANT"
)

// KnownQuadrantLabel reports whether label is one of the four categories
func KnownQuadrantLabel(label QuadrantLabel) bool {
	switch label {
	case QuadrantStars, QuadrantSaturated, QuadrantOpportunityGap, QuadrantSleepingGiant:
		return true
	}
	return false
}

// QuadrantAssignment places one region relative to the snapshot thresholds.
// Thresholds are recomputed per run from the current panel, so a region's
// label can change when the panel changes.
type QuadrantAssignment struct {
	RegionCode string        `json:"region_code"`
	Label      QuadrantLabel `json:"quadrant_label"`
	XValue     float64       `json:"x_value"`
	YValue     float64       `json:"y_value"`
	XThreshold float64       `json:"x_threshold"`
	YThreshold float64       `json:"y_threshold"`
	Strategy   string        `json:"strategy"`
}

// QuadrantMap is the full classification output for one analysis run
type QuadrantMap struct {
	XThreshold  float64               `json:"x_threshold"`
	YThreshold  float64               `json:"y_threshold"`
	Counts      map[QuadrantLabel]int `json:"counts"`
	Assignments []QuadrantAssignment  `json:"assignments"`
}
