package analysis

import (
	"fmt"

	"github.com/ternarybob/statera/internal/models"
)

// ThresholdStrategy selects how the axis boundary is computed per run
type ThresholdStrategy string

const (
	// StrategyMedian splits each axis at the snapshot median (default)
	StrategyMedian ThresholdStrategy = "median"
	// StrategyQuartile splits each axis at the upper quartile for finer
	// segmentation of the high group
	StrategyQuartile ThresholdStrategy = "quartile"
)

// QuadrantPolicy is the explicit axis-to-label mapping. The source material
// leaves the orientation of economic growth vs adoption unresolved, so the
// mapping is required configuration: swapping axis semantics silently inverts
// policy meaning if left implicit.
type QuadrantPolicy struct {
	HighXHighY models.QuadrantLabel
	HighXLowY  models.QuadrantLabel
	LowXHighY  models.QuadrantLabel
	LowXLowY   models.QuadrantLabel
}

// DefaultQuadrantPolicy maps x=adoption density, y=economic growth:
// a high-growth, low-adoption region is an opportunity gap.
func DefaultQuadrantPolicy() QuadrantPolicy {
	return QuadrantPolicy{
		HighXHighY: models.QuadrantStars,
		HighXLowY:  models.QuadrantSaturated,
		LowXHighY:  models.QuadrantOpportunityGap,
		LowXLowY:   models.QuadrantSleepingGiant,
	}
}

// Validate checks the mapping exhaustively so a misconfiguration is caught
// before any analysis runs rather than silently mislabeling categories
func (p QuadrantPolicy) Validate() error {
	labels := map[string]models.QuadrantLabel{
		"high_x_high_y": p.HighXHighY,
		"high_x_low_y":  p.HighXLowY,
		"low_x_high_y":  p.LowXHighY,
		"low_x_low_y":   p.LowXLowY,
	}
	seen := make(map[models.QuadrantLabel]string, 4)
	for cell, label := range labels {
		if label == "" {
			return fmt.Errorf("quadrant mapping %s is not set", cell)
		}
		if !models.KnownQuadrantLabel(label) {
			return fmt.Errorf("quadrant mapping %s has unknown label %q", cell, label)
		}
		if prev, dup := seen[label]; dup {
			return fmt.Errorf("quadrant label %s assigned to both %s and %s", label, prev, cell)
		}
		seen[label] = cell
	}
	return nil
}

// label resolves one (high/low, high/low) cell
func (p QuadrantPolicy) label(xHigh, yHigh bool) models.QuadrantLabel {
	switch {
	case xHigh && yHigh:
		return p.HighXHighY
	case xHigh:
		return p.HighXLowY
	case yHigh:
		return p.LowXHighY
	default:
		return p.LowXLowY
	}
}

// quadrantStrategies are the recommended regional strategies per category
var quadrantStrategies = map[models.QuadrantLabel]string{
	models.QuadrantStars:          "deepen transaction value, showcase as success case",
	models.QuadrantSaturated:      "focus on efficiency and service quality over acquisition",
	models.QuadrantOpportunityGap: "target with acquisition campaign, investigate adoption barriers",
	models.QuadrantSleepingGiant:  "build foundational digital infrastructure and financial literacy",
}

// QuadrantClassifier segments regions into strategic categories by comparing
// each region against per-run axis thresholds
type QuadrantClassifier struct {
	strategy ThresholdStrategy
	policy   QuadrantPolicy
}

// NewQuadrantClassifier validates the policy and returns a classifier
func NewQuadrantClassifier(strategy ThresholdStrategy, policy QuadrantPolicy) (*QuadrantClassifier, error) {
	switch strategy {
	case StrategyMedian, StrategyQuartile:
	case "":
		strategy = StrategyMedian
	default:
		return nil, fmt.Errorf("unknown threshold strategy %q", strategy)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quadrant policy: %w", err)
	}
	return &QuadrantClassifier{strategy: strategy, policy: policy}, nil
}

// Classify computes the axis thresholds over the current snapshot and assigns
// every region exactly one label. Values equal to the threshold are high (>=),
// deterministic across repeated runs on the same snapshot. An axis where all
// values are identical fails with DegenerateAxisError instead of collapsing
// everyone into one quadrant.
func (c *QuadrantClassifier) Classify(snapshot *models.Snapshot) (*models.QuadrantMap, error) {
	xs := snapshot.XValues()
	ys := snapshot.YValues()

	if allIdentical(xs) {
		return nil, &DegenerateAxisError{Axis: snapshot.DimensionX}
	}
	if allIdentical(ys) {
		return nil, &DegenerateAxisError{Axis: snapshot.DimensionY}
	}

	xThreshold := c.threshold(xs)
	yThreshold := c.threshold(ys)

	out := &models.QuadrantMap{
		XThreshold: xThreshold,
		YThreshold: yThreshold,
		Counts:     make(map[models.QuadrantLabel]int, 4),
	}
	for _, pair := range snapshot.Pairs {
		label := c.policy.label(pair.X >= xThreshold, pair.Y >= yThreshold)
		out.Counts[label]++
		out.Assignments = append(out.Assignments, models.QuadrantAssignment{
			RegionCode: pair.RegionCode,
			Label:      label,
			XValue:     pair.X,
			YValue:     pair.Y,
			XThreshold: xThreshold,
			YThreshold: yThreshold,
			Strategy:   quadrantStrategies[label],
		})
	}
	return out, nil
}

func (c *QuadrantClassifier) threshold(values []float64) float64 {
	if c.strategy == StrategyQuartile {
		return quantile(values, 0.75)
	}
	return median(values)
}

func allIdentical(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
