// Package analysis implements the batch analytical pass over regional metric
// snapshots: correlation with significance testing, quadrant classification,
// opportunity ranking and report assembly. All computations are pure
// functions of an immutable snapshot and are safe to run concurrently.
package analysis

import (
	"fmt"
	"math"

	"github.com/ternarybob/statera/internal/models"
)

const ciConfidence = 0.95

// CorrelationConfig is the significance and power policy for correlation runs
type CorrelationConfig struct {
	// Alpha is the significance threshold for the significant_at_alpha flag.
	// The raw p-value is always carried so callers can apply stricter
	// thresholds without recomputation.
	Alpha float64

	// Power buckets: n < InsufficientBelow is INSUFFICIENT,
	// n < LimitedBelow is LIMITED, otherwise ADEQUATE.
	InsufficientBelow int
	LimitedBelow      int
}

// DefaultCorrelationConfig returns the default significance policy
func DefaultCorrelationConfig() CorrelationConfig {
	return CorrelationConfig{
		Alpha:             0.05,
		InsufficientBelow: 20,
		LimitedBelow:      30,
	}
}

// CorrelationEngine computes Pearson correlation with significance, power
// assessment and caveats between the two dimensions of a snapshot
type CorrelationEngine struct {
	config CorrelationConfig
}

// NewCorrelationEngine creates an engine with the given policy
func NewCorrelationEngine(config CorrelationConfig) *CorrelationEngine {
	if config.Alpha <= 0 || config.Alpha >= 1 {
		config.Alpha = 0.05
	}
	if config.InsufficientBelow <= 0 {
		config.InsufficientBelow = 20
	}
	if config.LimitedBelow < config.InsufficientBelow {
		config.LimitedBelow = config.InsufficientBelow + 10
	}
	return &CorrelationEngine{config: config}
}

// Compute calculates Pearson r, the two-tailed p-value on n-2 degrees of
// freedom, and a 95% Fisher-z confidence interval when n >= 4. Degenerate
// input (n < 3 or a zero-variance series) fails with
// UndefinedCorrelationError, reported rather than silently zeroed.
func (e *CorrelationEngine) Compute(snapshot *models.Snapshot) (*models.CorrelationResult, error) {
	n := snapshot.N()
	if n < 3 {
		return nil, &UndefinedCorrelationError{N: n, Reason: "fewer than 3 paired samples"}
	}

	xs := snapshot.XValues()
	ys := snapshot.YValues()

	if sumSquaredDeviations(xs) == 0 {
		return nil, &UndefinedCorrelationError{N: n, Reason: fmt.Sprintf("zero variance on %s", snapshot.DimensionX)}
	}
	if sumSquaredDeviations(ys) == 0 {
		return nil, &UndefinedCorrelationError{N: n, Reason: fmt.Sprintf("zero variance on %s", snapshot.DimensionY)}
	}

	r := pearson(xs, ys)

	df := float64(n - 2)
	var p float64
	if 1-r*r < 1e-15 {
		// Perfect correlation: t diverges and p collapses to zero
		p = 0
	} else {
		t := r * math.Sqrt(df/(1-r*r))
		p = studentTwoTailedP(t, df)
	}

	var interval *models.ConfidenceInterval
	if n >= 4 {
		lower, upper := fisherInterval(r, n, ciConfidence)
		interval = &models.ConfidenceInterval{Lower: round(lower, 6), Upper: round(upper, 6)}
	}

	result := &models.CorrelationResult{
		DimensionX:         snapshot.DimensionX,
		DimensionY:         snapshot.DimensionY,
		N:                  n,
		R:                  round(r, 6),
		PValue:             round(p, 6),
		ConfidenceInterval: interval,
		Alpha:              e.config.Alpha,
		SignificantAtAlpha: p < e.config.Alpha,
		PowerFlag:          e.powerFlag(n),
		Interpretation:     interpretCorrelation(r, p, e.config.Alpha),
	}
	result.Caveats = e.buildCaveats(result)
	return result, nil
}

// powerFlag buckets the sample size against the configured cutoffs
func (e *CorrelationEngine) powerFlag(n int) models.PowerFlag {
	switch {
	case n < e.config.InsufficientBelow:
		return models.PowerInsufficient
	case n < e.config.LimitedBelow:
		return models.PowerLimited
	default:
		return models.PowerAdequate
	}
}

// buildCaveats states the power policy and methodological limits as text so
// downstream consumers cannot mistake a low-power result for a confirmed effect
func (e *CorrelationEngine) buildCaveats(result *models.CorrelationResult) []string {
	caveats := []string{
		fmt.Sprintf("analysis based on %d paired regional observations", result.N),
		"Pearson correlation assumes a linear relationship; correlation does not imply causation",
	}

	switch result.PowerFlag {
	case models.PowerInsufficient:
		caveats = append(caveats, fmt.Sprintf("statistical power INSUFFICIENT (n=%d < %d): results are indicative only, not a basis for policy decisions", result.N, e.config.InsufficientBelow))
	case models.PowerLimited:
		caveats = append(caveats, fmt.Sprintf("statistical power LIMITED (n=%d < %d): interpret with caution", result.N, e.config.LimitedBelow))
	case models.PowerAdequate:
		caveats = append(caveats, fmt.Sprintf("statistical power ADEQUATE (n=%d >= %d)", result.N, e.config.LimitedBelow))
	}

	if result.ConfidenceInterval == nil {
		caveats = append(caveats, "confidence interval not computable below 4 samples")
	}
	return caveats
}

// interpretCorrelation produces the policy-facing reading of the result
func interpretCorrelation(r, p, alpha float64) string {
	if p >= alpha {
		return "no statistically significant relationship at the configured threshold"
	}
	switch {
	case r >= 0.7:
		return "strong positive coupling: economic growth and adoption move together"
	case r >= 0.3:
		return "moderate positive relationship"
	case r > -0.3:
		return "weak or no linear relationship"
	case r > -0.7:
		return "moderate negative relationship: potential for targeted intervention"
	default:
		return "strong negative relationship: requires strategic investigation"
	}
}
