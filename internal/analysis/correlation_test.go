package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/ternarybob/statera/internal/models"
)

func snapshotOf(xs, ys []float64) *models.Snapshot {
	pairs := make([]models.SnapshotPair, len(xs))
	for i := range xs {
		pairs[i] = models.SnapshotPair{
			RegionCode: fmt.Sprintf("R%02d", i+1),
			X:          xs[i],
			Y:          ys[i],
		}
	}
	return &models.Snapshot{
		DimensionX: models.DimensionAdoptionDensity,
		DimensionY: models.DimensionEconomicGrowth,
		Period:     "2025-Q4",
		Pairs:      pairs,
	}
}

func linearSeries(n int, slope, intercept float64) ([]float64, []float64) {
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i + 1)
		ys[i] = slope*xs[i] + intercept
	}
	return xs, ys
}

func TestCorrelationEngine_PerfectPositive(t *testing.T) {
	xs, ys := linearSeries(10, 2.0, 1.0)
	engine := NewCorrelationEngine(DefaultCorrelationConfig())

	result, err := engine.Compute(snapshotOf(xs, ys))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(result.R-1.0) > 1e-9 {
		t.Errorf("expected r=1.0 for perfectly linear data, got %v", result.R)
	}
	if result.PValue != 0 {
		t.Errorf("expected p=0 for perfect correlation, got %v", result.PValue)
	}
	if !result.SignificantAtAlpha {
		t.Error("perfect correlation should be significant at alpha")
	}
}

func TestCorrelationEngine_PerfectNegative(t *testing.T) {
	xs, ys := linearSeries(10, -3.0, 50.0)
	engine := NewCorrelationEngine(DefaultCorrelationConfig())

	result, err := engine.Compute(snapshotOf(xs, ys))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(result.R-(-1.0)) > 1e-9 {
		t.Errorf("expected r=-1.0 for perfectly inverse data, got %v", result.R)
	}
}

func TestCorrelationEngine_KnownPValue(t *testing.T) {
	// Rank-shuffled series with r = 71.5/82.5 = 0.8667: t = 4.91 on 8 df
	// puts the two-tailed p near 0.0012
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	ys := []float64{3, 1, 5, 4, 2, 7, 6, 9, 8, 10}
	engine := NewCorrelationEngine(DefaultCorrelationConfig())

	result, err := engine.Compute(snapshotOf(xs, ys))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(result.R-0.866667) > 1e-4 {
		t.Errorf("expected r≈0.8667, got %v", result.R)
	}
	if result.PValue <= 0 || result.PValue >= 0.01 {
		t.Errorf("expected 0 < p < 0.01, got %v", result.PValue)
	}
	if !result.SignificantAtAlpha {
		t.Error("expected significance at alpha=0.05")
	}
}

func TestCorrelationEngine_TooFewSamples(t *testing.T) {
	engine := NewCorrelationEngine(DefaultCorrelationConfig())

	_, err := engine.Compute(snapshotOf([]float64{1, 2}, []float64{3, 4}))
	if err == nil {
		t.Fatal("expected error for n < 3")
	}
	var undefined *UndefinedCorrelationError
	if !errors.As(err, &undefined) {
		t.Fatalf("expected UndefinedCorrelationError, got %T", err)
	}
	if undefined.N != 2 {
		t.Errorf("expected N=2 in error, got %d", undefined.N)
	}
}

func TestCorrelationEngine_ZeroVariance(t *testing.T) {
	engine := NewCorrelationEngine(DefaultCorrelationConfig())

	_, err := engine.Compute(snapshotOf([]float64{5, 5, 5, 5}, []float64{1, 2, 3, 4}))
	var undefined *UndefinedCorrelationError
	if !errors.As(err, &undefined) {
		t.Fatalf("expected UndefinedCorrelationError for constant x axis, got %v", err)
	}

	_, err = engine.Compute(snapshotOf([]float64{1, 2, 3, 4}, []float64{7, 7, 7, 7}))
	if !errors.As(err, &undefined) {
		t.Fatalf("expected UndefinedCorrelationError for constant y axis, got %v", err)
	}
}

func TestCorrelationEngine_PowerFlags(t *testing.T) {
	engine := NewCorrelationEngine(DefaultCorrelationConfig())

	cases := []struct {
		n    int
		want models.PowerFlag
	}{
		{10, models.PowerInsufficient},
		{25, models.PowerLimited},
		{40, models.PowerAdequate},
	}
	for _, tc := range cases {
		xs := make([]float64, tc.n)
		ys := make([]float64, tc.n)
		for i := 0; i < tc.n; i++ {
			xs[i] = float64(i)
			ys[i] = float64(i) + math.Sin(float64(i)) // non-degenerate noise
		}
		result, err := engine.Compute(snapshotOf(xs, ys))
		if err != nil {
			t.Fatalf("n=%d: Compute failed: %v", tc.n, err)
		}
		if result.PowerFlag != tc.want {
			t.Errorf("n=%d: expected power %s, got %s", tc.n, tc.want, result.PowerFlag)
		}
	}
}

func TestCorrelationEngine_PowerCaveatAlwaysPresent(t *testing.T) {
	engine := NewCorrelationEngine(DefaultCorrelationConfig())
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2, 3, 5, 4, 8}

	result, err := engine.Compute(snapshotOf(xs, ys))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if result.PowerFlag != models.PowerInsufficient {
		t.Fatalf("expected INSUFFICIENT at n=5, got %s", result.PowerFlag)
	}
	found := false
	for _, c := range result.Caveats {
		if strings.Contains(c, "INSUFFICIENT") {
			found = true
		}
	}
	if !found {
		t.Errorf("low-power result must carry its power caveat, got %v", result.Caveats)
	}
}

func TestCorrelationEngine_ConfidenceInterval(t *testing.T) {
	engine := NewCorrelationEngine(DefaultCorrelationConfig())

	// n=3: interval not computable, result still returned
	result, err := engine.Compute(snapshotOf([]float64{1, 2, 3}, []float64{2, 4, 5}))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if result.ConfidenceInterval != nil {
		t.Errorf("expected nil interval at n=3, got %+v", result.ConfidenceInterval)
	}

	// n=30: interval contains r
	xs := make([]float64, 30)
	ys := make([]float64, 30)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = float64(i)*0.8 + math.Cos(float64(i))*3
	}
	result, err = engine.Compute(snapshotOf(xs, ys))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	ci := result.ConfidenceInterval
	if ci == nil {
		t.Fatal("expected interval at n=30")
	}
	if ci.Lower > result.R || ci.Upper < result.R {
		t.Errorf("interval [%v, %v] must contain r=%v", ci.Lower, ci.Upper, result.R)
	}
	if ci.Lower >= ci.Upper {
		t.Errorf("expected a proper interval, got [%v, %v]", ci.Lower, ci.Upper)
	}
}

func TestStudentTwoTailedP(t *testing.T) {
	// Reference values from standard t tables
	cases := []struct {
		t, df, want, tol float64
	}{
		{2.228, 10, 0.05, 0.002},
		{1.812, 10, 0.10, 0.002},
		{2.048, 28, 0.05, 0.002},
		{0, 10, 1.0, 1e-9},
	}
	for _, tc := range cases {
		got := studentTwoTailedP(tc.t, tc.df)
		if math.Abs(got-tc.want) > tc.tol {
			t.Errorf("studentTwoTailedP(%v, %v) = %v, want %v ± %v", tc.t, tc.df, got, tc.want, tc.tol)
		}
	}
}
