package models

// PowerFlag buckets sample size adequacy for drawing policy conclusions.
// The cutoffs are a configurable policy, not a statistical law, and are
// always restated in the result caveats.
type PowerFlag string

const (
	PowerAdequate     PowerFlag = "ADEQUATE"
	PowerLimited      PowerFlag = "LIMITED"
	PowerInsufficient PowerFlag = "INSUFFICIENT"
)

// ConfidenceInterval is a two-sided interval around r
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// CorrelationResult couples two regional metric dimensions. A nil
// ConfidenceInterval serializes as null and means "not computable"; it is
// never a disguised zero.
type CorrelationResult struct {
	DimensionX         Dimension           `json:"dimension_x"`
	DimensionY         Dimension           `json:"dimension_y"`
	N                  int                 `json:"n"`
	R                  float64             `json:"r"`
	PValue             float64             `json:"p_value"`
	ConfidenceInterval *ConfidenceInterval `json:"confidence_interval"`
	Alpha              float64             `json:"alpha"`
	SignificantAtAlpha bool                `json:"significant_at_alpha"`
	PowerFlag          PowerFlag           `json:"power_flag"`
	Interpretation     string              `json:"interpretation"`
	Caveats            []string            `json:"caveats"`
}
