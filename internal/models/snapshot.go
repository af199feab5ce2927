package models

// SnapshotPair is one region's paired observation on the two analyzed axes
type SnapshotPair struct {
	RegionCode string  `json:"region_code"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// Snapshot is an immutable view over the current metric panel: every region
// with non-missing values on both requested dimensions, sorted by region code.
// Analyzers treat snapshots as read-only, so concurrent runs on independent
// snapshots need no locking.
type Snapshot struct {
	DimensionX Dimension      `json:"dimension_x"`
	DimensionY Dimension      `json:"dimension_y"`
	Period     string         `json:"period,omitempty"`
	Pairs      []SnapshotPair `json:"pairs"`
}

// N returns the sample size of the snapshot
func (s *Snapshot) N() int {
	return len(s.Pairs)
}

// XValues returns the x-axis series in region order
func (s *Snapshot) XValues() []float64 {
	out := make([]float64, len(s.Pairs))
	for i, p := range s.Pairs {
		out[i] = p.X
	}
	return out
}

// YValues returns the y-axis series in region order
func (s *Snapshot) YValues() []float64 {
	out := make([]float64, len(s.Pairs))
	for i, p := range s.Pairs {
		out[i] = p.Y
	}
	return out
}
